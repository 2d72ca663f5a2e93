// Command merge concatenates ERA5 files that share a grid along time.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"go.ngs.io/surge-forcing/internal/adapter/store/era5"
	"go.ngs.io/surge-forcing/internal/config"
	"go.ngs.io/surge-forcing/internal/observability"
	"go.ngs.io/surge-forcing/internal/usecase"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (default: $CONFIG_FILE)")
	out := flag.String("out", "", "Output NetCDF file")
	encoding := flag.String("encoding", "", "Field encoding: float32 or int16 (default: from config)")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: merge -out merged.nc [-encoding float32|int16] part1.nc part2.nc ...")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *out == "" || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = observability.Flush(logger) }()

	if *encoding == "" {
		*encoding = cfg.OutputEncoding
	}
	enc, err := era5.ParseEncoding(*encoding)
	if err != nil {
		logger.Fatal("invalid options", zap.Error(err))
	}

	store := era5.NewStore(era5.Names{Pressure: cfg.VarPressure, UWind: cfg.VarUWind, VWind: cfg.VarVWind}, logger)
	uc := usecase.NewMergeUseCase(usecase.Deps{Store: store, Logger: logger})
	res, err := uc.Execute(context.Background(), usecase.MergeRequest{
		Sources:  flag.Args(),
		Output:   *out,
		Encoding: enc,
	})
	if err != nil {
		logger.Error("merge failed", zap.Error(err))
		_ = observability.Flush(logger)
		os.Exit(1)
	}
	fmt.Printf("%s: %d timesteps from %d files\n", res.Output, res.Times, res.Sources)
}
