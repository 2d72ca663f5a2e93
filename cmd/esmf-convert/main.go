// Command esmf-convert rewrites an ERA5 file in the layout read by ESMF
// mesh tooling.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"go.ngs.io/surge-forcing/internal/adapter/store/era5"
	"go.ngs.io/surge-forcing/internal/config"
	"go.ngs.io/surge-forcing/internal/domain"
	"go.ngs.io/surge-forcing/internal/observability"
	"go.ngs.io/surge-forcing/internal/usecase"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (default: $CONFIG_FILE)")
	in := flag.String("in", "", "Input ERA5 NetCDF file")
	out := flag.String("out", "", "Output NetCDF file")
	encoding := flag.String("encoding", "float32", "Field encoding: float32 or int16")
	latOrder := flag.String("lat-order", "", "Output latitude order: ascending or descending (default: as read)")
	flag.Parse()

	if *in == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "usage: esmf-convert -in era5.nc -out esmf.nc [-encoding float32|int16]")
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

	req := usecase.ConvertRequest{Source: *in, Output: *out}
	if req.Encoding, err = era5.ParseEncoding(*encoding); err != nil {
		logger.Fatal("invalid options", zap.Error(err))
	}
	if *latOrder != "" {
		if req.LatitudeOrder, err = domain.ParseLatitudeOrder(*latOrder); err != nil {
			logger.Fatal("invalid options", zap.Error(err))
		}
	}

	store := era5.NewStore(era5.Names{Pressure: cfg.VarPressure, UWind: cfg.VarUWind, VWind: cfg.VarVWind}, logger)
	uc := usecase.NewConvertUseCase(usecase.Deps{
		Store:  store,
		Logger: logger,
		Clock:  clockwork.NewRealClock(),
	})
	if err := uc.Execute(context.Background(), req); err != nil {
		logger.Error("conversion failed", zap.Error(err))
		_ = observability.Flush(logger)
		os.Exit(1)
	}
}
