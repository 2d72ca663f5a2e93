// Command blend upsamples hourly ERA5 fields to a 30-minute axis and
// replaces the winds with an observed series.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"go.ngs.io/surge-forcing/internal/adapter/store/era5"
	"go.ngs.io/surge-forcing/internal/config"
	"go.ngs.io/surge-forcing/internal/domain"
	"go.ngs.io/surge-forcing/internal/observability"
	"go.ngs.io/surge-forcing/internal/usecase"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (default: $CONFIG_FILE)")
	source := flag.String("source", "", "Hourly ERA5 NetCDF file")
	observations := flag.String("obs", "", "Wind observation file (date time speed direction)")
	output := flag.String("out", "", "Output NetCDF file")
	steps := flag.Int("steps", -1, "Source steps to blend, 0 for all (default: from config)")
	policy := flag.String("policy", "", "Wind policy: nearest or pairwise (default: from config)")
	latOrder := flag.String("lat-order", "", "Output latitude order: ascending or descending")
	lonRange := flag.String("lon-range", "", "Output longitude range: -180-180 or 0-360")
	encoding := flag.String("encoding", "", "Field encoding: float32 or int16 (default: from config)")
	batch := flag.String("batch", "", "YAML manifest of blend jobs; replaces -source, -obs and -out")
	flag.Parse()

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

	base, err := baseRequest(cfg, *steps, *policy, *latOrder, *lonRange, *encoding)
	if err != nil {
		logger.Fatal("invalid options", zap.Error(err))
	}

	store := era5.NewStore(era5.Names{Pressure: cfg.VarPressure, UWind: cfg.VarUWind, VWind: cfg.VarVWind}, logger)
	registry := prometheus.NewRegistry()
	uc := usecase.NewBlendUseCase(usecase.Deps{
		Store:   store,
		Logger:  logger,
		Metrics: observability.NewMetrics(registry),
		Clock:   clockwork.NewRealClock(),
	}, cfg.BatchConcurrency)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := 0
	if *batch != "" {
		code = runBatch(ctx, uc, logger, *batch, base)
	} else {
		req := base
		req.Source, req.Observations, req.Output = *source, *observations, *output
		if _, err := uc.Execute(ctx, req); err != nil {
			code = 1
		}
	}
	// Nothing scrapes a CLI run; log the counters instead.
	if fields, err := observability.Snapshot(registry); err == nil {
		logger.Info("run metrics", fields...)
	}
	_ = observability.Flush(logger)
	os.Exit(code)
}

func runBatch(ctx context.Context, uc *usecase.BlendUseCase, logger *zap.Logger, path string, base usecase.BlendRequest) int {
	m, err := LoadManifest(path)
	if err != nil {
		logger.Error("manifest", zap.Error(err))
		return 1
	}
	reqs, err := m.Requests(base)
	if err != nil {
		logger.Error("manifest", zap.Error(err))
		return 1
	}

	items, err := uc.ExecuteBatch(ctx, reqs)
	failed := 0
	for _, it := range items {
		if it.Err != nil {
			failed++
		}
	}
	logger.Info("batch finished", zap.Int("jobs", len(items)), zap.Int("failed", failed))
	if err != nil {
		return 1
	}
	return 0
}

// baseRequest builds the options shared by every job from config and flags.
// Empty flags and a negative step count keep the configured value.
func baseRequest(cfg *config.Config, steps int, policy, latOrder, lonRange, encoding string) (usecase.BlendRequest, error) {
	req := usecase.BlendRequest{
		StepCount: cfg.BlendStepCount,
		FillValue: era5.Fill(cfg.FillValue),
	}
	if steps >= 0 {
		req.StepCount = steps
	}

	var err error
	if policy == "" {
		policy = cfg.BlendPolicy
	}
	if req.Policy, err = domain.ParseWindPolicy(policy); err != nil {
		return req, err
	}
	if encoding == "" {
		encoding = cfg.OutputEncoding
	}
	if req.Encoding, err = era5.ParseEncoding(encoding); err != nil {
		return req, err
	}

	if latOrder == "" {
		req.LatitudeOrder, err = cfg.LatitudeOrderHook()
	} else {
		req.LatitudeOrder, err = domain.ParseLatitudeOrder(latOrder)
	}
	if err != nil {
		return req, err
	}
	if lonRange == "" {
		req.LongitudeRange, err = cfg.LongitudeRangeHook()
	} else {
		req.LongitudeRange, err = domain.ParseLongitudeRange(lonRange)
	}
	return req, err
}
