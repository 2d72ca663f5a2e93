// Package main provides the surge-forcing HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"go.ngs.io/surge-forcing/internal/adapter/store/era5"
	"go.ngs.io/surge-forcing/internal/config"
	httpHandler "go.ngs.io/surge-forcing/internal/http"
	"go.ngs.io/surge-forcing/internal/observability"
	"go.ngs.io/surge-forcing/internal/usecase"
)

const version = "0.1.0"

func main() {
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", "", "YAML config file (default: $CONFIG_FILE)")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}
	if *showVersion {
		fmt.Printf("surge-forcing server version %s\n", version)
		return
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

	defaults, err := blendDefaults(cfg)
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	store := era5.NewStore(era5.Names{Pressure: cfg.VarPressure, UWind: cfg.VarUWind, VWind: cfg.VarVWind}, logger)
	clock := clockwork.NewRealClock()
	deps := usecase.Deps{
		Store:   store,
		Logger:  logger,
		Metrics: metrics,
		Clock:   clock,
		Root:    cfg.DataDir,
	}

	var limiter *rate.Limiter
	if cfg.BlendRateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.BlendRateLimit), cfg.BlendRateBurst)
	}

	gin.SetMode(gin.ReleaseMode)
	handler := httpHandler.NewHandler(
		usecase.NewBlendUseCase(deps, cfg.BatchConcurrency),
		usecase.NewInspectUseCase(deps),
		defaults,
		clock,
	)
	router := httpHandler.SetupRouter(handler, httpHandler.RouterOptions{
		Logger:         logger,
		Metrics:        metrics,
		Gatherer:       registry,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		BlendLimiter:   limiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("data_dir", cfg.DataDir),
			zap.String("policy", defaults.Policy.String()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func blendDefaults(cfg *config.Config) (httpHandler.BlendDefaults, error) {
	d := httpHandler.BlendDefaults{
		StepCount: cfg.BlendStepCount,
		FillValue: cfg.FillValue,
	}
	var err error
	if d.Policy, err = cfg.WindPolicy(); err != nil {
		return d, err
	}
	if d.Encoding, err = era5.ParseEncoding(cfg.OutputEncoding); err != nil {
		return d, err
	}
	if d.LatitudeOrder, err = cfg.LatitudeOrderHook(); err != nil {
		return d, err
	}
	if d.LongitudeRange, err = cfg.LongitudeRangeHook(); err != nil {
		return d, err
	}
	return d, nil
}

func printUsage() {
	fmt.Printf("surge-forcing server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  server [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -config PATH   YAML config file")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                    Server port (default: 8080)")
	fmt.Println("  DATA_DIR                NetCDF and observation directory (default: ./data)")
	fmt.Println("  LOG_LEVEL               DEBUG, INFO, WARN or ERROR (default: INFO)")
	fmt.Println("  BLEND_POLICY            nearest or pairwise (default: pairwise)")
	fmt.Println("  BLEND_STEP_COUNT        Source steps to blend, 0 for all (default: 0)")
	fmt.Println("  OUTPUT_ENCODING         float32 or int16 (default: float32)")
	fmt.Println("  FILL_VALUE              float32 fill value (default: -9999)")
	fmt.Println("  LATITUDE_ORDER          ascending or descending (default: as read)")
	fmt.Println("  LONGITUDE_RANGE         -180-180 or 0-360 (default: as read)")
	fmt.Println("  VAR_PRESSURE            Pressure variable name (default: msl)")
	fmt.Println("  VAR_U_WIND              U wind variable name (default: u10)")
	fmt.Println("  VAR_V_WIND              V wind variable name (default: v10)")
	fmt.Println("  BLEND_RATE_LIMIT_RPS    Blend requests per second, 0 disables (default: 1)")
	fmt.Println("  BLEND_RATE_LIMIT_BURST  Blend request burst (default: 4)")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET  /health                       Health check")
	fmt.Println("  GET  /metrics                      Prometheus metrics")
	fmt.Println("  GET  /v1/datasets                  List NetCDF files")
	fmt.Println("  GET  /v1/datasets/:name            Dataset summary (optional region and step)")
	fmt.Println("  GET  /v1/datasets/:name/probe      Point time series (lat, lon)")
	fmt.Println("  POST /v1/blend                     Blend a source with observed winds")
	fmt.Println()
}
