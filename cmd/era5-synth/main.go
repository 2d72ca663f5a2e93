// Command era5-synth writes a synthetic ERA5-like storm file and a matching
// wind observation table for demos and tests.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"go.ngs.io/surge-forcing/internal/adapter/store/era5"
	"go.ngs.io/surge-forcing/internal/adapter/store/obs"
	"go.ngs.io/surge-forcing/internal/domain"
	"go.ngs.io/surge-forcing/internal/observability"
)

func main() {
	outDir := flag.String("out", "./data", "Output directory")
	name := flag.String("name", "era5_synthetic", "Base name of the generated files")
	startStr := flag.String("start", "2012-10-29T00:00:00Z", "First timestep (RFC3339)")
	hours := flag.Int("hours", 48, "Number of hours after the first timestep")
	latMin := flag.Float64("lat-min", 35.0, "Minimum latitude")
	latMax := flag.Float64("lat-max", 42.0, "Maximum latitude")
	lonMin := flag.Float64("lon-min", -78.0, "Minimum longitude")
	lonMax := flag.Float64("lon-max", -70.0, "Maximum longitude")
	resolution := flag.Float64("resolution", 0.25, "Grid resolution in degrees")
	lonRangeStr := flag.String("lon-range", "0-360", "Longitude convention: -180-180 or 0-360")
	encodingStr := flag.String("encoding", "int16", "Field encoding: float32 or int16")
	stationLat := flag.Float64("station-lat", 40.7006, "Observation station latitude (The Battery, NY)")
	stationLon := flag.Float64("station-lon", -74.0142, "Observation station longitude")
	logLevel := flag.String("log-level", "INFO", "DEBUG, INFO, WARN or ERROR")
	flag.Parse()

	logger, err := observability.NewLogger(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = observability.Flush(logger) }()

	start, err := time.Parse(time.RFC3339, *startStr)
	if err != nil {
		logger.Fatal("invalid -start", zap.Error(err))
	}
	lonRange, err := domain.ParseLongitudeRange(*lonRangeStr)
	if err != nil {
		logger.Fatal("invalid -lon-range", zap.Error(err))
	}
	encoding, err := era5.ParseEncoding(*encodingStr)
	if err != nil {
		logger.Fatal("invalid -encoding", zap.Error(err))
	}
	if *hours < 1 || *resolution <= 0 || *latMin >= *latMax || *lonMin >= *lonMax {
		logger.Fatal("invalid grid or period",
			zap.Int("hours", *hours), zap.Float64("resolution", *resolution))
	}

	grid := Grid{LatMin: *latMin, LatMax: *latMax, LonMin: *lonMin, LonMax: *lonMax, Resolution: *resolution}
	// A Sandy-like landfall track from the south-east towards New Jersey.
	storm := Storm{
		StartLat:        grid.LatMin + 0.2*(grid.LatMax-grid.LatMin),
		StartLon:        grid.LonMax - 0.1*(grid.LonMax-grid.LonMin),
		EndLat:          grid.LatMin + 0.65*(grid.LatMax-grid.LatMin),
		EndLon:          grid.LonMin + 0.35*(grid.LonMax-grid.LonMin),
		CentralPressure: 94600,
		AmbientPressure: 101300,
		RadiusMaxWindKm: 150,
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Fatal("failed to create output directory", zap.Error(err))
	}

	g := Synthesize(grid, storm, start.UTC(), *hours, lonRange)
	ncPath := filepath.Join(*outDir, *name+".nc")
	store := era5.NewStore(era5.DefaultNames(), logger)
	if err := store.Write(ncPath, g, era5.WriteOptions{Encoding: encoding}); err != nil {
		logger.Fatal("failed to write dataset", zap.Error(err))
	}

	observations := StationObservations(storm, start.UTC(), *hours, *stationLat, *stationLon)
	obsPath := filepath.Join(*outDir, *name+"_obs.txt")
	if err := writeObservations(obsPath, observations); err != nil {
		logger.Fatal("failed to write observations", zap.Error(err))
	}

	logger.Info("generated synthetic storm",
		zap.String("dataset", ncPath),
		zap.String("observations", obsPath),
		zap.Int("times", g.NumTimes()),
		zap.Int("latitudes", len(g.Latitudes)),
		zap.Int("longitudes", len(g.Longitudes)),
		zap.Int("observation_count", len(observations)),
	)
}

func writeObservations(path string, observations []domain.WindObservation) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return obs.Write(f, observations)
}
