// Command inspect prints a summary of an ERA5 file, optionally restricted
// to a region, or the time series at one point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"go.ngs.io/surge-forcing/internal/adapter/store/era5"
	"go.ngs.io/surge-forcing/internal/config"
	"go.ngs.io/surge-forcing/internal/domain"
	"go.ngs.io/surge-forcing/internal/observability"
	"go.ngs.io/surge-forcing/internal/usecase"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (default: $CONFIG_FILE)")
	in := flag.String("in", "", "NetCDF file to inspect")
	region := flag.String("region", "", "Region as lat_min,lat_max,lon_min,lon_max (e.g. 36,36.4,-76,-75.6)")
	step := flag.Int("step", 0, "Timestep used for wind speed statistics")
	probe := flag.String("probe", "", "Print the time series at lat,lon instead of a summary")
	asJSON := flag.Bool("json", false, "Print JSON")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect -in era5.nc [-region lat_min,lat_max,lon_min,lon_max] [-step N] [-probe lat,lon] [-json]")
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

	store := era5.NewStore(era5.Names{Pressure: cfg.VarPressure, UWind: cfg.VarUWind, VWind: cfg.VarVWind}, logger)
	uc := usecase.NewInspectUseCase(usecase.Deps{Store: store, Logger: logger})
	ctx := context.Background()

	if *probe != "" {
		pt, err := parseFloats(*probe, 2)
		if err != nil {
			logger.Fatal("invalid -probe", zap.Error(err))
		}
		resp, err := uc.Probe(ctx, *in, pt[0], pt[1])
		if err != nil {
			logger.Fatal("probe failed", zap.Error(err))
		}
		if *asJSON {
			printJSON(resp)
			return
		}
		printProbe(os.Stdout, resp)
		return
	}

	req := usecase.InspectRequest{Name: *in, Step: *step}
	if *region != "" {
		b, err := parseFloats(*region, 4)
		if err != nil {
			logger.Fatal("invalid -region", zap.Error(err))
		}
		req.Region = &domain.Bounds{LatMin: b[0], LatMax: b[1], LonMin: b[2], LonMax: b[3]}
	}
	resp, err := uc.Summary(ctx, req)
	if err != nil {
		logger.Fatal("inspect failed", zap.Error(err))
	}
	if *asJSON {
		printJSON(resp)
		return
	}
	printSummary(os.Stdout, resp)
}

// parseFloats parses exactly n comma-separated numbers.
func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma-separated values, got %d", n, len(parts))
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func printSummary(w io.Writer, resp *usecase.InspectResponse) {
	s := resp.Summary
	fmt.Fprintf(w, "%s\n", resp.Name)
	fmt.Fprintf(w, "  time:      %d steps, %s to %s", s.Times, s.Start.Format("2006-01-02 15:04"), s.End.Format("2006-01-02 15:04"))
	if s.Interval != "" {
		fmt.Fprintf(w, " every %s", s.Interval)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  latitude:  %d points, %.4f to %.4f (%s, %.4f°)\n",
		s.Latitude.Count, s.Latitude.Min, s.Latitude.Max, s.LatitudeOrder, s.Latitude.Resolution)
	fmt.Fprintf(w, "  longitude: %d points, %.4f to %.4f (%s, %.4f°)\n",
		s.Longitude.Count, s.Longitude.Min, s.Longitude.Max, s.LongitudeRange, s.Longitude.Resolution)
	if resp.Region != nil {
		r := resp.Region
		fmt.Fprintf(w, "  region:    %.4f..%.4f N, %.4f..%.4f E\n", r.LatMin, r.LatMax, r.LonMin, r.LonMax)
	}
	fmt.Fprintln(w)
	for _, f := range append(s.Fields, windSpeed(s)...) {
		fmt.Fprintf(w, "  %-26s min %12.2f  max %12.2f  mean %12.2f  %s", f.Name, f.Min, f.Max, f.Mean, f.Units)
		if f.Missing > 0 {
			fmt.Fprintf(w, "  (%d missing)", f.Missing)
		}
		fmt.Fprintln(w)
	}
}

func windSpeed(s domain.Summary) []domain.FieldStats {
	if s.WindSpeed == nil {
		return nil
	}
	ws := *s.WindSpeed
	ws.Name = fmt.Sprintf("wind_speed[step %d]", s.Step)
	return []domain.FieldStats{ws}
}

func printProbe(w io.Writer, resp *usecase.ProbeResponse) {
	fmt.Fprintf(w, "%s at %.4f, %.4f\n", resp.Name, resp.Lat, resp.Lon)
	fmt.Fprintf(w, "%-22s %12s %10s %10s %10s\n", "time", "msl_pa", "u10", "v10", "speed")
	for _, p := range resp.Points {
		fmt.Fprintf(w, "%-22s %12s %10s %10s %10s\n", p.Time,
			format(p.PressurePa, 1), format(p.UWindMS, 2), format(p.VWindMS, 2), format(p.WindSpeedMS, 2))
	}
}

func format(v *float64, prec int) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}
