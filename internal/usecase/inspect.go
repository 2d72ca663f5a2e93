package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.ngs.io/surge-forcing/internal/adapter/interp"
	"go.ngs.io/surge-forcing/internal/adapter/store/era5"
	"go.ngs.io/surge-forcing/internal/domain"
)

// InspectRequest selects a dataset and an optional region.
type InspectRequest struct {
	Name   string
	Region *domain.Bounds
	Step   int // Timestep used for wind speed statistics.
}

// InspectResponse is a dataset summary.
type InspectResponse struct {
	Name    string            `json:"name"`
	Region  *domain.Bounds    `json:"region,omitempty"`
	Summary domain.Summary    `json:"summary"`
	Attrs   map[string]string `json:"attributes,omitempty"`
}

// ProbePoint is one timestep of a point time series.
type ProbePoint struct {
	Time        string   `json:"time"`
	PressurePa  *float64 `json:"pressure_pa"`
	UWindMS     *float64 `json:"u_wind_ms"`
	VWindMS     *float64 `json:"v_wind_ms"`
	WindSpeedMS *float64 `json:"wind_speed_ms"`
}

// ProbeResponse is a point time series.
type ProbeResponse struct {
	Name   string       `json:"name"`
	Lat    float64      `json:"lat"`
	Lon    float64      `json:"lon"`
	Points []ProbePoint `json:"points"`
}

// InspectUseCase summarizes and probes datasets.
type InspectUseCase struct {
	deps Deps
}

// NewInspectUseCase creates an inspect use case.
func NewInspectUseCase(deps Deps) *InspectUseCase {
	return &InspectUseCase{deps: deps.withDefaults()}
}

// List returns the datasets available under the configured root.
func (uc *InspectUseCase) List(_ context.Context) ([]era5.DatasetInfo, error) {
	dir := uc.deps.Root
	if dir == "" {
		dir = "."
	}
	return uc.deps.Store.List(dir)
}

func (uc *InspectUseCase) load(name string) (*domain.GriddedTimeSeries, error) {
	path, err := uc.deps.resolve(name)
	if err != nil {
		return nil, err
	}
	g, err := uc.deps.Store.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	uc.deps.Metrics.DatasetsLoaded.Inc()
	return g, nil
}

// Summary describes a dataset, restricted to req.Region when set.
func (uc *InspectUseCase) Summary(_ context.Context, req InspectRequest) (*InspectResponse, error) {
	g, err := uc.load(req.Name)
	if err != nil {
		return nil, err
	}
	if req.Region != nil {
		if g, err = domain.Subset(g, *req.Region); err != nil {
			return nil, err
		}
	}
	s, err := domain.Summarize(g, req.Step)
	if err != nil {
		return nil, err
	}

	resp := &InspectResponse{Name: req.Name, Region: req.Region, Summary: s}
	for _, a := range g.Attrs {
		if a.Type == domain.TypeText {
			if resp.Attrs == nil {
				resp.Attrs = map[string]string{}
			}
			resp.Attrs[a.Name] = a.Text
		}
	}
	return resp, nil
}

// Probe interpolates the forcing fields at (lat, lon) for every timestep.
// Fields the dataset lacks are reported as null.
func (uc *InspectUseCase) Probe(_ context.Context, name string, lat, lon float64) (*ProbeResponse, error) {
	if lat < -90 || lat > 90 {
		return nil, fmt.Errorf("%w: latitude must be between -90 and 90", domain.ErrInvalidInput)
	}
	g, err := uc.load(name)
	if err != nil {
		return nil, err
	}
	p, err := interp.NewSeriesProbe(g, lat, lon)
	if err != nil {
		return nil, err
	}

	points := make([]ProbePoint, g.NumTimes())
	for i, sec := range p.Times() {
		points[i].Time = time.Unix(sec, 0).UTC().Format(time.RFC3339)
	}

	if _, ok := g.Field(domain.VarPressure); ok {
		pressure, err := p.Field(domain.VarPressure)
		if err != nil {
			return nil, err
		}
		for i, x := range pressure {
			points[i].PressurePa = finite(x)
		}
	}
	_, okU := g.Field(domain.VarUWind)
	_, okV := g.Field(domain.VarVWind)
	if okU && okV {
		winds, err := p.Wind()
		if err != nil {
			return nil, err
		}
		for i, w := range winds {
			points[i].UWindMS = finite(w.U)
			points[i].VWindMS = finite(w.V)
			points[i].WindSpeedMS = finite(w.Speed())
		}
	}

	return &ProbeResponse{Name: name, Lat: lat, Lon: lon, Points: points}, nil
}

// finite returns nil for NaN so that missing values encode as JSON null.
func finite(x float64) *float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	return &x
}
