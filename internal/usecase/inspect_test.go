package usecase

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/surge-forcing/internal/domain"
)

func TestInspectUseCase_Summary(t *testing.T) {
	deps, ms, _ := testDeps(t)
	ms.put(filepath.Join(deps.Root, "era5.nc"), hourlySeries(sandyStart, 3))
	uc := NewInspectUseCase(deps)

	resp, err := uc.Summary(context.Background(), InspectRequest{Name: "era5.nc"})
	require.NoError(t, err)
	s := resp.Summary
	assert.Equal(t, 3, s.Times)
	assert.Equal(t, "1h0m0s", s.Interval)
	assert.Equal(t, "descending", s.LatitudeOrder)
	assert.Equal(t, "0-360", s.LongitudeRange)
	assert.Equal(t, "CF-1.7", resp.Attrs["Conventions"])
	require.NotNil(t, s.WindSpeed)
	assert.InDelta(t, math.Sqrt2, s.WindSpeed.Max, 1e-12)

	// The north-west corner only, given in -180..180 longitudes.
	region := &domain.Bounds{LatMin: 40.5, LatMax: 41, LonMin: -75.5, LonMax: -74.5}
	resp, err = uc.Summary(context.Background(), InspectRequest{Name: "era5.nc", Region: region, Step: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Summary.Latitude.Count)
	assert.Equal(t, 1, resp.Summary.Longitude.Count)
	for _, f := range resp.Summary.Fields {
		if f.Name == domain.VarPressure {
			assert.Equal(t, 100000.0, f.Min)
			assert.Equal(t, 100020.0, f.Max)
			assert.InDelta(t, 100010.0, f.Mean, 1e-9)
		}
	}

	_, err = uc.Summary(context.Background(), InspectRequest{Name: "era5.nc", Step: 3})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInspectUseCase_List(t *testing.T) {
	deps, ms, _ := testDeps(t)
	ms.put(filepath.Join(deps.Root, "b.nc"), hourlySeries(sandyStart, 2))
	ms.put(filepath.Join(deps.Root, "sandy", "a.nc"), hourlySeries(sandyStart, 2))

	infos, err := NewInspectUseCase(deps).List(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "b.nc", infos[0].Name)
	assert.Equal(t, "sandy/a.nc", infos[1].Name)
}

func TestInspectUseCase_Probe(t *testing.T) {
	deps, ms, _ := testDeps(t)
	ms.put(filepath.Join(deps.Root, "era5.nc"), hourlySeries(sandyStart, 3))
	uc := NewInspectUseCase(deps)

	resp, err := uc.Probe(context.Background(), "era5.nc", 40.5, -74.5)
	require.NoError(t, err)
	require.Len(t, resp.Points, 3)
	assert.Equal(t, "2012-10-29T00:00:00Z", resp.Points[0].Time)

	// Centre of the cell: mean of the four corners.
	require.NotNil(t, resp.Points[1].PressurePa)
	assert.InDelta(t, 100011.5, *resp.Points[1].PressurePa, 1e-9)
	require.NotNil(t, resp.Points[1].WindSpeedMS)
	assert.InDelta(t, math.Sqrt2, *resp.Points[1].WindSpeedMS, 1e-12)

	_, err = uc.Probe(context.Background(), "era5.nc", 45, -74.5)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Probe(context.Background(), "era5.nc", 95, 0)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInspectUseCase_ProbeMissingValues(t *testing.T) {
	deps, ms, _ := testDeps(t)
	g := hourlySeries(sandyStart, 2)
	g.Fields[domain.VarPressure].Values[0] = math.NaN()
	ms.put(filepath.Join(deps.Root, "era5.nc"), g)

	resp, err := NewInspectUseCase(deps).Probe(context.Background(), "era5.nc", 40.5, 285.5)
	require.NoError(t, err)
	assert.Nil(t, resp.Points[0].PressurePa)
	assert.NotNil(t, resp.Points[1].PressurePa)
}
