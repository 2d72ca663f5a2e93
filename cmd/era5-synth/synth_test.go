package main

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"go.ngs.io/surge-forcing/internal/domain"
)

var (
	testStart = time.Date(2012, 10, 29, 0, 0, 0, 0, time.UTC)
	testGrid  = Grid{LatMin: 38, LatMax: 42, LonMin: -76, LonMax: -72, Resolution: 0.5}
	testStorm = Storm{
		StartLat: 39, StartLon: -73, EndLat: 40, EndLon: -75,
		CentralPressure: 94600, AmbientPressure: 101300, RadiusMaxWindKm: 100,
	}
)

func TestSynthesize(t *testing.T) {
	g := Synthesize(testGrid, testStorm, testStart, 6, domain.Longitude360)
	require.NoError(t, g.Validate())

	assert.Equal(t, 7, g.NumTimes())
	assert.Equal(t, 9, len(g.Latitudes))
	assert.Equal(t, 9, len(g.Longitudes))
	assert.Equal(t, 42.0, g.Latitudes[0])
	assert.Equal(t, 284.0, g.Longitudes[0])
	assert.Equal(t, int64(1351468800), g.Times[0])

	cells := g.NumCells()
	msl := g.Fields[domain.VarPressure].Values[:cells]
	// The grid point at the storm centre (39N, 73W) holds the central pressure.
	centre := 6*len(g.Longitudes) + 6
	assert.Equal(t, 39.0, g.Latitudes[6])
	assert.Equal(t, 287.0, g.Longitudes[6])
	assert.Equal(t, 94600.0, msl[centre])
	assert.Equal(t, centre, floats.MinIdx(msl))
	assert.Less(t, floats.Max(msl), 101300.0)
}

func TestStorm_Rotation(t *testing.T) {
	// East of a northern-hemisphere low the wind blows from the south.
	_, w := testStorm.at(39, -72, 39, -73)
	assert.InDelta(t, 0, w.U, 1e-9)
	assert.Greater(t, w.V, 0.0)
	assert.InDelta(t, 180, DirectionOf(w), 1e-9)
}

func TestDirectionOf(t *testing.T) {
	for _, dir := range []float64{0, 45, 90, 180, 270, 359} {
		w := domain.WindComponents(10, dir)
		assert.InDelta(t, dir, DirectionOf(w), 1e-9, "direction %v", dir)
	}
	assert.Equal(t, 0.0, DirectionOf(domain.Wind{}))
}

func TestStationObservations(t *testing.T) {
	observations := StationObservations(testStorm, testStart, 6, 40.7, -74.0)
	require.Len(t, observations, 13)
	valid, dropped := domain.FilterValidObservations(observations)
	assert.Len(t, valid, 13)
	assert.Zero(t, dropped)
	assert.Equal(t, testStart.Add(6*time.Hour), observations[12].Time)
	for _, o := range observations {
		assert.False(t, math.IsNaN(o.SpeedMS))
	}
}
