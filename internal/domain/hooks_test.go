package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gridValue(step, i, j int) float64 {
	return float64(step*10000 + i*100 + j)
}

// TestReverseLatitude checks the flip, the flag and the inverse.
func TestReverseLatitude(t *testing.T) {
	src := newSeries(t, hourly(2), []float64{41, 40.75, 40.5}, []float64{-74.5, -74.25}, gridValue)
	require.Equal(t, LatitudeDescending, src.LatOrder)

	out := ReverseLatitude(src)
	assert.Equal(t, []float64{40.5, 40.75, 41}, out.Latitudes)
	assert.Equal(t, LatitudeAscending, out.LatOrder)
	assert.Equal(t, cellValue(src, VarPressure, 1, 2, 1), cellValue(out, VarPressure, 1, 0, 1))
	require.NoError(t, out.Validate())

	back := ReverseLatitude(out)
	assert.Equal(t, src.Latitudes, back.Latitudes)
	assert.Equal(t, src.Fields[VarPressure].Values, back.Fields[VarPressure].Values)
	assert.Equal(t, LatitudeDescending, back.LatOrder)
}

// TestSetLatitudeOrder checks the hook is idempotent.
func TestSetLatitudeOrder(t *testing.T) {
	src := newSeries(t, hourly(2), []float64{41, 40.5}, []float64{0}, gridValue)

	asc := SetLatitudeOrder(src, LatitudeAscending)
	assert.Equal(t, []float64{40.5, 41}, asc.Latitudes)

	again := SetLatitudeOrder(asc, LatitudeAscending)
	assert.Equal(t, asc, again)

	desc := SetLatitudeOrder(asc, LatitudeDescending)
	assert.Equal(t, src.Latitudes, desc.Latitudes)
	assert.Equal(t, src.Fields[VarUWind].Values, desc.Fields[VarUWind].Values)
}

// TestNormalizeLongitude checks remapping, reordering and idempotence.
func TestNormalizeLongitude(t *testing.T) {
	lons := []float64{0, 90, 180, 270, 359.75}
	src := newSeries(t, hourly(2), []float64{40, 41}, lons, gridValue)
	require.Equal(t, Longitude360, src.LonRange)

	once := NormalizeLongitude(src, Longitude180)
	assert.Equal(t, []float64{-180, -90, -0.25, 0, 90}, once.Longitudes)
	assert.Equal(t, Longitude180, once.LonRange)
	// -90 was 270 (source column 3).
	assert.Equal(t, cellValue(src, VarPressure, 1, 1, 3), cellValue(once, VarPressure, 1, 1, 1))
	require.NoError(t, once.Validate())

	twice := NormalizeLongitude(once, Longitude180)
	assert.Equal(t, once, twice)

	back := NormalizeLongitude(once, Longitude360)
	assert.InDeltaSlice(t, lons, back.Longitudes, 1e-9)
	assert.Equal(t, src.Fields[VarPressure].Values, back.Fields[VarPressure].Values)
}

// TestNormalizeLongitude_Seam checks longitudes a rounding error below the
// wrap point stay inside the half-open range on both passes.
func TestNormalizeLongitude_Seam(t *testing.T) {
	tests := []struct {
		name   string
		lons   []float64
		r      LongitudeRange
		want   []float64
		lo, hi float64
	}{
		{"0-360", []float64{-1e-14, 10, 20}, Longitude360, []float64{0, 10, 20}, 0, 360},
		{"-180-180", []float64{math.Nextafter(-180, math.Inf(-1)), 10, 20}, Longitude180, []float64{-180, 10, 20}, -180, 180},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newSeries(t, hourly(2), []float64{40, 41}, tt.lons, gridValue)

			once := NormalizeLongitude(src, tt.r)
			assert.Equal(t, tt.want, once.Longitudes)
			for _, lon := range once.Longitudes {
				assert.True(t, lon >= tt.lo && lon < tt.hi, "%v outside [%v, %v)", lon, tt.lo, tt.hi)
			}
			// The seam column keeps its data at position 0.
			assert.Equal(t, cellValue(src, VarPressure, 1, 1, 0), cellValue(once, VarPressure, 1, 1, 0))

			twice := NormalizeLongitude(once, tt.r)
			assert.Equal(t, once, twice)
		})
	}
}

// TestWrapLongitude covers both conventions.
func TestWrapLongitude(t *testing.T) {
	tests := []struct {
		lon  float64
		r    LongitudeRange
		want float64
	}{
		{-190, Longitude180, 170},
		{180, Longitude180, -180},
		{285.5, Longitude180, -74.5},
		{-74.5, Longitude360, 285.5},
		{360, Longitude360, 0},
		{725, Longitude360, 5},
		{-1e-14, Longitude360, 0},
		{math.Nextafter(-180, math.Inf(-1)), Longitude180, -180},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, WrapLongitude(tt.lon, tt.r), 1e-9, "lon=%v range=%s", tt.lon, tt.r)
	}
}

// TestDetectLatitudeOrder covers monotonic and broken axes.
func TestDetectLatitudeOrder(t *testing.T) {
	o, err := DetectLatitudeOrder([]float64{90, 89.75, 89.5})
	require.NoError(t, err)
	assert.Equal(t, LatitudeDescending, o)

	o, err = DetectLatitudeOrder([]float64{12})
	require.NoError(t, err)
	assert.Equal(t, LatitudeAscending, o)

	_, err = DetectLatitudeOrder([]float64{1, 3, 2})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = DetectLatitudeOrder(nil)
	require.ErrorIs(t, err, ErrInvalidInput)
}

// TestValidate_AuxShape checks auxiliary variables are bound to the axes.
func TestValidate_AuxShape(t *testing.T) {
	src := newSeries(t, hourly(3), []float64{40, 41}, []float64{0, 1}, gridValue)
	src.Aux = []AuxVariable{{Name: "lsm", Dims: []string{DimLatitude, DimLongitude}, Shape: []int{2, 3}, Data: make([]float64, 6)}}
	require.ErrorIs(t, src.Validate(), ErrShapeMismatch)

	src.Aux[0].Shape = []int{2, 2}
	require.ErrorIs(t, src.Validate(), ErrShapeMismatch)

	src.Aux[0].Data = make([]float64, 4)
	require.NoError(t, src.Validate())
}
