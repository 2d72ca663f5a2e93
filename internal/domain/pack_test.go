package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestPackInt16 checks the range, the fill value and the unpack error.
func TestPackInt16(t *testing.T) {
	values := []float64{96000, 98500.5, math.NaN(), 101325, 104000}
	packed, p := PackInt16(values)

	assert.InDelta(t, 100000, p.AddOffset, 1e-9)
	assert.InDelta(t, 8000.0/65533, p.ScaleFactor, 1e-12)
	assert.Equal(t, PackedFillValue, packed[2])
	assert.Equal(t, int16(-32766), packed[0])
	assert.Equal(t, int16(32766), packed[4])

	for i, x := range values {
		if math.IsNaN(x) {
			assert.True(t, math.IsNaN(p.Unpack(packed[i])))
			continue
		}
		assert.InDelta(t, x, p.Unpack(packed[i]), p.ScaleFactor)
	}
}

// TestPackInt16_Constant checks a field without spread packs with scale 1.
func TestPackInt16_Constant(t *testing.T) {
	packed, p := PackInt16([]float64{5, 5, 5})
	assert.Equal(t, Packing{ScaleFactor: 1, AddOffset: 5}, p)
	assert.Equal(t, []int16{0, 0, 0}, packed)

	packed, p = PackInt16([]float64{math.NaN()})
	assert.Equal(t, Packing{ScaleFactor: 1}, p)
	assert.Equal(t, []int16{PackedFillValue}, packed)
}
