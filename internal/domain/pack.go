package domain

import "math"

// PackedFillValue marks missing data in int16-packed fields.
const PackedFillValue int16 = -32767

// Packing holds the CF linear packing parameters: x = packed*ScaleFactor + AddOffset.
type Packing struct {
	ScaleFactor float64
	AddOffset   float64
}

// PackInt16 packs values into int16 around their midrange. NaN becomes
// PackedFillValue. A field without spread packs with scale 1.
func PackInt16(values []float64) ([]int16, Packing) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, x := range values {
		if math.IsNaN(x) {
			continue
		}
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}

	p := Packing{ScaleFactor: 1}
	if !math.IsInf(lo, 1) {
		p.AddOffset = (hi + lo) / 2
		// 65533 steps keep the extremes at ±32766, clear of the fill value.
		if hi > lo {
			p.ScaleFactor = (hi - lo) / 65533
		}
	}

	out := make([]int16, len(values))
	for i, x := range values {
		if math.IsNaN(x) {
			out[i] = PackedFillValue
			continue
		}
		out[i] = int16(math.Trunc((x - p.AddOffset) / p.ScaleFactor))
	}
	return out, p
}

// Unpack restores a packed value; PackedFillValue maps to NaN.
func (p Packing) Unpack(v int16) float64 {
	if v == PackedFillValue {
		return math.NaN()
	}
	return float64(v)*p.ScaleFactor + p.AddOffset
}
