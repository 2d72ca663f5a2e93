package domain

import (
	"math"
	"time"
)

// MaxWindSpeedMS is the upper bound for a plausible 10 m wind speed.
const MaxWindSpeedMS = 100.0

// WindObservation is one record of a point wind series.
type WindObservation struct {
	Index        int       // Position in the source file, zero based.
	Time         time.Time // Zero when the timestamp could not be parsed.
	SpeedMS      float64
	DirectionDeg float64 // Meteorological: direction the wind blows from.
}

// Valid reports whether speed is in [0, 100) and direction in [0, 360].
func (o WindObservation) Valid() bool {
	if math.IsNaN(o.SpeedMS) || math.IsNaN(o.DirectionDeg) {
		return false
	}
	return o.SpeedMS >= 0 && o.SpeedMS < MaxWindSpeedMS &&
		o.DirectionDeg >= 0 && o.DirectionDeg <= 360
}

// FilterValidObservations drops invalid records and returns the kept records
// in their original order together with the number dropped.
func FilterValidObservations(obs []WindObservation) ([]WindObservation, int) {
	kept := make([]WindObservation, 0, len(obs))
	for _, o := range obs {
		if o.Valid() {
			kept = append(kept, o)
		}
	}
	return kept, len(obs) - len(kept)
}

// Wind is a pair of eastward (U) and northward (V) components in m/s.
type Wind struct {
	U, V float64
}

// Speed returns the magnitude of the vector.
func (w Wind) Speed() float64 {
	return math.Hypot(w.U, w.V)
}

// WindComponents converts speed and meteorological direction into (u, v).
// Speed is clamped to [0, 100] and direction to [0, 360] first.
func WindComponents(speed, direction float64) Wind {
	s := clamp(speed, 0, MaxWindSpeedMS)
	d := clamp(direction, 0, 360) * math.Pi / 180
	return Wind{
		U: -s * math.Sin(d),
		V: -s * math.Cos(d),
	}
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
