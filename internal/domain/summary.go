package domain

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// AxisSummary describes one coordinate axis.
type AxisSummary struct {
	Count      int     `json:"count"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Resolution float64 `json:"resolution"`
}

// FieldStats are NaN-ignoring statistics of one field.
type FieldStats struct {
	Name    string  `json:"name"`
	Units   string  `json:"units,omitempty"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
	Valid   int     `json:"valid"`
	Missing int     `json:"missing"`
}

// Summary describes a dataset for inspection.
type Summary struct {
	Times          int          `json:"times"`
	Start          time.Time    `json:"start"`
	End            time.Time    `json:"end"`
	Interval       string       `json:"interval,omitempty"`
	Latitude       AxisSummary  `json:"latitude"`
	Longitude      AxisSummary  `json:"longitude"`
	LatitudeOrder  string       `json:"latitude_order"`
	LongitudeRange string       `json:"longitude_range"`
	Fields         []FieldStats `json:"fields"`
	Step           int          `json:"step"`
	WindSpeed      *FieldStats  `json:"wind_speed,omitempty"`
}

// Summarize computes a Summary. Wind speed statistics are taken at the
// given step when both wind components are present.
func Summarize(g *GriddedTimeSeries, step int) (Summary, error) {
	if g.NumTimes() == 0 {
		return Summary{}, fmt.Errorf("%w: dataset has no timesteps", ErrInvalidInput)
	}
	if step < 0 || step >= g.NumTimes() {
		return Summary{}, fmt.Errorf("%w: step %d outside [0, %d)", ErrInvalidInput, step, g.NumTimes())
	}

	s := Summary{
		Times:          g.NumTimes(),
		Start:          g.Time(0),
		End:            g.Time(g.NumTimes() - 1),
		Latitude:       summarizeAxis(g.Latitudes),
		Longitude:      summarizeAxis(g.Longitudes),
		LatitudeOrder:  g.LatOrder.String(),
		LongitudeRange: g.LonRange.String(),
		Step:           step,
	}
	if g.NumTimes() > 1 {
		s.Interval = (time.Duration(g.Times[1]-g.Times[0]) * time.Second).String()
	}

	for _, name := range g.FieldNames() {
		f := g.Fields[name]
		fs := FieldStatistics(f.Values)
		fs.Name = name
		fs.Units = f.Attrs.Text("units")
		s.Fields = append(s.Fields, fs)
	}

	u, okU := g.Fields[VarUWind]
	v, okV := g.Fields[VarVWind]
	if okU && okV {
		cells := g.NumCells()
		speed := make([]float64, cells)
		for c := 0; c < cells; c++ {
			speed[c] = math.Hypot(u.Values[step*cells+c], v.Values[step*cells+c])
		}
		ws := FieldStatistics(speed)
		ws.Name = "wind_speed"
		ws.Units = "m s**-1"
		s.WindSpeed = &ws
	}
	return s, nil
}

// FieldStatistics computes min, max and mean over the non-NaN values.
// All three are zero when no value is valid.
func FieldStatistics(values []float64) FieldStats {
	valid := make([]float64, 0, len(values))
	for _, x := range values {
		if !math.IsNaN(x) {
			valid = append(valid, x)
		}
	}
	fs := FieldStats{Valid: len(valid), Missing: len(values) - len(valid)}
	if len(valid) == 0 {
		return fs
	}
	fs.Min = floats.Min(valid)
	fs.Max = floats.Max(valid)
	fs.Mean = stat.Mean(valid, nil)
	return fs
}

func summarizeAxis(values []float64) AxisSummary {
	a := AxisSummary{Count: len(values)}
	if len(values) == 0 {
		return a
	}
	a.Min = floats.Min(values)
	a.Max = floats.Max(values)
	if len(values) > 1 {
		a.Resolution = math.Abs(values[1] - values[0])
	}
	return a
}
