package domain

import (
	"fmt"
	"strings"
)

// WindPolicy selects how observations are assigned to the densified axis.
type WindPolicy int

const (
	// WindNearest uses observation t mod L at output step t.
	WindNearest WindPolicy = iota + 1
	// WindPairwiseAveraged averages observations t mod L and (t+1) mod L at
	// odd output steps before the last one.
	WindPairwiseAveraged
)

// String returns "nearest" or "pairwise".
func (p WindPolicy) String() string {
	switch p {
	case WindNearest:
		return "nearest"
	case WindPairwiseAveraged:
		return "pairwise"
	default:
		return fmt.Sprintf("WindPolicy(%d)", int(p))
	}
}

// ParseWindPolicy parses a policy name as used in config and on the CLI.
func ParseWindPolicy(s string) (WindPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nearest":
		return WindNearest, nil
	case "pairwise", "pairwise-averaged", "pairwise_averaged":
		return WindPairwiseAveraged, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedPolicy, s)
	}
}

func (p WindPolicy) validate() error {
	if p != WindNearest && p != WindPairwiseAveraged {
		return fmt.Errorf("%w: %s", ErrUnsupportedPolicy, p)
	}
	return nil
}

// BlendOptions controls a single Blend call.
type BlendOptions struct {
	// StepCount truncates the source to its first StepCount steps.
	// Zero means the full length; values above the source length are clamped.
	StepCount int
	Policy    WindPolicy
}

// Blend doubles the temporal resolution of source. Pressure is averaged
// between neighbouring steps, the wind components are replaced by the
// observation series broadcast over the grid, and everything else is
// carried along. The result has exactly 2N-1 timesteps.
func Blend(source *GriddedTimeSeries, observations []WindObservation, opts BlendOptions) (*GriddedTimeSeries, error) {
	if err := opts.Policy.validate(); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("%w: nil source", ErrInvalidInput)
	}
	if opts.StepCount < 0 {
		return nil, fmt.Errorf("%w: negative step count %d", ErrInvalidInput, opts.StepCount)
	}
	for _, name := range RequiredFields {
		if _, ok := source.Fields[name]; !ok {
			return nil, fmt.Errorf("%w: source is missing variable %s", ErrInvalidInput, name)
		}
	}
	if err := source.Validate(); err != nil {
		return nil, err
	}
	valid, _ := FilterValidObservations(observations)
	if len(valid) == 0 {
		return nil, fmt.Errorf("%w: no valid wind observations", ErrInvalidInput)
	}

	src := source
	if opts.StepCount > 0 && opts.StepCount < source.NumTimes() {
		src = source.Truncate(opts.StepCount)
	}
	n := src.NumTimes()
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 timesteps, got %d", ErrInvalidInput, n)
	}
	m := 2*n - 1
	cells := src.NumCells()

	hold := make([]int, m)
	for t := range hold {
		hold[t] = t / 2
	}
	out := src.gather(DimTime, hold)
	out.Times = DensifyTimes(src.Times)

	pressure := out.Fields[VarPressure]
	pressure.Values = UpsampleLinear(src.Fields[VarPressure].Values, n, cells)

	winds := AssignWind(valid, m, opts.Policy)
	u := out.Fields[VarUWind]
	v := out.Fields[VarVWind]
	u.Values = broadcast(winds, cells, func(w Wind) float64 { return w.U })
	v.Values = broadcast(winds, cells, func(w Wind) float64 { return w.V })

	return out, nil
}

// DensifyTimes inserts the midpoint between every pair of consecutive times.
func DensifyTimes(times []int64) []int64 {
	n := len(times)
	if n == 0 {
		return nil
	}
	out := make([]int64, 2*n-1)
	for i := 0; i < n-1; i++ {
		out[2*i] = times[i]
		out[2*i+1] = times[i] + (times[i+1]-times[i])/2
	}
	out[2*n-2] = times[n-1]
	return out
}

// UpsampleLinear doubles the time axis of a (time, cells) array. Even steps
// are copied and odd steps are the mean of their neighbours; the last source
// step is copied onto the last output step.
func UpsampleLinear(values []float64, steps, cells int) []float64 {
	m := 2*steps - 1
	out := make([]float64, m*cells)
	for i := 0; i < steps-1; i++ {
		cur := values[i*cells : (i+1)*cells]
		next := values[(i+1)*cells : (i+2)*cells]
		copy(out[2*i*cells:], cur)
		mid := out[(2*i+1)*cells : (2*i+2)*cells]
		for c := range mid {
			mid[c] = (cur[c] + next[c]) / 2
		}
	}
	copy(out[(m-1)*cells:], values[(steps-1)*cells:steps*cells])
	return out
}

// AssignWind returns the wind vector for each of m output steps, reusing the
// observations cyclically.
func AssignWind(obs []WindObservation, m int, policy WindPolicy) []Wind {
	comps := make([]Wind, len(obs))
	for i, o := range obs {
		comps[i] = WindComponents(o.SpeedMS, o.DirectionDeg)
	}
	l := len(comps)
	out := make([]Wind, m)
	for t := range out {
		w := comps[t%l]
		if policy == WindPairwiseAveraged && t%2 == 1 && t < m-1 {
			next := comps[(t+1)%l]
			w = Wind{U: (w.U + next.U) / 2, V: (w.V + next.V) / 2}
		}
		out[t] = w
	}
	return out
}

func broadcast(winds []Wind, cells int, component func(Wind) float64) []float64 {
	out := make([]float64, len(winds)*cells)
	for t, w := range winds {
		x := component(w)
		row := out[t*cells : (t+1)*cells]
		for c := range row {
			row[c] = x
		}
	}
	return out
}
