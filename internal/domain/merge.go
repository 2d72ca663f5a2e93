package domain

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
)

// ConcatTime joins datasets along time. All parts must share the same grid,
// fields and auxiliary variables. The result is sorted by time and repeated
// timestamps keep their first occurrence.
func ConcatTime(parts ...*GriddedTimeSeries) (*GriddedTimeSeries, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: nothing to merge", ErrInvalidInput)
	}
	first := parts[0]
	for i, p := range parts {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("part %d: %w", i, err)
		}
		if i == 0 {
			continue
		}
		if !floats.Equal(p.Latitudes, first.Latitudes) || !floats.Equal(p.Longitudes, first.Longitudes) {
			return nil, fmt.Errorf("%w: part %d has a different grid", ErrShapeMismatch, i)
		}
		if !sameNames(p.FieldNames(), first.FieldNames()) {
			return nil, fmt.Errorf("%w: part %d has fields %v, expected %v", ErrShapeMismatch, i, p.FieldNames(), first.FieldNames())
		}
	}

	joined := first.shallow()
	joined.Times = nil
	for _, p := range parts {
		joined.Times = append(joined.Times, p.Times...)
	}
	for name, f := range first.Fields {
		values := make([]float64, 0, len(joined.Times)*first.NumCells())
		for _, p := range parts {
			values = append(values, p.Fields[name].Values...)
		}
		joined.Fields[name] = &Field{Name: f.Name, Attrs: f.Attrs.Clone(), Values: values}
	}
	for _, a := range first.Aux {
		merged, err := concatAux(a, parts)
		if err != nil {
			return nil, err
		}
		joined.Aux = append(joined.Aux, merged)
	}

	order := make([]int, len(joined.Times))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return joined.Times[order[a]] < joined.Times[order[b]] })
	keep := order[:0:0]
	for k, i := range order {
		if k > 0 && joined.Times[i] == joined.Times[order[k-1]] {
			continue
		}
		keep = append(keep, i)
	}

	out := joined.gather(DimTime, keep)
	if n := out.NumTimes(); n > 0 {
		out.Attrs = out.Attrs.
			With(TextAttr("start_date", out.Time(0).Format(time.RFC3339))).
			With(TextAttr("stop_date", out.Time(n-1).Format(time.RFC3339)))
	}
	return out, nil
}

func concatAux(a AuxVariable, parts []*GriddedTimeSeries) (AuxVariable, error) {
	k := a.DimIndex(DimTime)
	if k < 0 {
		return a.clone(), nil
	}
	if k != 0 {
		return AuxVariable{}, fmt.Errorf("%w: variable %s has time as dimension %d", ErrShapeMismatch, a.Name, k)
	}
	out := a.clone()
	out.Data = nil
	out.Shape[0] = 0
	for i, p := range parts {
		var found *AuxVariable
		for j := range p.Aux {
			if p.Aux[j].Name == a.Name {
				found = &p.Aux[j]
				break
			}
		}
		if found == nil || found.DimIndex(DimTime) != 0 {
			return AuxVariable{}, fmt.Errorf("%w: part %d lacks time variable %s", ErrShapeMismatch, i, a.Name)
		}
		out.Data = append(out.Data, found.Data...)
		out.Shape[0] += found.Shape[0]
	}
	return out, nil
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
