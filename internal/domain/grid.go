package domain

import (
	"fmt"
	"sort"
	"time"
)

// Canonical field names used by the blender. Stores map on-disk variable
// names (u10, v10, msl) onto these.
const (
	VarPressure = "mean_sea_level_pressure"
	VarUWind    = "u_wind_10m"
	VarVWind    = "v_wind_10m"
)

// Canonical dimension names.
const (
	DimTime      = "time"
	DimLatitude  = "latitude"
	DimLongitude = "longitude"
)

// RequiredFields are the fields a blend source must carry.
var RequiredFields = []string{VarPressure, VarUWind, VarVWind}

// LatitudeOrder declares the direction of the latitude axis.
type LatitudeOrder int

const (
	// LatitudeAscending runs south to north.
	LatitudeAscending LatitudeOrder = iota + 1
	// LatitudeDescending runs north to south (ERA5 native).
	LatitudeDescending
)

// String returns "ascending" or "descending".
func (o LatitudeOrder) String() string {
	switch o {
	case LatitudeAscending:
		return "ascending"
	case LatitudeDescending:
		return "descending"
	default:
		return "unknown"
	}
}

// ParseLatitudeOrder parses "ascending" or "descending".
func ParseLatitudeOrder(s string) (LatitudeOrder, error) {
	switch s {
	case "ascending", "asc":
		return LatitudeAscending, nil
	case "descending", "desc":
		return LatitudeDescending, nil
	default:
		return 0, fmt.Errorf("%w: unknown latitude order %q", ErrInvalidInput, s)
	}
}

// DetectLatitudeOrder inspects a latitude axis once at ingestion.
// A single-point axis is reported as ascending.
func DetectLatitudeOrder(lats []float64) (LatitudeOrder, error) {
	if len(lats) == 0 {
		return 0, fmt.Errorf("%w: empty latitude axis", ErrInvalidInput)
	}
	if len(lats) == 1 || isStrictlyIncreasing(lats) {
		return LatitudeAscending, nil
	}
	if isStrictlyDecreasing(lats) {
		return LatitudeDescending, nil
	}
	return 0, fmt.Errorf("%w: latitude axis is not monotonic", ErrInvalidInput)
}

// LongitudeRange declares the longitude convention of a dataset.
type LongitudeRange int

const (
	// Longitude180 covers [-180, 180).
	Longitude180 LongitudeRange = iota + 1
	// Longitude360 covers [0, 360).
	Longitude360
)

// String returns "-180-180" or "0-360".
func (r LongitudeRange) String() string {
	switch r {
	case Longitude180:
		return "-180-180"
	case Longitude360:
		return "0-360"
	default:
		return "unknown"
	}
}

// ParseLongitudeRange parses "-180-180" / "180" or "0-360" / "360".
func ParseLongitudeRange(s string) (LongitudeRange, error) {
	switch s {
	case "-180-180", "180":
		return Longitude180, nil
	case "0-360", "360":
		return Longitude360, nil
	default:
		return 0, fmt.Errorf("%w: unknown longitude range %q", ErrInvalidInput, s)
	}
}

// DetectLongitudeRange reports Longitude360 when any longitude exceeds 180.
func DetectLongitudeRange(lons []float64) LongitudeRange {
	for _, lon := range lons {
		if lon > 180 {
			return Longitude360
		}
	}
	return Longitude180
}

// Field is a gridded variable indexed by (time, latitude, longitude),
// flattened row-major. Missing values are NaN.
type Field struct {
	Name   string
	Attrs  Attributes
	Values []float64
}

func (f *Field) clone() *Field {
	return &Field{
		Name:   f.Name,
		Attrs:  f.Attrs.Clone(),
		Values: append([]float64(nil), f.Values...),
	}
}

// AuxVariable is any other variable of a dataset. It is carried through
// transforms untouched except along the canonical dimensions it uses.
type AuxVariable struct {
	Name  string
	Dims  []string
	Shape []int
	Type  ValueType
	Attrs Attributes
	Data  []float64
}

func (a AuxVariable) clone() AuxVariable {
	return AuxVariable{
		Name:  a.Name,
		Dims:  append([]string(nil), a.Dims...),
		Shape: append([]int(nil), a.Shape...),
		Type:  a.Type,
		Attrs: a.Attrs.Clone(),
		Data:  append([]float64(nil), a.Data...),
	}
}

// DimIndex returns the position of dim in the variable's dimensions, or -1.
func (a AuxVariable) DimIndex(dim string) int {
	for i, d := range a.Dims {
		if d == dim {
			return i
		}
	}
	return -1
}

// GriddedTimeSeries is a gridded meteorological dataset on a regular
// latitude/longitude grid.
type GriddedTimeSeries struct {
	Times      []int64 // Seconds since 1970-01-01 UTC.
	Latitudes  []float64
	Longitudes []float64
	LatOrder   LatitudeOrder
	LonRange   LongitudeRange

	Fields map[string]*Field
	Aux    []AuxVariable

	LatitudeAttrs  Attributes
	LongitudeAttrs Attributes
	Attrs          Attributes
}

// NumTimes returns the length of the time axis.
func (g *GriddedTimeSeries) NumTimes() int { return len(g.Times) }

// NumCells returns the number of grid cells per timestep.
func (g *GriddedTimeSeries) NumCells() int { return len(g.Latitudes) * len(g.Longitudes) }

// Time returns timestep i as a UTC time.
func (g *GriddedTimeSeries) Time(i int) time.Time {
	return time.Unix(g.Times[i], 0).UTC()
}

// Field returns the named field.
func (g *GriddedTimeSeries) Field(name string) (*Field, bool) {
	f, ok := g.Fields[name]
	return f, ok
}

// FieldNames returns the field names in sorted order.
func (g *GriddedTimeSeries) FieldNames() []string {
	names := make([]string, 0, len(g.Fields))
	for name := range g.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the axis and shape invariants.
func (g *GriddedTimeSeries) Validate() error {
	if len(g.Latitudes) == 0 || len(g.Longitudes) == 0 {
		return fmt.Errorf("%w: empty latitude or longitude axis", ErrInvalidInput)
	}
	order, err := DetectLatitudeOrder(g.Latitudes)
	if err != nil {
		return err
	}
	if len(g.Latitudes) > 1 && order != g.LatOrder {
		return fmt.Errorf("%w: latitude axis is %s but flagged %s", ErrInvalidInput, order, g.LatOrder)
	}
	for i := 1; i < len(g.Times); i++ {
		if g.Times[i] <= g.Times[i-1] {
			return fmt.Errorf("%w: time axis is not strictly increasing at step %d", ErrInvalidInput, i)
		}
	}

	want := len(g.Times) * g.NumCells()
	for _, name := range g.FieldNames() {
		f := g.Fields[name]
		if len(f.Values) != want {
			return fmt.Errorf("%w: field %s has %d values, expected %d (%d×%d×%d)",
				ErrShapeMismatch, name, len(f.Values), want, len(g.Times), len(g.Latitudes), len(g.Longitudes))
		}
	}

	axisLen := map[string]int{
		DimTime:      len(g.Times),
		DimLatitude:  len(g.Latitudes),
		DimLongitude: len(g.Longitudes),
	}
	for _, a := range g.Aux {
		if len(a.Dims) != len(a.Shape) {
			return fmt.Errorf("%w: variable %s has %d dims but shape %v", ErrShapeMismatch, a.Name, len(a.Dims), a.Shape)
		}
		if product(a.Shape) != len(a.Data) {
			return fmt.Errorf("%w: variable %s has %d values for shape %v", ErrShapeMismatch, a.Name, len(a.Data), a.Shape)
		}
		for i, d := range a.Dims {
			if n, ok := axisLen[d]; ok && a.Shape[i] != n {
				return fmt.Errorf("%w: variable %s dimension %s is %d, axis is %d", ErrShapeMismatch, a.Name, d, a.Shape[i], n)
			}
		}
	}
	return nil
}

// Clone returns a deep copy.
func (g *GriddedTimeSeries) Clone() *GriddedTimeSeries {
	out := g.shallow()
	for name, f := range g.Fields {
		out.Fields[name] = f.clone()
	}
	for _, a := range g.Aux {
		out.Aux = append(out.Aux, a.clone())
	}
	return out
}

// Truncate keeps the first k timesteps.
func (g *GriddedTimeSeries) Truncate(k int) *GriddedTimeSeries {
	if k > len(g.Times) {
		k = len(g.Times)
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	return g.gather(DimTime, idx)
}

// shallow copies axes and attributes but leaves Fields empty and Aux nil.
func (g *GriddedTimeSeries) shallow() *GriddedTimeSeries {
	return &GriddedTimeSeries{
		Times:          append([]int64(nil), g.Times...),
		Latitudes:      append([]float64(nil), g.Latitudes...),
		Longitudes:     append([]float64(nil), g.Longitudes...),
		LatOrder:       g.LatOrder,
		LonRange:       g.LonRange,
		Fields:         make(map[string]*Field, len(g.Fields)),
		LatitudeAttrs:  g.LatitudeAttrs.Clone(),
		LongitudeAttrs: g.LongitudeAttrs.Clone(),
		Attrs:          g.Attrs.Clone(),
	}
}

// gather selects idx along one canonical dimension of every field, every
// auxiliary variable using that dimension and the coordinate axis itself.
func (g *GriddedTimeSeries) gather(dim string, idx []int) *GriddedTimeSeries {
	out := g.shallow()
	var axis int
	switch dim {
	case DimTime:
		axis = 0
		out.Times = make([]int64, len(idx))
		for k, i := range idx {
			out.Times[k] = g.Times[i]
		}
	case DimLatitude:
		axis = 1
		out.Latitudes = pick(g.Latitudes, idx)
	case DimLongitude:
		axis = 2
		out.Longitudes = pick(g.Longitudes, idx)
	default:
		panic("domain: gather on unknown dimension " + dim)
	}

	shape := []int{len(g.Times), len(g.Latitudes), len(g.Longitudes)}
	for name, f := range g.Fields {
		values, _ := gatherAxis(f.Values, shape, axis, idx)
		out.Fields[name] = &Field{Name: f.Name, Attrs: f.Attrs.Clone(), Values: values}
	}
	for _, a := range g.Aux {
		k := a.DimIndex(dim)
		if k < 0 {
			out.Aux = append(out.Aux, a.clone())
			continue
		}
		data, newShape := gatherAxis(a.Data, a.Shape, k, idx)
		c := a.clone()
		c.Data, c.Shape = data, newShape
		out.Aux = append(out.Aux, c)
	}
	return out
}
