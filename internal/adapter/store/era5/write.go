package era5

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/surge-forcing/internal/domain"
)

// DefaultFillValue is written for missing float32 data.
const DefaultFillValue = -9999.0

// Encoding selects how fields are stored.
type Encoding int

const (
	// EncodingFloat32 stores fields as FLOAT with a _FillValue.
	EncodingFloat32 Encoding = iota + 1
	// EncodingPackedInt16 stores fields as SHORT with scale_factor and add_offset.
	EncodingPackedInt16
)

// String returns "float32" or "int16".
func (e Encoding) String() string {
	switch e {
	case EncodingFloat32:
		return "float32"
	case EncodingPackedInt16:
		return "int16"
	default:
		return "unknown"
	}
}

// ParseEncoding parses "float32" or "int16" (also "float", "short", "packed").
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "float32", "float":
		return EncodingFloat32, nil
	case "int16", "short", "packed":
		return EncodingPackedInt16, nil
	default:
		return 0, fmt.Errorf("%w: unknown encoding %q", domain.ErrInvalidInput, s)
	}
}

// Layout selects the time and coordinate conventions of the output.
type Layout int

const (
	// LayoutCF writes INT64 seconds since 1970 and DOUBLE coordinates.
	LayoutCF Layout = iota + 1
	// LayoutESMF writes INT hours since 1900 and FLOAT coordinates for
	// ESMF mesh tooling.
	LayoutESMF
)

// WriteOptions controls Write.
type WriteOptions struct {
	Encoding  Encoding
	FillValue *float64 // Used by EncodingFloat32; nil means DefaultFillValue.
	Layout    Layout
	History   string // Prepended to the history attribute when set.
}

// Fill returns a pointer to v for WriteOptions.FillValue.
func Fill(v float64) *float64 {
	return &v
}

func (o WriteOptions) withDefaults() WriteOptions {
	if o.Encoding == 0 {
		o.Encoding = EncodingFloat32
	}
	if o.FillValue == nil {
		o.FillValue = Fill(DefaultFillValue)
	}
	if o.Layout == 0 {
		o.Layout = LayoutCF
	}
	return o
}

// Write stores g at path. The file is written next to path under a
// temporary name and renamed into place only when complete.
func (s *Store) Write(path string, g *domain.GriddedTimeSeries, opts WriteOptions) (err error) {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("refusing to write invalid dataset: %w", err)
	}
	opts = opts.withDefaults()

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if err = s.writeFile(tmpPath, g, opts); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	s.invalidate(path)
	return nil
}

type pendingWrite struct {
	name string
	v    netcdf.Var
	t    domain.ValueType
	data []float64
}

//nolint:gocyclo // Define-then-write sequence over every variable.
func (s *Store) writeFile(path string, g *domain.GriddedTimeSeries, opts WriteOptions) (err error) {
	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := ds.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	dims, err := defineDims(ds, g)
	if err != nil {
		return err
	}

	var writes []pendingWrite

	timeWrite, err := defineTime(ds, dims[domain.DimTime], g.Times, opts.Layout)
	if err != nil {
		return err
	}
	writes = append(writes, timeWrite)

	for _, c := range []struct {
		dim    string
		values []float64
		attrs  domain.Attributes
	}{
		{domain.DimLatitude, g.Latitudes, g.LatitudeAttrs},
		{domain.DimLongitude, g.Longitudes, g.LongitudeAttrs},
	} {
		w, err := defineCoord(ds, dims[c.dim], c.dim, c.values, c.attrs, opts.Layout)
		if err != nil {
			return err
		}
		writes = append(writes, w)
	}

	gridDims := []netcdf.Dim{dims[domain.DimTime], dims[domain.DimLatitude], dims[domain.DimLongitude]}
	for _, name := range g.FieldNames() {
		w, err := defineField(ds, gridDims, s.names.fileName(name), g.Fields[name], opts)
		if err != nil {
			return err
		}
		writes = append(writes, w)
	}

	for _, a := range g.Aux {
		vt := a.Type
		if vt == domain.TypeUnknown {
			vt = domain.TypeFloat64
		}
		t, err := ncType(vt)
		if err != nil {
			return fmt.Errorf("variable %s: %w", a.Name, err)
		}
		auxDims := make([]netcdf.Dim, len(a.Dims))
		for i, d := range a.Dims {
			auxDims[i] = dims[d]
		}
		v, err := ds.AddVar(a.Name, t, auxDims)
		if err != nil {
			return fmt.Errorf("failed to add variable %s: %w", a.Name, err)
		}
		if err := writeAttrs(v.Attr, a.Attrs); err != nil {
			return fmt.Errorf("variable %s: %w", a.Name, err)
		}
		writes = append(writes, pendingWrite{name: a.Name, v: v, t: vt, data: a.Data})
	}

	if err := writeAttrs(ds.Attr, globalAttrs(g.Attrs, opts)); err != nil {
		return err
	}

	if err := ds.EndDef(); err != nil {
		return fmt.Errorf("failed to end define mode: %w", err)
	}

	for _, w := range writes {
		if err := writeValues(w.v, w.t, w.data); err != nil {
			return fmt.Errorf("failed to write %s: %w", w.name, err)
		}
	}
	return nil
}

// defineDims adds the canonical dimensions and any extra dimensions used
// by auxiliary variables.
func defineDims(ds netcdf.Dataset, g *domain.GriddedTimeSeries) (map[string]netcdf.Dim, error) {
	lengths := map[string]int{
		domain.DimTime:      len(g.Times),
		domain.DimLatitude:  len(g.Latitudes),
		domain.DimLongitude: len(g.Longitudes),
	}
	order := []string{domain.DimTime, domain.DimLatitude, domain.DimLongitude}
	for _, a := range g.Aux {
		for i, d := range a.Dims {
			n, ok := lengths[d]
			if !ok {
				lengths[d] = a.Shape[i]
				order = append(order, d)
				continue
			}
			if n != a.Shape[i] {
				return nil, fmt.Errorf("%w: dimension %s is %d in %s, %d elsewhere", domain.ErrShapeMismatch, d, a.Shape[i], a.Name, n)
			}
		}
	}

	dims := make(map[string]netcdf.Dim, len(order))
	for _, name := range order {
		d, err := ds.AddDim(name, uint64(lengths[name]))
		if err != nil {
			return nil, fmt.Errorf("failed to add dimension %s: %w", name, err)
		}
		dims[name] = d
	}
	return dims, nil
}

func defineTime(ds netcdf.Dataset, dim netcdf.Dim, times []int64, layout Layout) (pendingWrite, error) {
	units := domain.UnixSeconds
	vt := domain.TypeInt64
	attrs := domain.Attributes{
		domain.TextAttr("long_name", "time"),
		domain.TextAttr("standard_name", "time"),
	}
	if layout == LayoutESMF {
		units = domain.HoursSince1900
		vt = domain.TypeInt32
		// Sub-hourly axes cannot be stored as integer hours.
		for _, t := range times {
			if t%3600 != 0 {
				vt = domain.TypeFloat64
				break
			}
		}
		attrs = append(attrs,
			domain.TextAttr("units", units.String()),
			domain.TextAttr("calendar", "standard"),
			domain.TextAttr("axis", "T"),
		)
	} else {
		attrs = append(attrs,
			domain.TextAttr("units", units.String()),
			domain.TextAttr("calendar", "proleptic_gregorian"),
		)
	}

	t, _ := ncType(vt)
	v, err := ds.AddVar(domain.DimTime, t, []netcdf.Dim{dim})
	if err != nil {
		return pendingWrite{}, fmt.Errorf("failed to add time variable: %w", err)
	}
	if err := writeAttrs(v.Attr, attrs); err != nil {
		return pendingWrite{}, err
	}

	data := make([]float64, len(times))
	for i, sec := range times {
		data[i] = units.FromUnix(sec)
	}
	return pendingWrite{name: domain.DimTime, v: v, t: vt, data: data}, nil
}

func defineCoord(ds netcdf.Dataset, dim netcdf.Dim, name string, values []float64, attrs domain.Attributes, layout Layout) (pendingWrite, error) {
	units, axis := "degrees_north", "Y"
	if name == domain.DimLongitude {
		units, axis = "degrees_east", "X"
	}

	vt := domain.TypeFloat64
	if layout == LayoutESMF {
		vt = domain.TypeFloat32
		attrs = domain.Attributes{
			domain.TextAttr("units", units),
			domain.TextAttr("long_name", name),
			domain.TextAttr("standard_name", name),
			domain.TextAttr("axis", axis),
		}
	} else if attrs.Text("units") == "" {
		attrs = attrs.With(domain.TextAttr("units", units))
	}

	t, _ := ncType(vt)
	v, err := ds.AddVar(name, t, []netcdf.Dim{dim})
	if err != nil {
		return pendingWrite{}, fmt.Errorf("failed to add variable %s: %w", name, err)
	}
	if err := writeAttrs(v.Attr, attrs.Without(encodingAttrs...)); err != nil {
		return pendingWrite{}, fmt.Errorf("variable %s: %w", name, err)
	}
	return pendingWrite{name: name, v: v, t: vt, data: values}, nil
}

func defineField(ds netcdf.Dataset, dims []netcdf.Dim, fileName string, f *domain.Field, opts WriteOptions) (pendingWrite, error) {
	attrs := f.Attrs.Without(encodingAttrs...)
	var (
		vt   domain.ValueType
		data []float64
	)
	switch opts.Encoding {
	case EncodingPackedInt16:
		packed, p := domain.PackInt16(f.Values)
		vt = domain.TypeInt16
		data = make([]float64, len(packed))
		for i, x := range packed {
			data[i] = float64(x)
		}
		attrs = append(domain.Attributes{
			domain.NumberAttr("scale_factor", domain.TypeFloat64, p.ScaleFactor),
			domain.NumberAttr("add_offset", domain.TypeFloat64, p.AddOffset),
			domain.NumberAttr("_FillValue", domain.TypeInt16, float64(domain.PackedFillValue)),
			domain.NumberAttr("missing_value", domain.TypeInt16, float64(domain.PackedFillValue)),
		}, attrs...)
	default:
		vt = domain.TypeFloat32
		data = make([]float64, len(f.Values))
		for i, x := range f.Values {
			if math.IsNaN(x) {
				x = *opts.FillValue
			}
			data[i] = x
		}
		attrs = append(domain.Attributes{
			domain.NumberAttr("_FillValue", domain.TypeFloat32, *opts.FillValue),
		}, attrs...)
	}

	t, _ := ncType(vt)
	v, err := ds.AddVar(fileName, t, dims)
	if err != nil {
		return pendingWrite{}, fmt.Errorf("failed to add variable %s: %w", fileName, err)
	}
	if err := writeAttrs(v.Attr, attrs); err != nil {
		return pendingWrite{}, fmt.Errorf("variable %s: %w", fileName, err)
	}
	return pendingWrite{name: fileName, v: v, t: vt, data: data}, nil
}

func globalAttrs(attrs domain.Attributes, opts WriteOptions) domain.Attributes {
	out := attrs.Clone()
	if opts.Layout == LayoutESMF {
		out = out.With(domain.TextAttr("Conventions", "CF-1.6"))
	}
	if opts.History != "" {
		history := opts.History
		if prev := out.Text("history"); prev != "" {
			history += "\n" + prev
		}
		out = out.With(domain.TextAttr("history", history))
	}
	return out
}
