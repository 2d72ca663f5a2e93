package era5

import (
	"fmt"
	"math"
	"os"

	"github.com/fhs/go-netcdf/netcdf"
	"go.uber.org/zap"

	"go.ngs.io/surge-forcing/internal/domain"
)

// Coordinate variable names tried in order.
var (
	timeVarNames = []string{"time", "valid_time"}
	latVarNames  = []string{"latitude", "lat"}
	lonVarNames  = []string{"longitude", "lon"}
)

// Attributes consumed by decoding; they are rebuilt on write.
var encodingAttrs = []string{"_FillValue", "missing_value", "scale_factor", "add_offset"}

// Read loads a gridded dataset. Variables shaped (time, latitude, longitude)
// become fields with fill values decoded to NaN and packing undone; all
// other variables are carried as auxiliary data.
//
//nolint:gocyclo // Coordinate discovery and per-variable classification.
func (s *Store) Read(path string) (*domain.GriddedTimeSeries, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file %s: %w", path, err)
	}
	defer func() { _ = nc.Close() }()

	names, vars, err := listVars(nc)
	if err != nil {
		return nil, err
	}

	timeName, ok := firstPresent(vars, timeVarNames)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no time variable (tried: %v)", domain.ErrInvalidInput, path, timeVarNames)
	}
	latName, ok := firstPresent(vars, latVarNames)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no latitude variable (tried: %v)", domain.ErrInvalidInput, path, latVarNames)
	}
	lonName, ok := firstPresent(vars, lonVarNames)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no longitude variable (tried: %v)", domain.ErrInvalidInput, path, lonVarNames)
	}

	// Map the file's dimension names onto canonical ones via the
	// coordinate variables.
	alias := map[string]string{}
	for canonical, varName := range map[string]string{
		domain.DimTime:      timeName,
		domain.DimLatitude:  latName,
		domain.DimLongitude: lonName,
	} {
		dims, err := dimNames(vars[varName])
		if err != nil {
			return nil, err
		}
		if len(dims) != 1 {
			return nil, fmt.Errorf("%w: coordinate %s must be 1D, got %dD", domain.ErrInvalidInput, varName, len(dims))
		}
		alias[dims[0]] = canonical
	}

	times, err := readTimes(vars[timeName])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", timeName, err)
	}
	lats, _, err := readValues(vars[latName])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", latName, err)
	}
	lons, _, err := readValues(vars[lonName])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", lonName, err)
	}
	order, err := domain.DetectLatitudeOrder(lats)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	g := &domain.GriddedTimeSeries{
		Times:      times,
		Latitudes:  lats,
		Longitudes: lons,
		LatOrder:   order,
		LonRange:   domain.DetectLongitudeRange(lons),
		Fields:     map[string]*domain.Field{},
	}
	if g.LatitudeAttrs, _, err = readAttrs(vars[latName]); err != nil {
		return nil, err
	}
	if g.LongitudeAttrs, _, err = readAttrs(vars[lonName]); err != nil {
		return nil, err
	}

	for _, name := range names {
		if name == timeName || name == latName || name == lonName {
			continue
		}
		v := vars[name]
		fileDims, err := dimNames(v)
		if err != nil {
			return nil, err
		}
		dims := make([]string, len(fileDims))
		for i, d := range fileDims {
			dims[i] = d
			if c, ok := alias[d]; ok {
				dims[i] = c
			}
		}

		if isGridded(dims) {
			f, err := readField(v, s.names.canonical(name))
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", name, err)
			}
			g.Fields[f.Name] = f
			continue
		}

		aux, ok, err := readAux(v, name, dims)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if !ok {
			s.logger.Warn("skipping variable with unsupported type",
				zap.String("path", path),
				zap.String("variable", name),
			)
			continue
		}
		g.Aux = append(g.Aux, aux)
	}

	attrs, skipped, err := readAttrs(nc)
	if err != nil {
		return nil, err
	}
	g.Attrs = attrs
	if len(skipped) > 0 {
		s.logger.Debug("skipped global attributes", zap.String("path", path), zap.Strings("attributes", skipped))
	}

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dataset %s: %w", path, err)
	}
	return g, nil
}

func listVars(nc netcdf.Dataset) ([]string, map[string]netcdf.Var, error) {
	n, err := nc.NVars()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count variables: %w", err)
	}
	names := make([]string, 0, n)
	vars := make(map[string]netcdf.Var, n)
	for i := 0; i < n; i++ {
		v := nc.VarN(i)
		name, err := v.Name()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get name of variable %d: %w", i, err)
		}
		names = append(names, name)
		vars[name] = v
	}
	return names, vars, nil
}

func firstPresent(vars map[string]netcdf.Var, candidates []string) (string, bool) {
	for _, name := range candidates {
		if _, ok := vars[name]; ok {
			return name, true
		}
	}
	return "", false
}

func dimNames(v netcdf.Var) ([]string, error) {
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	out := make([]string, len(dims))
	for i, d := range dims {
		if out[i], err = d.Name(); err != nil {
			return nil, fmt.Errorf("failed to get dimension name: %w", err)
		}
	}
	return out, nil
}

func isGridded(dims []string) bool {
	return len(dims) == 3 &&
		dims[0] == domain.DimTime &&
		dims[1] == domain.DimLatitude &&
		dims[2] == domain.DimLongitude
}

// readTimes converts a time coordinate to seconds since 1970-01-01.
func readTimes(v netcdf.Var) ([]int64, error) {
	attrs, _, err := readAttrs(v)
	if err != nil {
		return nil, err
	}
	units := domain.UnixSeconds
	if u := attrs.Text("units"); u != "" {
		if units, err = domain.ParseTimeUnits(u); err != nil {
			return nil, err
		}
	}

	values, raw, err := readTimeValues(v)
	if err != nil {
		return nil, err
	}
	if raw != nil {
		step := int64(units.Step.Seconds())
		out := make([]int64, len(raw))
		for i, x := range raw {
			out[i] = units.Epoch.Unix() + x*step
		}
		return out, nil
	}
	out := make([]int64, len(values))
	for i, x := range values {
		out[i] = units.ToUnix(x)
	}
	return out, nil
}

// readField reads a gridded variable, mapping fill values to NaN and
// applying scale_factor and add_offset.
func readField(v netcdf.Var, name string) (*domain.Field, error) {
	values, _, err := readValues(v)
	if err != nil {
		return nil, err
	}
	attrs, _, err := readAttrs(v)
	if err != nil {
		return nil, err
	}

	var fills []float64
	for _, n := range []string{"_FillValue", "missing_value"} {
		if a, ok := attrs.Get(n); ok && a.Type != domain.TypeText {
			fills = append(fills, a.Values...)
		}
	}
	scale, hasScale := attrs.Number("scale_factor")
	offset, _ := attrs.Number("add_offset")
	if !hasScale {
		scale = 1
	}

	for i, x := range values {
		if isFill(x, fills) {
			values[i] = math.NaN()
			continue
		}
		values[i] = x*scale + offset
	}

	return &domain.Field{
		Name:   name,
		Attrs:  attrs.Without(encodingAttrs...),
		Values: values,
	}, nil
}

func isFill(x float64, fills []float64) bool {
	if math.IsNaN(x) {
		return true
	}
	for _, f := range fills {
		if x == f {
			return true
		}
	}
	return false
}

// readAux reads a non-gridded variable as-is. ok is false when its type is
// not carried by the store.
func readAux(v netcdf.Var, name string, dims []string) (domain.AuxVariable, bool, error) {
	t, err := v.Type()
	if err != nil {
		return domain.AuxVariable{}, false, fmt.Errorf("failed to get var type: %w", err)
	}
	if vt := valueType(t); vt == domain.TypeUnknown || vt == domain.TypeText {
		return domain.AuxVariable{}, false, nil
	}

	data, vt, err := readValues(v)
	if err != nil {
		return domain.AuxVariable{}, false, err
	}
	_, shape, err := varLen(v)
	if err != nil {
		return domain.AuxVariable{}, false, err
	}
	attrs, _, err := readAttrs(v)
	if err != nil {
		return domain.AuxVariable{}, false, err
	}
	return domain.AuxVariable{
		Name:  name,
		Dims:  dims,
		Shape: shape,
		Type:  vt,
		Attrs: attrs,
		Data:  data,
	}, true, nil
}
