package interp

import (
	"fmt"
	"math"

	"go.ngs.io/surge-forcing/internal/domain"
)

// SeriesProbe interpolates fields of one dataset at a fixed point.
type SeriesProbe struct {
	data *domain.GriddedTimeSeries
	x, y float64
}

// NewSeriesProbe prepares g for probing at (lat, lon). The longitude is
// mapped into the dataset's range and the grid is reordered ascending.
func NewSeriesProbe(g *domain.GriddedTimeSeries, lat, lon float64) (*SeriesProbe, error) {
	if len(g.Latitudes) < 2 || len(g.Longitudes) < 2 {
		return nil, fmt.Errorf("%w: probing needs at least a 2x2 grid", domain.ErrInvalidInput)
	}
	asc := domain.SetLatitudeOrder(g, domain.LatitudeAscending)
	asc = domain.NormalizeLongitude(asc, g.LonRange)
	return &SeriesProbe{
		data: padSeam(asc),
		x:    domain.WrapLongitude(lon, g.LonRange),
		y:    lat,
	}, nil
}

// padSeam repeats the first longitude column 360 degrees east when the
// axis covers the globe, so points between the last and first columns can
// be interpolated. Other grids are returned unchanged.
func padSeam(g *domain.GriddedTimeSeries) *domain.GriddedTimeSeries {
	lons := g.Longitudes
	n := len(lons)
	step := lons[1] - lons[0]
	if math.Abs(lons[n-1]+step-(lons[0]+360)) > step*1e-3 {
		return g
	}
	out := &domain.GriddedTimeSeries{
		Times:      g.Times,
		Latitudes:  g.Latitudes,
		Longitudes: append(append(make([]float64, 0, n+1), lons...), lons[0]+360),
		LatOrder:   g.LatOrder,
		LonRange:   g.LonRange,
		Fields:     make(map[string]*domain.Field, len(g.Fields)),
	}
	rows := g.NumTimes() * len(g.Latitudes)
	for name, f := range g.Fields {
		values := make([]float64, 0, rows*(n+1))
		for r := 0; r < rows; r++ {
			row := f.Values[r*n : (r+1)*n]
			values = append(values, row...)
			values = append(values, row[0])
		}
		out.Fields[name] = &domain.Field{Name: f.Name, Attrs: f.Attrs, Values: values}
	}
	return out
}

// grid returns timestep step of field as a Grid2D sharing the field's memory.
func (p *SeriesProbe) grid(f *domain.Field, step int) *Grid2D {
	cells := p.data.NumCells()
	return &Grid2D{
		X:      p.data.Longitudes,
		Y:      p.data.Latitudes,
		Values: f.Values[step*cells : (step+1)*cells],
	}
}

// Field returns the interpolated value of the named field at every timestep.
func (p *SeriesProbe) Field(name string) ([]float64, error) {
	f, ok := p.data.Field(name)
	if !ok {
		return nil, fmt.Errorf("%w: no field %s", domain.ErrInvalidInput, name)
	}
	out := make([]float64, p.data.NumTimes())
	for step := range out {
		v, err := p.grid(f, step).InterpolateAt(p.x, p.y)
		if err != nil {
			return nil, err
		}
		out[step] = v
	}
	return out, nil
}

// Wind returns the interpolated wind components at every timestep.
func (p *SeriesProbe) Wind() ([]domain.Wind, error) {
	u, okU := p.data.Field(domain.VarUWind)
	v, okV := p.data.Field(domain.VarVWind)
	if !okU || !okV {
		return nil, fmt.Errorf("%w: dataset has no wind components", domain.ErrInvalidInput)
	}
	out := make([]domain.Wind, p.data.NumTimes())
	for step := range out {
		uu, vv, err := InterpolateBoth(p.grid(u, step), p.grid(v, step), p.x, p.y)
		if err != nil {
			return nil, err
		}
		out[step] = domain.Wind{U: uu, V: vv}
	}
	return out, nil
}

// Times returns the dataset's time axis.
func (p *SeriesProbe) Times() []int64 {
	return p.data.Times
}
