package domain

import "testing"

// hourly returns n timestamps one hour apart starting at 2012-10-29T00:00Z.
func hourly(n int) []int64 {
	const start = 1351468800
	times := make([]int64, n)
	for i := range times {
		times[i] = start + int64(i)*3600
	}
	return times
}

// newSeries builds an ERA5-like dataset with msl/u10/v10 fields filled by fn.
func newSeries(t *testing.T, times []int64, lats, lons []float64, fn func(step, i, j int) float64) *GriddedTimeSeries {
	t.Helper()
	order, err := DetectLatitudeOrder(lats)
	if err != nil {
		t.Fatalf("fixture latitudes: %v", err)
	}
	g := &GriddedTimeSeries{
		Times:      times,
		Latitudes:  lats,
		Longitudes: lons,
		LatOrder:   order,
		LonRange:   DetectLongitudeRange(lons),
		Fields:     map[string]*Field{},
		LatitudeAttrs: Attributes{
			TextAttr("units", "degrees_north"),
		},
		LongitudeAttrs: Attributes{
			TextAttr("units", "degrees_east"),
		},
		Attrs: Attributes{
			TextAttr("Conventions", "CF-1.7"),
			TextAttr("institution", "European Centre for Medium-Range Weather Forecasts"),
		},
	}
	for _, name := range RequiredFields {
		values := make([]float64, 0, len(times)*len(lats)*len(lons))
		for s := range times {
			for i := range lats {
				for j := range lons {
					values = append(values, fn(s, i, j))
				}
			}
		}
		g.Fields[name] = &Field{
			Name:   name,
			Attrs:  Attributes{TextAttr("units", "Pa")},
			Values: values,
		}
	}
	return g
}

func cellValue(g *GriddedTimeSeries, field string, step, i, j int) float64 {
	nlat, nlon := len(g.Latitudes), len(g.Longitudes)
	return g.Fields[field].Values[(step*nlat+i)*nlon+j]
}

func observations(pairs ...[2]float64) []WindObservation {
	obs := make([]WindObservation, len(pairs))
	for i, p := range pairs {
		obs[i] = WindObservation{Index: i, SpeedMS: p[0], DirectionDeg: p[1]}
	}
	return obs
}
