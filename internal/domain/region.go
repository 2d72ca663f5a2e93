package domain

import "fmt"

// Bounds is a latitude/longitude box in degrees. LonMin may exceed LonMax
// for a box crossing the longitude seam of the dataset.
type Bounds struct {
	LatMin float64 `json:"lat_min"`
	LatMax float64 `json:"lat_max"`
	LonMin float64 `json:"lon_min"`
	LonMax float64 `json:"lon_max"`
}

// Validate checks the latitude range.
func (b Bounds) Validate() error {
	if b.LatMin > b.LatMax {
		return fmt.Errorf("%w: lat_min %.4f exceeds lat_max %.4f", ErrInvalidInput, b.LatMin, b.LatMax)
	}
	if b.LatMin < -90 || b.LatMax > 90 {
		return fmt.Errorf("%w: latitude bounds outside [-90, 90]", ErrInvalidInput)
	}
	return nil
}

// Subset returns the part of g inside b. Axis order is preserved.
func Subset(g *GriddedTimeSeries, b Bounds) (*GriddedTimeSeries, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	var latIdx []int
	for i, lat := range g.Latitudes {
		if lat >= b.LatMin && lat <= b.LatMax {
			latIdx = append(latIdx, i)
		}
	}

	lo := WrapLongitude(b.LonMin, g.LonRange)
	hi := WrapLongitude(b.LonMax, g.LonRange)
	if b.LonMax-b.LonMin >= 360 {
		lo, hi = -360, 360
	}
	var lonIdx []int
	for i, lon := range g.Longitudes {
		in := lon >= lo && lon <= hi
		if lo > hi {
			in = lon >= lo || lon <= hi
		}
		if in {
			lonIdx = append(lonIdx, i)
		}
	}

	if len(latIdx) == 0 || len(lonIdx) == 0 {
		return nil, fmt.Errorf("%w: region contains no grid points", ErrInvalidInput)
	}
	return g.gather(DimLatitude, latIdx).gather(DimLongitude, lonIdx), nil
}
