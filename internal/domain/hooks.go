package domain

import (
	"math"
	"sort"
)

// ReverseLatitude flips the latitude axis and every field along it.
// Applying it twice restores the input.
func ReverseLatitude(g *GriddedTimeSeries) *GriddedTimeSeries {
	out := g.gather(DimLatitude, reversedIndex(len(g.Latitudes)))
	switch g.LatOrder {
	case LatitudeAscending:
		out.LatOrder = LatitudeDescending
	case LatitudeDescending:
		out.LatOrder = LatitudeAscending
	}
	if len(out.Latitudes) == 1 {
		out.LatOrder = LatitudeAscending
	}
	return out
}

// SetLatitudeOrder returns g with its latitude axis in the requested order.
func SetLatitudeOrder(g *GriddedTimeSeries, order LatitudeOrder) *GriddedTimeSeries {
	if g.LatOrder == order || len(g.Latitudes) < 2 {
		return g
	}
	return ReverseLatitude(g)
}

// WrapLongitude maps lon into the given convention.
func WrapLongitude(lon float64, r LongitudeRange) float64 {
	if r == Longitude180 {
		return floorMod(lon+180, 360) - 180
	}
	return floorMod(lon, 360)
}

// NormalizeLongitude remaps every longitude into r and reorders the
// longitude axis (and every field along it) ascending.
func NormalizeLongitude(g *GriddedTimeSeries, r LongitudeRange) *GriddedTimeSeries {
	wrapped := make([]float64, len(g.Longitudes))
	for i, lon := range g.Longitudes {
		wrapped[i] = WrapLongitude(lon, r)
	}
	perm := make([]int, len(wrapped))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool { return wrapped[perm[a]] < wrapped[perm[b]] })

	out := g.gather(DimLongitude, perm)
	out.Longitudes = pick(wrapped, perm)
	out.LonRange = r
	return out
}

// floorMod returns x mod m in [0, m).
func floorMod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r < 0 {
		r += m
	}
	// A tiny negative remainder rounds up to m.
	if r >= m {
		r = 0
	}
	return r
}
