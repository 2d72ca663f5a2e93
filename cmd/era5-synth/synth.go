package main

import (
	"math"
	"time"

	"go.ngs.io/surge-forcing/internal/domain"
)

// Grid defines the geographic bounds and resolution.
type Grid struct {
	LatMin     float64
	LatMax     float64
	LonMin     float64
	LonMax     float64
	Resolution float64 // degrees
}

// Storm is a parametric pressure low moving along a straight track.
type Storm struct {
	StartLat, StartLon float64
	EndLat, EndLon     float64
	CentralPressure    float64 // Pa
	AmbientPressure    float64 // Pa
	RadiusMaxWindKm    float64
}

const (
	hollandB   = 1.5
	airDensity = 1.15 // kg m-3
	// surfaceFactor reduces gradient winds to 10 m.
	surfaceFactor = 0.7
)

// centre returns the storm centre after fraction f of the track.
func (s Storm) centre(f float64) (lat, lon float64) {
	return s.StartLat + f*(s.EndLat-s.StartLat), s.StartLon + f*(s.EndLon-s.StartLon)
}

// at returns the pressure and 10 m wind at (lat, lon) for a storm centred
// at (clat, clon), using a Holland pressure profile and cyclonic rotation.
func (s Storm) at(lat, lon, clat, clon float64) (float64, domain.Wind) {
	dx := wrapDegrees(lon-clon) * 111.32 * math.Cos(lat*math.Pi/180)
	dy := (lat - clat) * 110.57
	r := math.Hypot(dx, dy)

	dp := s.AmbientPressure - s.CentralPressure
	if r < 1e-6 {
		return s.CentralPressure, domain.Wind{}
	}
	ratio := math.Pow(s.RadiusMaxWindKm/r, hollandB)
	pressure := s.CentralPressure + dp*math.Exp(-ratio)

	speed := surfaceFactor * math.Sqrt(hollandB*dp/airDensity*ratio*math.Exp(-ratio))
	// Counter-clockwise in the northern hemisphere.
	sign := 1.0
	if clat < 0 {
		sign = -1
	}
	return pressure, domain.Wind{
		U: -sign * speed * dy / r,
		V: sign * speed * dx / r,
	}
}

// wrapDegrees maps a longitude difference into [-180, 180).
func wrapDegrees(d float64) float64 {
	return math.Mod(math.Mod(d+180, 360)+360, 360) - 180
}

// Synthesize builds an hourly ERA5-like dataset of the storm on the grid:
// descending latitudes, longitudes in the requested range.
func Synthesize(grid Grid, storm Storm, start time.Time, hours int, lonRange domain.LongitudeRange) *domain.GriddedTimeSeries {
	nLat := int(math.Round((grid.LatMax-grid.LatMin)/grid.Resolution)) + 1
	nLon := int(math.Round((grid.LonMax-grid.LonMin)/grid.Resolution)) + 1

	lats := make([]float64, nLat)
	for i := range lats {
		lats[i] = grid.LatMax - float64(i)*grid.Resolution
	}
	lons := make([]float64, nLon)
	for j := range lons {
		lons[j] = domain.WrapLongitude(grid.LonMin+float64(j)*grid.Resolution, lonRange)
	}

	steps := hours + 1
	times := make([]int64, steps)
	for t := range times {
		times[t] = start.Add(time.Duration(t) * time.Hour).Unix()
	}

	cells := nLat * nLon
	msl := make([]float64, steps*cells)
	u10 := make([]float64, steps*cells)
	v10 := make([]float64, steps*cells)
	for t := 0; t < steps; t++ {
		clat, clon := storm.centre(fraction(t, steps))
		for i, lat := range lats {
			for j, lon := range lons {
				p, w := storm.at(lat, lon, clat, clon)
				k := t*cells + i*nLon + j
				msl[k], u10[k], v10[k] = p, w.U, w.V
			}
		}
	}

	g := &domain.GriddedTimeSeries{
		Times:      times,
		Latitudes:  lats,
		Longitudes: lons,
		LatOrder:   domain.LatitudeDescending,
		LonRange:   lonRange,
		Fields: map[string]*domain.Field{
			domain.VarPressure: {Name: domain.VarPressure, Values: msl, Attrs: domain.Attributes{
				domain.TextAttr("long_name", "Mean sea level pressure"),
				domain.TextAttr("units", "Pa"),
				domain.TextAttr("standard_name", "air_pressure_at_mean_sea_level"),
			}},
			domain.VarUWind: {Name: domain.VarUWind, Values: u10, Attrs: domain.Attributes{
				domain.TextAttr("long_name", "10 metre U wind component"),
				domain.TextAttr("units", "m s**-1"),
			}},
			domain.VarVWind: {Name: domain.VarVWind, Values: v10, Attrs: domain.Attributes{
				domain.TextAttr("long_name", "10 metre V wind component"),
				domain.TextAttr("units", "m s**-1"),
			}},
		},
		Aux: []domain.AuxVariable{{
			Name:  "number",
			Type:  domain.TypeInt64,
			Attrs: domain.Attributes{domain.TextAttr("long_name", "ensemble member numerical id")},
			Data:  []float64{0},
		}},
		LatitudeAttrs:  domain.Attributes{domain.TextAttr("units", "degrees_north"), domain.TextAttr("long_name", "latitude")},
		LongitudeAttrs: domain.Attributes{domain.TextAttr("units", "degrees_east"), domain.TextAttr("long_name", "longitude")},
		Attrs: domain.Attributes{
			domain.TextAttr("Conventions", "CF-1.7"),
			domain.TextAttr("institution", "synthetic"),
		},
	}
	return g
}

// StationObservations samples the storm's wind at a station every 30
// minutes over the same period, as speed and meteorological direction.
func StationObservations(storm Storm, start time.Time, hours int, lat, lon float64) []domain.WindObservation {
	n := 2*hours + 1
	obs := make([]domain.WindObservation, n)
	for k := range obs {
		clat, clon := storm.centre(fraction(k, n))
		_, w := storm.at(lat, lon, clat, clon)
		obs[k] = domain.WindObservation{
			Index:        k,
			Time:         start.Add(time.Duration(k) * 30 * time.Minute),
			SpeedMS:      math.Min(w.Speed(), domain.MaxWindSpeedMS-0.1),
			DirectionDeg: DirectionOf(w),
		}
	}
	return obs
}

// DirectionOf returns the direction the wind blows from, in degrees
// clockwise from north within [0, 360).
func DirectionOf(w domain.Wind) float64 {
	if w.U == 0 && w.V == 0 {
		return 0
	}
	d := math.Atan2(-w.U, -w.V) * 180 / math.Pi
	if d < 0 {
		d += 360
	}
	return d
}

func fraction(k, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(k) / float64(n-1)
}
