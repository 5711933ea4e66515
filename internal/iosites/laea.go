package iosites

import (
	"math"

	"github.com/paulmach/orb"
)

// ETRS89 / LAEA Europe (EPSG:3035) parameters on the GRS80 ellipsoid.
const (
	laeaA      = 6378137.0
	laeaE2     = 0.006694380022903416
	laeaLat0   = 52.0 * math.Pi / 180
	laeaLon0   = 10.0 * math.Pi / 180
	laeaFalseE = 4321000.0
	laeaFalseN = 3210000.0
)

var (
	laeaE  = math.Sqrt(laeaE2)
	laeaQp = laeaQ(math.Pi / 2)
	laeaRq = laeaA * math.Sqrt(laeaQp/2)
	// Authalic latitude of the projection origin.
	laeaBeta0 = math.Asin(laeaQ(laeaLat0) / laeaQp)
	laeaD     = laeaA * math.Cos(laeaLat0) /
		math.Sqrt(1-laeaE2*sq(math.Sin(laeaLat0))) /
		(laeaRq * math.Cos(laeaBeta0))
)

func sq(v float64) float64 { return v * v }

// laeaQ is Snyder's q function for the authalic latitude.
func laeaQ(lat float64) float64 {
	s := math.Sin(lat)
	return (1 - laeaE2) * (s/(1-laeaE2*s*s) -
		(1/(2*laeaE))*math.Log((1-laeaE*s)/(1+laeaE*s)))
}

// laeaToWGS84 converts a projected ETRS89-LAEA point in meters to
// longitude and latitude in degrees.
func laeaToWGS84(p orb.Point) orb.Point {
	x := (p[0] - laeaFalseE) / laeaD
	y := (p[1] - laeaFalseN) * laeaD
	rho := math.Hypot(x, y)
	if rho == 0 {
		return orb.Point{laeaLon0 * 180 / math.Pi, laeaLat0 * 180 / math.Pi}
	}

	c := 2 * math.Asin(rho/(2*laeaRq))
	sinC, cosC := math.Sin(c), math.Cos(c)
	beta := math.Asin(cosC*math.Sin(laeaBeta0) +
		y*sinC*math.Cos(laeaBeta0)/rho)
	lon := laeaLon0 + math.Atan2(x*sinC,
		rho*math.Cos(laeaBeta0)*cosC-y*math.Sin(laeaBeta0)*sinC)

	// Series expansion from authalic back to geodetic latitude.
	lat := beta +
		(laeaE2/3+31*laeaE2*laeaE2/180+
			517*laeaE2*laeaE2*laeaE2/5040)*math.Sin(2*beta) +
		(23*laeaE2*laeaE2/360+
			251*laeaE2*laeaE2*laeaE2/3780)*math.Sin(4*beta) +
		(761 * laeaE2 * laeaE2 * laeaE2 / 45360) * math.Sin(6*beta)

	return orb.Point{lon * 180 / math.Pi, lat * 180 / math.Pi}
}

// laeaFromWGS84 is the forward transform. The preparation stage only
// needs the inverse; the forward form pins the inverse down in tests.
func laeaFromWGS84(p orb.Point) orb.Point {
	lon := p[0] * math.Pi / 180
	lat := p[1] * math.Pi / 180

	beta := math.Asin(laeaQ(lat) / laeaQp)
	b := laeaRq * math.Sqrt(2/(1+math.Sin(laeaBeta0)*math.Sin(beta)+
		math.Cos(laeaBeta0)*math.Cos(beta)*math.Cos(lon-laeaLon0)))

	x := b * laeaD * math.Cos(beta) * math.Sin(lon-laeaLon0)
	y := b / laeaD * (math.Cos(laeaBeta0)*math.Sin(beta) -
		math.Sin(laeaBeta0)*math.Cos(beta)*math.Cos(lon-laeaLon0))
	return orb.Point{x + laeaFalseE, y + laeaFalseN}
}
