// Package geo provides great-circle distance and bounding box tests.
package geo

import "math"

// EarthRadiusMiles is the mean Earth radius used for distances.
const EarthRadiusMiles = 3959.0

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// DistanceMiles returns the great-circle distance between a and b using the
// spherical law of cosines. The acos argument is clamped to [-1, 1] so that
// nearly identical points cannot produce NaN.
func DistanceMiles(a, b Point) float64 {
	if a == b {
		return 0
	}

	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLng := radians(b.Lng) - radians(a.Lng)

	cosAngle := math.Cos(lat1)*math.Cos(lat2)*math.Cos(dLng) + math.Sin(lat1)*math.Sin(lat2)
	return EarthRadiusMiles * math.Acos(clampUnit(cosAngle))
}

// clampUnit pulls rounding drift back into the acos domain [-1, 1].
func clampUnit(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
