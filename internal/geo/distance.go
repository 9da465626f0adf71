// Package geo provides geographic distance and geohash utilities.
package geo

import (
	"math"

	"github.com/onnwee/tablescout/internal/place"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// DistanceKm computes the great-circle (haversine) distance in kilometers
// between two points. Returns nil if either point is absent, so missing
// locations degrade to the ranking engine's neutral distance default instead
// of an error.
//
// The function is symmetric and returns ~0 for identical points.
func DistanceKm(a, b *place.Point) *float64 {
	if a == nil || b == nil {
		return nil
	}

	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat + math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*sinLng*sinLng
	d := 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return &d
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
