package geo

import (
	"strings"

	"github.com/onnwee/tablescout/internal/place"
)

// CacheKeyPrecision is the geohash precision used when bucketing search
// origins into cache keys. Six characters is roughly ±0.61 km, coarse enough
// that nearby callers share cache entries without mixing in results biased to
// a distant origin.
const CacheKeyPrecision = 6

// base32 is the geohash base32 alphabet (excludes a, i, l, o).
const base32 = "0123456789bcdefghjkmnpqrstuvwxyz"

// Encode encodes latitude and longitude into a geohash string with the given
// precision using the standard interleaved-bit base32 algorithm.
func Encode(lat, lng float64, precision int) string {
	if precision < 1 {
		precision = CacheKeyPrecision
	}

	latRange := [2]float64{-90.0, 90.0}
	lngRange := [2]float64{-180.0, 180.0}

	var geohash strings.Builder
	geohash.Grow(precision)

	bits := 0
	var ch uint

	even := true
	for geohash.Len() < precision {
		if even {
			// Longitude. Boundary values belong to the upper half.
			mid := (lngRange[0] + lngRange[1]) / 2
			if lng >= mid {
				ch |= (1 << (4 - bits))
				lngRange[0] = mid
			} else {
				lngRange[1] = mid
			}
		} else {
			// Latitude
			mid := (latRange[0] + latRange[1]) / 2
			if lat >= mid {
				ch |= (1 << (4 - bits))
				latRange[0] = mid
			} else {
				latRange[1] = mid
			}
		}

		even = !even
		bits++

		if bits == 5 {
			geohash.WriteByte(base32[ch])
			bits = 0
			ch = 0
		}
	}

	return geohash.String()
}

// CellKey returns the cache-key geohash cell for a point, or an empty string
// when the point is absent. Absent origins collapse into one shared cell so
// unbiased searches still cache.
func CellKey(p *place.Point) string {
	if p == nil {
		return ""
	}
	return Encode(p.Lat, p.Lng, CacheKeyPrecision)
}
