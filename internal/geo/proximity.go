// Package geo provides the pure, stateless proximity admission check used
// by the verification workflow: "is the submitter physically close enough
// to the target to be trusted as an on-site verifier?"
//
// Coordinates are decimal degrees, WGS84. Distances use the Haversine
// great-circle approximation, which is exact enough at verification scale
// (sub-kilometer thresholds) and matches what field agents see on a map.
package geo

import (
	"errors"
	"math"
)

// EarthRadiusKm is the mean Earth radius used by the Haversine formula.
const EarthRadiusKm = 6371.0

// KmPerMile converts statute miles to kilometers.
const KmPerMile = 1.60934

// ErrMissingLocation is reported when either coordinate pair is absent.
// The gate fails closed rather than computing a bogus distance.
var ErrMissingLocation = errors.New("missing location")

// LatLon is a WGS84 coordinate pair in decimal degrees.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Result is the gate's decision. DistanceKm is populated whenever both
// coordinates were present, admitted or not, so callers can tell the user
// how far off they are.
type Result struct {
	Admitted   bool    `json:"admitted"`
	DistanceKm float64 `json:"distance_km"`
	Err        error   `json:"-"`
}

// Check decides admission: the submitter is admitted when the great-circle
// distance to the target is at or below thresholdKm.
//
// A nil submitter or target fails closed: Admitted is false, Err is
// ErrMissingLocation, and no distance is computed. Check never panics and
// has no side effects.
func Check(submitter, target *LatLon, thresholdKm float64) Result {
	if submitter == nil || target == nil {
		return Result{Admitted: false, Err: ErrMissingLocation}
	}
	d := DistanceKm(*submitter, *target)
	return Result{
		Admitted:   d <= thresholdKm,
		DistanceKm: d,
	}
}

// DistanceKm returns the Haversine great-circle distance between two
// points, in kilometers.
func DistanceKm(a, b LatLon) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	s := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(s), math.Sqrt(1-s))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
