// Package verification implements the on-site property verification
// workflow: geolocate the submitting agent, gate on proximity to the
// property, and only then issue the verification mutation.
//
// This file defines the geolocation collaborator contract and its
// distinguished error codes. Geolocation failures are environment-level:
// they are surfaced to the user with actionable guidance and never
// silently retried.
package verification

import (
	"context"
	"errors"

	"github.com/edqorta/edqorta-backend/internal/geo"
)

// Geolocation collaborator errors, mirroring browser geolocation codes.
var (
	// ErrPermissionDenied means the user refused the location prompt.
	ErrPermissionDenied = errors.New("location permission denied")

	// ErrPositionUnavailable means the environment could not produce a fix.
	ErrPositionUnavailable = errors.New("location information unavailable")

	// ErrLocationTimeout means the position request did not complete in time.
	ErrLocationTimeout = errors.New("location request timed out")
)

// Locator produces the submitter's current position. Implementations wrap
// a device geolocation API or, in tests, return a fixed coordinate.
type Locator interface {
	// CurrentPosition returns the submitter's coordinates or one of the
	// package's distinguished geolocation errors.
	CurrentPosition(ctx context.Context) (geo.LatLon, error)
}

// LocatorFunc adapts a function to the Locator interface.
type LocatorFunc func(ctx context.Context) (geo.LatLon, error)

// CurrentPosition calls f.
func (f LocatorFunc) CurrentPosition(ctx context.Context) (geo.LatLon, error) { return f(ctx) }

// Guidance maps a geolocation error to user-facing help text. Unknown
// errors get a generic message.
func Guidance(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return "Location permission denied. Please enable it in your settings."
	case errors.Is(err, ErrPositionUnavailable):
		return "Location information is unavailable."
	case errors.Is(err, ErrLocationTimeout):
		return "The request to get your location timed out."
	default:
		return "Could not get your location. Please enable location services and try again."
	}
}
