package ports

import (
	"context"
	"errors"
)

// ErrProviderUnavailable signals the external routing service could not
// be reached or returned an unusable response. Planning fails rather
// than falling back to fabricated route data.
var ErrProviderUnavailable = errors.New("route provider unavailable")

// ErrProviderTimeout signals the caller-supplied deadline elapsed while
// waiting on the routing service.
var ErrProviderTimeout = errors.New("route provider timed out")

// RouteWaypoint is one named point on the computed route with its
// estimated travel offset from departure.
type RouteWaypoint struct {
	Name       string
	Lat        float64
	Lng        float64
	ETASeconds int
}

// RouteResult is the external provider's answer for a three-point
// current -> pickup -> dropoff route.
type RouteResult struct {
	DistanceMiles float64
	Waypoints     []RouteWaypoint
}

// RouteProvider is the contract for the external routing/distance
// capability. The core depends on it but never implements real
// geographic routing itself.
type RouteProvider interface {
	GetRoute(ctx context.Context, current, pickup, dropoff string) (RouteResult, error)
}
