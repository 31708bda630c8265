package ports

import (
	"context"
	"errors"
	"time"

	"github.com/xcixor/eld-route-planner/internal/domain"
)

// ErrNotFound is returned for lookups of unknown identifiers.
var ErrNotFound = errors.New("not found")

// TripRepository is the persistence contract for trip planning.
// SaveTripPlan must be all-or-nothing: either the trip and every owned
// child record are stored, or nothing is.
type TripRepository interface {
	GetDriver(ctx context.Context, id string) (*domain.Driver, error)
	GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error)
	GetLoad(ctx context.Context, id string) (*domain.Load, error)

	// TripOnDate returns the id of the driver's existing trip on the
	// given calendar day, if any. Backs the one-trip-per-driver-per-day
	// invariant.
	TripOnDate(ctx context.Context, driverID string, date time.Time) (string, bool, error)

	SaveTripPlan(ctx context.Context, plan *domain.TripPlan) error
	GetTripPlan(ctx context.Context, tripID string) (*domain.TripPlan, error)
	ListTrips(ctx context.Context) ([]*domain.Trip, error)
	UpdateTrip(ctx context.Context, trip *domain.Trip) error
}
