package domain

import "time"

// TripStatus is the trip lifecycle state.
type TripStatus string

const (
	TripPlanned    TripStatus = "planned"
	TripInProgress TripStatus = "in_progress"
	TripCompleted  TripStatus = "completed"
	TripCancelled  TripStatus = "cancelled"
)

// Trip is the root aggregate for one planning request. Its waypoints,
// fuel stops, rest breaks and log sheets are owned exclusively by it.
type Trip struct {
	ID        string
	DriverID  string
	TractorID string
	TrailerID string
	LoadID    string

	CurrentLocation string
	PickupLocation  string
	DropoffLocation string

	CycleHoursUsedAtStart float64

	StartTime        time.Time
	EstimatedEndTime time.Time
	ActualEndTime    *time.Time

	EstimatedMiles float64
	ActualMiles    float64

	Status TripStatus
}

// Start transitions a planned trip to in-progress at the given time.
// Time is always an explicit parameter so tests can supply fixed clocks.
func (t *Trip) Start(at time.Time) error {
	if t.Status != TripPlanned {
		return &InvalidStateError{TripID: t.ID, From: t.Status, Action: "start"}
	}
	t.Status = TripInProgress
	t.StartTime = at
	return nil
}

// Complete transitions an in-progress trip to completed and records the
// actual end time.
func (t *Trip) Complete(at time.Time) error {
	if t.Status != TripInProgress {
		return &InvalidStateError{TripID: t.ID, From: t.Status, Action: "complete"}
	}
	t.Status = TripCompleted
	t.ActualEndTime = &at
	return nil
}

// Cancel terminates a planned or in-progress trip.
func (t *Trip) Cancel(at time.Time) error {
	if t.Status != TripPlanned && t.Status != TripInProgress {
		return &InvalidStateError{TripID: t.ID, From: t.Status, Action: "cancel"}
	}
	t.Status = TripCancelled
	t.ActualEndTime = &at
	return nil
}
