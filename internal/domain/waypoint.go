package domain

import "time"

// WaypointType categorizes a stop on the planned route.
type WaypointType string

const (
	WaypointRoute      WaypointType = "route"
	WaypointFuel       WaypointType = "fuel"
	WaypointRest       WaypointType = "rest"
	WaypointCheckpoint WaypointType = "checkpoint"
)

// Waypoint is an ordered stop on a trip's planned route.
type Waypoint struct {
	TripID           string
	Sequence         int
	LocationName     string
	Lat              float64
	Lng              float64
	EstimatedArrival time.Time
	ActualArrival    *time.Time
	Type             WaypointType
}

// FuelStop is a mandatory fueling point, one per fuel interval of the
// estimated route distance.
type FuelStop struct {
	TripID         string
	Location       string
	Lat            float64
	Lng            float64
	EstimatedTime  time.Time
	ActualTime     *time.Time
	MilesFromStart float64
	Completed      bool
}

// BreakType identifies the kind of mandatory rest.
type BreakType string

const (
	Break30Min  BreakType = "30_min"
	Break10Hour BreakType = "10_hour"
	Break34Hour BreakType = "34_hour"
)

// Duration returns the scheduled length of the break type.
func (b BreakType) Duration() time.Duration {
	switch b {
	case Break30Min:
		return 30 * time.Minute
	case Break10Hour:
		return 10 * time.Hour
	case Break34Hour:
		return 34 * time.Hour
	}
	return 0
}

// RestBreak is a scheduled HOS rest on a trip.
type RestBreak struct {
	TripID         string
	Type           BreakType
	Location       string
	ScheduledStart time.Time
	ScheduledEnd   time.Time
	ActualStart    *time.Time
	ActualEnd      *time.Time
	Completed      bool
	Notes          string
}
