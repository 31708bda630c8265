package dto

import (
	"time"

	"github.com/xcixor/eld-route-planner/internal/domain"
)

type TripResponse struct {
	ID        string `json:"id"`
	DriverID  string `json:"driver_id"`
	TractorID string `json:"tractor_id"`
	TrailerID string `json:"trailer_id,omitempty"`
	LoadID    string `json:"load_id,omitempty"`

	CurrentLocation string `json:"current_location"`
	PickupLocation  string `json:"pickup_location"`
	DropoffLocation string `json:"dropoff_location"`

	CycleHoursUsedAtStart float64 `json:"cycle_hours_used_at_start"`

	StartTime        time.Time  `json:"start_time"`
	EstimatedEndTime time.Time  `json:"estimated_end_time"`
	ActualEndTime    *time.Time `json:"actual_end_time,omitempty"`

	EstimatedMiles float64 `json:"estimated_miles"`
	ActualMiles    float64 `json:"actual_miles"`

	Status string `json:"status"`
}

type ListTripsResponse struct {
	Trips []TripResponse `json:"trips"`
}

func NewTripResponse(t *domain.Trip) TripResponse {
	return TripResponse{
		ID:                    t.ID,
		DriverID:              t.DriverID,
		TractorID:             t.TractorID,
		TrailerID:             t.TrailerID,
		LoadID:                t.LoadID,
		CurrentLocation:       t.CurrentLocation,
		PickupLocation:        t.PickupLocation,
		DropoffLocation:       t.DropoffLocation,
		CycleHoursUsedAtStart: t.CycleHoursUsedAtStart,
		StartTime:             t.StartTime,
		EstimatedEndTime:      t.EstimatedEndTime,
		ActualEndTime:         t.ActualEndTime,
		EstimatedMiles:        t.EstimatedMiles,
		ActualMiles:           t.ActualMiles,
		Status:                string(t.Status),
	}
}
