package dto

import (
	"time"

	"github.com/xcixor/eld-route-planner/internal/domain"
)

type PlanTripRequest struct {
	DriverID  string `json:"driver_id"`
	TractorID string `json:"tractor_id"`
	TrailerID string `json:"trailer_id"`
	LoadID    string `json:"load_id"`

	CurrentLocation string `json:"current_location"`
	PickupLocation  string `json:"pickup_location"`
	DropoffLocation string `json:"dropoff_location"`

	CurrentCycleUsedHours float64   `json:"current_cycle_used_hours"`
	StartTime             time.Time `json:"start_time"`
}

type WaypointResponse struct {
	Sequence         int       `json:"sequence"`
	LocationName     string    `json:"location_name"`
	Lat              float64   `json:"lat"`
	Lng              float64   `json:"lng"`
	EstimatedArrival time.Time `json:"estimated_arrival"`
	Type             string    `json:"type"`
}

type FuelStopResponse struct {
	Location       string    `json:"location"`
	EstimatedTime  time.Time `json:"estimated_time"`
	MilesFromStart float64   `json:"miles_from_start"`
}

type RestBreakResponse struct {
	Type           string    `json:"type"`
	Location       string    `json:"location,omitempty"`
	ScheduledStart time.Time `json:"scheduled_start"`
	ScheduledEnd   time.Time `json:"scheduled_end"`
}

type DutyPeriodResponse struct {
	Status          string    `json:"status"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	Location        string    `json:"location,omitempty"`
	Activity        string    `json:"activity,omitempty"`
	VehicleMoved    bool      `json:"vehicle_moved"`
	GridLine        int       `json:"grid_line"`
	GridStartMinute int       `json:"grid_start_minute"`
	GridEndMinute   int       `json:"grid_end_minute"`
}

type DailyLogResponse struct {
	Date    string               `json:"date"`
	Periods []DutyPeriodResponse `json:"periods"`

	TotalOffDuty      float64 `json:"total_off_duty"`
	TotalSleeperBerth float64 `json:"total_sleeper_berth"`
	TotalDriving      float64 `json:"total_driving"`
	TotalOnDuty       float64 `json:"total_on_duty"`
	TotalDutyTime     float64 `json:"total_duty_time"`
	MilesDriven       float64 `json:"miles_driven"`

	HOSViolation   bool   `json:"hos_violation"`
	ViolationNotes string `json:"violation_notes,omitempty"`
}

type CycleResponse struct {
	DriverID         string     `json:"driver_id"`
	CycleStart       string     `json:"cycle_start"`
	CycleEnd         string     `json:"cycle_end"`
	TotalCycleHours  float64    `json:"total_cycle_hours"`
	RemainingHours   float64    `json:"remaining_hours"`
	IsViolation      bool       `json:"is_violation"`
	ViolationType    string     `json:"violation_type,omitempty"`
	RestartAvailable bool       `json:"restart_available"`
	RestartStart     *time.Time `json:"restart_start,omitempty"`
	RestartEnd       *time.Time `json:"restart_end,omitempty"`
}

type PlanTripResponse struct {
	Trip       TripResponse        `json:"trip"`
	Waypoints  []WaypointResponse  `json:"waypoints"`
	FuelStops  []FuelStopResponse  `json:"fuel_stops"`
	RestBreaks []RestBreakResponse `json:"rest_breaks"`
	DailyLogs  []DailyLogResponse  `json:"daily_logs"`
	Cycle      CycleResponse       `json:"cycle"`
	Warnings   []string            `json:"warnings"`
}

// NewPlanTripResponse maps the planning bundle onto the wire shape. The
// grid minutes come from each period's snapped position on its log day.
func NewPlanTripResponse(plan *domain.TripPlan) (PlanTripResponse, error) {
	res := PlanTripResponse{
		Trip:       NewTripResponse(plan.Trip),
		Waypoints:  make([]WaypointResponse, 0, len(plan.Waypoints)),
		FuelStops:  make([]FuelStopResponse, 0, len(plan.FuelStops)),
		RestBreaks: make([]RestBreakResponse, 0, len(plan.RestBreaks)),
		DailyLogs:  make([]DailyLogResponse, 0, len(plan.DailyLogs)),
		Cycle:      NewCycleResponse(plan.Cycle),
		Warnings:   plan.Warnings,
	}
	if res.Warnings == nil {
		res.Warnings = []string{}
	}

	for _, wp := range plan.Waypoints {
		res.Waypoints = append(res.Waypoints, WaypointResponse{
			Sequence:         wp.Sequence,
			LocationName:     wp.LocationName,
			Lat:              wp.Lat,
			Lng:              wp.Lng,
			EstimatedArrival: wp.EstimatedArrival,
			Type:             string(wp.Type),
		})
	}
	for _, fs := range plan.FuelStops {
		res.FuelStops = append(res.FuelStops, FuelStopResponse{
			Location:       fs.Location,
			EstimatedTime:  fs.EstimatedTime,
			MilesFromStart: fs.MilesFromStart,
		})
	}
	for _, rb := range plan.RestBreaks {
		res.RestBreaks = append(res.RestBreaks, RestBreakResponse{
			Type:           string(rb.Type),
			Location:       rb.Location,
			ScheduledStart: rb.ScheduledStart,
			ScheduledEnd:   rb.ScheduledEnd,
		})
	}

	for _, logSheet := range plan.DailyLogs {
		logRes, err := NewDailyLogResponse(logSheet)
		if err != nil {
			return PlanTripResponse{}, err
		}
		res.DailyLogs = append(res.DailyLogs, logRes)
	}

	return res, nil
}

func NewDailyLogResponse(logSheet *domain.DailyLog) (DailyLogResponse, error) {
	res := DailyLogResponse{
		Date:              logSheet.Date.Format("2006-01-02"),
		Periods:           make([]DutyPeriodResponse, 0, len(logSheet.Periods)),
		TotalOffDuty:      logSheet.TotalOffDuty,
		TotalSleeperBerth: logSheet.TotalSleeperBerth,
		TotalDriving:      logSheet.TotalDriving,
		TotalOnDuty:       logSheet.TotalOnDuty,
		TotalDutyTime:     logSheet.TotalDutyTime,
		MilesDriven:       logSheet.MilesDriven,
		HOSViolation:      logSheet.HOSViolation,
		ViolationNotes:    logSheet.ViolationNotes,
	}

	for _, p := range logSheet.Periods {
		gridStart, gridEnd, err := p.GridMinutes(logSheet.Date)
		if err != nil {
			return DailyLogResponse{}, err
		}
		res.Periods = append(res.Periods, DutyPeriodResponse{
			Status:          p.Status.String(),
			Start:           p.Start,
			End:             p.End,
			Location:        p.Location,
			Activity:        p.ActivityDescription,
			VehicleMoved:    p.VehicleMoved,
			GridLine:        p.Status.GridLine(),
			GridStartMinute: gridStart,
			GridEndMinute:   gridEnd,
		})
	}

	return res, nil
}

func NewCycleResponse(c domain.CycleWindow) CycleResponse {
	return CycleResponse{
		DriverID:         c.DriverID,
		CycleStart:       c.CycleStart.Format("2006-01-02"),
		CycleEnd:         c.CycleEnd.Format("2006-01-02"),
		TotalCycleHours:  c.TotalCycleHours,
		RemainingHours:   c.RemainingHours,
		IsViolation:      c.IsViolation,
		ViolationType:    c.ViolationType,
		RestartAvailable: c.RestartAvailable,
		RestartStart:     c.RestartStart,
		RestartEnd:       c.RestartEnd,
	}
}
