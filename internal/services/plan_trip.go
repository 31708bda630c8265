package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/xcixor/eld-route-planner/internal/domain"
	"github.com/xcixor/eld-route-planner/internal/platform/obs"
	"github.com/xcixor/eld-route-planner/internal/ports"
)

// PlanningConfig carries the planner's tunables. The average speed is
// deliberately a parameter: the fuel-stop and schedule ETAs must never
// hardcode a single arbitrary miles-to-hours conversion.
type PlanningConfig struct {
	AverageSpeedMPH   float64
	FuelIntervalMiles float64
	ProviderTimeout   time.Duration
}

// DefaultPlanningConfig matches a documented 55 mph average and the
// 1000-mile fuel interval.
func DefaultPlanningConfig() PlanningConfig {
	return PlanningConfig{
		AverageSpeedMPH:   55,
		FuelIntervalMiles: 1000,
		ProviderTimeout:   15 * time.Second,
	}
}

// PlanTripRequest is the planner's input.
type PlanTripRequest struct {
	DriverID  string
	TractorID string
	TrailerID string
	LoadID    string

	CurrentLocation string
	PickupLocation  string
	DropoffLocation string

	CycleHoursUsed float64
	StartTime      time.Time
}

// Planner orchestrates trip planning: validation, conflict guarding,
// route retrieval, schedule/log generation, compliance evaluation, and
// atomic persistence of the resulting bundle.
type Planner struct {
	repo     ports.TripRepository
	provider ports.RouteProvider
	tracker  *CycleTracker
	cfg      PlanningConfig
	planMu   *keyedMutex
}

func NewPlanner(repo ports.TripRepository, provider ports.RouteProvider, tracker *CycleTracker, cfg PlanningConfig) *Planner {
	if cfg.AverageSpeedMPH <= 0 {
		cfg.AverageSpeedMPH = DefaultPlanningConfig().AverageSpeedMPH
	}
	if cfg.FuelIntervalMiles <= 0 {
		cfg.FuelIntervalMiles = DefaultPlanningConfig().FuelIntervalMiles
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = DefaultPlanningConfig().ProviderTimeout
	}
	return &Planner{
		repo:     repo,
		provider: provider,
		tracker:  tracker,
		cfg:      cfg,
		planMu:   newKeyedMutex(),
	}
}

// Tracker exposes the planner's cycle tracker for read-side queries.
func (p *Planner) Tracker() *CycleTracker { return p.tracker }

// PlanTrip runs the full planning pipeline. Regulatory violations do
// not fail the call; they come back as warnings on the bundle. Input,
// conflict, integrity, and provider failures do fail it, and nothing is
// persisted on failure.
func (p *Planner) PlanTrip(ctx context.Context, req PlanTripRequest) (_ *domain.TripPlan, err error) {
	defer obs.Time(ctx, "planner.PlanTrip")(&err)

	if err := p.validateShape(req); err != nil {
		return nil, err
	}

	start := req.StartTime.UTC()
	tripID := uuid.NewString()

	// Reference resolution and the external route call have no data
	// dependency on each other; run them concurrently.
	var route ports.RouteResult
	refErrs := domain.NewValidationError()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.resolveReferences(gctx, req, refErrs)
	})
	g.Go(func() error {
		var rerr error
		route, rerr = p.fetchRoute(gctx, req)
		return rerr
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if !refErrs.Empty() {
		return nil, refErrs
	}

	// One trip per driver per day: serialize per (driver, date), check,
	// build, and persist inside the same scope.
	unlock := p.planMu.lock(req.DriverID + "|" + start.Format("2006-01-02"))
	defer unlock()

	existingID, exists, err := p.repo.TripOnDate(ctx, req.DriverID, start)
	if err != nil {
		return nil, fmt.Errorf("plan trip: check existing trips: %w", err)
	}
	if exists {
		return nil, &domain.ConflictError{
			DriverID: req.DriverID,
			Date:     domain.Midnight(start),
			TripID:   existingID,
		}
	}

	// Cycle bookkeeping is staged on a fork so a failed save leaves the
	// shared tracker untouched; the whole bundle commits or nothing does.
	staged := p.tracker.Fork(req.DriverID)

	plan, err := p.assemble(tripID, req, start, route, staged)
	if err != nil {
		return nil, err
	}

	if err := p.repo.SaveTripPlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("plan trip: save bundle: %w", err)
	}

	p.tracker.Commit(req.DriverID, staged)
	return plan, nil
}

func (p *Planner) validateShape(req PlanTripRequest) error {
	verr := domain.NewValidationError()

	if strings.TrimSpace(req.DriverID) == "" {
		verr.Add("driver_id", "is required")
	}
	if strings.TrimSpace(req.TractorID) == "" {
		verr.Add("tractor_id", "is required")
	}
	if strings.TrimSpace(req.CurrentLocation) == "" {
		verr.Add("current_location", "is required")
	}
	if strings.TrimSpace(req.PickupLocation) == "" {
		verr.Add("pickup_location", "is required")
	}
	if strings.TrimSpace(req.DropoffLocation) == "" {
		verr.Add("dropoff_location", "is required")
	}
	if req.CycleHoursUsed < 0 || req.CycleHoursUsed > domain.CycleLimitHours {
		verr.Add("current_cycle_used_hours", fmt.Sprintf("must be between 0 and %.0f", domain.CycleLimitHours))
	}
	if req.StartTime.IsZero() {
		verr.Add("start_time", "is required")
	}

	if !verr.Empty() {
		return verr
	}
	return nil
}

// resolveReferences checks that every referenced entity exists and that
// vehicle types match their role. Failures accumulate field by field.
func (p *Planner) resolveReferences(ctx context.Context, req PlanTripRequest, verr *domain.ValidationError) error {
	if _, err := p.repo.GetDriver(ctx, req.DriverID); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			verr.Add("driver_id", "unknown driver")
		} else {
			return fmt.Errorf("plan trip: load driver: %w", err)
		}
	}

	tractor, err := p.repo.GetVehicle(ctx, req.TractorID)
	switch {
	case errors.Is(err, ports.ErrNotFound):
		verr.Add("tractor_id", "unknown vehicle")
	case err != nil:
		return fmt.Errorf("plan trip: load tractor: %w", err)
	case tractor.Type != domain.VehicleTractor:
		verr.Add("tractor_id", "vehicle is not a tractor")
	}

	if req.TrailerID != "" {
		trailer, err := p.repo.GetVehicle(ctx, req.TrailerID)
		switch {
		case errors.Is(err, ports.ErrNotFound):
			verr.Add("trailer_id", "unknown vehicle")
		case err != nil:
			return fmt.Errorf("plan trip: load trailer: %w", err)
		case trailer.Type != domain.VehicleTrailer:
			verr.Add("trailer_id", "vehicle is not a trailer")
		}
	}

	if req.LoadID != "" {
		if _, err := p.repo.GetLoad(ctx, req.LoadID); err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				verr.Add("load_id", "unknown load")
			} else {
				return fmt.Errorf("plan trip: load freight record: %w", err)
			}
		}
	}

	return nil
}

// fetchRoute calls the external provider under the configured timeout.
// There is no fallback to fabricated route data: without real distance
// and ETA figures, planning fails.
func (p *Planner) fetchRoute(ctx context.Context, req PlanTripRequest) (ports.RouteResult, error) {
	rctx, cancel := context.WithTimeout(ctx, p.cfg.ProviderTimeout)
	defer cancel()

	route, err := p.provider.GetRoute(rctx, req.CurrentLocation, req.PickupLocation, req.DropoffLocation)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(rctx.Err(), context.DeadlineExceeded) {
			return ports.RouteResult{}, fmt.Errorf("plan trip: %w: %v", ports.ErrProviderTimeout, err)
		}
		if errors.Is(err, ports.ErrProviderUnavailable) {
			return ports.RouteResult{}, fmt.Errorf("plan trip: %w", err)
		}
		return ports.RouteResult{}, fmt.Errorf("plan trip: fetch route: %w", err)
	}
	if route.DistanceMiles <= 0 {
		return ports.RouteResult{}, fmt.Errorf("plan trip: %w: provider returned non-positive distance", ports.ErrProviderUnavailable)
	}
	return route, nil
}

// assemble builds the trip, waypoints, fuel stops, rest breaks, daily
// logs, and cycle window into one bundle. All cycle mutations go to the
// staged tracker.
func (p *Planner) assemble(tripID string, req PlanTripRequest, start time.Time, route ports.RouteResult, staged *CycleTracker) (*domain.TripPlan, error) {
	driveHours := route.DistanceMiles / p.cfg.AverageSpeedMPH

	sched := buildSchedule(tripID, start, driveHours, req.CycleHoursUsed, req.DropoffLocation)

	logs, err := buildDailyLogs(req.DriverID, tripID, req.CurrentLocation, sched, p.cfg.AverageSpeedMPH)
	if err != nil {
		return nil, fmt.Errorf("plan trip: %w", err)
	}

	trip := &domain.Trip{
		ID:                    tripID,
		DriverID:              req.DriverID,
		TractorID:             req.TractorID,
		TrailerID:             req.TrailerID,
		LoadID:                req.LoadID,
		CurrentLocation:       req.CurrentLocation,
		PickupLocation:        req.PickupLocation,
		DropoffLocation:       req.DropoffLocation,
		CycleHoursUsedAtStart: req.CycleHoursUsed,
		StartTime:             start,
		EstimatedEndTime:      sched.endTime,
		EstimatedMiles:        route.DistanceMiles,
		Status:                domain.TripPlanned,
	}

	fuelStops := p.buildFuelStops(tripID, start, route.DistanceMiles)
	waypoints := buildWaypoints(tripID, start, route, fuelStops, sched.restBreaks)

	// Cycle bookkeeping: open the cycle, seed the declared usage, feed
	// rest spans and each day's duty hours through the staged tracker.
	staged.StartCycle(req.DriverID, start)
	if err := staged.SeedUsedHours(req.DriverID, start, req.CycleHoursUsed); err != nil {
		return nil, fmt.Errorf("plan trip: %w", err)
	}
	for _, rb := range sched.restBreaks {
		if rb.Type != domain.Break30Min {
			if err := staged.RecordRest(req.DriverID, rb.ScheduledStart, rb.ScheduledEnd); err != nil {
				return nil, fmt.Errorf("plan trip: %w", err)
			}
		}
	}

	var warnings []string
	var cycle domain.CycleWindow
	for _, logSheet := range logs {
		cycle, err = staged.RecordDay(req.DriverID, logSheet.Date, logSheet.TotalDutyTime)
		if err != nil {
			return nil, fmt.Errorf("plan trip: %w", err)
		}

		verdict, err := EvaluateDailyLog(logSheet, cycle)
		if err != nil {
			return nil, fmt.Errorf("plan trip: %w", err)
		}
		for _, v := range verdict.Violations {
			warnings = append(warnings, fmt.Sprintf("%s: %s: %s", logSheet.Date.Format("2006-01-02"), v.Code, v.Message))
		}
	}

	if cycle.TotalCycleHours > 60 && cycle.TotalCycleHours <= domain.CycleLimitHours {
		warnings = append(warnings, fmt.Sprintf(
			"approaching 70-hour limit: %.2f cycle hours used", cycle.TotalCycleHours,
		))
	}

	return &domain.TripPlan{
		Trip:       trip,
		Waypoints:  waypoints,
		FuelStops:  fuelStops,
		RestBreaks: sched.restBreaks,
		DailyLogs:  logs,
		Cycle:      cycle,
		Warnings:   warnings,
	}, nil
}

// buildFuelStops places ceil(miles/interval) stops, the last at the
// trip's final mile when the distance is not an exact multiple.
func (p *Planner) buildFuelStops(tripID string, start time.Time, miles float64) []domain.FuelStop {
	interval := p.cfg.FuelIntervalMiles
	count := int(math.Ceil(miles / interval))

	stops := make([]domain.FuelStop, 0, count)
	for i := 0; i < count; i++ {
		at := float64(i+1) * interval
		if at > miles {
			at = miles
		}
		eta := start.Add(time.Duration(at / p.cfg.AverageSpeedMPH * float64(time.Hour)))
		stops = append(stops, domain.FuelStop{
			TripID:         tripID,
			Location:       fmt.Sprintf("fuel stop at mile %.0f", at),
			EstimatedTime:  eta,
			MilesFromStart: at,
		})
	}
	return stops
}

// buildWaypoints orders the provider's route points first, then fuel
// and rest waypoints, each tagged with its type.
func buildWaypoints(tripID string, start time.Time, route ports.RouteResult, fuel []domain.FuelStop, rests []domain.RestBreak) []domain.Waypoint {
	out := make([]domain.Waypoint, 0, len(route.Waypoints)+len(fuel)+len(rests))
	seq := 1

	for _, wp := range route.Waypoints {
		out = append(out, domain.Waypoint{
			TripID:           tripID,
			Sequence:         seq,
			LocationName:     wp.Name,
			Lat:              wp.Lat,
			Lng:              wp.Lng,
			EstimatedArrival: start.Add(time.Duration(wp.ETASeconds) * time.Second),
			Type:             domain.WaypointRoute,
		})
		seq++
	}
	for _, fs := range fuel {
		out = append(out, domain.Waypoint{
			TripID:           tripID,
			Sequence:         seq,
			LocationName:     fs.Location,
			EstimatedArrival: fs.EstimatedTime,
			Type:             domain.WaypointFuel,
		})
		seq++
	}
	for _, rb := range rests {
		out = append(out, domain.Waypoint{
			TripID:           tripID,
			Sequence:         seq,
			LocationName:     fmt.Sprintf("%s rest", rb.Type),
			EstimatedArrival: rb.ScheduledStart,
			Type:             domain.WaypointRest,
		})
		seq++
	}
	return out
}
