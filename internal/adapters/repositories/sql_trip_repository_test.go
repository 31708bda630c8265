package repositories

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/xcixor/eld-route-planner/internal/domain"
	"github.com/xcixor/eld-route-planner/internal/ports"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := InitSchema(db); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	seed := []string{
		`INSERT INTO drivers (id, driver_number, name) VALUES ('d1', '100', 'Test Driver');`,
		`INSERT INTO vehicles (id, vehicle_number, vehicle_type) VALUES ('t1', 'T-100', 'tractor');`,
	}
	for _, stmt := range seed {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return db
}

func samplePlan(tripID string, start time.Time) *domain.TripPlan {
	date := domain.Midnight(start)
	end := start.Add(4 * time.Hour)

	return &domain.TripPlan{
		Trip: &domain.Trip{
			ID:               tripID,
			DriverID:         "d1",
			TractorID:        "t1",
			CurrentLocation:  "Chicago, IL",
			PickupLocation:   "Joliet, IL",
			DropoffLocation:  "Des Moines, IA",
			StartTime:        start,
			EstimatedEndTime: end,
			EstimatedMiles:   220,
			Status:           domain.TripPlanned,
		},
		Waypoints: []domain.Waypoint{
			{TripID: tripID, Sequence: 1, LocationName: "Chicago, IL", EstimatedArrival: start, Type: domain.WaypointRoute},
			{TripID: tripID, Sequence: 2, LocationName: "Des Moines, IA", EstimatedArrival: end, Type: domain.WaypointRoute},
		},
		FuelStops: []domain.FuelStop{
			{TripID: tripID, Location: "fuel stop at mile 220", EstimatedTime: end, MilesFromStart: 220},
		},
		RestBreaks: []domain.RestBreak{
			{TripID: tripID, Type: domain.Break30Min, ScheduledStart: start.Add(2 * time.Hour), ScheduledEnd: start.Add(2*time.Hour + 30*time.Minute)},
		},
		DailyLogs: []*domain.DailyLog{
			{
				Date:     date,
				DriverID: "d1",
				TripID:   tripID,
				Periods: []domain.DutyPeriod{
					{Status: domain.OffDuty, Start: date, End: start},
					{Status: domain.Driving, Start: start, End: end, VehicleMoved: true},
					{Status: domain.OffDuty, Start: end, End: date.AddDate(0, 0, 1)},
				},
				TotalOffDuty: 20,
				TotalDriving: 4,
			},
		},
		Cycle: domain.CycleWindow{
			DriverID:        "d1",
			CycleStart:      date,
			CycleEnd:        date,
			TotalCycleHours: 4,
			RemainingHours:  66,
		},
		Warnings: []string{"approaching 70-hour limit: 66.00 cycle hours used"},
	}
}

func TestSQLTripRepositoryRoundTrip(t *testing.T) {
	repo := NewSQLTripRepository(openTestDB(t))
	ctx := context.Background()

	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	if err := repo.SaveTripPlan(ctx, samplePlan("trip-1", start)); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.GetTripPlan(ctx, "trip-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.Trip.DriverID != "d1" || got.Trip.Status != domain.TripPlanned {
		t.Errorf("trip = %+v", got.Trip)
	}
	if !got.Trip.StartTime.Equal(start) {
		t.Errorf("start time = %v, want %v", got.Trip.StartTime, start)
	}
	if len(got.Waypoints) != 2 || got.Waypoints[0].Sequence != 1 {
		t.Errorf("waypoints = %+v", got.Waypoints)
	}
	if len(got.FuelStops) != 1 || got.FuelStops[0].MilesFromStart != 220 {
		t.Errorf("fuel stops = %+v", got.FuelStops)
	}
	if len(got.RestBreaks) != 1 || got.RestBreaks[0].Type != domain.Break30Min {
		t.Errorf("rest breaks = %+v", got.RestBreaks)
	}
	if len(got.DailyLogs) != 1 {
		t.Fatalf("daily logs = %+v", got.DailyLogs)
	}
	if len(got.DailyLogs[0].Periods) != 3 || got.DailyLogs[0].Periods[1].Status != domain.Driving {
		t.Errorf("periods = %+v", got.DailyLogs[0].Periods)
	}
	if got.Cycle.RemainingHours != 66 {
		t.Errorf("cycle = %+v", got.Cycle)
	}
	if len(got.Warnings) != 1 {
		t.Errorf("warnings = %v", got.Warnings)
	}

	id, exists, err := repo.TripOnDate(ctx, "d1", start)
	if err != nil {
		t.Fatalf("trip on date: %v", err)
	}
	if !exists || id != "trip-1" {
		t.Errorf("trip on date = %q, %v", id, exists)
	}
}

func TestSQLTripRepositoryRejectsSecondTripOnSameDay(t *testing.T) {
	repo := NewSQLTripRepository(openTestDB(t))
	ctx := context.Background()

	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	if err := repo.SaveTripPlan(ctx, samplePlan("trip-1", start)); err != nil {
		t.Fatalf("first save: %v", err)
	}

	err := repo.SaveTripPlan(ctx, samplePlan("trip-2", start.Add(3*time.Hour)))
	var cerr *domain.ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	if cerr.TripID != "trip-1" {
		t.Errorf("conflicting trip = %q, want trip-1", cerr.TripID)
	}

	// The rejected bundle must leave no partial rows behind.
	if _, err := repo.GetTripPlan(ctx, "trip-2"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("get rejected trip: err = %v, want ErrNotFound", err)
	}
}

func TestSQLTripRepositoryUpdateTrip(t *testing.T) {
	repo := NewSQLTripRepository(openTestDB(t))
	ctx := context.Background()

	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	if err := repo.SaveTripPlan(ctx, samplePlan("trip-1", start)); err != nil {
		t.Fatalf("save: %v", err)
	}

	plan, err := repo.GetTripPlan(ctx, "trip-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := plan.Trip.Start(start); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := repo.UpdateTrip(ctx, plan.Trip); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetTripPlan(ctx, "trip-1")
	if err != nil {
		t.Fatalf("re-get: %v", err)
	}
	if got.Trip.Status != domain.TripInProgress {
		t.Errorf("status = %q, want in_progress", got.Trip.Status)
	}

	if err := repo.UpdateTrip(ctx, &domain.Trip{ID: "missing"}); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("update missing: err = %v, want ErrNotFound", err)
	}
}
