package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xcixor/eld-route-planner/internal/domain"
	"github.com/xcixor/eld-route-planner/internal/ports"
)

// SQL-backed implementation of the TripRepository port. Works against
// SQLite (local default) and Postgres (pgx stdlib driver); both accept
// $N placeholders. Timestamps are stored as RFC3339 text so the two
// drivers scan identically.
type SQLTripRepository struct{ DB *sql.DB }

func NewSQLTripRepository(db *sql.DB) *SQLTripRepository {
	return &SQLTripRepository{DB: db}
}

func fmtTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func fmtTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored timestamp %q: %w", s, err)
	}
	return t, nil
}

func (r *SQLTripRepository) GetDriver(ctx context.Context, id string) (*domain.Driver, error) {
	q := `
	SELECT id, driver_number, name, initials, home_operating_center, license_number, license_state
	FROM drivers WHERE id = $1;
	`
	var d domain.Driver
	err := r.DB.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.DriverNumber, &d.Name, &d.Initials,
		&d.HomeOperatingCenter, &d.LicenseNumber, &d.LicenseState,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get driver %s: %w", id, err)
	}
	return &d, nil
}

func (r *SQLTripRepository) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	q := `
	SELECT id, vehicle_number, vehicle_type, make, model, year, is_active
	FROM vehicles WHERE id = $1;
	`
	var v domain.Vehicle
	var vt string
	err := r.DB.QueryRowContext(ctx, q, id).Scan(
		&v.ID, &v.VehicleNumber, &vt, &v.Make, &v.Model, &v.Year, &v.Active,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get vehicle %s: %w", id, err)
	}
	v.Type = domain.VehicleType(vt)
	return &v, nil
}

func (r *SQLTripRepository) GetLoad(ctx context.Context, id string) (*domain.Load, error) {
	q := `
	SELECT id, load_number, shipper, commodity, weight_lbs, pieces, instructions
	FROM loads WHERE id = $1;
	`
	var l domain.Load
	err := r.DB.QueryRowContext(ctx, q, id).Scan(
		&l.ID, &l.LoadNumber, &l.Shipper, &l.Commodity, &l.WeightLbs, &l.Pieces, &l.Instructions,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get load %s: %w", id, err)
	}
	return &l, nil
}

func (r *SQLTripRepository) TripOnDate(ctx context.Context, driverID string, date time.Time) (string, bool, error) {
	q := `SELECT id FROM trips WHERE driver_id = $1 AND trip_date = $2;`
	var id string
	err := r.DB.QueryRowContext(ctx, q, driverID, domain.Midnight(date.UTC()).Format("2006-01-02")).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("trip on date: %w", err)
	}
	return id, true, nil
}

// SaveTripPlan writes the whole bundle in one transaction. The unique
// (driver_id, trip_date) index makes the one-trip-per-day invariant
// hold even across processes; a constraint failure surfaces as a
// ConflictError.
func (r *SQLTripRepository) SaveTripPlan(ctx context.Context, plan *domain.TripPlan) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save trip plan: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	t := plan.Trip
	_, err = tx.ExecContext(ctx, `
	INSERT INTO trips (
		id, driver_id, tractor_id, trailer_id, load_id,
		current_location, pickup_location, dropoff_location,
		cycle_hours_used, start_time, trip_date, estimated_end_time, actual_end_time,
		estimated_miles, actual_miles, status, compliance_warnings
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17);
	`,
		t.ID, t.DriverID, t.TractorID, nullable(t.TrailerID), nullable(t.LoadID),
		t.CurrentLocation, t.PickupLocation, t.DropoffLocation,
		t.CycleHoursUsedAtStart, fmtTime(t.StartTime),
		domain.Midnight(t.StartTime.UTC()).Format("2006-01-02"),
		fmtTime(t.EstimatedEndTime), fmtTimePtr(t.ActualEndTime),
		t.EstimatedMiles, t.ActualMiles, string(t.Status),
		strings.Join(plan.Warnings, "\n"),
	)
	if err != nil {
		if isUniqueViolation(err) {
			existing, _, lookupErr := r.TripOnDate(ctx, t.DriverID, t.StartTime)
			if lookupErr != nil {
				existing = "unknown"
			}
			return &domain.ConflictError{
				DriverID: t.DriverID,
				Date:     domain.Midnight(t.StartTime.UTC()),
				TripID:   existing,
			}
		}
		return fmt.Errorf("save trip plan: insert trip: %w", err)
	}

	for _, wp := range plan.Waypoints {
		_, err = tx.ExecContext(ctx, `
		INSERT INTO waypoints (trip_id, sequence, location_name, lat, lng, estimated_arrival, waypoint_type)
		VALUES ($1,$2,$3,$4,$5,$6,$7);
		`, wp.TripID, wp.Sequence, wp.LocationName, wp.Lat, wp.Lng, fmtTime(wp.EstimatedArrival), string(wp.Type))
		if err != nil {
			return fmt.Errorf("save trip plan: insert waypoint %d: %w", wp.Sequence, err)
		}
	}

	for _, fs := range plan.FuelStops {
		_, err = tx.ExecContext(ctx, `
		INSERT INTO fuel_stops (trip_id, location, lat, lng, estimated_time, miles_from_start, completed)
		VALUES ($1,$2,$3,$4,$5,$6,$7);
		`, fs.TripID, fs.Location, fs.Lat, fs.Lng, fmtTime(fs.EstimatedTime), fs.MilesFromStart, fs.Completed)
		if err != nil {
			return fmt.Errorf("save trip plan: insert fuel stop at mile %.0f: %w", fs.MilesFromStart, err)
		}
	}

	for _, rb := range plan.RestBreaks {
		_, err = tx.ExecContext(ctx, `
		INSERT INTO rest_breaks (trip_id, break_type, location, scheduled_start, scheduled_end, completed, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7);
		`, rb.TripID, string(rb.Type), rb.Location, fmtTime(rb.ScheduledStart), fmtTime(rb.ScheduledEnd), rb.Completed, rb.Notes)
		if err != nil {
			return fmt.Errorf("save trip plan: insert %s break: %w", rb.Type, err)
		}
	}

	for _, logSheet := range plan.DailyLogs {
		logID := uuid.NewString()
		_, err = tx.ExecContext(ctx, `
		INSERT INTO log_sheets (
			id, trip_id, driver_id, log_date,
			total_off_duty, total_sleeper_berth, total_driving, total_on_duty, total_duty_time,
			miles_driven, hos_violation, violation_notes
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12);
		`,
			logID, logSheet.TripID, logSheet.DriverID, logSheet.Date.Format("2006-01-02"),
			logSheet.TotalOffDuty, logSheet.TotalSleeperBerth, logSheet.TotalDriving,
			logSheet.TotalOnDuty, logSheet.TotalDutyTime,
			logSheet.MilesDriven, logSheet.HOSViolation, logSheet.ViolationNotes,
		)
		if err != nil {
			return fmt.Errorf("save trip plan: insert log sheet %s: %w", logSheet.Date.Format("2006-01-02"), err)
		}

		for _, p := range logSheet.Periods {
			gridStart, gridEnd, gerr := p.GridMinutes(logSheet.Date)
			if gerr != nil {
				return fmt.Errorf("save trip plan: grid minutes: %w", gerr)
			}
			_, err = tx.ExecContext(ctx, `
			INSERT INTO duty_periods (
				log_sheet_id, duty_status, start_time, end_time,
				location, activity, vehicle_moved, grid_start_minute, grid_end_minute
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);
			`,
				logID, p.Status.String(), fmtTime(p.Start), fmtTime(p.End),
				p.Location, p.ActivityDescription, p.VehicleMoved, gridStart, gridEnd,
			)
			if err != nil {
				return fmt.Errorf("save trip plan: insert duty period: %w", err)
			}
		}
	}

	c := plan.Cycle
	_, err = tx.ExecContext(ctx, `
	INSERT INTO hos_cycles (
		driver_id, cycle_start, cycle_end, total_cycle_hours, remaining_hours,
		is_violation, violation_type, restart_available, restart_start, restart_end
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	ON CONFLICT (driver_id, cycle_start) DO UPDATE SET
		cycle_end = EXCLUDED.cycle_end,
		total_cycle_hours = EXCLUDED.total_cycle_hours,
		remaining_hours = EXCLUDED.remaining_hours,
		is_violation = EXCLUDED.is_violation,
		violation_type = EXCLUDED.violation_type,
		restart_available = EXCLUDED.restart_available,
		restart_start = EXCLUDED.restart_start,
		restart_end = EXCLUDED.restart_end;
	`,
		c.DriverID, c.CycleStart.Format("2006-01-02"), c.CycleEnd.Format("2006-01-02"),
		c.TotalCycleHours, c.RemainingHours, c.IsViolation, c.ViolationType,
		c.RestartAvailable, fmtTimePtr(c.RestartStart), fmtTimePtr(c.RestartEnd),
	)
	if err != nil {
		return fmt.Errorf("save trip plan: upsert cycle window: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save trip plan: commit: %w", err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// isUniqueViolation matches unique-constraint failures from both the
// sqlite and pgx drivers without importing driver-specific error types.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}

func (r *SQLTripRepository) GetTripPlan(ctx context.Context, tripID string) (*domain.TripPlan, error) {
	trip, warnings, err := r.getTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	plan := &domain.TripPlan{Trip: trip, Warnings: warnings}

	if plan.Waypoints, err = r.listWaypoints(ctx, tripID); err != nil {
		return nil, err
	}
	if plan.FuelStops, err = r.listFuelStops(ctx, tripID); err != nil {
		return nil, err
	}
	if plan.RestBreaks, err = r.listRestBreaks(ctx, tripID); err != nil {
		return nil, err
	}
	if plan.DailyLogs, err = r.listDailyLogs(ctx, tripID); err != nil {
		return nil, err
	}
	if err = r.latestCycle(ctx, trip.DriverID, plan); err != nil {
		return nil, err
	}

	return plan, nil
}

func (r *SQLTripRepository) getTrip(ctx context.Context, tripID string) (*domain.Trip, []string, error) {
	q := `
	SELECT id, driver_id, tractor_id, COALESCE(trailer_id, ''), COALESCE(load_id, ''),
		current_location, pickup_location, dropoff_location,
		cycle_hours_used, start_time, estimated_end_time, actual_end_time,
		estimated_miles, actual_miles, status, compliance_warnings
	FROM trips WHERE id = $1;
	`
	var t domain.Trip
	var startRaw, estEndRaw, warningsRaw string
	var actualEndRaw sql.NullString
	err := r.DB.QueryRowContext(ctx, q, tripID).Scan(
		&t.ID, &t.DriverID, &t.TractorID, &t.TrailerID, &t.LoadID,
		&t.CurrentLocation, &t.PickupLocation, &t.DropoffLocation,
		&t.CycleHoursUsedAtStart, &startRaw, &estEndRaw, &actualEndRaw,
		&t.EstimatedMiles, &t.ActualMiles, (*string)(&t.Status), &warningsRaw,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get trip %s: %w", tripID, err)
	}

	if t.StartTime, err = parseTime(startRaw); err != nil {
		return nil, nil, fmt.Errorf("get trip %s: %w", tripID, err)
	}
	if t.EstimatedEndTime, err = parseTime(estEndRaw); err != nil {
		return nil, nil, fmt.Errorf("get trip %s: %w", tripID, err)
	}
	if actualEndRaw.Valid {
		end, err := parseTime(actualEndRaw.String)
		if err != nil {
			return nil, nil, fmt.Errorf("get trip %s: %w", tripID, err)
		}
		t.ActualEndTime = &end
	}

	var warnings []string
	if warningsRaw != "" {
		warnings = strings.Split(warningsRaw, "\n")
	}
	return &t, warnings, nil
}

func (r *SQLTripRepository) listWaypoints(ctx context.Context, tripID string) ([]domain.Waypoint, error) {
	rows, err := r.DB.QueryContext(ctx, `
	SELECT trip_id, sequence, location_name, lat, lng, estimated_arrival, waypoint_type
	FROM waypoints WHERE trip_id = $1 ORDER BY sequence;
	`, tripID)
	if err != nil {
		return nil, fmt.Errorf("list waypoints: %w", err)
	}
	defer rows.Close()

	var out []domain.Waypoint
	for rows.Next() {
		var wp domain.Waypoint
		var etaRaw, wt string
		if err := rows.Scan(&wp.TripID, &wp.Sequence, &wp.LocationName, &wp.Lat, &wp.Lng, &etaRaw, &wt); err != nil {
			return nil, fmt.Errorf("list waypoints: scan: %w", err)
		}
		if wp.EstimatedArrival, err = parseTime(etaRaw); err != nil {
			return nil, fmt.Errorf("list waypoints: %w", err)
		}
		wp.Type = domain.WaypointType(wt)
		out = append(out, wp)
	}
	return out, rows.Err()
}

func (r *SQLTripRepository) listFuelStops(ctx context.Context, tripID string) ([]domain.FuelStop, error) {
	rows, err := r.DB.QueryContext(ctx, `
	SELECT trip_id, location, lat, lng, estimated_time, miles_from_start, completed
	FROM fuel_stops WHERE trip_id = $1 ORDER BY miles_from_start;
	`, tripID)
	if err != nil {
		return nil, fmt.Errorf("list fuel stops: %w", err)
	}
	defer rows.Close()

	var out []domain.FuelStop
	for rows.Next() {
		var fs domain.FuelStop
		var etaRaw string
		if err := rows.Scan(&fs.TripID, &fs.Location, &fs.Lat, &fs.Lng, &etaRaw, &fs.MilesFromStart, &fs.Completed); err != nil {
			return nil, fmt.Errorf("list fuel stops: scan: %w", err)
		}
		if fs.EstimatedTime, err = parseTime(etaRaw); err != nil {
			return nil, fmt.Errorf("list fuel stops: %w", err)
		}
		out = append(out, fs)
	}
	return out, rows.Err()
}

func (r *SQLTripRepository) listRestBreaks(ctx context.Context, tripID string) ([]domain.RestBreak, error) {
	rows, err := r.DB.QueryContext(ctx, `
	SELECT trip_id, break_type, location, scheduled_start, scheduled_end, completed, notes
	FROM rest_breaks WHERE trip_id = $1 ORDER BY scheduled_start;
	`, tripID)
	if err != nil {
		return nil, fmt.Errorf("list rest breaks: %w", err)
	}
	defer rows.Close()

	var out []domain.RestBreak
	for rows.Next() {
		var rb domain.RestBreak
		var bt, startRaw, endRaw string
		if err := rows.Scan(&rb.TripID, &bt, &rb.Location, &startRaw, &endRaw, &rb.Completed, &rb.Notes); err != nil {
			return nil, fmt.Errorf("list rest breaks: scan: %w", err)
		}
		rb.Type = domain.BreakType(bt)
		if rb.ScheduledStart, err = parseTime(startRaw); err != nil {
			return nil, fmt.Errorf("list rest breaks: %w", err)
		}
		if rb.ScheduledEnd, err = parseTime(endRaw); err != nil {
			return nil, fmt.Errorf("list rest breaks: %w", err)
		}
		out = append(out, rb)
	}
	return out, rows.Err()
}

func (r *SQLTripRepository) listDailyLogs(ctx context.Context, tripID string) ([]*domain.DailyLog, error) {
	rows, err := r.DB.QueryContext(ctx, `
	SELECT id, trip_id, driver_id, log_date,
		total_off_duty, total_sleeper_berth, total_driving, total_on_duty, total_duty_time,
		miles_driven, hos_violation, violation_notes
	FROM log_sheets WHERE trip_id = $1 ORDER BY log_date;
	`, tripID)
	if err != nil {
		return nil, fmt.Errorf("list daily logs: %w", err)
	}
	defer rows.Close()

	var out []*domain.DailyLog
	ids := make([]string, 0, 4)
	for rows.Next() {
		var l domain.DailyLog
		var id string
		var dateRaw string
		if err := rows.Scan(
			&id, &l.TripID, &l.DriverID, &dateRaw,
			&l.TotalOffDuty, &l.TotalSleeperBerth, &l.TotalDriving, &l.TotalOnDuty, &l.TotalDutyTime,
			&l.MilesDriven, &l.HOSViolation, &l.ViolationNotes,
		); err != nil {
			return nil, fmt.Errorf("list daily logs: scan: %w", err)
		}
		date, err := time.ParseInLocation("2006-01-02", dateRaw, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("list daily logs: parse date %q: %w", dateRaw, err)
		}
		l.Date = date
		out = append(out, &l)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list daily logs: %w", err)
	}

	for i, id := range ids {
		periods, err := r.listDutyPeriods(ctx, id)
		if err != nil {
			return nil, err
		}
		out[i].Periods = periods
	}
	return out, nil
}

func (r *SQLTripRepository) listDutyPeriods(ctx context.Context, logSheetID string) ([]domain.DutyPeriod, error) {
	rows, err := r.DB.QueryContext(ctx, `
	SELECT duty_status, start_time, end_time, location, activity, vehicle_moved
	FROM duty_periods WHERE log_sheet_id = $1 ORDER BY start_time;
	`, logSheetID)
	if err != nil {
		return nil, fmt.Errorf("list duty periods: %w", err)
	}
	defer rows.Close()

	var out []domain.DutyPeriod
	for rows.Next() {
		var p domain.DutyPeriod
		var statusRaw, startRaw, endRaw string
		if err := rows.Scan(&statusRaw, &startRaw, &endRaw, &p.Location, &p.ActivityDescription, &p.VehicleMoved); err != nil {
			return nil, fmt.Errorf("list duty periods: scan: %w", err)
		}
		if p.Status, err = domain.ParseDutyStatus(statusRaw); err != nil {
			return nil, fmt.Errorf("list duty periods: %w", err)
		}
		if p.Start, err = parseTime(startRaw); err != nil {
			return nil, fmt.Errorf("list duty periods: %w", err)
		}
		if p.End, err = parseTime(endRaw); err != nil {
			return nil, fmt.Errorf("list duty periods: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLTripRepository) latestCycle(ctx context.Context, driverID string, plan *domain.TripPlan) error {
	q := `
	SELECT driver_id, cycle_start, cycle_end, total_cycle_hours, remaining_hours,
		is_violation, violation_type, restart_available, restart_start, restart_end
	FROM hos_cycles WHERE driver_id = $1 ORDER BY cycle_end DESC LIMIT 1;
	`
	var c domain.CycleWindow
	var startRaw, endRaw string
	var restartStart, restartEnd sql.NullString
	err := r.DB.QueryRowContext(ctx, q, driverID).Scan(
		&c.DriverID, &startRaw, &endRaw, &c.TotalCycleHours, &c.RemainingHours,
		&c.IsViolation, &c.ViolationType, &c.RestartAvailable, &restartStart, &restartEnd,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("latest cycle: %w", err)
	}

	if c.CycleStart, err = time.ParseInLocation("2006-01-02", startRaw, time.UTC); err != nil {
		return fmt.Errorf("latest cycle: %w", err)
	}
	if c.CycleEnd, err = time.ParseInLocation("2006-01-02", endRaw, time.UTC); err != nil {
		return fmt.Errorf("latest cycle: %w", err)
	}
	if restartStart.Valid {
		t, err := parseTime(restartStart.String)
		if err != nil {
			return fmt.Errorf("latest cycle: %w", err)
		}
		c.RestartStart = &t
	}
	if restartEnd.Valid {
		t, err := parseTime(restartEnd.String)
		if err != nil {
			return fmt.Errorf("latest cycle: %w", err)
		}
		c.RestartEnd = &t
	}

	plan.Cycle = c
	return nil
}

func (r *SQLTripRepository) ListTrips(ctx context.Context) ([]*domain.Trip, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id FROM trips ORDER BY start_time;`)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list trips: scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}

	out := make([]*domain.Trip, 0, len(ids))
	for _, id := range ids {
		trip, _, err := r.getTrip(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, trip)
	}
	return out, nil
}

func (r *SQLTripRepository) UpdateTrip(ctx context.Context, trip *domain.Trip) error {
	res, err := r.DB.ExecContext(ctx, `
	UPDATE trips SET status = $1, start_time = $2, actual_end_time = $3, actual_miles = $4
	WHERE id = $5;
	`, string(trip.Status), fmtTime(trip.StartTime), fmtTimePtr(trip.ActualEndTime), trip.ActualMiles, trip.ID)
	if err != nil {
		return fmt.Errorf("update trip %s: %w", trip.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update trip %s: rows affected: %w", trip.ID, err)
	}
	if n == 0 {
		return ports.ErrNotFound
	}
	return nil
}
