package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the database schema. The DDL sticks to types and
// constraints that SQLite and Postgres both accept.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createDriversQuery := `
	CREATE TABLE IF NOT EXISTS drivers (
		id TEXT PRIMARY KEY,
		driver_number TEXT NOT NULL,
		name TEXT NOT NULL,
		initials TEXT NOT NULL DEFAULT '',
		home_operating_center TEXT NOT NULL DEFAULT '',
		license_number TEXT NOT NULL DEFAULT '',
		license_state TEXT NOT NULL DEFAULT ''
	);
	`

	createVehiclesQuery := `
	CREATE TABLE IF NOT EXISTS vehicles (
		id TEXT PRIMARY KEY,
		vehicle_number TEXT NOT NULL,
		vehicle_type TEXT NOT NULL CHECK (vehicle_type IN ('tractor', 'trailer')),
		make TEXT NOT NULL DEFAULT '',
		model TEXT NOT NULL DEFAULT '',
		year INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	);
	`

	createLoadsQuery := `
	CREATE TABLE IF NOT EXISTS loads (
		id TEXT PRIMARY KEY,
		load_number TEXT NOT NULL,
		shipper TEXT NOT NULL DEFAULT '',
		commodity TEXT NOT NULL DEFAULT '',
		weight_lbs INTEGER NOT NULL DEFAULT 0,
		pieces INTEGER NOT NULL DEFAULT 0,
		instructions TEXT NOT NULL DEFAULT ''
	);
	`

	createTripsQuery := `
	CREATE TABLE IF NOT EXISTS trips (
		id TEXT PRIMARY KEY,
		driver_id TEXT NOT NULL REFERENCES drivers(id),
		tractor_id TEXT NOT NULL REFERENCES vehicles(id),
		trailer_id TEXT REFERENCES vehicles(id),
		load_id TEXT REFERENCES loads(id),
		current_location TEXT NOT NULL,
		pickup_location TEXT NOT NULL,
		dropoff_location TEXT NOT NULL,
		cycle_hours_used REAL NOT NULL,
		start_time TEXT NOT NULL,
		trip_date TEXT NOT NULL,
		estimated_end_time TEXT NOT NULL,
		actual_end_time TEXT,
		estimated_miles REAL NOT NULL,
		actual_miles REAL NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		compliance_warnings TEXT NOT NULL DEFAULT ''
	);
	`

	createWaypointsQuery := `
	CREATE TABLE IF NOT EXISTS waypoints (
		trip_id TEXT NOT NULL REFERENCES trips(id),
		sequence INTEGER NOT NULL,
		location_name TEXT NOT NULL,
		lat REAL NOT NULL DEFAULT 0,
		lng REAL NOT NULL DEFAULT 0,
		estimated_arrival TEXT NOT NULL,
		waypoint_type TEXT NOT NULL,
		PRIMARY KEY (trip_id, sequence)
	);
	`

	createFuelStopsQuery := `
	CREATE TABLE IF NOT EXISTS fuel_stops (
		trip_id TEXT NOT NULL REFERENCES trips(id),
		location TEXT NOT NULL,
		lat REAL NOT NULL DEFAULT 0,
		lng REAL NOT NULL DEFAULT 0,
		estimated_time TEXT NOT NULL,
		miles_from_start REAL NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (trip_id, miles_from_start)
	);
	`

	createRestBreaksQuery := `
	CREATE TABLE IF NOT EXISTS rest_breaks (
		trip_id TEXT NOT NULL REFERENCES trips(id),
		break_type TEXT NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		scheduled_start TEXT NOT NULL,
		scheduled_end TEXT NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		notes TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (trip_id, scheduled_start)
	);
	`

	createLogSheetsQuery := `
	CREATE TABLE IF NOT EXISTS log_sheets (
		id TEXT PRIMARY KEY,
		trip_id TEXT NOT NULL REFERENCES trips(id),
		driver_id TEXT NOT NULL REFERENCES drivers(id),
		log_date TEXT NOT NULL,
		total_off_duty REAL NOT NULL,
		total_sleeper_berth REAL NOT NULL,
		total_driving REAL NOT NULL,
		total_on_duty REAL NOT NULL,
		total_duty_time REAL NOT NULL,
		miles_driven REAL NOT NULL,
		hos_violation BOOLEAN NOT NULL DEFAULT FALSE,
		violation_notes TEXT NOT NULL DEFAULT ''
	);
	`

	createDutyPeriodsQuery := `
	CREATE TABLE IF NOT EXISTS duty_periods (
		log_sheet_id TEXT NOT NULL REFERENCES log_sheets(id),
		duty_status TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		activity TEXT NOT NULL DEFAULT '',
		vehicle_moved BOOLEAN NOT NULL DEFAULT FALSE,
		grid_start_minute INTEGER NOT NULL,
		grid_end_minute INTEGER NOT NULL
	);
	`

	createCyclesQuery := `
	CREATE TABLE IF NOT EXISTS hos_cycles (
		driver_id TEXT NOT NULL REFERENCES drivers(id),
		cycle_start TEXT NOT NULL,
		cycle_end TEXT NOT NULL,
		total_cycle_hours REAL NOT NULL,
		remaining_hours REAL NOT NULL,
		is_violation BOOLEAN NOT NULL DEFAULT FALSE,
		violation_type TEXT NOT NULL DEFAULT '',
		restart_available BOOLEAN NOT NULL DEFAULT FALSE,
		restart_start TEXT,
		restart_end TEXT,
		PRIMARY KEY (driver_id, cycle_start)
	);
	`

	// Backs the one-trip-per-driver-per-day invariant across processes.
	createTripDayIndexQuery := `
	CREATE UNIQUE INDEX IF NOT EXISTS idx_trips_driver_date
	ON trips(driver_id, trip_date);
	`

	createLogSheetIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_log_sheets_trip
	ON log_sheets(trip_id, log_date);
	`

	statements := []string{
		createDriversQuery,
		createVehiclesQuery,
		createLoadsQuery,
		createTripsQuery,
		createWaypointsQuery,
		createFuelStopsQuery,
		createRestBreaksQuery,
		createLogSheetsQuery,
		createDutyPeriodsQuery,
		createCyclesQuery,
		createTripDayIndexQuery,
		createLogSheetIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type DriverSeed struct {
	ID                  string `json:"id"`
	DriverNumber        string `json:"driver_number"`
	Name                string `json:"name"`
	Initials            string `json:"initials"`
	HomeOperatingCenter string `json:"home_operating_center"`
	LicenseNumber       string `json:"license_number"`
	LicenseState        string `json:"license_state"`
}

type VehicleSeed struct {
	ID            string `json:"id"`
	VehicleNumber string `json:"vehicle_number"`
	VehicleType   string `json:"vehicle_type"`
	Make          string `json:"make"`
	Model         string `json:"model"`
	Year          int    `json:"year"`
	IsActive      bool   `json:"is_active"`
}

type LoadSeed struct {
	ID           string `json:"id"`
	LoadNumber   string `json:"load_number"`
	Shipper      string `json:"shipper"`
	Commodity    string `json:"commodity"`
	WeightLbs    int    `json:"weight_lbs"`
	Pieces       int    `json:"pieces"`
	Instructions string `json:"instructions"`
}

type SeedFile struct {
	Drivers  []DriverSeed  `json:"drivers"`
	Vehicles []VehicleSeed `json:"vehicles"`
	Loads    []LoadSeed    `json:"loads"`
}

// Populate the reference tables (drivers, vehicles, loads) from a JSON
// file. Upserts by id so reseeding is idempotent.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed reference data: read %q: %w", jsonPath, err)
	}

	var data SeedFile
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed reference data: parse json: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed reference data: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, d := range data.Drivers {
		if strings.TrimSpace(d.ID) == "" || strings.TrimSpace(d.Name) == "" {
			return fmt.Errorf("seed reference data: driver at index %d: id and name are required", i+1)
		}
		_, err := tx.Exec(`
		INSERT INTO drivers (id, driver_number, name, initials, home_operating_center, license_number, license_state)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET
			driver_number = EXCLUDED.driver_number,
			name = EXCLUDED.name,
			initials = EXCLUDED.initials,
			home_operating_center = EXCLUDED.home_operating_center,
			license_number = EXCLUDED.license_number,
			license_state = EXCLUDED.license_state;
		`, d.ID, d.DriverNumber, d.Name, d.Initials, d.HomeOperatingCenter, d.LicenseNumber, d.LicenseState)
		if err != nil {
			return fmt.Errorf("seed reference data: insert driver %s: %w", d.ID, err)
		}
	}

	for i, v := range data.Vehicles {
		if strings.TrimSpace(v.ID) == "" {
			return fmt.Errorf("seed reference data: vehicle at index %d: id is required", i+1)
		}
		if v.VehicleType != "tractor" && v.VehicleType != "trailer" {
			return fmt.Errorf("seed reference data: vehicle %s: invalid type %q", v.ID, v.VehicleType)
		}
		_, err := tx.Exec(`
		INSERT INTO vehicles (id, vehicle_number, vehicle_type, make, model, year, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET
			vehicle_number = EXCLUDED.vehicle_number,
			vehicle_type = EXCLUDED.vehicle_type,
			make = EXCLUDED.make,
			model = EXCLUDED.model,
			year = EXCLUDED.year,
			is_active = EXCLUDED.is_active;
		`, v.ID, v.VehicleNumber, v.VehicleType, v.Make, v.Model, v.Year, v.IsActive)
		if err != nil {
			return fmt.Errorf("seed reference data: insert vehicle %s: %w", v.ID, err)
		}
	}

	for i, l := range data.Loads {
		if strings.TrimSpace(l.ID) == "" {
			return fmt.Errorf("seed reference data: load at index %d: id is required", i+1)
		}
		_, err := tx.Exec(`
		INSERT INTO loads (id, load_number, shipper, commodity, weight_lbs, pieces, instructions)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET
			load_number = EXCLUDED.load_number,
			shipper = EXCLUDED.shipper,
			commodity = EXCLUDED.commodity,
			weight_lbs = EXCLUDED.weight_lbs,
			pieces = EXCLUDED.pieces,
			instructions = EXCLUDED.instructions;
		`, l.ID, l.LoadNumber, l.Shipper, l.Commodity, l.WeightLbs, l.Pieces, l.Instructions)
		if err != nil {
			return fmt.Errorf("seed reference data: insert load %s: %w", l.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed reference data: commit tx: %w", err)
	}

	return nil
}
