package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Initialize the database schema.
// The idempotency-key uniqueness and the reservation table shape are
// load-bearing: the booking commit protocol relies on both.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createVehiclesQuery := `
	CREATE TABLE IF NOT EXISTS vehicles (
		vehicle_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		capacity_units INTEGER NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		depot_lat REAL NOT NULL,
		depot_lon REAL NOT NULL
	);
	`

	createPostalCodesQuery := `
	CREATE TABLE IF NOT EXISTS postal_codes (
		code TEXT PRIMARY KEY,
		lat REAL NOT NULL,
		lon REAL NOT NULL
	);
	`

	createBlackoutsQuery := `
	CREATE TABLE IF NOT EXISTS blackout_dates (
		date TEXT NOT NULL,
		scope TEXT NOT NULL DEFAULT '',
		reason TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (date, scope)
	);
	`

	createOverridesQuery := `
	CREATE TABLE IF NOT EXISTS availability_overrides (
		override_id TEXT PRIMARY KEY,
		starts_at TEXT NOT NULL,
		ends_at TEXT NOT NULL,
		delta INTEGER NOT NULL,
		reopen INTEGER NOT NULL DEFAULT 0,
		reason TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);
	`

	createBookingsQuery := `
	CREATE TABLE IF NOT EXISTS bookings (
		booking_id TEXT PRIMARY KEY,
		customer_ref TEXT NOT NULL,
		postal_code TEXT NOT NULL DEFAULT '',
		lat REAL,
		lon REAL,
		window_start TEXT NOT NULL,
		window_end TEXT NOT NULL,
		slot_date TEXT NOT NULL,
		slot_start TEXT NOT NULL,
		amount INTEGER NOT NULL,
		zone TEXT NOT NULL,
		status TEXT NOT NULL,
		idempotency_key TEXT NOT NULL UNIQUE,
		reservation_id TEXT NOT NULL,
		vehicle_id INTEGER,
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	createReservationsQuery := `
	CREATE TABLE IF NOT EXISTS capacity_reservations (
		reservation_id TEXT PRIMARY KEY,
		booking_id TEXT NOT NULL,
		slot_date TEXT NOT NULL,
		slot_start TEXT NOT NULL,
		amount INTEGER NOT NULL,
		released INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);
	`

	createIdempotencyQuery := `
	CREATE TABLE IF NOT EXISTS idempotency_records (
		idempotency_key TEXT PRIMARY KEY,
		booking_id TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`

	createBookingSlotIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_bookings_slot_date
	ON bookings(slot_date, status);
	`

	createReservationSlotIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_reservations_slot
	ON capacity_reservations(slot_date, slot_start, released);
	`

	statements := []string{
		createVehiclesQuery,
		createPostalCodesQuery,
		createBlackoutsQuery,
		createOverridesQuery,
		createBookingsQuery,
		createReservationsQuery,
		createIdempotencyQuery,
		createBookingSlotIndexQuery,
		createReservationSlotIndexQuery,
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

type VehicleSeed struct {
	VehicleID     int     `json:"vehicle_id"`
	Name          string  `json:"name"`
	CapacityUnits int     `json:"capacity_units"`
	Active        bool    `json:"active"`
	DepotLat      float64 `json:"depot_lat"`
	DepotLon      float64 `json:"depot_lon"`
}

// Populate the fleet table from a JSON file.
func SeedVehiclesFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed vehicles: read %q: %w", jsonPath, err)
	}

	var data []VehicleSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed vehicles: parse json: %w", err)
	}

	for i, v := range data {
		if v.VehicleID <= 0 {
			return fmt.Errorf("seed vehicles: invalid vehicle_id at index %d: %d", i+1, v.VehicleID)
		}
		if v.CapacityUnits <= 0 {
			return fmt.Errorf("seed vehicles: vehicle_id=%d: capacity_units must be positive", v.VehicleID)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed vehicles: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT OR REPLACE INTO vehicles (
		vehicle_id,
		name,
		capacity_units,
		active,
		depot_lat,
		depot_lon
	)
	VALUES (?, ?, ?, ?, ?, ?);
	`
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("seed vehicles: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, v := range data {
		if _, err := stmt.Exec(v.VehicleID, v.Name, v.CapacityUnits, v.Active, v.DepotLat, v.DepotLon); err != nil {
			return fmt.Errorf("seed vehicles: insert vehicle_id=%d: %w", v.VehicleID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed vehicles: commit tx: %w", err)
	}

	return nil
}

type PostalCodeSeed struct {
	Code string  `json:"code"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Populate the postal-code reference table from a JSON file.
func SeedPostalCodesFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed postal codes: read %q: %w", jsonPath, err)
	}

	var data []PostalCodeSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed postal codes: parse json: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed postal codes: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
	INSERT OR REPLACE INTO postal_codes (code, lat, lon)
	VALUES (?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("seed postal codes: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range data {
		code := strings.TrimSpace(p.Code)
		if code == "" {
			return fmt.Errorf("seed postal codes: empty code at index %d", i+1)
		}

		if _, err := stmt.Exec(code, p.Lat, p.Lon); err != nil {
			return fmt.Errorf("seed postal codes: insert code=%q: %w", code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed postal codes: commit tx: %w", err)
	}

	return nil
}

type ExceptionSeed struct {
	Blackouts []struct {
		Date   string `json:"date"`
		Scope  string `json:"scope"`
		Reason string `json:"reason"`
	} `json:"blackouts"`
	Overrides []struct {
		StartsAt  time.Time `json:"starts_at"`
		EndsAt    time.Time `json:"ends_at"`
		Delta     int       `json:"delta"`
		Reopen    bool      `json:"reopen"`
		Reason    string    `json:"reason"`
		CreatedBy string    `json:"created_by"`
	} `json:"overrides"`
}

// Populate blackout dates and availability overrides from a JSON file.
// These are normally authored through the administrative surface; seeding
// exists for local runs and demos.
func SeedExceptionsFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed exceptions: read %q: %w", jsonPath, err)
	}

	var data ExceptionSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed exceptions: parse json: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed exceptions: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	blackoutStmt, err := tx.Prepare(`
	INSERT OR REPLACE INTO blackout_dates (date, scope, reason)
	VALUES (?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("seed exceptions: prepare blackout insert: %w", err)
	}
	defer blackoutStmt.Close()

	for i, b := range data.Blackouts {
		if _, err := time.Parse("2006-01-02", b.Date); err != nil {
			return fmt.Errorf("seed exceptions: blackout at index %d: invalid date %q", i+1, b.Date)
		}
		if _, err := blackoutStmt.Exec(b.Date, b.Scope, b.Reason); err != nil {
			return fmt.Errorf("seed exceptions: insert blackout date=%q: %w", b.Date, err)
		}
	}

	overrideStmt, err := tx.Prepare(`
	INSERT OR REPLACE INTO availability_overrides (
		override_id, starts_at, ends_at, delta, reopen, reason, created_by, created_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("seed exceptions: prepare override insert: %w", err)
	}
	defer overrideStmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for i, o := range data.Overrides {
		if !o.EndsAt.After(o.StartsAt) {
			return fmt.Errorf("seed exceptions: override at index %d: ends_at must be after starts_at", i+1)
		}
		_, err := overrideStmt.Exec(
			uuid.New().String(),
			o.StartsAt.UTC().Format(time.RFC3339),
			o.EndsAt.UTC().Format(time.RFC3339),
			o.Delta,
			o.Reopen,
			o.Reason,
			o.CreatedBy,
			now,
		)
		if err != nil {
			return fmt.Errorf("seed exceptions: insert override at index %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed exceptions: commit tx: %w", err)
	}

	return nil
}
