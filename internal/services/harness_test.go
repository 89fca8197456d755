package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"booking-capacity-service/internal/adapters/geo"
	"booking-capacity-service/internal/adapters/repositories"
	"booking-capacity-service/internal/domain"
	"booking-capacity-service/internal/ports"

	_ "modernc.org/sqlite"
)

var testDepot = domain.Coordinates{Lat: 33.4484, Lon: -112.0740}

// openTestDB creates a throwaway on-disk database so concurrent connections
// from the pool all see the same data (in-memory SQLite is per-connection).
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := repositories.InitSchema(db); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	return db
}

func seedVehicle(t *testing.T, db *sql.DB, id, capacity int, active bool) {
	t.Helper()

	_, err := db.Exec(`
	INSERT INTO vehicles (vehicle_id, name, capacity_units, active, depot_lat, depot_lon)
	VALUES (?, ?, ?, ?, ?, ?);
	`, id, "test vehicle", capacity, active, testDepot.Lat, testDepot.Lon)
	if err != nil {
		t.Fatalf("seed vehicle %d: %v", id, err)
	}
}

type captureNotifier struct {
	events []ports.BookingConfirmedEvent
}

func (n *captureNotifier) BookingConfirmed(ctx context.Context, ev ports.BookingConfirmedEvent) error {
	n.events = append(n.events, ev)
	return nil
}

// bookingFixture wires a BookingService against a real SQLite store with an
// in-memory calendar and postal directory. Fleet capacity totals 100 units
// (60 + 40 active, one inactive vehicle that must not count).
type bookingFixture struct {
	service  *BookingService
	store    ports.BookingStore
	ledger   ports.CapacityLedger
	calStore *fakeCalendarStore
	notifier *captureNotifier
	db       *sql.DB
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	db := openTestDB(t)
	seedVehicle(t, db, 1, 60, true)
	seedVehicle(t, db, 2, 40, true)
	seedVehicle(t, db, 3, 500, false)

	calStore := &fakeCalendarStore{}
	calendar, err := NewCalendar(calStore, 8, 18, 2)
	if err != nil {
		t.Fatalf("NewCalendar: %v", err)
	}

	directory := geo.NewMapDirectory(map[string]domain.Coordinates{
		"85004": {Lat: 33.4512, Lon: -112.0703},
	})
	resolver, err := geo.NewStaticResolver(testDepot, 50, directory)
	if err != nil {
		t.Fatalf("NewStaticResolver: %v", err)
	}

	store := repositories.NewSqliteBookingStore(db)
	notifier := &captureNotifier{}

	return &bookingFixture{
		service: &BookingService{
			Store:           store,
			Resolver:        resolver,
			Calendar:        calendar,
			Vehicles:        repositories.NewSqliteVehicleRepository(db),
			Notifier:        notifier,
			PrecheckTimeout: 2 * time.Second,
			CommitTimeout:   5 * time.Second,
		},
		store:    store,
		ledger:   repositories.NewSqliteCapacityLedger(db),
		calStore: calStore,
		notifier: notifier,
		db:       db,
	}
}

func (f *bookingFixture) reservedAt(t *testing.T, slot domain.SlotKey) int {
	t.Helper()

	n, err := f.ledger.Reserved(context.Background(), slot)
	if err != nil {
		t.Fatalf("reserved at %v: %v", slot, err)
	}
	return n
}

func (f *bookingFixture) countRows(t *testing.T, table string) int {
	t.Helper()

	var n int
	if err := f.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
