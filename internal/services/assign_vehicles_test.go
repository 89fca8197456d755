package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"booking-capacity-service/internal/adapters/repositories"
	"booking-capacity-service/internal/domain"
	"booking-capacity-service/internal/ports"

	"github.com/google/uuid"
)

type assignFixture struct {
	service *AssignmentService
	store   ports.BookingStore
	db      *sql.DB
}

func newAssignFixture(t *testing.T, capacities ...int) *assignFixture {
	t.Helper()

	db := openTestDB(t)
	for i, c := range capacities {
		seedVehicle(t, db, i+1, c, true)
	}

	store := repositories.NewSqliteBookingStore(db)
	return &assignFixture{
		service: &AssignmentService{
			Store:    store,
			Vehicles: repositories.NewSqliteVehicleRepository(db),
		},
		store: store,
		db:    db,
	}
}

// seedConfirmed writes a confirmed booking directly through the store, with a
// slot total high enough that capacity never interferes with the plan shape.
func (f *assignFixture) seedConfirmed(t *testing.T, zone domain.ZoneTag, amount, startHour int) uuid.UUID {
	t.Helper()

	start := time.Date(2026, 9, 10, startHour, 0, 0, 0, time.UTC)
	key := uuid.NewString()
	b := &domain.Booking{
		ID:             uuid.New(),
		CustomerRef:    "cust-1",
		Window:         domain.Window{Start: start, End: start.Add(2 * time.Hour)},
		Amount:         amount,
		Zone:           zone,
		IdempotencyKey: key,
		ReservationID:  uuid.New(),
	}

	existing, err := f.store.CreateConfirmed(context.Background(), ports.CreateConfirmedArgs{
		Booking:   b,
		Record:    domain.IdempotencyRecord{Key: key, BookingID: b.ID, Fingerprint: "fp-" + key},
		SlotTotal: 1000,
	})
	if err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	if existing != nil {
		t.Fatalf("seed booking: unexpected idempotency hit")
	}

	return b.ID
}

func (f *assignFixture) vehicleOf(t *testing.T, id uuid.UUID) *int {
	t.Helper()

	b, err := f.store.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	return b.VehicleID
}

func loadFor(plan *domain.AssignmentPlan, vehicleID int) *domain.VehicleLoad {
	for i := range plan.Loads {
		if plan.Loads[i].VehicleID == vehicleID {
			return &plan.Loads[i]
		}
	}
	return nil
}

func TestAssignVehiclesGreedyPacking(t *testing.T) {
	f := newAssignFixture(t, 40, 40, 80)
	ctx := context.Background()

	// Zones are walked lexically: E1 before N1. Within E1 the 30-unit booking
	// comes first by window start, leaves no room for 20 on vehicle 1.
	east1 := f.seedConfirmed(t, "E1", 30, 8)
	east2 := f.seedConfirmed(t, "E1", 20, 10)
	north := f.seedConfirmed(t, "N1", 50, 8)

	plan, err := f.service.AssignVehicles(ctx, "2026-09-10", false)
	if err != nil {
		t.Fatalf("AssignVehicles: %v", err)
	}

	if len(plan.Unassigned) != 0 {
		t.Fatalf("unassigned = %v, want none", plan.Unassigned)
	}
	if got := plan.TotalAssigned(); got != 3 {
		t.Fatalf("total assigned = %d, want 3", got)
	}

	l1 := loadFor(plan, 1)
	if l1 == nil || l1.UsedUnits != 30 {
		t.Errorf("vehicle 1 load = %+v, want 30 used", l1)
	}
	l2 := loadFor(plan, 2)
	if l2 == nil || l2.UsedUnits != 20 {
		t.Errorf("vehicle 2 load = %+v, want 20 used", l2)
	}
	l3 := loadFor(plan, 3)
	if l3 == nil || l3.UsedUnits != 50 {
		t.Errorf("vehicle 3 load = %+v, want 50 used", l3)
	}

	// Assignments are persisted, and a vehicle never carries two zones.
	for id, want := range map[uuid.UUID]int{east1: 1, east2: 2, north: 3} {
		got := f.vehicleOf(t, id)
		if got == nil || *got != want {
			t.Errorf("booking %s assigned to %v, want vehicle %d", id, got, want)
		}
	}
}

func TestAssignVehiclesExcessGoesUnassigned(t *testing.T) {
	f := newAssignFixture(t, 40)
	ctx := context.Background()

	fits := f.seedConfirmed(t, "E1", 30, 8)
	excess := f.seedConfirmed(t, "E1", 30, 10)

	plan, err := f.service.AssignVehicles(ctx, "2026-09-10", false)
	if err != nil {
		t.Fatalf("AssignVehicles: %v", err)
	}

	if len(plan.Unassigned) != 1 || plan.Unassigned[0] != excess {
		t.Fatalf("unassigned = %v, want [%s]", plan.Unassigned, excess)
	}
	if got := f.vehicleOf(t, fits); got == nil || *got != 1 {
		t.Errorf("fitting booking assigned to %v, want vehicle 1", got)
	}
	if got := f.vehicleOf(t, excess); got != nil {
		t.Errorf("excess booking assigned to vehicle %d, want none", *got)
	}

	// Excess never unwinds the booking itself.
	b, err := f.store.GetByID(ctx, excess)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if b.Status != domain.BookingStatusConfirmed {
		t.Errorf("excess booking status = %q, want confirmed", b.Status)
	}
}

func TestAssignVehiclesRerunKeepsAssignments(t *testing.T) {
	f := newAssignFixture(t, 40, 40)
	ctx := context.Background()

	f.seedConfirmed(t, "E1", 30, 8)
	f.seedConfirmed(t, "E1", 20, 10)

	first, err := f.service.AssignVehicles(ctx, "2026-09-10", false)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}

	// A later booking arrives; the rerun must respect existing load instead
	// of packing vehicle 1 from zero.
	late := f.seedConfirmed(t, "E1", 10, 12)

	second, err := f.service.AssignVehicles(ctx, "2026-09-10", false)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(second.Unassigned) != 0 {
		t.Fatalf("unassigned = %v, want none", second.Unassigned)
	}

	l1 := loadFor(second, 1)
	if l1 == nil || l1.UsedUnits != 40 {
		t.Errorf("vehicle 1 load = %+v, want 40 used (30 kept + 10 new)", l1)
	}
	if got := f.vehicleOf(t, late); got == nil || *got != 1 {
		t.Errorf("late booking assigned to %v, want vehicle 1", got)
	}

	// Earlier assignments are untouched.
	for _, l := range first.Loads {
		for _, id := range l.BookingIDs {
			got := f.vehicleOf(t, id)
			if got == nil || *got != l.VehicleID {
				t.Errorf("booking %s moved from vehicle %d to %v on rerun", id, l.VehicleID, got)
			}
		}
	}
}

func TestAssignVehiclesRejectsBadDate(t *testing.T) {
	f := newAssignFixture(t, 40)

	_, err := f.service.AssignVehicles(context.Background(), "09/10/2026", false)
	if !domain.IsReason(err, domain.ReasonValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestAssignVehiclesEmptyDay(t *testing.T) {
	f := newAssignFixture(t, 40)

	plan, err := f.service.AssignVehicles(context.Background(), "2026-09-10", false)
	if err != nil {
		t.Fatalf("AssignVehicles: %v", err)
	}
	if len(plan.Loads) != 0 || len(plan.Unassigned) != 0 {
		t.Errorf("empty day produced plan %+v", plan)
	}
}
