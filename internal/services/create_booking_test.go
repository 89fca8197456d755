package services

import (
	"context"
	"testing"
	"time"

	"booking-capacity-service/internal/domain"
)

func testRequest(key string, amount int) domain.BookingRequest {
	start := time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC)
	return domain.BookingRequest{
		CustomerRef:    "cust-1",
		Location:       domain.Location{Coords: &domain.Coordinates{Lat: 33.45, Lon: -112.07}},
		Window:         domain.Window{Start: start, End: start.Add(2 * time.Hour)},
		Amount:         amount,
		IdempotencyKey: key,
	}
}

func TestCreateBookingConfirmsAndReserves(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	req := testRequest("key-1", 60)
	booking, replayed, err := f.service.CreateBooking(ctx, req)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if replayed {
		t.Error("fresh booking reported as replayed")
	}
	if booking.Status != domain.BookingStatusConfirmed {
		t.Errorf("status = %q, want confirmed", booking.Status)
	}
	if booking.Zone == "" {
		t.Error("booking has no zone tag")
	}

	if got := f.reservedAt(t, req.Window.Key()); got != 60 {
		t.Errorf("reserved = %d, want 60", got)
	}
	if len(f.notifier.events) != 1 {
		t.Fatalf("notifier fired %d times, want 1", len(f.notifier.events))
	}
	if f.notifier.events[0].BookingID != booking.ID {
		t.Error("notification carries the wrong booking id")
	}

	stored, err := f.service.Get(ctx, booking.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Amount != 60 || stored.IdempotencyKey != "key-1" {
		t.Errorf("stored booking = amount %d key %q", stored.Amount, stored.IdempotencyKey)
	}
}

func TestCreateBookingInsufficientCapacity(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	if _, _, err := f.service.CreateBooking(ctx, testRequest("key-1", 60)); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	req := testRequest("key-2", 50)
	_, _, err := f.service.CreateBooking(ctx, req)
	if !domain.IsReason(err, domain.ReasonInsufficientCapacity) {
		t.Fatalf("err = %v, want insufficient_capacity", err)
	}

	// The failed attempt must leave no partial state behind.
	if got := f.reservedAt(t, req.Window.Key()); got != 60 {
		t.Errorf("reserved = %d after rejection, want 60", got)
	}
	if got := f.countRows(t, "bookings"); got != 1 {
		t.Errorf("bookings rows = %d, want 1", got)
	}
	rec, err := f.store.FindIdempotency(ctx, "key-2")
	if err != nil {
		t.Fatalf("FindIdempotency: %v", err)
	}
	if rec != nil {
		t.Error("rejected request left an idempotency record")
	}
}

func TestCreateBookingExactFit(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	req := testRequest("key-1", 100)
	if _, _, err := f.service.CreateBooking(ctx, req); err != nil {
		t.Fatalf("exact-fit booking: %v", err)
	}
	if got := f.reservedAt(t, req.Window.Key()); got != 100 {
		t.Errorf("reserved = %d, want 100", got)
	}
}

func TestCreateBookingOutOfServiceArea(t *testing.T) {
	f := newBookingFixture(t)

	req := testRequest("key-1", 10)
	req.Location = domain.Location{Coords: &domain.Coordinates{Lat: 36.17, Lon: -115.14}}

	_, _, err := f.service.CreateBooking(context.Background(), req)
	if !domain.IsReason(err, domain.ReasonOutOfServiceArea) {
		t.Fatalf("err = %v, want out_of_service_area", err)
	}
	if got := f.countRows(t, "capacity_reservations"); got != 0 {
		t.Errorf("reservations rows = %d after rejection, want 0", got)
	}
}

func TestCreateBookingUnknownPostalCode(t *testing.T) {
	f := newBookingFixture(t)

	req := testRequest("key-1", 10)
	req.Location = domain.Location{PostalCode: "99999"}

	_, _, err := f.service.CreateBooking(context.Background(), req)
	if !domain.IsReason(err, domain.ReasonUnknownLocation) {
		t.Fatalf("err = %v, want unknown_location", err)
	}
}

func TestCreateBookingPostalCodeResolves(t *testing.T) {
	f := newBookingFixture(t)

	req := testRequest("key-1", 10)
	req.Location = domain.Location{PostalCode: "85004"}

	booking, _, err := f.service.CreateBooking(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if booking.Zone == "" {
		t.Error("postal booking has no zone tag")
	}
}

func TestCreateBookingBlackout(t *testing.T) {
	f := newBookingFixture(t)
	f.calStore.blackouts = []domain.BlackoutDate{{Date: "2026-09-10", Reason: "holiday"}}

	_, _, err := f.service.CreateBooking(context.Background(), testRequest("key-1", 10))
	if !domain.IsReason(err, domain.ReasonBlackout) {
		t.Fatalf("err = %v, want blackout", err)
	}
	if got := f.countRows(t, "capacity_reservations"); got != 0 {
		t.Errorf("reservations rows = %d after blackout rejection, want 0", got)
	}
}

func TestCreateBookingReopenedSlotAccepts(t *testing.T) {
	f := newBookingFixture(t)
	f.calStore.blackouts = []domain.BlackoutDate{{Date: "2026-09-10", Reason: "holiday"}}
	f.calStore.overrides = []domain.AvailabilityOverride{
		{
			Window: domain.Window{
				Start: time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC),
				End:   time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC),
			},
			Delta:  -60,
			Reopen: true,
		},
	}

	// Fleet 100 with a -60 override leaves 40 units in the reopened slot.
	if _, _, err := f.service.CreateBooking(context.Background(), testRequest("key-1", 40)); err != nil {
		t.Fatalf("booking into reopened slot: %v", err)
	}
	_, _, err := f.service.CreateBooking(context.Background(), testRequest("key-2", 1))
	if !domain.IsReason(err, domain.ReasonInsufficientCapacity) {
		t.Fatalf("err = %v, want insufficient_capacity against the override total", err)
	}
}

func TestCreateBookingReplay(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	req := testRequest("key-1", 30)
	first, _, err := f.service.CreateBooking(ctx, req)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}

	second, replayed, err := f.service.CreateBooking(ctx, req)
	if err != nil {
		t.Fatalf("replay call: %v", err)
	}
	if !replayed {
		t.Error("second call with the same key not reported as replay")
	}
	if second.ID != first.ID {
		t.Errorf("replay returned booking %s, want %s", second.ID, first.ID)
	}

	if got := f.reservedAt(t, req.Window.Key()); got != 30 {
		t.Errorf("reserved = %d after replay, want 30 (charged once)", got)
	}
	if len(f.notifier.events) != 1 {
		t.Errorf("notifier fired %d times, want 1 (no re-emit on replay)", len(f.notifier.events))
	}
}

func TestCreateBookingIdempotencyConflict(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	if _, _, err := f.service.CreateBooking(ctx, testRequest("key-1", 30)); err != nil {
		t.Fatalf("first call: %v", err)
	}

	// Same key, different payload.
	_, _, err := f.service.CreateBooking(ctx, testRequest("key-1", 31))
	if !domain.IsReason(err, domain.ReasonIdempotencyConflict) {
		t.Fatalf("err = %v, want idempotency_conflict", err)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	cases := map[string]func(*domain.BookingRequest){
		"missing key":      func(r *domain.BookingRequest) { r.IdempotencyKey = " " },
		"missing customer": func(r *domain.BookingRequest) { r.CustomerRef = "" },
		"zero amount":      func(r *domain.BookingRequest) { r.Amount = 0 },
		"negative amount":  func(r *domain.BookingRequest) { r.Amount = -5 },
		"inverted window":  func(r *domain.BookingRequest) { r.Window.End = r.Window.Start },
		"no location":      func(r *domain.BookingRequest) { r.Location = domain.Location{} },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := testRequest("key-1", 10)
			mutate(&req)

			_, _, err := f.service.CreateBooking(ctx, req)
			if !domain.IsReason(err, domain.ReasonValidation) {
				t.Errorf("err = %v, want validation", err)
			}
		})
	}
}

func TestCreateBookingOffGridWindow(t *testing.T) {
	f := newBookingFixture(t)

	req := testRequest("key-1", 10)
	req.Window.Start = req.Window.Start.Add(time.Hour)
	req.Window.End = req.Window.End.Add(time.Hour)

	_, _, err := f.service.CreateBooking(context.Background(), req)
	if !domain.IsReason(err, domain.ReasonValidation) {
		t.Fatalf("err = %v, want validation for off-grid window", err)
	}
}
