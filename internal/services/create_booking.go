package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"booking-capacity-service/internal/domain"
	"booking-capacity-service/internal/platform/obs"
	"booking-capacity-service/internal/ports"

	"github.com/google/uuid"
)

// CreateBooking runs the engine's central protocol: idempotency lookup,
// service-area and blackout pre-checks, then one atomic unit that reserves
// capacity, writes the idempotency record, and commits the confirmed booking.
// A request that fails at any step leaves no partial state. replayed is true
// when the key had already committed and the original booking is returned.
func (s *BookingService) CreateBooking(ctx context.Context, req domain.BookingRequest) (b *domain.Booking, replayed bool, err error) {
	defer obs.Time(ctx, "create_booking")(&err)

	if err := validateRequest(req); err != nil {
		return nil, false, err
	}

	req.Window.Start = req.Window.Start.UTC()
	req.Window.End = req.Window.End.UTC()
	fingerprint := req.Fingerprint()

	// Steps 1-3 are read-only and individually retryable, so they run under
	// their own deadline.
	pctx, cancel := context.WithTimeout(ctx, s.PrecheckTimeout)
	defer cancel()

	rec, err := s.Store.FindIdempotency(pctx, req.IdempotencyKey)
	if err != nil {
		return nil, false, fmt.Errorf("create booking: %w", err)
	}
	if rec != nil {
		b, err := s.replay(ctx, rec, fingerprint)
		return b, true, err
	}

	res, err := s.Resolver.Resolve(pctx, req.Location)
	if err != nil {
		return nil, false, fmt.Errorf("create booking: %w", err)
	}
	if !res.Admit {
		rej := domain.Reject(domain.ReasonOutOfServiceArea,
			"location %s is %.1f km from the depot", req.Location, res.DistanceKm)
		rej.Window = &req.Window
		rej.Location = &req.Location
		rej.Amount = req.Amount
		return nil, false, rej
	}

	ow, ok, err := s.Calendar.WindowAt(pctx, req.Window, res.Zone)
	if err != nil {
		return nil, false, fmt.Errorf("create booking: %w", err)
	}
	if !ok {
		rej := domain.Reject(domain.ReasonValidation,
			"window %s..%s does not match the slot grid",
			req.Window.Start.Format(time.RFC3339), req.Window.End.Format(time.RFC3339))
		rej.Window = &req.Window
		return nil, false, rej
	}
	if ow.Closed {
		rej := domain.Reject(domain.ReasonBlackout,
			"slot %s %s is blacked out", req.Window.Key().Date, req.Window.Key().Start)
		rej.Window = &req.Window
		rej.Location = &req.Location
		rej.Amount = req.Amount
		return nil, false, rej
	}

	fleet, err := fleetCapacity(pctx, s.Vehicles)
	if err != nil {
		return nil, false, fmt.Errorf("create booking: %w", err)
	}
	total := slotTotal(fleet, ow.CapacityDelta)

	// Steps 4-5: the only part needing transactional atomicity. The store
	// either commits reservation + idempotency record + booking together or
	// rolls all of them back.
	cctx, cancelCommit := context.WithTimeout(ctx, s.CommitTimeout)
	defer cancelCommit()

	booking := &domain.Booking{
		ID:             uuid.New(),
		CustomerRef:    req.CustomerRef,
		Location:       req.Location,
		Window:         req.Window,
		Amount:         req.Amount,
		Zone:           res.Zone,
		IdempotencyKey: req.IdempotencyKey,
		ReservationID:  uuid.New(),
		Notes:          req.Notes,
	}

	existing, err := s.Store.CreateConfirmed(cctx, ports.CreateConfirmedArgs{
		Booking: booking,
		Record: domain.IdempotencyRecord{
			Key:         req.IdempotencyKey,
			BookingID:   booking.ID,
			Fingerprint: fingerprint,
		},
		SlotTotal: total,
	})
	if err != nil {
		return nil, false, fmt.Errorf("create booking: %w", err)
	}
	if existing != nil {
		// Lost the insert race to a concurrent retry with the same key.
		b, err := s.replay(ctx, existing, fingerprint)
		return b, true, err
	}

	// Step 6: emit only after commit; a notification failure never unwinds
	// the booking.
	if s.Notifier != nil {
		ev := ports.BookingConfirmedEvent{
			BookingID:   booking.ID,
			CustomerRef: booking.CustomerRef,
			Slot:        booking.Window.Key(),
			Amount:      booking.Amount,
			Zone:        booking.Zone,
		}
		if err := s.Notifier.BookingConfirmed(ctx, ev); err != nil {
			log.Printf("booking confirmed notification failed: booking_id=%s err=%v", booking.ID, err)
		}
	}

	return booking, false, nil
}

// replay resolves a previously seen idempotency key: identical payloads get
// the original booking back, diverging ones are a caller error.
func (s *BookingService) replay(ctx context.Context, rec *domain.IdempotencyRecord, fingerprint string) (*domain.Booking, error) {
	if rec.Fingerprint != fingerprint {
		return nil, domain.Reject(domain.ReasonIdempotencyConflict,
			"idempotency key %q was already used for a different request", rec.Key)
	}

	b, err := s.Store.GetByID(ctx, rec.BookingID)
	if err != nil {
		return nil, fmt.Errorf("replay booking for key %q: %w", rec.Key, err)
	}
	return b, nil
}

func validateRequest(req domain.BookingRequest) error {
	if strings.TrimSpace(req.IdempotencyKey) == "" {
		return domain.Reject(domain.ReasonValidation, "idempotency key is required")
	}
	if strings.TrimSpace(req.CustomerRef) == "" {
		return domain.Reject(domain.ReasonValidation, "customer reference is required")
	}
	if req.Amount <= 0 {
		return domain.Reject(domain.ReasonValidation, "amount must be positive, got %d", req.Amount)
	}
	if !req.Window.End.After(req.Window.Start) {
		return domain.Reject(domain.ReasonValidation, "window end must be after start")
	}
	if req.Location.Coords == nil && strings.TrimSpace(req.Location.PostalCode) == "" {
		return domain.Reject(domain.ReasonValidation, "location requires coordinates or a postal code")
	}
	return nil
}
