package ports

import (
	"context"
	"errors"

	"booking-capacity-service/internal/domain"

	"github.com/google/uuid"
)

// ErrBookingNotFound reports a lookup for a booking id that does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// CreateConfirmedArgs carries everything the atomic booking commit needs.
// The booking arrives with its reservation id pre-generated; SlotTotal is the
// computed capacity ceiling the reservation is checked against.
type CreateConfirmedArgs struct {
	Booking   *domain.Booking
	Record    domain.IdempotencyRecord
	SlotTotal int
}

// BookingStore is the transactional boundary around booking rows, their
// reservations, and the idempotency table.
type BookingStore interface {
	// CreateConfirmed inserts the idempotency record, the capacity
	// reservation, and the confirmed booking in one transaction. If another
	// request already committed the same idempotency key, the stored record
	// is returned and nothing is written. A reservation that would exceed
	// SlotTotal fails the whole unit with an insufficient_capacity rejection.
	CreateConfirmed(ctx context.Context, args CreateConfirmedArgs) (*domain.IdempotencyRecord, error)

	// FindIdempotency returns the record for a key, or nil when unseen.
	FindIdempotency(ctx context.Context, key string) (*domain.IdempotencyRecord, error)

	// GetByID fetches a booking or fails with ErrBookingNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)

	// Cancel flips a booking to cancelled and releases its reservation in the
	// same transaction. Cancelling a cancelled booking is a no-op.
	Cancel(ctx context.Context, id uuid.UUID) (*domain.Booking, error)

	// Complete marks a confirmed booking completed, with no capacity effect.
	Complete(ctx context.Context, id uuid.UUID) (*domain.Booking, error)

	// ListConfirmedForDate returns confirmed bookings whose slot falls on the
	// date (YYYY-MM-DD), ordered by window start then id.
	ListConfirmedForDate(ctx context.Context, date string) ([]*domain.Booking, error)

	// AssignVehicle records (or replaces) a booking's vehicle assignment.
	AssignVehicle(ctx context.Context, bookingID uuid.UUID, vehicleID int) error
}
