package ports

import (
	"context"

	"booking-capacity-service/internal/domain"

	"github.com/google/uuid"
)

// CapacityLedger is the unit of truth for slot capacity. TryReserve is the
// authoritative gate: the check-then-reserve is a single atomic write, so two
// racing reservations can never together exceed the slot total.
type CapacityLedger interface {
	// Atomically reserve amount against the slot if reserved + amount stays
	// within total. Fails with an insufficient_capacity rejection otherwise.
	TryReserve(ctx context.Context, slot domain.SlotKey, bookingID uuid.UUID, amount, total int) (*domain.Reservation, error)

	// Release a reservation so its amount no longer counts against the slot.
	// Releasing an already-released reservation is a no-op.
	Release(ctx context.Context, reservationID uuid.UUID) error

	// Reserved returns the live reserved sum for a slot.
	Reserved(ctx context.Context, slot domain.SlotKey) (int, error)
}
