package ports

import (
	"context"

	"booking-capacity-service/internal/domain"

	"github.com/google/uuid"
)

// BookingConfirmedEvent is the fact emitted after a booking commit for the
// notification subsystem (email/WhatsApp) to consume.
type BookingConfirmedEvent struct {
	BookingID   uuid.UUID
	CustomerRef string
	Slot        domain.SlotKey
	Amount      int
	Zone        domain.ZoneTag
}

// Notifier publishes booking facts to the notification subsystem.
// Emission happens only after the transactional commit; a publish failure is
// logged by the caller and never rolls back the booking.
type Notifier interface {
	BookingConfirmed(ctx context.Context, ev BookingConfirmedEvent) error
}
