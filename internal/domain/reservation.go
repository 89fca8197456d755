package domain

import (
	"time"

	"github.com/google/uuid"
)

// Reservation is one slice of slot capacity held by a booking. Rows are owned
// by the capacity ledger; released reservations stay for audit but no longer
// count against the slot total.
type Reservation struct {
	ID        uuid.UUID
	BookingID uuid.UUID
	Slot      SlotKey
	Amount    int
	Released  bool
	CreatedAt time.Time
}
