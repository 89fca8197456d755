package domain

import (
	"time"

	"github.com/google/uuid"
)

// BlackoutDate closes a calendar day, either fleet-wide (empty Scope) or for
// a single zone. Read-only input to the calendar; authored externally.
type BlackoutDate struct {
	Date   string // YYYY-MM-DD
	Scope  ZoneTag
	Reason string
}

// AvailabilityOverride adjusts capacity for the windows it fully covers.
// A positive delta adds capacity, a negative one removes it, and Reopen lets
// the override win over a blackout for covered windows. Created by an
// operator and deleted explicitly, never expired silently.
type AvailabilityOverride struct {
	ID        uuid.UUID
	Window    Window
	Delta     int
	Reopen    bool
	Reason    string
	CreatedBy string
	CreatedAt time.Time
}
