package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// Booking is a committed capacity commitment for one customer and slot.
// It holds lookup references to its reservation and assigned vehicle;
// the capacity ledger owns the reservation row itself.
type Booking struct {
	ID             uuid.UUID
	CustomerRef    string
	Location       Location
	Window         Window
	Amount         int
	Zone           ZoneTag
	Status         BookingStatus
	IdempotencyKey string
	ReservationID  uuid.UUID
	VehicleID      *int
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BookingRequest is the application-layer input to booking creation.
type BookingRequest struct {
	CustomerRef    string
	Location       Location
	Window         Window
	Amount         int
	IdempotencyKey string
	Notes          string
}

// Fingerprint hashes the semantic payload of the request. Two requests with
// the same idempotency key must produce the same fingerprint to be treated as
// a replay; the key itself is excluded so it cannot mask a changed payload.
func (r BookingRequest) Fingerprint() string {
	lat, lon := 0.0, 0.0
	if r.Location.Coords != nil {
		lat, lon = r.Location.Coords.Lat, r.Location.Coords.Lon
	}

	payload := fmt.Sprintf(
		"customer=%s|postal=%s|lat=%.6f|lon=%.6f|start=%s|end=%s|amount=%d|notes=%s",
		r.CustomerRef,
		r.Location.PostalCode,
		lat,
		lon,
		r.Window.Start.UTC().Format(time.RFC3339),
		r.Window.End.UTC().Format(time.RFC3339),
		r.Amount,
		r.Notes,
	)

	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// IdempotencyRecord maps a client-supplied key to the booking it produced.
// The key is unique system-wide; a reused key with a different fingerprint is
// a caller error, never an overwrite.
type IdempotencyRecord struct {
	Key         string
	BookingID   uuid.UUID
	Fingerprint string
	CreatedAt   time.Time
}
