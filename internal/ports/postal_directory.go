package ports

import (
	"context"

	"booking-capacity-service/internal/domain"
)

// Port: reference lookup from postal code to coordinates.
type PostalDirectory interface {
	// Lookup resolves a postal code. ok is false for codes outside the table.
	Lookup(ctx context.Context, code string) (coords domain.Coordinates, ok bool, err error)
}
