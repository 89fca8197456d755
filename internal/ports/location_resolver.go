package ports

import (
	"context"

	"booking-capacity-service/internal/domain"
)

// Contract for deciding whether a destination falls inside the service area.
type LocationResolver interface {
	// Resolve a location to an admit decision, depot distance, and zone tag.
	// Unresolvable postal codes fail with an unknown_location rejection.
	Resolve(ctx context.Context, loc domain.Location) (domain.Resolution, error)
}
