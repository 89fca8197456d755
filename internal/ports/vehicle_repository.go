package ports

import (
	"context"

	"booking-capacity-service/internal/domain"
)

// Port: read access to the fleet. Vehicles are managed externally.
type VehicleRepository interface {
	// ListActive returns vehicles currently in service, ordered by id.
	ListActive(ctx context.Context) ([]*domain.Vehicle, error)
}
