package ports

import (
	"context"

	"booking-capacity-service/internal/domain"
)

// Port: read access to calendar exceptions authored by the administrative
// surface. The engine never creates or deletes these.
type CalendarStore interface {
	// Blackouts effective within the date range, all scopes.
	BlackoutsInRange(ctx context.Context, r domain.DateRange) ([]domain.BlackoutDate, error)

	// Overrides whose window overlaps the date range.
	OverridesInRange(ctx context.Context, r domain.DateRange) ([]domain.AvailabilityOverride, error)
}
