package services

import (
	"context"
	"fmt"

	"booking-capacity-service/internal/domain"
	"booking-capacity-service/internal/ports"
)

// SlotAvailability is one open window with its remaining capacity.
type SlotAvailability struct {
	Window    domain.Window
	Remaining int
}

// AvailabilityService answers "what's open" for a date range and location.
// Its reads are advisory: they hold no locks and may briefly overstate
// capacity right before a concurrent reservation lands. The ledger's atomic
// reserve is the authoritative gate.
type AvailabilityService struct {
	Resolver ports.LocationResolver
	Calendar *Calendar
	Ledger   ports.CapacityLedger
	Vehicles ports.VehicleRepository
}

// Available lists open windows in the range with capacity left, ordered by
// window start. An empty slice is a valid answer. The location is checked
// once for the whole range; out-of-area locations reject the query.
func (s *AvailabilityService) Available(ctx context.Context, r domain.DateRange, loc domain.Location) ([]SlotAvailability, error) {
	res, err := s.Resolver.Resolve(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("availability: %w", err)
	}
	if !res.Admit {
		rej := domain.Reject(domain.ReasonOutOfServiceArea,
			"location %s is %.1f km from the depot", loc, res.DistanceKm)
		rej.Location = &loc
		return nil, rej
	}

	fleet, err := fleetCapacity(ctx, s.Vehicles)
	if err != nil {
		return nil, fmt.Errorf("availability: %w", err)
	}

	windows, err := s.Calendar.OpenWindows(ctx, r, res.Zone)
	if err != nil {
		return nil, fmt.Errorf("availability: %w", err)
	}

	out := []SlotAvailability{}
	for ow := range windows {
		if ow.Closed {
			continue
		}

		total := slotTotal(fleet, ow.CapacityDelta)
		if total == 0 {
			continue
		}

		reserved, err := s.Ledger.Reserved(ctx, ow.Window.Key())
		if err != nil {
			return nil, fmt.Errorf("availability: %w", err)
		}

		remaining := total - reserved
		if remaining <= 0 {
			continue
		}

		out = append(out, SlotAvailability{Window: ow.Window, Remaining: remaining})
	}

	return out, nil
}

// fleetCapacity sums the capacity of active vehicles.
func fleetCapacity(ctx context.Context, vehicles ports.VehicleRepository) (int, error) {
	active, err := vehicles.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("fleet capacity: %w", err)
	}

	total := 0
	for _, v := range active {
		total += v.CapacityUnits
	}
	return total, nil
}

// slotTotal applies an override delta to the fleet capacity, clamping at
// zero: negative capacity means closed, never a debt.
func slotTotal(fleet, delta int) int {
	total := fleet + delta
	if total < 0 {
		return 0
	}
	return total
}
