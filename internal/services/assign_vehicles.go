package services

import (
	"context"
	"fmt"
	"log"
	"slices"
	"time"

	"booking-capacity-service/internal/domain"
	"booking-capacity-service/internal/platform/obs"
	"booking-capacity-service/internal/ports"
)

// AssignmentService batches confirmed bookings onto vehicles after the fact.
// It operates only on committed data and may be re-run safely: bookings that
// already carry a vehicle are left alone unless Reassign is set.
type AssignmentService struct {
	Store    ports.BookingStore
	Vehicles ports.VehicleRepository
}

// AssignVehicles greedily groups a date's confirmed bookings by zone and
// packs them onto vehicles.
//
// Zones are walked in lexical order; within a zone bookings keep their
// window-start order. Each vehicle is packed up to capacity before the next
// opens, and a vehicle serves a single zone. Demand that fits no vehicle
// lands in the plan's Unassigned list and is reported as an operational
// alert — booking admission already happened against aggregate capacity, so
// excess here signals an aggregate-versus-per-vehicle mismatch, never a
// reason to unwind a booking.
func (s *AssignmentService) AssignVehicles(ctx context.Context, date string, reassign bool) (plan *domain.AssignmentPlan, err error) {
	defer obs.Time(ctx, "assign_vehicles")(&err)

	if _, parseErr := time.Parse(domain.DateLayout, date); parseErr != nil {
		return nil, domain.Reject(domain.ReasonValidation, "invalid date %q, want YYYY-MM-DD", date)
	}

	bookings, err := s.Store.ListConfirmedForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("assign vehicles: %w", err)
	}

	vehicles, err := s.Vehicles.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("assign vehicles: %w", err)
	}

	plan = &domain.AssignmentPlan{Date: date}

	loads := make([]domain.VehicleLoad, len(vehicles))
	loadIdx := make(map[int]int, len(vehicles))
	for i, v := range vehicles {
		loads[i] = domain.VehicleLoad{VehicleID: v.VehicleID, CapacityUnits: v.CapacityUnits}
		loadIdx[v.VehicleID] = i
	}

	// Pre-charge bookings that keep their existing assignment so a re-run
	// cannot overfill a vehicle that already has load.
	pending := make([]*domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if !reassign && b.VehicleID != nil {
			if i, ok := loadIdx[*b.VehicleID]; ok {
				loads[i].UsedUnits += b.Amount
				loads[i].BookingIDs = append(loads[i].BookingIDs, b.ID)
				continue
			}
			// Assigned vehicle retired since: treat as unassigned again.
		}
		pending = append(pending, b)
	}

	byZone := make(map[domain.ZoneTag][]*domain.Booking)
	for _, b := range pending {
		byZone[b.Zone] = append(byZone[b.Zone], b)
	}

	zones := make([]domain.ZoneTag, 0, len(byZone))
	for z := range byZone {
		zones = append(zones, z)
	}
	slices.Sort(zones)

	vi := 0
	for _, zone := range zones {
		zoneUsedVehicle := false

		for _, b := range byZone[zone] {
			// Open the next vehicle once the current one cannot fit the
			// booking; a passed-over vehicle stays closed for this run.
			for vi < len(loads) && loads[vi].UsedUnits+b.Amount > loads[vi].CapacityUnits {
				vi++
				zoneUsedVehicle = false
			}

			if vi >= len(loads) {
				plan.Unassigned = append(plan.Unassigned, b.ID)
				continue
			}

			loads[vi].UsedUnits += b.Amount
			loads[vi].BookingIDs = append(loads[vi].BookingIDs, b.ID)
			zoneUsedVehicle = true

			if err := s.Store.AssignVehicle(ctx, b.ID, loads[vi].VehicleID); err != nil {
				return nil, fmt.Errorf("assign vehicles: %w", err)
			}
		}

		// A vehicle carries one zone: close a partially filled vehicle when
		// its zone ends.
		if zoneUsedVehicle {
			vi++
		}
	}

	for _, l := range loads {
		if len(l.BookingIDs) > 0 {
			plan.Loads = append(plan.Loads, l)
		}
	}

	if len(plan.Unassigned) > 0 {
		log.Printf(
			"ALERT assignment_exceeded_capacity date=%s unassigned=%d assigned=%d",
			date, len(plan.Unassigned), plan.TotalAssigned(),
		)
	}

	return plan, nil
}
