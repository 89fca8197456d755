package domain

import "github.com/google/uuid"

// VehicleLoad is one vehicle's share of a day's assignment plan.
type VehicleLoad struct {
	VehicleID     int
	CapacityUnits int
	UsedUnits     int
	BookingIDs    []uuid.UUID
}

// AssignmentPlan is the output of greedy vehicle batching for one date.
// Unassigned lists bookings whose demand exceeded per-vehicle capacity; they
// stay confirmed and are surfaced for operator intervention, never reversed.
type AssignmentPlan struct {
	Date       string
	Loads      []VehicleLoad
	Unassigned []uuid.UUID
}

// TotalAssigned returns the number of bookings placed on a vehicle.
func (p *AssignmentPlan) TotalAssigned() int {
	n := 0
	for _, l := range p.Loads {
		n += len(l.BookingIDs)
	}
	return n
}
