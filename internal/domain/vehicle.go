package domain

// Fleet vehicle able to carry bookings up to a unit capacity per day.
// Created and retired by fleet management; the engine reads vehicles and only
// writes assignments.
type Vehicle struct {
	VehicleID     int
	Name          string
	CapacityUnits int
	Active        bool
	Depot         Coordinates
}
