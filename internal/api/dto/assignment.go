package dto

type AssignRequest struct {
	Date     string `json:"date"`
	Reassign bool   `json:"reassign"`
}

type VehicleLoadResponse struct {
	VehicleID     int      `json:"vehicle_id"`
	CapacityUnits int      `json:"capacity_units"`
	UsedUnits     int      `json:"used_units"`
	BookingIDs    []string `json:"booking_ids"`
}

type AssignmentPlanResponse struct {
	Date       string                `json:"date"`
	Loads      []VehicleLoadResponse `json:"loads"`
	Unassigned []string              `json:"unassigned"`
}
