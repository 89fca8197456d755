package dto

import "time"

type SlotResponse struct {
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	Remaining   int       `json:"remaining_capacity"`
}

type AvailabilityResponse struct {
	Slots []SlotResponse `json:"slots"`
}
