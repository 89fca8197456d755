package dto

import "time"

type CreateBookingRequest struct {
	CustomerRef    string    `json:"customer_ref"`
	PostalCode     string    `json:"postal_code"`
	Lat            *float64  `json:"lat"`
	Lon            *float64  `json:"lon"`
	WindowStart    time.Time `json:"window_start"`
	WindowEnd      time.Time `json:"window_end"`
	Amount         int       `json:"amount"`
	IdempotencyKey string    `json:"idempotency_key"`
	Notes          string    `json:"notes"`
}

type BookingResponse struct {
	BookingID   string    `json:"booking_id"`
	CustomerRef string    `json:"customer_ref"`
	Status      string    `json:"status"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	Amount      int       `json:"amount"`
	Zone        string    `json:"zone"`
	VehicleID   *int      `json:"vehicle_id"`
	Fingerprint string    `json:"request_fingerprint,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RejectionResponse carries the stable reason code plus the request context
// the caller needs to decide between retrying, rebooking, or escalating.
type RejectionResponse struct {
	Error       string     `json:"error"`
	Reason      string     `json:"reason"`
	WindowStart *time.Time `json:"window_start,omitempty"`
	WindowEnd   *time.Time `json:"window_end,omitempty"`
	Location    string     `json:"location,omitempty"`
	Amount      int        `json:"amount,omitempty"`
}
