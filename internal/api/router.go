package api

import (
	"net/http"

	"booking-capacity-service/internal/api/handlers"
	"booking-capacity-service/internal/services"
)

// NewRouter wires HTTP handlers with their services and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(
	bookings *services.BookingService,
	availability *services.AvailabilityService,
	assignments *services.AssignmentService,
) http.Handler {
	mux := http.NewServeMux()

	bookingHandler := &handlers.BookingHandler{Service: bookings}
	availabilityHandler := &handlers.AvailabilityHandler{Service: availability}
	assignmentHandler := &handlers.AssignmentHandler{Service: assignments}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/bookings", bookingHandler.Create)
	mux.HandleFunc("/bookings/{id}", bookingHandler.Get)
	mux.HandleFunc("/bookings/{id}/cancel", bookingHandler.Cancel)
	mux.HandleFunc("/bookings/{id}/complete", bookingHandler.Complete)
	mux.HandleFunc("/availability", availabilityHandler.List)
	mux.HandleFunc("/assignments", assignmentHandler.Assign)

	return requestMiddleware(mux)
}
