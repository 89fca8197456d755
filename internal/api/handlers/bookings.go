package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"booking-capacity-service/internal/api/dto"
	"booking-capacity-service/internal/domain"
	"booking-capacity-service/internal/services"

	"github.com/google/uuid"
)

// BookingHandler exposes the booking lifecycle endpoints.
type BookingHandler struct {
	Service *services.BookingService
}

// Create accepts a booking request and runs the creation protocol.
// Replays of a previously committed key return 200 with the original
// booking; a fresh commit returns 201.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.CreateBookingRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	loc := domain.Location{PostalCode: strings.TrimSpace(req.PostalCode)}
	if req.Lat != nil && req.Lon != nil {
		loc.Coords = &domain.Coordinates{Lat: *req.Lat, Lon: *req.Lon}
	}

	engineReq := domain.BookingRequest{
		CustomerRef:    strings.TrimSpace(req.CustomerRef),
		Location:       loc,
		Window:         domain.Window{Start: req.WindowStart, End: req.WindowEnd},
		Amount:         req.Amount,
		IdempotencyKey: strings.TrimSpace(req.IdempotencyKey),
		Notes:          req.Notes,
	}
	fingerprint := engineReq.Fingerprint()

	booking, replayed, err := h.Service.CreateBooking(r.Context(), engineReq)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}

	res := bookingResponse(booking)
	res.Fingerprint = fingerprint
	writeJSON(w, r, status, res)
}

// Get returns a booking by id.
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id, ok := bookingID(w, r)
	if !ok {
		return
	}

	booking, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, bookingResponse(booking))
}

// Cancel releases the booking's capacity; cancelling twice is a no-op.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id, ok := bookingID(w, r)
	if !ok {
		return
	}

	booking, err := h.Service.Cancel(r.Context(), id)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, bookingResponse(booking))
}

// Complete marks a confirmed booking completed.
func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id, ok := bookingID(w, r)
	if !ok {
		return
	}

	booking, err := h.Service.Complete(r.Context(), id)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, bookingResponse(booking))
}

func bookingID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid booking id")
		return uuid.Nil, false
	}
	return id, true
}

func bookingResponse(b *domain.Booking) dto.BookingResponse {
	return dto.BookingResponse{
		BookingID:   b.ID.String(),
		CustomerRef: b.CustomerRef,
		Status:      string(b.Status),
		WindowStart: b.Window.Start,
		WindowEnd:   b.Window.End,
		Amount:      b.Amount,
		Zone:        string(b.Zone),
		VehicleID:   b.VehicleID,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}
