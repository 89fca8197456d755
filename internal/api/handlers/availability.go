package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"booking-capacity-service/internal/api/dto"
	"booking-capacity-service/internal/domain"
	"booking-capacity-service/internal/services"
)

// AvailabilityHandler answers open-slot queries for a date range and location.
type AvailabilityHandler struct {
	Service *services.AvailabilityService
}

func (h *AvailabilityHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()

	from, err := time.Parse(domain.DateLayout, q.Get("from"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "from must be a YYYY-MM-DD date")
		return
	}
	to, err := time.Parse(domain.DateLayout, q.Get("to"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "to must be a YYYY-MM-DD date")
		return
	}
	if to.Before(from) {
		writeError(w, r, http.StatusBadRequest, "to must not precede from")
		return
	}

	loc := domain.Location{PostalCode: strings.TrimSpace(q.Get("postal_code"))}
	latRaw, lonRaw := q.Get("lat"), q.Get("lon")
	if latRaw != "" || lonRaw != "" {
		lat, latErr := strconv.ParseFloat(latRaw, 64)
		lon, lonErr := strconv.ParseFloat(lonRaw, 64)
		if latErr != nil || lonErr != nil {
			writeError(w, r, http.StatusBadRequest, "lat and lon must both be valid numbers")
			return
		}
		loc.Coords = &domain.Coordinates{Lat: lat, Lon: lon}
	}
	if loc.Coords == nil && loc.PostalCode == "" {
		writeError(w, r, http.StatusBadRequest, "location requires lat/lon or postal_code")
		return
	}

	slots, err := h.Service.Available(r.Context(), domain.DateRange{From: from, To: to}, loc)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	res := dto.AvailabilityResponse{Slots: make([]dto.SlotResponse, 0, len(slots))}
	for _, s := range slots {
		res.Slots = append(res.Slots, dto.SlotResponse{
			WindowStart: s.Window.Start,
			WindowEnd:   s.Window.End,
			Remaining:   s.Remaining,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
