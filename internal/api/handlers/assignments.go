package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"booking-capacity-service/internal/api/dto"
	"booking-capacity-service/internal/services"
)

// AssignmentHandler triggers on-demand vehicle batching for a date.
type AssignmentHandler struct {
	Service *services.AssignmentService
}

func (h *AssignmentHandler) Assign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.AssignRequest

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

	plan, err := h.Service.AssignVehicles(r.Context(), req.Date, req.Reassign)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	res := dto.AssignmentPlanResponse{
		Date:       plan.Date,
		Loads:      make([]dto.VehicleLoadResponse, 0, len(plan.Loads)),
		Unassigned: make([]string, 0, len(plan.Unassigned)),
	}
	for _, l := range plan.Loads {
		ids := make([]string, 0, len(l.BookingIDs))
		for _, id := range l.BookingIDs {
			ids = append(ids, id.String())
		}
		res.Loads = append(res.Loads, dto.VehicleLoadResponse{
			VehicleID:     l.VehicleID,
			CapacityUnits: l.CapacityUnits,
			UsedUnits:     l.UsedUnits,
			BookingIDs:    ids,
		})
	}
	for _, id := range plan.Unassigned {
		res.Unassigned = append(res.Unassigned, id.String())
	}

	writeJSON(w, r, http.StatusOK, res)
}
