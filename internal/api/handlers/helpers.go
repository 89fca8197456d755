package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"booking-capacity-service/internal/api/dto"
	"booking-capacity-service/internal/domain"
	"booking-capacity-service/internal/ports"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeEngineError maps domain rejections and storage faults to HTTP status
// codes. Every rejection body carries its stable reason plus the request
// context the rejection recorded.
func writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	var rej *domain.Rejection
	if errors.As(err, &rej) {
		body := dto.RejectionResponse{
			Error:  rej.Error(),
			Reason: string(rej.Reason),
			Amount: rej.Amount,
		}
		if rej.Window != nil {
			body.WindowStart = &rej.Window.Start
			body.WindowEnd = &rej.Window.End
		}
		if rej.Location != nil {
			body.Location = rej.Location.String()
		}

		writeJSON(w, r, statusForReason(rej.Reason), body)
		return
	}

	if errors.Is(err, ports.ErrBookingNotFound) {
		writeError(w, r, http.StatusNotFound, "booking not found")
		return
	}

	if errors.Is(err, domain.ErrTransientStorage) {
		log.Printf("transient storage failure: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
		writeError(w, r, http.StatusServiceUnavailable, "temporary storage failure, retry with the same idempotency key")
		return
	}

	log.Printf("request failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	writeError(w, r, http.StatusInternalServerError, "internal server error")
}

func statusForReason(reason domain.RejectReason) int {
	switch reason {
	case domain.ReasonValidation:
		return http.StatusBadRequest
	case domain.ReasonUnknownLocation, domain.ReasonOutOfServiceArea, domain.ReasonBlackout:
		return http.StatusUnprocessableEntity
	case domain.ReasonInsufficientCapacity, domain.ReasonIdempotencyConflict:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
