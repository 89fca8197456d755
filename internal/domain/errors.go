package domain

import (
	"errors"
	"fmt"
)

// RejectReason is the stable machine-readable code attached to every
// business-level refusal.
type RejectReason string

const (
	ReasonUnknownLocation      RejectReason = "unknown_location"
	ReasonOutOfServiceArea     RejectReason = "out_of_service_area"
	ReasonBlackout             RejectReason = "blackout"
	ReasonInsufficientCapacity RejectReason = "insufficient_capacity"
	ReasonIdempotencyConflict  RejectReason = "idempotency_conflict"
	ReasonValidation           RejectReason = "validation"
)

// Rejection is a typed refusal of a booking or availability request. It
// carries the requested window, location, and amount so the caller can decide
// whether to retry, choose another slot, or escalate.
type Rejection struct {
	Reason   RejectReason
	Detail   string
	Window   *Window
	Location *Location
	Amount   int
}

func (e *Rejection) Error() string {
	if e.Detail == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

// Reject builds a Rejection with a formatted detail message.
func Reject(reason RejectReason, format string, args ...any) *Rejection {
	return &Rejection{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// ReasonOf extracts the rejection reason from an error chain.
func ReasonOf(err error) (RejectReason, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Reason, true
	}
	return "", false
}

// IsReason reports whether err is a rejection with the given reason.
func IsReason(err error, reason RejectReason) bool {
	got, ok := ReasonOf(err)
	return ok && got == reason
}

// ErrTransientStorage marks storage failures that are safe to retry with the
// same idempotency key.
var ErrTransientStorage = errors.New("transient storage error")
