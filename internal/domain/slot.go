package domain

import "time"

// DateLayout is the canonical calendar-date format used for slot keys.
const DateLayout = "2006-01-02"

// Window is a half-open [Start, End) time interval.
type Window struct {
	Start time.Time
	End   time.Time
}

// Covers reports whether w fully contains other.
func (w Window) Covers(other Window) bool {
	return !w.Start.After(other.Start) && !w.End.Before(other.End)
}

// Overlaps reports whether w and other share any instant.
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// SlotKey identifies the (date, window start) unit capacity is tracked
// against. Both fields are formatted strings so keys compare and store
// without timezone surprises.
type SlotKey struct {
	Date  string // YYYY-MM-DD
	Start string // HH:MM
}

// Key returns the slot identity for the window.
func (w Window) Key() SlotKey {
	return SlotKey{
		Date:  w.Start.Format(DateLayout),
		Start: w.Start.Format("15:04"),
	}
}

// DateRange is an inclusive [From, To] span of calendar days.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Days returns each calendar day in the range, at midnight in From's location.
func (r DateRange) Days() []time.Time {
	from := time.Date(r.From.Year(), r.From.Month(), r.From.Day(), 0, 0, 0, 0, r.From.Location())
	to := time.Date(r.To.Year(), r.To.Month(), r.To.Day(), 0, 0, 0, 0, r.To.Location())

	days := []time.Time{}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// OpenWindow is one calendar window after merging business hours, blackout
// dates, and overrides. Closed windows carry no capacity regardless of fleet
// size; CapacityDelta adjusts the fleet-derived total for open ones.
type OpenWindow struct {
	Window        Window
	CapacityDelta int
	Closed        bool
}
