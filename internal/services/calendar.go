package services

import (
	"context"
	"fmt"
	"iter"
	"time"

	"booking-capacity-service/internal/domain"
	"booking-capacity-service/internal/ports"
)

// Calendar expands the business-hours template into slot windows and merges
// in blackout dates and availability overrides.
//
// Merge rules: a blackout closes every window of its date (fleet-wide or for
// its zone); an override wins over a blackout only when it explicitly reopens
// and fully covers the window; an override's capacity delta likewise applies
// only to windows it fully covers. Partially overlapping overrides are
// ignored for the window rather than guessed at.
type Calendar struct {
	store     ports.CalendarStore
	openHour  int
	closeHour int
	slotHours int
}

func NewCalendar(store ports.CalendarStore, openHour, closeHour, slotHours int) (*Calendar, error) {
	if openHour < 0 || closeHour > 24 || openHour >= closeHour {
		return nil, fmt.Errorf("calendar: open=%d close=%d is not a valid business day", openHour, closeHour)
	}
	if slotHours < 1 || (closeHour-openHour)%slotHours != 0 {
		return nil, fmt.Errorf("calendar: slot length %dh must evenly divide the business day", slotHours)
	}

	return &Calendar{store: store, openHour: openHour, closeHour: closeHour, slotHours: slotHours}, nil
}

// OpenWindows returns the merged window sequence for a date range and zone
// (empty zone matches fleet-wide blackouts only). Exceptions are fetched once
// up front; the sequence itself is lazy and restartable, so callers can walk
// a single day or several weeks without the whole range being materialized.
func (c *Calendar) OpenWindows(ctx context.Context, r domain.DateRange, zone domain.ZoneTag) (iter.Seq[domain.OpenWindow], error) {
	blackouts, err := c.store.BlackoutsInRange(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("open windows: %w", err)
	}

	overrides, err := c.store.OverridesInRange(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("open windows: %w", err)
	}

	blackedDates := make(map[string]bool, len(blackouts))
	for _, b := range blackouts {
		if b.Scope == "" || b.Scope == zone {
			blackedDates[b.Date] = true
		}
	}

	days := r.Days()

	return func(yield func(domain.OpenWindow) bool) {
		for _, day := range days {
			date := day.Format(domain.DateLayout)
			blacked := blackedDates[date]

			for h := c.openHour; h < c.closeHour; h += c.slotHours {
				w := domain.Window{
					Start: day.Add(time.Duration(h) * time.Hour),
					End:   day.Add(time.Duration(h+c.slotHours) * time.Hour),
				}

				closed := blacked
				delta := 0
				for _, o := range overrides {
					if !o.Window.Covers(w) {
						continue
					}
					delta += o.Delta
					if closed && o.Reopen {
						closed = false
					}
				}

				if !yield(domain.OpenWindow{Window: w, CapacityDelta: delta, Closed: closed}) {
					return
				}
			}
		}
	}, nil
}

// WindowAt finds the calendar window matching w exactly, treating the request
// as a degenerate single-day range. ok is false when w is off the slot grid.
func (c *Calendar) WindowAt(ctx context.Context, w domain.Window, zone domain.ZoneTag) (domain.OpenWindow, bool, error) {
	day := time.Date(w.Start.Year(), w.Start.Month(), w.Start.Day(), 0, 0, 0, 0, w.Start.Location())

	seq, err := c.OpenWindows(ctx, domain.DateRange{From: day, To: day}, zone)
	if err != nil {
		return domain.OpenWindow{}, false, fmt.Errorf("window at %s: %w", w.Start, err)
	}

	for ow := range seq {
		if ow.Window.Start.Equal(w.Start) && ow.Window.End.Equal(w.End) {
			return ow, true, nil
		}
	}

	return domain.OpenWindow{}, false, nil
}
