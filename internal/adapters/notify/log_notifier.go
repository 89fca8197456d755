package notify

import (
	"context"
	"log"

	"booking-capacity-service/internal/ports"
)

// LogNotifier is the fallback when no redis address is configured: events are
// written to the log so local runs still show the outbound fact.
type LogNotifier struct{}

func (LogNotifier) BookingConfirmed(_ context.Context, ev ports.BookingConfirmedEvent) error {
	log.Printf(
		"event=booking.confirmed booking_id=%s customer_ref=%s slot=%s/%s amount=%d zone=%s",
		ev.BookingID, ev.CustomerRef, ev.Slot.Date, ev.Slot.Start, ev.Amount, ev.Zone,
	)
	return nil
}
