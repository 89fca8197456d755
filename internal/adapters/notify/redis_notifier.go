package notify

import (
	"context"
	"fmt"
	"time"

	"booking-capacity-service/internal/ports"

	"github.com/redis/go-redis/v9"
)

// RedisNotifier publishes booking-confirmed facts onto a redis stream for the
// notification subsystem (email/WhatsApp) to consume. Delivery is
// at-least-once and fire-and-forget from the engine's point of view: callers
// log failures and never roll back the booking.
type RedisNotifier struct {
	client  *redis.Client
	stream  string
	breaker *Breaker
}

func NewRedisNotifier(addr, stream string, cooldown time.Duration) *RedisNotifier {
	return &RedisNotifier{
		client:  redis.NewClient(&redis.Options{Addr: addr}),
		stream:  stream,
		breaker: NewBreaker(cooldown),
	}
}

func (n *RedisNotifier) BookingConfirmed(ctx context.Context, ev ports.BookingConfirmedEvent) error {
	if !n.breaker.Allow() {
		return fmt.Errorf("booking confirmed event: notifier circuit open")
	}

	err := n.client.XAdd(ctx, &redis.XAddArgs{
		Stream: n.stream,
		Values: map[string]any{
			"event":        "booking.confirmed",
			"booking_id":   ev.BookingID.String(),
			"customer_ref": ev.CustomerRef,
			"slot_date":    ev.Slot.Date,
			"slot_start":   ev.Slot.Start,
			"amount":       ev.Amount,
			"zone":         string(ev.Zone),
		},
	}).Err()
	if err != nil {
		n.breaker.Failure()
		return fmt.Errorf("booking confirmed event: publish to stream %q: %w", n.stream, err)
	}

	n.breaker.Success()
	return nil
}

func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
