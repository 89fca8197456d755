package notify

import (
	"sync"
	"time"
)

// Breaker is a minimal two-state circuit breaker around the outbound
// notification path. A failure opens it for the cool-down; after expiry the
// next call is allowed through as a probe, and a success closes it again.
// State always expires — there is no remembered-forever failure flag.
type Breaker struct {
	mu       sync.Mutex
	open     bool
	openedAt time.Time
	cooldown time.Duration
	now      func() time.Time
}

func NewBreaker(cooldown time.Duration) *Breaker {
	return &Breaker{cooldown: cooldown, now: time.Now}
}

// Allow reports whether a call may proceed: closed, or open past cool-down.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return true
	}
	return b.now().Sub(b.openedAt) >= b.cooldown
}

// Success closes the breaker.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open = false
}

// Failure opens the breaker and restarts the cool-down.
func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open = true
	b.openedAt = b.now()
}
