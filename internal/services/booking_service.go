package services

import (
	"context"
	"time"

	"booking-capacity-service/internal/domain"
	"booking-capacity-service/internal/ports"

	"github.com/google/uuid"
)

// BookingService is the transactional core of the engine: it owns the
// idempotency-guarded booking creation protocol and the booking lifecycle
// transitions.
type BookingService struct {
	Store    ports.BookingStore
	Resolver ports.LocationResolver
	Calendar *Calendar
	Vehicles ports.VehicleRepository
	Notifier ports.Notifier

	// PrecheckTimeout bounds the read-only checks; a timeout there is
	// retryable. CommitTimeout bounds the atomic reserve-and-insert, which
	// either fully commits or fully rolls back regardless.
	PrecheckTimeout time.Duration
	CommitTimeout   time.Duration
}

// Get fetches a booking by id.
func (s *BookingService) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return s.Store.GetByID(ctx, id)
}

// Cancel releases the booking's reservation and marks it cancelled.
// Cancelling twice is a no-op.
func (s *BookingService) Cancel(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return s.Store.Cancel(ctx, id)
}

// Complete marks a confirmed booking completed, with no capacity effect.
func (s *BookingService) Complete(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return s.Store.Complete(ctx, id)
}
