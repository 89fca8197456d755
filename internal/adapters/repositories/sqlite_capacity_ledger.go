package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"booking-capacity-service/internal/domain"

	"github.com/google/uuid"
)

// SQLite-backed capacity ledger. Reservation rows are owned here; bookings
// hold lookup references only.
type SqliteCapacityLedger struct {
	DB *sql.DB
}

func NewSqliteCapacityLedger(db *sql.DB) *SqliteCapacityLedger {
	return &SqliteCapacityLedger{DB: db}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// reserveIfRoom inserts a reservation only when the slot's live reserved sum
// plus the new amount stays within total. The sum check and the insert are a
// single statement, so concurrent writers serialize on the database instead
// of racing a separate read and write.
func reserveIfRoom(ctx context.Context, ex execer, res *domain.Reservation, total int) (bool, error) {
	query := `
	INSERT INTO capacity_reservations (
		reservation_id,
		booking_id,
		slot_date,
		slot_start,
		amount,
		released,
		created_at
	)
	SELECT ?, ?, ?, ?, ?, 0, ?
	WHERE (
		SELECT COALESCE(SUM(amount), 0)
		FROM capacity_reservations
		WHERE slot_date = ? AND slot_start = ? AND released = 0
	) + ? <= ?;
	`

	result, err := ex.ExecContext(ctx, query,
		res.ID.String(),
		res.BookingID.String(),
		res.Slot.Date,
		res.Slot.Start,
		res.Amount,
		res.CreatedAt.UTC().Format(time.RFC3339),
		res.Slot.Date,
		res.Slot.Start,
		res.Amount,
		total,
	)
	if err != nil {
		return false, fmt.Errorf("reserve capacity: insert reservation: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reserve capacity: rows affected: %w", err)
	}

	return n == 1, nil
}

// TryReserve atomically claims amount against the slot or rejects with
// insufficient_capacity. Zero or negative totals always reject (closed slot).
func (s *SqliteCapacityLedger) TryReserve(
	ctx context.Context,
	slot domain.SlotKey,
	bookingID uuid.UUID,
	amount, total int,
) (*domain.Reservation, error) {
	if s.DB == nil {
		return nil, errors.New("capacity ledger: DB is nil")
	}
	if amount <= 0 {
		return nil, domain.Reject(domain.ReasonValidation, "reservation amount must be positive, got %d", amount)
	}

	res := &domain.Reservation{
		ID:        uuid.New(),
		BookingID: bookingID,
		Slot:      slot,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}

	ok, err := reserveIfRoom(ctx, s.DB, res, total)
	if err != nil {
		return nil, errors.Join(domain.ErrTransientStorage, fmt.Errorf("try reserve slot %s %s: %w", slot.Date, slot.Start, err))
	}
	if !ok {
		rej := domain.Reject(domain.ReasonInsufficientCapacity,
			"slot %s %s cannot fit %d more units (total %d)", slot.Date, slot.Start, amount, total)
		rej.Amount = amount
		return nil, rej
	}

	return res, nil
}

// Release marks a reservation released so it stops counting against its slot.
// Releasing twice is a no-op.
func (s *SqliteCapacityLedger) Release(ctx context.Context, reservationID uuid.UUID) error {
	if s.DB == nil {
		return errors.New("capacity ledger: DB is nil")
	}

	_, err := s.DB.ExecContext(ctx, `
	UPDATE capacity_reservations
	SET released = 1
	WHERE reservation_id = ? AND released = 0;
	`, reservationID.String())
	if err != nil {
		return errors.Join(domain.ErrTransientStorage, fmt.Errorf("release reservation %s: %w", reservationID, err))
	}

	return nil
}

// Reserved returns the live reserved sum for a slot.
func (s *SqliteCapacityLedger) Reserved(ctx context.Context, slot domain.SlotKey) (int, error) {
	if s.DB == nil {
		return 0, errors.New("capacity ledger: DB is nil")
	}

	var sum int
	err := s.DB.QueryRowContext(ctx, `
	SELECT COALESCE(SUM(amount), 0)
	FROM capacity_reservations
	WHERE slot_date = ? AND slot_start = ? AND released = 0;
	`, slot.Date, slot.Start).Scan(&sum)
	if err != nil {
		return 0, errors.Join(domain.ErrTransientStorage, fmt.Errorf("reserved sum for slot %s %s: %w", slot.Date, slot.Start, err))
	}

	return sum, nil
}
