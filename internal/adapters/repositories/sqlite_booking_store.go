package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"booking-capacity-service/internal/domain"
	"booking-capacity-service/internal/ports"

	"github.com/google/uuid"
)

// SQLite-backed implementation of the BookingStore port. All multi-row
// operations (create, cancel) run in a single transaction so a failure after
// the reservation insert rolls the reservation back too.
type SqliteBookingStore struct {
	DB *sql.DB
}

func NewSqliteBookingStore(db *sql.DB) *SqliteBookingStore {
	return &SqliteBookingStore{DB: db}
}

const bookingColumns = `
	booking_id,
	customer_ref,
	postal_code,
	lat,
	lon,
	window_start,
	window_end,
	amount,
	zone,
	status,
	idempotency_key,
	reservation_id,
	vehicle_id,
	notes,
	created_at,
	updated_at
`

// CreateConfirmed commits the idempotency record, the capacity reservation,
// and the confirmed booking as one unit. A racing request that already
// committed the same key surfaces as the stored record with nothing written.
func (s *SqliteBookingStore) CreateConfirmed(
	ctx context.Context,
	args ports.CreateConfirmedArgs,
) (*domain.IdempotencyRecord, error) {
	if s.DB == nil {
		return nil, errors.New("booking store: DB is nil")
	}

	b := args.Booking
	now := time.Now().UTC()

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Join(domain.ErrTransientStorage, fmt.Errorf("create booking: begin tx: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	// The unique key constraint is the race arbiter: a violation means a
	// concurrent retry with the same key won, not a storage fault.
	_, err = tx.ExecContext(ctx, `
	INSERT INTO idempotency_records (idempotency_key, booking_id, fingerprint, created_at)
	VALUES (?, ?, ?, ?);
	`, args.Record.Key, b.ID.String(), args.Record.Fingerprint, now.Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err) {
			_ = tx.Rollback()
			rec, lookupErr := s.FindIdempotency(ctx, args.Record.Key)
			if lookupErr != nil {
				return nil, fmt.Errorf("create booking: re-read racing idempotency key: %w", lookupErr)
			}
			if rec == nil {
				return nil, errors.Join(domain.ErrTransientStorage,
					fmt.Errorf("create booking: idempotency key %q vanished after conflict", args.Record.Key))
			}
			return rec, nil
		}
		return nil, errors.Join(domain.ErrTransientStorage, fmt.Errorf("create booking: insert idempotency record: %w", err))
	}

	res := &domain.Reservation{
		ID:        b.ReservationID,
		BookingID: b.ID,
		Slot:      b.Window.Key(),
		Amount:    b.Amount,
		CreatedAt: now,
	}

	ok, err := reserveIfRoom(ctx, tx, res, args.SlotTotal)
	if err != nil {
		return nil, errors.Join(domain.ErrTransientStorage, fmt.Errorf("create booking: %w", err))
	}
	if !ok {
		slot := b.Window.Key()
		rej := domain.Reject(domain.ReasonInsufficientCapacity,
			"slot %s %s cannot fit %d more units (total %d)", slot.Date, slot.Start, b.Amount, args.SlotTotal)
		rej.Window = &b.Window
		rej.Location = &b.Location
		rej.Amount = b.Amount
		return nil, rej
	}

	var lat, lon sql.NullFloat64
	if b.Location.Coords != nil {
		lat = sql.NullFloat64{Float64: b.Location.Coords.Lat, Valid: true}
		lon = sql.NullFloat64{Float64: b.Location.Coords.Lon, Valid: true}
	}

	slot := b.Window.Key()
	_, err = tx.ExecContext(ctx, `
	INSERT INTO bookings (
		booking_id, customer_ref, postal_code, lat, lon,
		window_start, window_end, slot_date, slot_start,
		amount, zone, status, idempotency_key, reservation_id,
		vehicle_id, notes, created_at, updated_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?, ?, ?);
	`,
		b.ID.String(),
		b.CustomerRef,
		b.Location.PostalCode,
		lat,
		lon,
		b.Window.Start.UTC().Format(time.RFC3339),
		b.Window.End.UTC().Format(time.RFC3339),
		slot.Date,
		slot.Start,
		b.Amount,
		string(b.Zone),
		string(domain.BookingStatusConfirmed),
		b.IdempotencyKey,
		b.ReservationID.String(),
		b.Notes,
		now.Format(time.RFC3339),
		now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, errors.Join(domain.ErrTransientStorage, fmt.Errorf("create booking: insert booking row: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Join(domain.ErrTransientStorage, fmt.Errorf("create booking: commit tx: %w", err))
	}

	b.Status = domain.BookingStatusConfirmed
	b.CreatedAt = now
	b.UpdatedAt = now

	return nil, nil
}

// FindIdempotency returns the record for a key, or nil when the key is unseen.
func (s *SqliteBookingStore) FindIdempotency(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	if s.DB == nil {
		return nil, errors.New("booking store: DB is nil")
	}

	var rec domain.IdempotencyRecord
	var bookingID, createdAt string

	err := s.DB.QueryRowContext(ctx, `
	SELECT idempotency_key, booking_id, fingerprint, created_at
	FROM idempotency_records
	WHERE idempotency_key = ?;
	`, key).Scan(&rec.Key, &bookingID, &rec.Fingerprint, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(domain.ErrTransientStorage, fmt.Errorf("find idempotency key %q: %w", key, err))
	}

	rec.BookingID, err = uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("find idempotency key %q: parse booking id %q: %w", key, bookingID, err)
	}
	rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("find idempotency key %q: parse created_at %q: %w", key, createdAt, err)
	}

	return &rec, nil
}

// GetByID fetches a booking or fails with ErrBookingNotFound.
func (s *SqliteBookingStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	if s.DB == nil {
		return nil, errors.New("booking store: DB is nil")
	}

	row := s.DB.QueryRowContext(ctx, `
	SELECT `+bookingColumns+`
	FROM bookings
	WHERE booking_id = ?;
	`, id.String())

	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get booking %s: %w", id, ports.ErrBookingNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get booking %s: %w", id, err)
	}

	return b, nil
}

// Cancel flips the booking to cancelled and releases its reservation in the
// same transaction. Cancelling a cancelled booking returns it unchanged.
func (s *SqliteBookingStore) Cancel(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	if s.DB == nil {
		return nil, errors.New("booking store: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Join(domain.ErrTransientStorage, fmt.Errorf("cancel booking: begin tx: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
	SELECT `+bookingColumns+`
	FROM bookings
	WHERE booking_id = ?;
	`, id.String())

	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("cancel booking %s: %w", id, ports.ErrBookingNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("cancel booking %s: %w", id, err)
	}

	if b.Status == domain.BookingStatusCancelled {
		return b, nil
	}
	if b.Status == domain.BookingStatusCompleted {
		return nil, domain.Reject(domain.ReasonValidation, "booking %s is completed and cannot be cancelled", id)
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
	UPDATE bookings SET status = ?, updated_at = ? WHERE booking_id = ?;
	`, string(domain.BookingStatusCancelled), now.Format(time.RFC3339), id.String()); err != nil {
		return nil, errors.Join(domain.ErrTransientStorage, fmt.Errorf("cancel booking %s: update status: %w", id, err))
	}

	if _, err := tx.ExecContext(ctx, `
	UPDATE capacity_reservations SET released = 1 WHERE reservation_id = ? AND released = 0;
	`, b.ReservationID.String()); err != nil {
		return nil, errors.Join(domain.ErrTransientStorage, fmt.Errorf("cancel booking %s: release reservation: %w", id, err))
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Join(domain.ErrTransientStorage, fmt.Errorf("cancel booking %s: commit tx: %w", id, err))
	}

	b.Status = domain.BookingStatusCancelled
	b.UpdatedAt = now
	return b, nil
}

// Complete marks a confirmed booking completed. Completing an already
// completed booking is a no-op; a cancelled one cannot be completed.
func (s *SqliteBookingStore) Complete(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	if s.DB == nil {
		return nil, errors.New("booking store: DB is nil")
	}

	b, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("complete booking: %w", err)
	}

	if b.Status == domain.BookingStatusCompleted {
		return b, nil
	}
	if b.Status == domain.BookingStatusCancelled {
		return nil, domain.Reject(domain.ReasonValidation, "booking %s is cancelled and cannot be completed", id)
	}

	now := time.Now().UTC()
	if _, err := s.DB.ExecContext(ctx, `
	UPDATE bookings SET status = ?, updated_at = ? WHERE booking_id = ? AND status = ?;
	`, string(domain.BookingStatusCompleted), now.Format(time.RFC3339), id.String(), string(domain.BookingStatusConfirmed)); err != nil {
		return nil, errors.Join(domain.ErrTransientStorage, fmt.Errorf("complete booking %s: update status: %w", id, err))
	}

	b.Status = domain.BookingStatusCompleted
	b.UpdatedAt = now
	return b, nil
}

// ListConfirmedForDate returns confirmed bookings for the date ordered by
// window start, then id for a stable batching input.
func (s *SqliteBookingStore) ListConfirmedForDate(ctx context.Context, date string) ([]*domain.Booking, error) {
	if s.DB == nil {
		return nil, errors.New("booking store: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT `+bookingColumns+`
	FROM bookings
	WHERE slot_date = ? AND status = ?
	ORDER BY window_start, booking_id;
	`, date, string(domain.BookingStatusConfirmed))
	if err != nil {
		return nil, errors.Join(domain.ErrTransientStorage, fmt.Errorf("list bookings for %s: query: %w", date, err))
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0, 32)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("list bookings for %s: scan row: %w", date, err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Join(domain.ErrTransientStorage, fmt.Errorf("list bookings for %s: row iteration: %w", date, err))
	}

	return bookings, nil
}

// AssignVehicle records (or replaces) a booking's vehicle assignment.
func (s *SqliteBookingStore) AssignVehicle(ctx context.Context, bookingID uuid.UUID, vehicleID int) error {
	if s.DB == nil {
		return errors.New("booking store: DB is nil")
	}

	result, err := s.DB.ExecContext(ctx, `
	UPDATE bookings SET vehicle_id = ?, updated_at = ? WHERE booking_id = ?;
	`, vehicleID, time.Now().UTC().Format(time.RFC3339), bookingID.String())
	if err != nil {
		return errors.Join(domain.ErrTransientStorage, fmt.Errorf("assign vehicle %d to booking %s: %w", vehicleID, bookingID, err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("assign vehicle: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("assign vehicle to booking %s: %w", bookingID, ports.ErrBookingNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b                    domain.Booking
		id, reservationID    string
		windowStart          string
		windowEnd            string
		lat, lon             sql.NullFloat64
		vehicleID            sql.NullInt64
		zone, status         string
		createdAt, updatedAt string
		postalCode           string
	)

	err := row.Scan(
		&id,
		&b.CustomerRef,
		&postalCode,
		&lat,
		&lon,
		&windowStart,
		&windowEnd,
		&b.Amount,
		&zone,
		&status,
		&b.IdempotencyKey,
		&reservationID,
		&vehicleID,
		&b.Notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if b.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse booking id %q: %w", id, err)
	}
	if b.ReservationID, err = uuid.Parse(reservationID); err != nil {
		return nil, fmt.Errorf("parse reservation id %q: %w", reservationID, err)
	}

	b.Location.PostalCode = postalCode
	if lat.Valid && lon.Valid {
		b.Location.Coords = &domain.Coordinates{Lat: lat.Float64, Lon: lon.Float64}
	}

	if b.Window.Start, err = time.Parse(time.RFC3339, windowStart); err != nil {
		return nil, fmt.Errorf("parse window_start %q: %w", windowStart, err)
	}
	if b.Window.End, err = time.Parse(time.RFC3339, windowEnd); err != nil {
		return nil, fmt.Errorf("parse window_end %q: %w", windowEnd, err)
	}
	if b.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	if b.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at %q: %w", updatedAt, err)
	}

	b.Zone = domain.ZoneTag(zone)
	b.Status = domain.BookingStatus(status)
	if vehicleID.Valid {
		v := int(vehicleID.Int64)
		b.VehicleID = &v
	}

	return &b, nil
}

// isUniqueViolation detects a unique-constraint failure without tying the
// caller to a driver-specific error type (modernc sqlite and pgx word the
// message differently but both include the constraint language).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
