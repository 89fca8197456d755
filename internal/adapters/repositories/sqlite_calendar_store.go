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

// Read-only access to calendar exceptions. Blackouts and overrides are
// authored by the administrative surface; the engine only consults them.
type SqliteCalendarStore struct {
	DB *sql.DB
}

func NewSqliteCalendarStore(db *sql.DB) *SqliteCalendarStore {
	return &SqliteCalendarStore{DB: db}
}

// Blackouts effective within the date range, all scopes.
func (s *SqliteCalendarStore) BlackoutsInRange(ctx context.Context, r domain.DateRange) ([]domain.BlackoutDate, error) {
	if s.DB == nil {
		return nil, errors.New("calendar store: DB is nil")
	}

	from := r.From.Format(domain.DateLayout)
	to := r.To.Format(domain.DateLayout)

	rows, err := s.DB.QueryContext(ctx, `
	SELECT date, scope, reason
	FROM blackout_dates
	WHERE date >= ? AND date <= ?
	ORDER BY date, scope;
	`, from, to)
	if err != nil {
		return nil, errors.Join(domain.ErrTransientStorage, fmt.Errorf("blackouts %s..%s: query: %w", from, to, err))
	}
	defer rows.Close()

	out := make([]domain.BlackoutDate, 0, 8)
	for rows.Next() {
		var b domain.BlackoutDate
		var scope string
		if err := rows.Scan(&b.Date, &scope, &b.Reason); err != nil {
			return nil, fmt.Errorf("blackouts %s..%s: scan row: %w", from, to, err)
		}
		b.Scope = domain.ZoneTag(scope)
		out = append(out, b)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Join(domain.ErrTransientStorage, fmt.Errorf("blackouts %s..%s: row iteration: %w", from, to, err))
	}

	return out, nil
}

// Overrides whose window overlaps the date range.
func (s *SqliteCalendarStore) OverridesInRange(ctx context.Context, r domain.DateRange) ([]domain.AvailabilityOverride, error) {
	if s.DB == nil {
		return nil, errors.New("calendar store: DB is nil")
	}

	// Range bounds as instants: [from 00:00, day after to 00:00) in UTC.
	from := time.Date(r.From.Year(), r.From.Month(), r.From.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(r.To.Year(), r.To.Month(), r.To.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)

	rows, err := s.DB.QueryContext(ctx, `
	SELECT override_id, starts_at, ends_at, delta, reopen, reason, created_by, created_at
	FROM availability_overrides
	WHERE starts_at < ? AND ends_at > ?
	ORDER BY starts_at, override_id;
	`, to.Format(time.RFC3339), from.Format(time.RFC3339))
	if err != nil {
		return nil, errors.Join(domain.ErrTransientStorage, fmt.Errorf("overrides in range: query: %w", err))
	}
	defer rows.Close()

	out := make([]domain.AvailabilityOverride, 0, 8)
	for rows.Next() {
		var (
			o                           domain.AvailabilityOverride
			id, starts, ends, createdAt string
		)
		if err := rows.Scan(&id, &starts, &ends, &o.Delta, &o.Reopen, &o.Reason, &o.CreatedBy, &createdAt); err != nil {
			return nil, fmt.Errorf("overrides in range: scan row: %w", err)
		}

		if o.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("overrides in range: parse id %q: %w", id, err)
		}
		if o.Window.Start, err = time.Parse(time.RFC3339, starts); err != nil {
			return nil, fmt.Errorf("overrides in range: parse starts_at %q: %w", starts, err)
		}
		if o.Window.End, err = time.Parse(time.RFC3339, ends); err != nil {
			return nil, fmt.Errorf("overrides in range: parse ends_at %q: %w", ends, err)
		}
		if o.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("overrides in range: parse created_at %q: %w", createdAt, err)
		}

		out = append(out, o)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Join(domain.ErrTransientStorage, fmt.Errorf("overrides in range: row iteration: %w", err))
	}

	return out, nil
}
