package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"booking-capacity-service/internal/domain"
)

// SQLite-backed postal code reference table. Read-only after seeding.
type SqlitePostalDirectory struct {
	DB *sql.DB
}

func NewSqlitePostalDirectory(db *sql.DB) *SqlitePostalDirectory {
	return &SqlitePostalDirectory{DB: db}
}

func (s *SqlitePostalDirectory) Lookup(ctx context.Context, code string) (domain.Coordinates, bool, error) {
	if s.DB == nil {
		return domain.Coordinates{}, false, errors.New("postal directory: DB is nil")
	}

	var c domain.Coordinates
	err := s.DB.QueryRowContext(ctx, `
	SELECT lat, lon FROM postal_codes WHERE code = ?;
	`, code).Scan(&c.Lat, &c.Lon)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Coordinates{}, false, nil
	}
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("postal directory: lookup %q: %w", code, err)
	}

	return c, true, nil
}
