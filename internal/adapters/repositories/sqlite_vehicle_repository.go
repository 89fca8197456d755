package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"booking-capacity-service/internal/domain"
)

// SQLite-backed implementation of the VehicleRepository port. The fleet is
// managed externally; this adapter only reads it.
type SqliteVehicleRepository struct {
	DB *sql.DB
}

func NewSqliteVehicleRepository(db *sql.DB) *SqliteVehicleRepository {
	return &SqliteVehicleRepository{DB: db}
}

// ListActive returns vehicles currently in service, ordered by id.
func (s *SqliteVehicleRepository) ListActive(ctx context.Context) ([]*domain.Vehicle, error) {
	if s.DB == nil {
		return nil, errors.New("vehicle repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT vehicle_id, name, capacity_units, active, depot_lat, depot_lon
	FROM vehicles
	WHERE active = 1
	ORDER BY vehicle_id;
	`)
	if err != nil {
		return nil, errors.Join(domain.ErrTransientStorage, fmt.Errorf("list active vehicles: query: %w", err))
	}
	defer rows.Close()

	vehicles := make([]*domain.Vehicle, 0, 8)
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(&v.VehicleID, &v.Name, &v.CapacityUnits, &v.Active, &v.Depot.Lat, &v.Depot.Lon); err != nil {
			return nil, fmt.Errorf("list active vehicles: scan row: %w", err)
		}
		vehicles = append(vehicles, &v)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Join(domain.ErrTransientStorage, fmt.Errorf("list active vehicles: row iteration: %w", err))
	}

	return vehicles, nil
}
