package geo

import (
	"context"

	"booking-capacity-service/internal/domain"
)

// In-memory PostalDirectory for tests and seed-free local runs.
type MapDirectory struct {
	m map[string]domain.Coordinates
}

func NewMapDirectory(entries map[string]domain.Coordinates) *MapDirectory {
	m := make(map[string]domain.Coordinates, len(entries))
	for code, c := range entries {
		m[code] = c
	}
	return &MapDirectory{m: m}
}

func (d *MapDirectory) Lookup(ctx context.Context, code string) (domain.Coordinates, bool, error) {
	c, ok := d.m[code]
	return c, ok, nil
}
