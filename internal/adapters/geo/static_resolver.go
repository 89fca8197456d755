package geo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"booking-capacity-service/internal/domain"
	"booking-capacity-service/internal/ports"
)

// StaticResolver decides service-area admission from a fixed depot coordinate
// and radius. Pure over static reference data: the only lookup is the postal
// directory, which is read-only after seeding.
type StaticResolver struct {
	depot    domain.Coordinates
	radiusKm float64
	postal   ports.PostalDirectory
}

func NewStaticResolver(depot domain.Coordinates, radiusKm float64, postal ports.PostalDirectory) (*StaticResolver, error) {
	if radiusKm <= 0 {
		return nil, fmt.Errorf("static resolver: radius must be positive, got %v", radiusKm)
	}

	return &StaticResolver{depot: depot, radiusKm: radiusKm, postal: postal}, nil
}

// Resolve admits a location iff its great-circle distance from the depot is
// within the service radius (boundary inclusive). The zone tag is computed
// for every resolvable location, admitted or not.
func (r *StaticResolver) Resolve(ctx context.Context, loc domain.Location) (domain.Resolution, error) {
	coords, err := r.coordinates(ctx, loc)
	if err != nil {
		return domain.Resolution{}, err
	}

	dist := r.depot.DistanceKm(coords)
	bearing := r.depot.BearingDeg(coords)

	return domain.Resolution{
		Admit:      dist <= r.radiusKm,
		DistanceKm: dist,
		Zone:       domain.ZoneFor(dist, bearing, r.radiusKm),
	}, nil
}

func (r *StaticResolver) coordinates(ctx context.Context, loc domain.Location) (domain.Coordinates, error) {
	if loc.Coords != nil {
		return *loc.Coords, nil
	}

	code := strings.TrimSpace(loc.PostalCode)
	if code == "" {
		rej := domain.Reject(domain.ReasonValidation, "location requires coordinates or a postal code")
		rej.Location = &loc
		return domain.Coordinates{}, rej
	}

	if r.postal == nil {
		rej := domain.Reject(domain.ReasonUnknownLocation, "no postal directory configured")
		rej.Location = &loc
		return domain.Coordinates{}, rej
	}

	coords, ok, err := r.postal.Lookup(ctx, code)
	if err != nil {
		return domain.Coordinates{}, errors.Join(domain.ErrTransientStorage,
			fmt.Errorf("resolve location: lookup postal code %q: %w", code, err))
	}
	if !ok {
		rej := domain.Reject(domain.ReasonUnknownLocation, "postal code %q is not in the directory", code)
		rej.Location = &loc
		return domain.Coordinates{}, rej
	}

	return coords, nil
}
