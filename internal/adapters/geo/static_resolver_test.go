package geo

import (
	"context"
	"testing"

	"booking-capacity-service/internal/domain"
)

func TestResolveRadiusBoundary(t *testing.T) {
	depot := domain.Coordinates{Lat: 0, Lon: 0}
	point := domain.Coordinates{Lat: 0.45, Lon: 0} // ~50km due north

	dist := depot.DistanceKm(point)

	// Radius set to the exact depot distance: boundary is inclusive.
	atBoundary, err := NewStaticResolver(depot, dist, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := atBoundary.Resolve(context.Background(), domain.Location{Coords: &point})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Admit {
		t.Errorf("location at exact radius should be admitted (dist=%v)", res.DistanceKm)
	}

	// One kilometer short of the point's distance: rejected.
	inside, err := NewStaticResolver(depot, dist-1, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err = inside.Resolve(context.Background(), domain.Location{Coords: &point})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Admit {
		t.Errorf("location beyond radius should be rejected (dist=%v)", res.DistanceKm)
	}
}

func TestResolvePostalCode(t *testing.T) {
	depot := domain.Coordinates{Lat: 0, Lon: 0}
	dir := NewMapDirectory(map[string]domain.Coordinates{
		"85009": {Lat: 0.1, Lon: 0},
	})

	r, err := NewStaticResolver(depot, 50, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := r.Resolve(context.Background(), domain.Location{PostalCode: "85009"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Admit {
		t.Errorf("postal code inside radius should be admitted")
	}
	if res.Zone != "N1" {
		t.Errorf("zone = %q, want N1", res.Zone)
	}

	_, err = r.Resolve(context.Background(), domain.Location{PostalCode: "00000"})
	if !domain.IsReason(err, domain.ReasonUnknownLocation) {
		t.Errorf("unknown postal code: got err=%v, want unknown_location rejection", err)
	}
}

func TestResolveZoneIsDeterministic(t *testing.T) {
	depot := domain.Coordinates{Lat: 33.4484, Lon: -112.0740}
	r, err := NewStaticResolver(depot, 50, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	point := domain.Coordinates{Lat: 33.6, Lon: -111.9}

	first, err := r.Resolve(context.Background(), domain.Location{Coords: &point})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 5; i++ {
		again, err := r.Resolve(context.Background(), domain.Location{Coords: &point})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again.Zone != first.Zone {
			t.Fatalf("zone changed between identical resolves: %q vs %q", first.Zone, again.Zone)
		}
	}

	if first.Zone == "" {
		t.Error("zone tag must not be empty")
	}
}
