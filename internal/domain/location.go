package domain

import "fmt"

// Location is a booking destination: either an explicit coordinate pair or a
// postal code resolvable through the reference table. Exactly one form is set.
type Location struct {
	Coords     *Coordinates
	PostalCode string
}

func (l Location) String() string {
	if l.Coords != nil {
		return fmt.Sprintf("%.5f,%.5f", l.Coords.Lat, l.Coords.Lon)
	}
	return l.PostalCode
}

// Resolution is the service-area decision for a location.
type Resolution struct {
	Admit      bool
	DistanceKm float64
	Zone       ZoneTag
}
