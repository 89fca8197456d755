package domain

import "fmt"

// ZoneTag is a coarse geographic bucket derived from distance and bearing
// relative to the depot. It is a batching key only, never a stored entity.
type ZoneTag string

var octants = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// ZoneFor buckets a depot-relative position into a stable tag of the form
// "<octant><band>", e.g. "NE2". Bands split the service radius in thirds;
// anything past the radius lands in band 4 so rejected locations still zone
// deterministically.
func ZoneFor(distanceKm, bearingDeg, radiusKm float64) ZoneTag {
	idx := int((bearingDeg+22.5)/45) % 8

	band := 1
	if radiusKm > 0 {
		band = int(distanceKm/(radiusKm/3)) + 1
		if band > 4 {
			band = 4
		}
	}

	return ZoneTag(fmt.Sprintf("%s%d", octants[idx], band))
}
