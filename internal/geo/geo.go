// Package geo implements the radius handling and great-circle math behind
// the nearby-search endpoints.
package geo

import (
	"math"
	"strconv"
)

// Two Earth-radius constants coexist on purpose: the stored documents were
// indexed and queried with km/6378.1 radians, while response distances were
// always computed with the 6371 km Haversine. Changing either would change
// observable results against existing data.
const (
	// QuerySphereRadiusKm converts a search radius to radians for
	// $centerSphere.
	QuerySphereRadiusKm = 6378.1
	// HaversineRadiusKm is the Earth radius used for reported distances.
	HaversineRadiusKm = 6371
)

// UnknownDistanceKm sorts entities with no usable coordinates last.
const UnknownDistanceKm = 9999

// Point is a lng/lat pair in decimal degrees.
type Point struct {
	Lng float64
	Lat float64
}

// RadiusRadians converts a radius in kilometres to the radians value
// $centerSphere expects.
func RadiusRadians(km float64) float64 {
	return km / QuerySphereRadiusKm
}

// allowedRadii is the radius allow-list for the combined search endpoint.
var allowedRadii = map[int]bool{1: true, 3: true, 5: true, 10: true, 15: true, 20: true, 25: true, 50: true}

// DefaultRadiusKm is the silent fallback for a missing, malformed or
// disallowed radius. A bad radius is a policy fallback, not an error.
const DefaultRadiusKm = 1

// ClampRadius parses a requested radius and maps anything outside the
// allow-list to DefaultRadiusKm.
func ClampRadius(raw string) int {
	requested, err := strconv.Atoi(raw)
	if err != nil || !allowedRadii[requested] {
		return DefaultRadiusKm
	}
	return requested
}

// DistanceKm returns the great-circle distance between two points using the
// Haversine formula.
func DistanceKm(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	latDiff := (b.Lat - a.Lat) * math.Pi / 180
	lngDiff := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(latDiff/2)*math.Sin(latDiff/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(lngDiff/2)*math.Sin(lngDiff/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return HaversineRadiusKm * c
}

// Sort orders accepted by the search and ration-pack endpoints.
const (
	SortNearest   = "nearest"
	SortFarthest  = "farthest"
	SortCheapest  = "cheapest"
	SortExpensive = "expensive"
)
