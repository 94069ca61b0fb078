package geo

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRadiusRadians(t *testing.T) {
	assert.InDelta(t, 1.0/6378.1, RadiusRadians(1), 1e-12)
	assert.InDelta(t, 50.0/6378.1, RadiusRadians(50), 1e-12)
}

func TestClampRadius(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"1", 1},
		{"3", 3},
		{"50", 50},
		{"7", 1},   // not on the allow-list
		{"0", 1},
		{"-5", 1},
		{"abc", 1},
		{"", 1},
		{"5.5", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampRadius(tt.raw), "radius %q", tt.raw)
	}
}

func TestDistanceKmSymmetry(t *testing.T) {
	lahore := Point{Lng: 74.3587, Lat: 31.5204}
	karachi := Point{Lng: 67.0011, Lat: 24.8607}

	ab := DistanceKm(lahore, karachi)
	ba := DistanceKm(karachi, lahore)

	assert.Equal(t, ab, ba)
	assert.Zero(t, DistanceKm(lahore, lahore))
}

func TestDistanceKmKnownValue(t *testing.T) {
	// Lahore to Karachi is roughly 1020 km as the crow flies.
	d := DistanceKm(Point{Lng: 74.3587, Lat: 31.5204}, Point{Lng: 67.0011, Lat: 24.8607})
	assert.InDelta(t, 1020, d, 25)
}

func TestDistanceKmOneDegreeLatitude(t *testing.T) {
	// One degree of latitude on a 6371 km sphere.
	d := DistanceKm(Point{Lng: 0, Lat: 0}, Point{Lng: 0, Lat: 1})
	assert.InDelta(t, 6371*math.Pi/180, d, 1e-9)
}

func TestNearestReversedEqualsFarthest(t *testing.T) {
	center := Point{Lng: 74.3587, Lat: 31.5204}
	points := []Point{
		{Lng: 74.40, Lat: 31.52},
		{Lng: 74.30, Lat: 31.60},
		{Lng: 74.36, Lat: 31.45},
		{Lng: 74.50, Lat: 31.50},
	}

	distances := make([]float64, len(points))
	for i, p := range points {
		distances[i] = DistanceKm(center, p)
	}
	require.Len(t, distances, 4)

	nearest := append([]float64(nil), distances...)
	sort.SliceStable(nearest, func(i, j int) bool { return nearest[i] < nearest[j] })

	farthest := append([]float64(nil), distances...)
	sort.SliceStable(farthest, func(i, j int) bool { return farthest[i] > farthest[j] })

	for i := range nearest {
		assert.Equal(t, nearest[i], farthest[len(farthest)-1-i])
	}
}
