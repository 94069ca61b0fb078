package models

// GeoPoint is a GeoJSON Point with the parsed address attached.
// Coordinates are [longitude, latitude], matching the 2dsphere index
// convention.
type GeoPoint struct {
	Type             string    `bson:"type" json:"type"`
	Coordinates      []float64 `bson:"coordinates" json:"coordinates"`
	FormattedAddress string    `bson:"formattedAddress,omitempty" json:"formattedAddress,omitempty"`
	Street           string    `bson:"street,omitempty" json:"street,omitempty"`
	City             string    `bson:"city,omitempty" json:"city,omitempty"`
	State            string    `bson:"state,omitempty" json:"state,omitempty"`
	Zipcode          string    `bson:"zipcode,omitempty" json:"zipcode,omitempty"`
	Country          string    `bson:"country,omitempty" json:"country,omitempty"`
}

// NewGeoPoint builds a Point from lng/lat in that order.
func NewGeoPoint(lng, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

// HasCoordinates reports whether the point carries a usable position.
func (p GeoPoint) HasCoordinates() bool {
	return len(p.Coordinates) == 2
}

// Lng returns the longitude, or 0 when coordinates are missing.
func (p GeoPoint) Lng() float64 {
	if !p.HasCoordinates() {
		return 0
	}
	return p.Coordinates[0]
}

// Lat returns the latitude, or 0 when coordinates are missing.
func (p GeoPoint) Lat() float64 {
	if !p.HasCoordinates() {
		return 0
	}
	return p.Coordinates[1]
}
