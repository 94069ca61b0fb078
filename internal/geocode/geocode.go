// Package geocode wraps the Google geocoding API behind the location shape
// the rest of the server stores.
package geocode

import (
	"context"
	"errors"
	"fmt"

	"googlemaps.github.io/maps"

	"buy-bye-api-server/config"
	"buy-bye-api-server/internal/models"
)

var ErrNoResults = errors.New("geocode: no results for address")

type Client struct {
	maps    *maps.Client
	country string
}

func NewClient(cfg config.GeocodeConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("geocode: missing GOOGLE_MAPS_API_KEY")
	}
	c, err := maps.NewClient(maps.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, err
	}
	return &Client{maps: c, country: cfg.Country}, nil
}

// GeocodeAddress forward-geocodes an address into a stored GeoPoint with
// parsed address components.
func (c *Client) GeocodeAddress(ctx context.Context, address string) (models.GeoPoint, error) {
	req := &maps.GeocodingRequest{Address: address}
	if c.country != "" {
		req.Components = map[maps.Component]string{maps.ComponentCountry: c.country}
	}

	results, err := c.maps.Geocode(ctx, req)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("geocode: %w", err)
	}
	if len(results) == 0 {
		return models.GeoPoint{}, ErrNoResults
	}

	r := results[0]
	location := models.NewGeoPoint(r.Geometry.Location.Lng, r.Geometry.Location.Lat)
	location.FormattedAddress = r.FormattedAddress

	for _, comp := range r.AddressComponents {
		for _, t := range comp.Types {
			switch t {
			case "street_number":
				if location.Street != "" {
					location.Street = comp.LongName + " " + location.Street
				} else {
					location.Street = comp.LongName
				}
			case "route":
				if location.Street != "" {
					location.Street = location.Street + " " + comp.LongName
				} else {
					location.Street = comp.LongName
				}
			case "locality":
				location.City = comp.LongName
			case "administrative_area_level_1":
				location.State = comp.LongName
			case "postal_code":
				location.Zipcode = comp.LongName
			case "country":
				location.Country = comp.LongName
			}
		}
	}

	return location, nil
}

// ReverseGeocode turns lat/lng into a readable address string.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	results, err := c.maps.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: lat, Lng: lng},
	})
	if err != nil {
		return "", fmt.Errorf("geocode: %w", err)
	}
	if len(results) == 0 {
		return "", ErrNoResults
	}
	return results[0].FormattedAddress, nil
}
