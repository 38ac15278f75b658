// Package osm adapts OpenStreetMap Nominatim responses to domain.Location.
package osm

import (
	"encoding/json"
	"fmt"

	"github.com/couchcryptid/geolookup/internal/domain"
)

const (
	// Name is the registry name of the service.
	Name = "osm"
	// Host is the public Nominatim endpoint.
	Host = "https://nominatim.openstreetmap.org"
)

// Service returns the built-in Nominatim configuration.
func Service() domain.ServiceConfig {
	return domain.ServiceConfig{
		Name: Name,
		Host: Host,
		Operations: map[domain.OperationKind]string{
			domain.OpCoords:  "/search?q={:address}&format=json",
			domain.OpAddress: "/reverse?lat={:latitude}&lon={:longitude}&format=json",
		},
		Parsers: map[domain.OperationKind]domain.ParserSpec{
			domain.OpCoords:  domain.CallbackParser(ParseSearch),
			domain.OpAddress: domain.CallbackParser(ParseReverse),
		},
	}
}

// addressKeys maps canonical fields to Nominatim address keys.
var addressKeys = []struct {
	field  string
	source string
}{
	{domain.FieldTitle, "attraction"},
	{domain.FieldNumber, "house_number"},
	{domain.FieldStreet, "pedestrian"},
	{domain.FieldNeighborhood, "suburb"},
	{domain.FieldCity, "city"},
	{domain.FieldCounty, "county"},
	{domain.FieldState, "state"},
	{domain.FieldProvince, "province"},
	{domain.FieldPostalCode, "postcode"},
	{domain.FieldCountry, "country"},
}

// Nominatim API response types. Coordinates arrive as strings.

type place struct {
	Lat         any               `json:"lat"`
	Lon         any               `json:"lon"`
	BoundingBox []any             `json:"boundingbox"` // [south, north, west, east]
	Licence     string            `json:"licence"`
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
	Error       string            `json:"error"`
}

// ParseSearch decodes a /search response. An empty array means no match.
func ParseSearch(raw []byte) (*domain.Location, error) {
	var results []json.RawMessage
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, fmt.Errorf("decode osm search response: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	return decodePlace(results[0], false)
}

// ParseReverse decodes a /reverse response. An empty object, or Nominatim's
// {"error": "..."} reply, means no match.
func ParseReverse(raw []byte) (*domain.Location, error) {
	return decodePlace(raw, true)
}

func decodePlace(raw json.RawMessage, withAddress bool) (*domain.Location, error) {
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("decode osm place: %w", err)
	}
	if len(generic) == 0 {
		return nil, nil
	}
	var p place
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode osm place: %w", err)
	}
	if p.Error != "" {
		return nil, nil
	}

	loc := &domain.Location{
		License: p.Licence,
		Raw:     generic,
	}
	if p.Lat != nil && p.Lon != nil {
		loc.Coordinates = &domain.Coordinates{
			Latitude:  domain.ToFloat(p.Lat),
			Longitude: domain.ToFloat(p.Lon),
		}
	}
	if len(p.BoundingBox) == 4 {
		south, north := domain.ToFloat(p.BoundingBox[0]), domain.ToFloat(p.BoundingBox[1])
		west, east := domain.ToFloat(p.BoundingBox[2]), domain.ToFloat(p.BoundingBox[3])
		loc.Bounds = &domain.Bounds{
			Southwest: domain.Coordinates{Latitude: south, Longitude: west},
			Northeast: domain.Coordinates{Latitude: north, Longitude: east},
		}
	}
	if withAddress {
		loc.Address = mapAddress(p.Address)
	}
	return loc, nil
}

func mapAddress(src map[string]string) map[string]string {
	out := make(map[string]string, len(addressKeys)+1)
	for _, k := range addressKeys {
		if v := domain.NormalizePlace(src[k.source]); v != "" {
			out[k.field] = v
		}
	}
	if country := out[domain.FieldCountry]; country != "" {
		if continent := domain.DeriveContinent(country); continent != "" {
			out[domain.FieldContinent] = continent
		}
	}
	return out
}
