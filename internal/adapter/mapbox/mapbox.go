// Package mapbox adapts Mapbox Geocoding API responses to domain.Location.
// It is registered only when a Mapbox token is configured.
package mapbox

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/couchcryptid/geolookup/internal/domain"
)

const (
	// Name is the registry name of the service.
	Name = "mapbox"
	// Host is the Mapbox API endpoint.
	Host = "https://api.mapbox.com"
)

// Service returns the Mapbox configuration. The access token is read from
// the lookup context as the service key. Mapbox expects lon,lat order.
func Service() domain.ServiceConfig {
	return domain.ServiceConfig{
		Name: Name,
		Host: Host,
		Operations: map[domain.OperationKind]string{
			domain.OpCoords:  "/geocoding/v5/mapbox.places/{:address}.json?access_token={:key}&limit=1",
			domain.OpAddress: "/geocoding/v5/mapbox.places/{:longitude},{:latitude}.json?access_token={:key}&limit=1",
		},
		Parsers: map[domain.OperationKind]domain.ParserSpec{
			domain.OpCoords:  domain.CallbackParser(Parse),
			domain.OpAddress: domain.CallbackParser(Parse),
		},
	}
}

// contextFields maps Mapbox feature id prefixes to canonical fields.
var contextFields = map[string]string{
	"poi":          domain.FieldTitle,
	"address":      domain.FieldStreet,
	"neighborhood": domain.FieldNeighborhood,
	"locality":     domain.FieldNeighborhood,
	"place":        domain.FieldCity,
	"district":     domain.FieldCounty,
	"region":       domain.FieldState,
	"postcode":     domain.FieldPostalCode,
	"country":      domain.FieldCountry,
}

// Mapbox API response types.

type response struct {
	Attribution string    `json:"attribution"`
	Features    []feature `json:"features"`
}

type feature struct {
	ID        string     `json:"id"`
	Center    []float64  `json:"center"` // [lon, lat]
	BBox      []float64  `json:"bbox"`   // [minLon, minLat, maxLon, maxLat]
	PlaceName string     `json:"place_name"`
	Text      string     `json:"text"`
	Address   string     `json:"address"`
	Relevance float64    `json:"relevance"`
	Context   []ctxEntry `json:"context"`
}

type ctxEntry struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Parse decodes a forward or reverse response. Only the first feature is
// used; an empty feature list means no match.
func Parse(raw []byte) (*domain.Location, error) {
	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode mapbox response: %w", err)
	}
	if len(resp.Features) == 0 {
		return nil, nil
	}

	var generic struct {
		Features []any `json:"features"`
	}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("decode mapbox response: %w", err)
	}

	f := resp.Features[0]
	loc := &domain.Location{
		Address: mapAddress(f),
		License: resp.Attribution,
		Raw:     generic.Features[0],
	}
	if len(f.Center) == 2 {
		loc.Coordinates = &domain.Coordinates{Latitude: f.Center[1], Longitude: f.Center[0]}
	}
	if len(f.BBox) == 4 {
		loc.Bounds = &domain.Bounds{
			Southwest: domain.Coordinates{Latitude: f.BBox[1], Longitude: f.BBox[0]},
			Northeast: domain.Coordinates{Latitude: f.BBox[3], Longitude: f.BBox[2]},
		}
	}
	return loc, nil
}

func mapAddress(f feature) map[string]string {
	out := map[string]string{}
	entries := append([]ctxEntry{{ID: f.ID, Text: f.Text}}, f.Context...)
	for _, e := range entries {
		prefix, _, _ := strings.Cut(e.ID, ".")
		field, ok := contextFields[prefix]
		if !ok || out[field] != "" {
			continue
		}
		if v := domain.NormalizePlace(e.Text); v != "" {
			out[field] = v
		}
	}
	if f.Address != "" {
		out[domain.FieldNumber] = f.Address
	}
	if country := out[domain.FieldCountry]; country != "" {
		if continent := domain.DeriveContinent(country); continent != "" {
			out[domain.FieldContinent] = continent
		}
	}
	return out
}
