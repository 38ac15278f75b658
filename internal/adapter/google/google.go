// Package google adapts Google Geocoding API responses to domain.Location.
package google

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/couchcryptid/geolookup/internal/domain"
)

const (
	// Name is the registry name of the service.
	Name = "google"
	// Host is the Google Maps API endpoint.
	Host = "https://maps.googleapis.com"
)

// Service returns the built-in Google Geocoding configuration. The API key
// comes from the lookup context.
func Service() domain.ServiceConfig {
	return domain.ServiceConfig{
		Name: Name,
		Host: Host,
		Operations: map[domain.OperationKind]string{
			domain.OpCoords:  "/maps/api/geocode/json?address={:address}&key={:key}",
			domain.OpAddress: "/maps/api/geocode/json?latlng={:latitude},{:longitude}&key={:key}",
		},
		Parsers: map[domain.OperationKind]domain.ParserSpec{
			domain.OpCoords:  domain.CallbackParser(Parse),
			domain.OpAddress: domain.CallbackParser(Parse),
		},
	}
}

// addressKeys maps canonical fields to component types in priority order.
// The first component carrying the earliest listed type wins.
var addressKeys = []struct {
	field     string
	types     []string
	shortName bool
}{
	{field: domain.FieldTitle, types: []string{"point_of_interest", "establishment", "premise"}},
	{field: domain.FieldNumber, types: []string{"street_number"}, shortName: true},
	{field: domain.FieldStreet, types: []string{"route"}},
	{field: domain.FieldNeighborhood, types: []string{"neighborhood", "sublocality"}},
	{field: domain.FieldCity, types: []string{"locality", "postal_town"}},
	{field: domain.FieldCounty, types: []string{"administrative_area_level_2"}},
	{field: domain.FieldState, types: []string{"administrative_area_level_1"}},
	{field: domain.FieldPostalCode, types: []string{"postal_code"}},
	{field: domain.FieldCountry, types: []string{"country"}},
}

// Google API response types.

type response struct {
	Status       string   `json:"status"`
	ErrorMessage string   `json:"error_message"`
	Results      []result `json:"results"`
}

type result struct {
	FormattedAddress  string      `json:"formatted_address"`
	AddressComponents []component `json:"address_components"`
	Geometry          geometry    `json:"geometry"`
}

type component struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type geometry struct {
	Location *latLng  `json:"location"`
	Bounds   *latLngs `json:"bounds"`
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type latLngs struct {
	Northeast latLng `json:"northeast"`
	Southwest latLng `json:"southwest"`
}

// Parse decodes a geocode or reverse geocode response. Only results[0] is
// used; an empty result list means no match. Statuses that signal a
// rejected request (bad key, quota) are errors.
func Parse(raw []byte) (*domain.Location, error) {
	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode google response: %w", err)
	}
	switch resp.Status {
	case "", "OK", "ZERO_RESULTS":
	default:
		return nil, fmt.Errorf("google maps status: %s: %s", resp.Status, resp.ErrorMessage)
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}

	var generic struct {
		Results []any `json:"results"`
	}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("decode google response: %w", err)
	}

	r := resp.Results[0]
	loc := &domain.Location{
		Address: mapAddress(r.AddressComponents),
		Raw:     generic.Results[0],
	}
	if g := r.Geometry.Location; g != nil {
		loc.Coordinates = &domain.Coordinates{Latitude: g.Lat, Longitude: g.Lng}
	}
	if b := r.Geometry.Bounds; b != nil {
		loc.Bounds = &domain.Bounds{
			Southwest: domain.Coordinates{Latitude: b.Southwest.Lat, Longitude: b.Southwest.Lng},
			Northeast: domain.Coordinates{Latitude: b.Northeast.Lat, Longitude: b.Northeast.Lng},
		}
	}
	return loc, nil
}

func mapAddress(components []component) map[string]string {
	out := make(map[string]string, len(addressKeys)+1)
	for _, k := range addressKeys {
		c, ok := findComponent(components, k.types)
		if !ok {
			continue
		}
		name := c.LongName
		if k.shortName {
			name = c.ShortName
		}
		if v := domain.NormalizePlace(name); v != "" {
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

func findComponent(components []component, types []string) (component, bool) {
	for _, t := range types {
		for _, c := range components {
			if slices.Contains(c.Types, t) {
				return c, true
			}
		}
	}
	return component{}, false
}
