package domain

import (
	"database/sql/driver"
	"fmt"
	"strconv"
)

// Canonical address keys produced by the response adapters.
const (
	FieldTitle        = "title"
	FieldNumber       = "number"
	FieldStreet       = "street"
	FieldNeighborhood = "neighborhood"
	FieldCity         = "city"
	FieldCounty       = "county"
	FieldState        = "state"
	FieldProvince     = "province"
	FieldPostalCode   = "postalCode"
	FieldCountry      = "country"
	FieldContinent    = "continent"
)

// Coordinates is a point in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// String renders the point as "POINT(lat lon)".
func (c Coordinates) String() string {
	return "POINT(" + strconv.FormatFloat(c.Latitude, 'f', -1, 64) + " " +
		strconv.FormatFloat(c.Longitude, 'f', -1, 64) + ")"
}

// Value implements driver.Valuer so a point can be bound as a query argument.
func (c Coordinates) Value() (driver.Value, error) {
	return c.String(), nil
}

// Scan implements sql.Scanner for "POINT(lat lon)" text.
func (c *Coordinates) Scan(value any) error {
	var s string
	switch v := value.(type) {
	case nil:
		c.Latitude, c.Longitude = 0, 0
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("scan coordinates: unsupported type %T", value)
	}
	if _, err := fmt.Sscanf(s, "POINT(%g %g)", &c.Latitude, &c.Longitude); err != nil {
		return fmt.Errorf("scan coordinates %q: %w", s, err)
	}
	return nil
}

// Bounds is a bounding box given by its southwest and northeast corners.
type Bounds struct {
	Southwest Coordinates `json:"southwest"`
	Northeast Coordinates `json:"northeast"`
}

// Location is the canonical result of a geocoding lookup.
type Location struct {
	Coordinates *Coordinates      `json:"coordinates,omitempty"`
	Address     map[string]string `json:"address,omitempty"`
	Bounds      *Bounds           `json:"bounds,omitempty"`
	License     string            `json:"license,omitempty"`
	Raw         any               `json:"raw,omitempty"`
}

// FormatAddress fills template with the address fields, e.g.
// "{:number} {:street}, {:city}". Fields the location lacks render empty.
func (l *Location) FormatAddress(template string) string {
	if l == nil {
		return ""
	}
	return Insert(template, l.Address)
}

// AddressFields returns the subset of the address named by keys, skipping
// keys the location does not have.
func (l *Location) AddressFields(keys ...string) map[string]string {
	out := make(map[string]string, len(keys))
	if l == nil {
		return out
	}
	for _, k := range keys {
		if v := l.Address[k]; v != "" {
			out[k] = v
		}
	}
	return out
}
