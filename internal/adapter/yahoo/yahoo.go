// Package yahoo registers the retired Yahoo PlaceFinder endpoint. The
// service is kept addressable so existing configuration keeps resolving, but
// its parsers never produce a result.
package yahoo

import "github.com/couchcryptid/geolookup/internal/domain"

const (
	// Name is the registry name of the service.
	Name = "yahoo"
	// Host is the PlaceFinder endpoint.
	Host = "http://where.yahooapis.com"
)

// Service returns the stub configuration. Only forward lookups are templated.
func Service() domain.ServiceConfig {
	return domain.ServiceConfig{
		Name: Name,
		Host: Host,
		Operations: map[domain.OperationKind]string{
			domain.OpCoords: "/geocode?appid={:key}&location={:address}",
		},
		Parsers: map[domain.OperationKind]domain.ParserSpec{
			domain.OpCoords:  domain.CallbackParser(parseNothing),
			domain.OpAddress: domain.CallbackParser(parseNothing),
		},
	}
}

func parseNothing([]byte) (*domain.Location, error) {
	return nil, nil
}
