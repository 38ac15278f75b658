// Package geocoder resolves lookups against registered geocoding services:
// it picks the service, fills its URL template, fetches the response, and
// hands it to the service's parser.
package geocoder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/couchcryptid/geolookup/internal/domain"
	"github.com/couchcryptid/geolookup/internal/observability"
)

// Getter performs the HTTP GET behind a lookup. An empty response is
// reported as nil data with a nil error.
type Getter interface {
	Get(ctx context.Context, host, path string) ([]byte, error)
}

// Lookup outcomes recorded in metrics.
const (
	outcomeFound = "found"
	outcomeEmpty = "empty"
	outcomeError = "error"
)

// Geocoder implements domain.Lookup.
type Geocoder struct {
	registry *Registry
	keys     *Context
	getter   Getter
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// New creates a Geocoder over the given registry and context.
func New(registry *Registry, lookupCtx *Context, getter Getter, metrics *observability.Metrics, logger *slog.Logger) *Geocoder {
	return &Geocoder{
		registry: registry,
		keys:     lookupCtx,
		getter:   getter,
		metrics:  metrics,
		logger:   logger,
	}
}

// Run performs op against service. A nil Location with a nil error means
// the provider had no match or returned an empty response.
func (g *Geocoder) Run(ctx context.Context, op domain.OperationKind, service string, q domain.Query) (*domain.Location, error) {
	cfg, ok := g.registry.Lookup(service)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownService, service)
	}
	raw, ok := cfg.Operations[op]
	if !ok {
		return nil, fmt.Errorf("%w: service %q has no %q operation", domain.ErrUnsupportedOperation, service, op)
	}
	tmpl, err := domain.ParseURLTemplate(raw)
	if err != nil {
		return nil, err
	}

	values := map[domain.Placeholder]string{
		domain.PlaceholderAddress: escape(q.Address),
		domain.PlaceholderKey:     escape(g.keys.Key(service)),
	}
	if q.Point != nil {
		values[domain.PlaceholderLatitude] = strconv.FormatFloat(q.Point.Latitude, 'f', -1, 64)
		values[domain.PlaceholderLongitude] = strconv.FormatFloat(q.Point.Longitude, 'f', -1, 64)
	}
	path := tmpl.Fill(values)

	body, err := g.getter.Get(ctx, cfg.Host, path)
	if err != nil {
		g.observe(service, op, outcomeError)
		g.logger.Warn("lookup request failed", "service", service, "operation", op, "error", err)
		return nil, fmt.Errorf("%s %s lookup: %w", service, op, err)
	}
	if len(body) == 0 {
		g.observe(service, op, outcomeEmpty)
		return nil, nil
	}

	loc, err := cfg.Parsers[op].Parse(body)
	if err != nil {
		g.observe(service, op, outcomeError)
		g.logger.Warn("lookup response rejected", "service", service, "operation", op, "error", err)
		return nil, fmt.Errorf("%s %s lookup: %w", service, op, err)
	}
	if loc == nil {
		g.observe(service, op, outcomeEmpty)
		return nil, nil
	}
	g.observe(service, op, outcomeFound)
	return loc, nil
}

// Coords resolves an address to coordinates.
func (g *Geocoder) Coords(ctx context.Context, service, address string) (*domain.Location, error) {
	return g.Run(ctx, domain.OpCoords, service, domain.Query{Address: address})
}

// Address resolves coordinates to an address.
func (g *Geocoder) Address(ctx context.Context, service string, lat, lon float64) (*domain.Location, error) {
	return g.Run(ctx, domain.OpAddress, service, domain.Query{
		Point: &domain.Coordinates{Latitude: lat, Longitude: lon},
	})
}

// Find runs the operation implied by q: a point is reverse geocoded, an
// address is geocoded. A query with neither yields no result.
func (g *Geocoder) Find(ctx context.Context, service string, q domain.Query) (*domain.Location, error) {
	if !g.registry.Has(service) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownService, service)
	}
	op, ok := q.Operation()
	if !ok {
		return nil, nil
	}
	return g.Run(ctx, op, service, q)
}

// Has reports whether service is registered.
func (g *Geocoder) Has(service string) bool {
	return g.registry.Has(service)
}

// Services lists registered service names in registration order.
func (g *Geocoder) Services() []string {
	return g.registry.Names()
}

// CheckReadiness reports an error when no services are registered.
func (g *Geocoder) CheckReadiness(_ context.Context) error {
	if g.registry.Len() == 0 {
		return errors.New("no geocoding services registered")
	}
	return nil
}

func (g *Geocoder) observe(service string, op domain.OperationKind, outcome string) {
	g.metrics.Lookups.WithLabelValues(service, string(op), outcome).Inc()
}

// escape percent-encodes s the way RFC 3986 path and query components
// expect: spaces become %20, not "+".
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
