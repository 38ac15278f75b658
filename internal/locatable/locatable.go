// Package locatable binds models to a geocoding service and rewrites
// shorthand spatial find parameters into canonical query conditions.
package locatable

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/couchcryptid/geolookup/internal/domain"
	"github.com/couchcryptid/geolookup/internal/observability"
)

// Binding defaults.
const (
	DefaultService       = "google"
	DefaultLatitude      = "latitude"
	DefaultLongitude     = "longitude"
	DefaultAddressFormat = "{:address} {:city}, {:state} {:zip}"
)

// Fields names the latitude and longitude paths of a model. Dotted paths
// address members of an embedded document, e.g. "location.latitude".
type Fields struct {
	Latitude  string `yaml:"latitude" json:"latitude"`
	Longitude string `yaml:"longitude" json:"longitude"`
}

// IndexOptions controls the spatial index created when a model is bound.
type IndexOptions struct {
	Include    []string `yaml:"include" json:"include,omitempty"`
	Background bool     `yaml:"background" json:"background"`
}

// BindingConfig describes how a model is geocoded and queried.
type BindingConfig struct {
	Service       string        `yaml:"service" json:"service"`
	Fields        Fields        `yaml:"fields" json:"fields"`
	AddressFormat string        `yaml:"address_format" json:"address_format"`
	Index         *IndexOptions `yaml:"index" json:"index,omitempty"`
	// NoIndex skips the spatial index that is otherwise created on bind.
	NoIndex bool `yaml:"no_index" json:"no_index,omitempty"`
}

func (c BindingConfig) withDefaults() BindingConfig {
	if c.Service == "" {
		c.Service = DefaultService
	}
	switch {
	case c.Fields.Latitude == "" && c.Fields.Longitude == "":
		c.Fields = Fields{Latitude: DefaultLatitude, Longitude: DefaultLongitude}
	case c.Fields.Longitude == "":
		c.Fields.Longitude = c.Fields.Latitude
	case c.Fields.Latitude == "":
		c.Fields.Latitude = c.Fields.Longitude
	}
	if c.AddressFormat == "" {
		c.AddressFormat = DefaultAddressFormat
	}
	switch {
	case c.NoIndex:
		c.Index = nil
	case c.Index == nil:
		c.Index = &IndexOptions{Background: true}
	}
	return c
}

// BaseField returns the path under which spatial conditions for f are
// nested: the part of a dotted latitude path before the first dot, or the
// shared field name when both paths are equal. It returns "" when the two
// fields are independent columns.
func BaseField(f Fields) string {
	if i := strings.Index(f.Latitude, "."); i > 0 {
		return f.Latitude[:i]
	}
	if f.Latitude == f.Longitude {
		return f.Latitude
	}
	return ""
}

// Entity is a stored record of a bound model.
type Entity struct {
	Model string         `json:"model"`
	Data  map[string]any `json:"data"`
}

// Lookup is the geocoder surface a Locatable depends on.
type Lookup interface {
	Has(service string) bool
	Find(ctx context.Context, service string, q domain.Query) (*domain.Location, error)
}

// Indexer creates the spatial index for a bound model.
type Indexer interface {
	EnsureIndex(ctx context.Context, model string, fields Fields, opts IndexOptions) error
}

// Locatable holds the per-model bindings. It is safe for concurrent use.
type Locatable struct {
	lookup  Lookup
	indexer Indexer
	metrics *observability.Metrics
	logger  *slog.Logger

	mu       sync.RWMutex
	bindings map[string]BindingConfig
}

// New creates a Locatable with no bindings. indexer may be nil, in which
// case index options are ignored.
func New(lookup Lookup, indexer Indexer, metrics *observability.Metrics, logger *slog.Logger) *Locatable {
	return &Locatable{
		lookup:   lookup,
		indexer:  indexer,
		metrics:  metrics,
		logger:   logger,
		bindings: make(map[string]BindingConfig),
	}
}

// Bind validates cfg, creates the model's index unless NoIndex is set, and stores
// the binding, replacing any earlier one. Nothing is stored on error.
func (l *Locatable) Bind(ctx context.Context, model string, cfg BindingConfig) error {
	cfg = cfg.withDefaults()
	if !l.lookup.Has(cfg.Service) {
		return fmt.Errorf("%w: the lookup service %q does not exist", domain.ErrUnknownService, cfg.Service)
	}

	if cfg.Index != nil {
		switch {
		case l.indexer == nil:
			l.logger.Debug("no indexer configured, skipping spatial index", "model", model)
		default:
			if err := l.indexer.EnsureIndex(ctx, model, cfg.Fields, *cfg.Index); err != nil {
				return fmt.Errorf("index model %q: %w", model, err)
			}
		}
	}

	l.mu.Lock()
	l.bindings[model] = cfg
	l.mu.Unlock()

	l.logger.Info("model bound", "model", model, "service", cfg.Service, "field", BaseField(cfg.Fields))
	return nil
}

// Binding returns the configuration bound to model.
func (l *Locatable) Binding(model string) (BindingConfig, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cfg, ok := l.bindings[model]
	return cfg, ok
}

// BindAll binds every model in name order and stops at the first failure.
func (l *Locatable) BindAll(ctx context.Context, models map[string]BindingConfig) error {
	for _, model := range slices.Sorted(maps.Keys(models)) {
		if err := l.Bind(ctx, model, models[model]); err != nil {
			return err
		}
	}
	return nil
}

// Models lists the bound model names in sorted order.
func (l *Locatable) Models() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Sorted(maps.Keys(l.bindings))
}

// Reset drops every binding.
func (l *Locatable) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bindings = make(map[string]BindingConfig)
}

// Geocode formats the entity's address with its model's address format and
// looks it up. Unbound models and blank addresses yield nil.
func (l *Locatable) Geocode(ctx context.Context, e Entity) (*domain.Location, error) {
	cfg, ok := l.Binding(e.Model)
	if !ok {
		return nil, nil
	}
	address := strings.TrimSpace(domain.Insert(cfg.AddressFormat, flatten(e.Data)))
	if address == "" {
		return nil, nil
	}
	return l.lookup.Find(ctx, cfg.Service, domain.Query{Address: address})
}

// RewriteFindParameters turns shorthand spatial parameters of a find on
// model into canonical conditions. Options of unbound models, and of models
// whose fields share no base path, pass through unchanged. opts is never
// modified.
func (l *Locatable) RewriteFindParameters(model, findType string, opts Options) Options {
	cfg, ok := l.Binding(model)
	if !ok {
		return opts
	}
	field := BaseField(cfg.Fields)
	if field == "" {
		return opts
	}
	out, condition := Rewrite(field, findType, opts)
	if condition != "" {
		l.metrics.QueryRewrites.WithLabelValues(model, condition).Inc()
	}
	return out
}

// flatten keeps the scalar fields of data as trimmed strings.
func flatten(data map[string]any) map[string]string {
	out := make(map[string]string, len(data))
	for k, v := range data {
		var s string
		switch t := v.(type) {
		case string:
			s = t
		case float64:
			s = strconv.FormatFloat(t, 'f', -1, 64)
		case float32:
			s = strconv.FormatFloat(float64(t), 'f', -1, 32)
		case int:
			s = strconv.Itoa(t)
		case int64:
			s = strconv.FormatInt(t, 10)
		case bool:
			s = strconv.FormatBool(t)
		case fmt.Stringer:
			s = t.String()
		default:
			continue
		}
		out[k] = strings.TrimSpace(s)
	}
	return out
}
