package geocoder

import (
	"slices"
	"sync"

	"github.com/couchcryptid/geolookup/internal/adapter/google"
	"github.com/couchcryptid/geolookup/internal/adapter/mapbox"
	"github.com/couchcryptid/geolookup/internal/adapter/osm"
	"github.com/couchcryptid/geolookup/internal/adapter/yahoo"
	"github.com/couchcryptid/geolookup/internal/domain"
)

// Builtins returns the services every registry starts with, in order.
func Builtins() []domain.ServiceConfig {
	return []domain.ServiceConfig{osm.Service(), google.Service(), yahoo.Service()}
}

// adapters lists the response formats a configured service can reuse.
var adapters = map[string]func() domain.ServiceConfig{
	osm.Name:    osm.Service,
	google.Name: google.Service,
	yahoo.Name:  yahoo.Service,
	mapbox.Name: mapbox.Service,
}

// AdapterService returns the stock configuration of a known response format.
func AdapterService(name string) (domain.ServiceConfig, bool) {
	fn, ok := adapters[name]
	if !ok {
		return domain.ServiceConfig{}, false
	}
	return fn(), true
}

// Registry holds the named service configurations. It is safe for
// concurrent use.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	services map[string]domain.ServiceConfig
}

// NewRegistry returns a registry holding only the built-in services.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Reset()
	return r
}

// Reset restores the built-in services and drops custom registrations.
func (r *Registry) Reset() {
	builtins := Builtins()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = make([]string, 0, len(builtins))
	r.services = make(map[string]domain.ServiceConfig, len(builtins))
	for _, cfg := range builtins {
		r.order = append(r.order, cfg.Name)
		r.services[cfg.Name] = cfg
	}
}

// Register validates cfg and stores it under cfg.Name, replacing any
// existing entry as a whole. A replaced service keeps its position.
func (r *Registry) Register(cfg domain.ServiceConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg = cfg.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.services[cfg.Name]; !exists {
		r.order = append(r.order, cfg.Name)
	}
	r.services[cfg.Name] = cfg
	return nil
}

// Lookup returns a copy of the named service.
func (r *Registry) Lookup(name string) (domain.ServiceConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.services[name]
	if !ok {
		return domain.ServiceConfig{}, false
	}
	return cfg.Clone(), true
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.services[name]
	return ok
}

// Names lists services in registration order, built-ins first.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Len returns the number of registered services.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
