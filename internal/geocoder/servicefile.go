package geocoder

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/geolookup/internal/domain"
	"github.com/couchcryptid/geolookup/internal/locatable"
	"gopkg.in/yaml.v3"
)

// ServiceFile declares custom services and API keys, for example:
//
//	services:
//	  - name: nominatim-local
//	    adapter: osm
//	    host: http://nominatim.internal:8080
//	  - name: plain
//	    host: http://geo.internal
//	    operations:
//	      coords: /lookup?q={:address}&key={:key}
//	    parsers:
//	      coords: '(?P<latitude>-?[\d.]+),\s*(?P<longitude>-?[\d.]+)'
//	keys:
//	  google:
//	    maps.example.com: AIza...
//	models:
//	  museums:
//	    service: nominatim-local
//	    fields: {latitude: location.latitude, longitude: location.longitude}
//	    index: {background: true}
//
// Models are not applied to the registry; callers bind them on a
// locatable.Locatable once the services exist.
type ServiceFile struct {
	Services []ServiceEntry                     `yaml:"services"`
	Keys     map[string]map[string]string        `yaml:"keys"`
	Models   map[string]locatable.BindingConfig `yaml:"models"`
}

// ServiceEntry is one service in a ServiceFile. Adapter names a stock
// response format (osm, google, yahoo, mapbox) whose templates and parsers
// are reused; Operations and Parsers then override per operation. Parsers
// given here are regular expressions with latitude and longitude groups.
type ServiceEntry struct {
	Name       string            `yaml:"name"`
	Host       string            `yaml:"host"`
	Adapter    string            `yaml:"adapter"`
	Operations map[string]string `yaml:"operations"`
	Parsers    map[string]string `yaml:"parsers"`
}

// LoadServiceFile reads and parses a service file.
func LoadServiceFile(path string) (*ServiceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service file: %w", err)
	}
	return ParseServiceFile(data)
}

// ParseServiceFile decodes YAML, rejecting unknown fields.
func ParseServiceFile(data []byte) (*ServiceFile, error) {
	var f ServiceFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse service file: %w", err)
	}
	return &f, nil
}

// Config builds the service configuration described by e.
func (e ServiceEntry) Config() (domain.ServiceConfig, error) {
	cfg := domain.ServiceConfig{
		Name:       e.Name,
		Host:       e.Host,
		Operations: map[domain.OperationKind]string{},
		Parsers:    map[domain.OperationKind]domain.ParserSpec{},
	}
	if e.Adapter != "" {
		base, ok := AdapterService(e.Adapter)
		if !ok {
			return domain.ServiceConfig{}, fmt.Errorf("%w: service %q: unknown adapter %q", domain.ErrInvalidService, e.Name, e.Adapter)
		}
		cfg.Operations, cfg.Parsers = base.Operations, base.Parsers
		if cfg.Host == "" {
			cfg.Host = base.Host
		}
	}

	for name, tmpl := range e.Operations {
		op, err := domain.ParseOperationKind(name)
		if err != nil {
			return domain.ServiceConfig{}, fmt.Errorf("%w: service %q: %w", domain.ErrInvalidService, e.Name, err)
		}
		cfg.Operations[op] = tmpl
	}
	for name, pattern := range e.Parsers {
		op, err := domain.ParseOperationKind(name)
		if err != nil {
			return domain.ServiceConfig{}, fmt.Errorf("%w: service %q: %w", domain.ErrInvalidService, e.Name, err)
		}
		parser, err := domain.RegexParser(pattern)
		if err != nil {
			return domain.ServiceConfig{}, fmt.Errorf("service %q: %w", e.Name, err)
		}
		cfg.Parsers[op] = parser
	}
	return cfg, cfg.Validate()
}

// Apply registers every service and merges the keys into c.
func (f *ServiceFile) Apply(r *Registry, c *Context) error {
	for _, entry := range f.Services {
		cfg, err := entry.Config()
		if err != nil {
			return err
		}
		if err := r.Register(cfg); err != nil {
			return err
		}
	}
	c.Update(f.Keys)
	return nil
}
