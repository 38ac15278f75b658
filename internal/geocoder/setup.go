package geocoder

import (
	"log/slog"

	"github.com/couchcryptid/geolookup/internal/adapter/google"
	"github.com/couchcryptid/geolookup/internal/adapter/httpclient"
	"github.com/couchcryptid/geolookup/internal/adapter/mapbox"
	"github.com/couchcryptid/geolookup/internal/config"
	"github.com/couchcryptid/geolookup/internal/locatable"
	"github.com/couchcryptid/geolookup/internal/observability"
)

// NewFromConfig builds a Geocoder with the built-in services, Mapbox when
// enabled, and any services and keys declared in the configured file. It
// also returns the model bindings the file declares. Environment keys are
// stored for the configured host.
func NewFromConfig(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (*Geocoder, map[string]locatable.BindingConfig, error) {
	registry := NewRegistry()
	keys := NewContext(cfg.Host)

	if cfg.GoogleMapsAPIKey != "" {
		keys.SetKey(google.Name, cfg.Host, cfg.GoogleMapsAPIKey)
	}
	if cfg.MapboxEnabled {
		if err := registry.Register(mapbox.Service()); err != nil {
			return nil, nil, err
		}
		keys.SetKey(mapbox.Name, cfg.Host, cfg.MapboxToken)
		logger.Info("mapbox service enabled")
	}
	var models map[string]locatable.BindingConfig
	if cfg.ServicesFile != "" {
		file, err := LoadServiceFile(cfg.ServicesFile)
		if err != nil {
			return nil, nil, err
		}
		if err := file.Apply(registry, keys); err != nil {
			return nil, nil, err
		}
		models = file.Models
		logger.Info("service file applied", "path", cfg.ServicesFile, "services", len(file.Services), "models", len(models))
	}

	metrics.ServicesRegistered.Set(float64(registry.Len()))

	client := httpclient.New(cfg.HTTPTimeout, cfg.UserAgent, metrics, logger)
	return New(registry, keys, client, metrics, logger), models, nil
}
