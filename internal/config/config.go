package config

import (
	"errors"
	"os"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Lookup configuration.
	Host             string
	HTTPTimeout      time.Duration
	UserAgent        string
	ServicesFile     string
	GoogleMapsAPIKey string

	// Mapbox is registered as an extra service only when enabled.
	MapboxToken   string
	MapboxEnabled bool

	// Lookup stream. The stream runs only when KafkaSourceTopic is set.
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string

	BatchSize          int
	BatchFlushInterval time.Duration

	// DatabaseURL enables the spatial index and find store when set.
	DatabaseURL string
}

// StreamEnabled reports whether the Kafka lookup stream should run.
func (c *Config) StreamEnabled() bool {
	return c.KafkaSourceTopic != ""
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	httpTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("GEO_HTTP_TIMEOUT", "5s"))
	if err != nil || httpTimeout <= 0 {
		return nil, errors.New("invalid GEO_HTTP_TIMEOUT")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		Host:             sharedcfg.EnvOrDefault("GEO_HOST", "localhost"),
		HTTPTimeout:      httpTimeout,
		UserAgent:        sharedcfg.EnvOrDefault("GEO_USER_AGENT", "geolookup/1.0"),
		ServicesFile:     os.Getenv("GEO_SERVICES_FILE"),
		GoogleMapsAPIKey: os.Getenv("GOOGLE_MAPS_API_KEY"),

		MapboxToken:   mapboxToken,
		MapboxEnabled: mapboxEnabled,

		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   os.Getenv("KAFKA_SOURCE_TOPIC"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "geocode-results"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "geolookup"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		DatabaseURL: os.Getenv("DATABASE_URL"),
	}

	if cfg.StreamEnabled() {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required")
		}
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}
