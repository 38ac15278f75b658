package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/geolookup/internal/adapter/api"
	httpadapter "github.com/couchcryptid/geolookup/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/geolookup/internal/adapter/kafka"
	"github.com/couchcryptid/geolookup/internal/adapter/postgres"
	"github.com/couchcryptid/geolookup/internal/config"
	"github.com/couchcryptid/geolookup/internal/geocoder"
	"github.com/couchcryptid/geolookup/internal/locatable"
	"github.com/couchcryptid/geolookup/internal/observability"
	"github.com/couchcryptid/geolookup/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for local runs.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lookup, models, err := geocoder.NewFromConfig(cfg, metrics, logger)
	if err != nil {
		logger.Error("failed to configure geocoder", "error", err)
		os.Exit(1)
	}
	logger.Info("geocoder ready", "services", lookup.Services())

	ready := httpadapter.Readiness{lookup}

	// Spatial index and find store (enabled via DATABASE_URL).
	var (
		indexer locatable.Indexer
		store   *postgres.Store
	)
	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		store = postgres.NewStore(pool, nil, logger)
		indexer = store
		ready = append(ready, postgres.NewReadiness(pool))
		logger.Info("database store enabled")
	} else {
		logger.Info("database store disabled")
	}

	binder := locatable.New(lookup, indexer, metrics, logger)
	var finder api.Finder
	if store != nil {
		store.SetBindings(binder)
		finder = locatable.NewFinder(binder, store)
	}
	if err := binder.BindAll(ctx, models); err != nil {
		logger.Error("failed to bind models", "error", err)
		os.Exit(1)
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.NewHandler(lookup, binder, finder, logger))

	// Lookup stream (enabled via KAFKA_SOURCE_TOPIC).
	var (
		reader *kafkaadapter.Reader
		writer *kafkaadapter.Writer
		p      *pipeline.Pipeline
	)
	if cfg.StreamEnabled() {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		p = pipeline.New(reader, pipeline.NewTransformer(lookup, logger), writer, logger, metrics, cfg.BatchSize)
		ready = append(ready, p)
		logger.Info("lookup stream enabled", "source", cfg.KafkaSourceTopic, "sink", cfg.KafkaSinkTopic)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, ready, router, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	if p != nil {
		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
