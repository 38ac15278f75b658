package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/geolookup/internal/cli"
	"github.com/couchcryptid/geolookup/internal/config"
	"github.com/couchcryptid/geolookup/internal/geocoder"
	"github.com/couchcryptid/geolookup/internal/observability"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(func() (cli.Lookup, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		// stdout carries command output; logs go to stderr.
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		lookup, _, err := geocoder.NewFromConfig(cfg, observability.NewMetrics(), logger)
		if err != nil {
			return nil, err
		}
		return lookup, nil
	})

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "geoctl:", err)
		os.Exit(1)
	}
}
