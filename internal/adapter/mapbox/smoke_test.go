//go:build mapbox

package mapbox_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/geolookup/internal/adapter/httpclient"
	"github.com/couchcryptid/geolookup/internal/adapter/mapbox"
	"github.com/couchcryptid/geolookup/internal/domain"
	"github.com/couchcryptid/geolookup/internal/geocoder"
	"github.com/couchcryptid/geolookup/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real Mapbox API and require a valid MAPBOX_TOKEN env var.
// Run with: go test -tags=mapbox ./internal/adapter/mapbox/ -v -count=1

func smokeGeocoder(t *testing.T) *geocoder.Geocoder {
	t.Helper()
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Fatal("MAPBOX_TOKEN must be set to run smoke tests")
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()

	registry := geocoder.NewRegistry()
	require.NoError(t, registry.Register(mapbox.Service()))
	keys := geocoder.NewContext("localhost")
	keys.SetKey(mapbox.Name, "localhost", token)

	client := httpclient.New(10*time.Second, "geolookup-smoke", metrics, logger)
	return geocoder.New(registry, keys, client, metrics, logger)
}

func TestSmoke_Coords(t *testing.T) {
	g := smokeGeocoder(t)

	loc, err := g.Coords(context.Background(), mapbox.Name, "Austin, TX")
	require.NoError(t, err)
	require.NotNil(t, loc)
	require.NotNil(t, loc.Coordinates)

	assert.InDelta(t, 30.27, loc.Coordinates.Latitude, 0.1, "lat should be near Austin")
	assert.InDelta(t, -97.74, loc.Coordinates.Longitude, 0.1, "lon should be near Austin")
}

func TestSmoke_Address(t *testing.T) {
	g := smokeGeocoder(t)

	loc, err := g.Address(context.Background(), mapbox.Name, 30.2672, -97.7431)
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.NotEmpty(t, loc.Address[domain.FieldCountry])
}
