package geocoder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/couchcryptid/geolookup/internal/domain"
	"github.com/couchcryptid/geolookup/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock getter ---

type call struct {
	host string
	path string
}

type mockGetter struct {
	body  []byte
	err   error
	calls []call
}

func (m *mockGetter) Get(_ context.Context, host, path string) ([]byte, error) {
	m.calls = append(m.calls, call{host: host, path: path})
	return m.body, m.err
}

func (m *mockGetter) lastPath() string {
	if len(m.calls) == 0 {
		return ""
	}
	return m.calls[len(m.calls)-1].path
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGeocoder(getter Getter) (*Geocoder, *Registry, *Context, *observability.Metrics) {
	reg := NewRegistry()
	keys := NewContext("http://foo")
	metrics := observability.NewMetricsForTesting()
	return New(reg, keys, getter, metrics, discardLogger()), reg, keys, metrics
}

// --- tests ---

func TestGeocoder_CustomService(t *testing.T) {
	getter := &mockGetter{}
	g, reg, keys, _ := newTestGeocoder(getter)
	require.NoError(t, reg.Register(fooService()))

	loc, err := g.Coords(context.Background(), "foo", "A location")
	require.NoError(t, err)
	assert.Nil(t, loc)
	assert.Equal(t, "/bar/A%20location?key=", getter.lastPath())
	assert.Equal(t, "http://foo", getter.calls[0].host)

	keys.Update(map[string]map[string]string{"foo": {"http://foo": "theKey123"}})
	getter.body = []byte("84.13, 11.38")

	loc, err = g.Coords(context.Background(), "foo", "A location")
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, &domain.Coordinates{Latitude: 84.13, Longitude: 11.38}, loc.Coordinates)
	assert.Equal(t, "/bar/A%20location?key=theKey123", getter.lastPath())
}

func TestGeocoder_UnknownService(t *testing.T) {
	getter := &mockGetter{body: []byte("1, 2")}
	g, _, _, _ := newTestGeocoder(getter)

	for _, q := range []domain.Query{{}, {Address: "1600 Pennsylvania Ave. Washington DC"}, {Point: &domain.Coordinates{}}} {
		_, err := g.Run(context.Background(), domain.OpCoords, "foo", q)
		assert.ErrorIs(t, err, domain.ErrUnknownService)
	}
	_, err := g.Find(context.Background(), "foo", domain.Query{})
	assert.ErrorIs(t, err, domain.ErrUnknownService)
	assert.Empty(t, getter.calls)
}

func TestGeocoder_UnsupportedOperation(t *testing.T) {
	getter := &mockGetter{}
	g, _, _, _ := newTestGeocoder(getter)

	_, err := g.Address(context.Background(), "yahoo", 1, 2)
	assert.ErrorIs(t, err, domain.ErrUnsupportedOperation)
	assert.Empty(t, getter.calls)
}

func TestGeocoder_AddressTemplate(t *testing.T) {
	getter := &mockGetter{body: []byte(`{"address":{"country":"USA"}}`)}
	g, _, _, metrics := newTestGeocoder(getter)

	loc, err := g.Address(context.Background(), "osm", 40.7643, -73.9735)
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, "United States", loc.Address[domain.FieldCountry])
	assert.Equal(t, "/reverse?lat=40.7643&lon=-73.9735&format=json", getter.lastPath())
	assert.Equal(t, "https://nominatim.openstreetmap.org", getter.calls[0].host)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Lookups.WithLabelValues("osm", "address", "found")))
}

func TestGeocoder_EscapesAddress(t *testing.T) {
	getter := &mockGetter{}
	g, _, _, _ := newTestGeocoder(getter)

	_, err := g.Coords(context.Background(), "osm", "Rue de l'Église & Co+")
	require.NoError(t, err)
	assert.Equal(t, "/search?q=Rue%20de%20l%27%C3%89glise%20%26%20Co%2B&format=json", getter.lastPath())
}

func TestGeocoder_EmptyResponseIsAbsent(t *testing.T) {
	getter := &mockGetter{body: nil}
	g, _, _, metrics := newTestGeocoder(getter)

	loc, err := g.Coords(context.Background(), "google", "Nowhere")
	require.NoError(t, err)
	assert.Nil(t, loc)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Lookups.WithLabelValues("google", "coords", "empty")))
}

func TestGeocoder_TransportError(t *testing.T) {
	getter := &mockGetter{err: errors.New("connection refused")}
	g, _, _, metrics := newTestGeocoder(getter)

	_, err := g.Coords(context.Background(), "osm", "Paris")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Lookups.WithLabelValues("osm", "coords", "error")))
}

func TestGeocoder_ParserError(t *testing.T) {
	getter := &mockGetter{body: []byte(`not json`)}
	g, _, _, _ := newTestGeocoder(getter)

	_, err := g.Coords(context.Background(), "osm", "Paris")
	assert.Error(t, err)
}

func TestGeocoder_Find(t *testing.T) {
	getter := &mockGetter{body: []byte(`[]`)}
	g, _, _, _ := newTestGeocoder(getter)
	ctx := context.Background()

	_, err := g.Find(ctx, "osm", domain.Query{Address: "Paris"})
	require.NoError(t, err)
	assert.Equal(t, "/search?q=Paris&format=json", getter.lastPath())

	getter.body = []byte(`{}`)
	_, err = g.Find(ctx, "osm", domain.Query{Address: "Paris", Point: &domain.Coordinates{Latitude: 1, Longitude: 2}})
	require.NoError(t, err)
	assert.Equal(t, "/reverse?lat=1&lon=2&format=json", getter.lastPath())

	loc, err := g.Find(ctx, "osm", domain.Query{})
	require.NoError(t, err)
	assert.Nil(t, loc)
	assert.Len(t, getter.calls, 2)
}

func TestGeocoder_Readiness(t *testing.T) {
	g, _, _, _ := newTestGeocoder(&mockGetter{})
	assert.NoError(t, g.CheckReadiness(context.Background()))
	assert.Equal(t, []string{"osm", "google", "yahoo"}, g.Services())
	assert.True(t, g.Has("osm"))
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "A%20location", escape("A location"))
	assert.Equal(t, "a-b_c.d~e", escape("a-b_c.d~e"))
	assert.Equal(t, "%2F%3F%3D", escape("/?="))
}
