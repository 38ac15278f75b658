package httpclient

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/geolookup/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserAgent = "geolookup-test/1.0"

func testClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  testUserAgent,
		clock:      clockwork.NewFakeClock(),
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_Get_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "A location", r.URL.Query().Get("q"))
		assert.Equal(t, "/search?q=A%20location&format=json", r.RequestURI)
		assert.Equal(t, testUserAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`[{"lat":"1","lon":"2"}]`))
	}))
	defer srv.Close()

	c := testClient(5 * time.Second)
	body, err := c.Get(context.Background(), srv.URL+"/", "/search?q=A%20location&format=json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"lat":"1","lon":"2"}]`, string(body))
	assert.Equal(t, 1, testutil.CollectAndCount(c.metrics.UpstreamDuration))
}

func TestClient_Get_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	body, err := testClient(5*time.Second).Get(context.Background(), srv.URL, "/")
	require.NoError(t, err)
	assert.Nil(t, body)
}

func TestClient_Get_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Not Authorized"}`))
	}))
	defer srv.Close()

	_, err := testClient(5*time.Second).Get(context.Background(), srv.URL, "/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "Not Authorized")
}

func TestClient_Get_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := testClient(50*time.Millisecond).Get(context.Background(), srv.URL, "/")
	require.Error(t, err)
}

func TestClient_Get_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(5*time.Second).Get(ctx, srv.URL, "/")
	require.ErrorIs(t, err, context.Canceled)
}

func TestSnippet(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	assert.Len(t, snippet(long), 259)
	assert.Equal(t, "short", snippet([]byte("  short \n")))
}
