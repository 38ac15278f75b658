// Package httpclient performs the GET requests behind geocoding lookups.
package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/geolookup/internal/observability"
	"github.com/jonboulle/clockwork"
)

// maxBodyBytes caps how much of a provider response is read.
const maxBodyBytes = 4 << 20

// Client fetches provider responses over HTTP. It implements geocoder.Getter.
type Client struct {
	httpClient *http.Client
	userAgent  string
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// New creates a client with the given per-request timeout. Nominatim
// rejects requests without a descriptive User-Agent.
func New(timeout time.Duration, userAgent string, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
		clock:     clockwork.NewRealClock(),
		metrics:   metrics,
		logger:    logger,
	}
}

// Get requests host+path. Transport failures and non-2xx statuses are
// errors; an empty body yields nil data and a nil error.
func (c *Client) Get(ctx context.Context, host, path string) ([]byte, error) {
	fullURL := strings.TrimRight(host, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := c.clock.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues(host).Observe(c.clock.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", host, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", host, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("upstream rejected request", "host", host, "status", resp.StatusCode)
		return nil, fmt.Errorf("upstream %s error: status %d: %s", host, resp.StatusCode, snippet(body))
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	return body, nil
}

func snippet(body []byte) string {
	const limit = 256
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
