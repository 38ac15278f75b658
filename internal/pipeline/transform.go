package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/geolookup/internal/domain"
)

// LookupTransformer implements Transformer by decoding a lookup request and
// resolving it against the geocoder.
type LookupTransformer struct {
	lookup domain.Lookup
	logger *slog.Logger
}

// NewTransformer creates a LookupTransformer over lookup.
func NewTransformer(lookup domain.Lookup, logger *slog.Logger) *LookupTransformer {
	return &LookupTransformer{
		lookup: lookup,
		logger: logger,
	}
}

// Transform fails only for messages that cannot be decoded. Lookup failures
// are recorded on the returned result.
func (t *LookupTransformer) Transform(ctx context.Context, raw domain.RawMessage) (domain.LookupResult, error) {
	req, err := domain.ParseLookupRequest(raw)
	if err != nil {
		return domain.LookupResult{}, err
	}
	return domain.ResolveRequest(ctx, req, t.lookup, t.logger), nil
}
