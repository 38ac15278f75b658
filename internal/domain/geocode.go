package domain

import (
	"context"
	"log/slog"
)

// ResolveRequest performs the lookup a request asks for and records the
// outcome. Lookup failures are reported on the result rather than returned,
// so one bad request never stalls the stream.
func ResolveRequest(ctx context.Context, req LookupRequest, lookup Lookup, logger *slog.Logger) LookupResult {
	result := LookupResult{
		ID:        req.ID,
		Service:   req.Service,
		Operation: req.Operation,
	}

	q := req.Query()
	var (
		loc *Location
		err error
	)
	if req.Operation != "" {
		loc, err = lookup.Run(ctx, req.Operation, req.Service, q)
	} else {
		result.Operation, _ = q.Operation()
		loc, err = lookup.Find(ctx, req.Service, q)
	}
	result.ProcessedAt = clock.Now().UTC()

	switch {
	case err != nil:
		logger.Warn("lookup failed",
			"request_id", req.ID,
			"service", req.Service,
			"operation", result.Operation,
			"error", err,
		)
		result.Status = StatusFailed
		result.Error = err.Error()
	case loc == nil:
		result.Status = StatusEmpty
	default:
		result.Status = StatusFound
		result.Location = loc
	}
	return result
}
