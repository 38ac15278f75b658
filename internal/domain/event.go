package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RawMessage represents an unprocessed message from the request topic.
type RawMessage struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// LookupRequest asks for one geocoding lookup. Exactly one of Address or
// the Latitude/Longitude pair is expected; Operation may be left empty to
// let the inputs decide.
type LookupRequest struct {
	ID        string        `json:"id"`
	Service   string        `json:"service"`
	Operation OperationKind `json:"operation,omitempty"`
	Address   string        `json:"address,omitempty"`
	Latitude  *float64      `json:"latitude,omitempty"`
	Longitude *float64      `json:"longitude,omitempty"`
}

// Query converts the request inputs into a lookup query.
func (r LookupRequest) Query() Query {
	q := Query{Address: r.Address}
	if r.Latitude != nil && r.Longitude != nil {
		q.Point = &Coordinates{Latitude: *r.Latitude, Longitude: *r.Longitude}
	}
	return q
}

// Lookup outcomes recorded on a LookupResult.
const (
	StatusFound  = "found"
	StatusEmpty  = "empty"
	StatusFailed = "failed"
)

// LookupResult is the response published for a LookupRequest.
type LookupResult struct {
	ID          string        `json:"id"`
	Service     string        `json:"service"`
	Operation   OperationKind `json:"operation,omitempty"`
	Status      string        `json:"status"`
	Location    *Location     `json:"location,omitempty"`
	Error       string        `json:"error,omitempty"`
	ProcessedAt time.Time     `json:"processed_at"`
}

// ParseLookupRequest decodes a request message. Messages without a key fall
// back to the topic coordinates as their ID.
func ParseLookupRequest(raw RawMessage) (LookupRequest, error) {
	var req LookupRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return LookupRequest{}, fmt.Errorf("unmarshal lookup request: %w", err)
	}
	if req.Service == "" {
		return LookupRequest{}, fmt.Errorf("lookup request: service is required")
	}
	if req.Operation != "" {
		if _, err := ParseOperationKind(string(req.Operation)); err != nil {
			return LookupRequest{}, fmt.Errorf("lookup request: %w", err)
		}
	}
	if req.ID == "" {
		if len(raw.Key) > 0 {
			req.ID = string(raw.Key)
		} else {
			req.ID = fmt.Sprintf("%s-%d-%d", raw.Topic, raw.Partition, raw.Offset)
		}
	}
	return req, nil
}
