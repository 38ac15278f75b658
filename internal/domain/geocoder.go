package domain

import "context"

// Query carries the inputs of a lookup: an address to resolve, a point to
// reverse-geocode, or both.
type Query struct {
	Address string
	Point   *Coordinates
}

// Operation picks the lookup direction implied by the inputs. A point wins
// over an address; ok is false when neither is set.
func (q Query) Operation() (op OperationKind, ok bool) {
	switch {
	case q.Point != nil:
		return OpAddress, true
	case q.Address != "":
		return OpCoords, true
	}
	return "", false
}

// Lookup resolves queries against a named geocoding service.
type Lookup interface {
	// Find routes q to the operation its inputs imply.
	Find(ctx context.Context, service string, q Query) (*Location, error)

	// Run performs op against service explicitly.
	Run(ctx context.Context, op OperationKind, service string, q Query) (*Location, error)
}
