package locatable

import "context"

// Result is what a QueryExecutor returns for a find.
type Result struct {
	Records []Entity `json:"records,omitempty"`
	Count   int64    `json:"count"`
}

// QueryExecutor runs a find against the store behind a model.
type QueryExecutor interface {
	Find(ctx context.Context, model, findType string, opts Options) (Result, error)
}

// Finder wraps a QueryExecutor so that every find on a bound model is
// rewritten before it reaches the store.
type Finder struct {
	locatable *Locatable
	exec      QueryExecutor
}

// NewFinder creates a Finder over exec.
func NewFinder(l *Locatable, exec QueryExecutor) *Finder {
	return &Finder{locatable: l, exec: exec}
}

// Find rewrites opts for model and delegates to the executor.
func (f *Finder) Find(ctx context.Context, model, findType string, opts Options) (Result, error) {
	return f.exec.Find(ctx, model, findType, f.locatable.RewriteFindParameters(model, findType, opts))
}

// Near finds records of model closest to the location in opts.
func (f *Finder) Near(ctx context.Context, model string, opts Options) (Result, error) {
	return f.Find(ctx, model, FindNear, opts)
}

// Within finds records of model inside the box in opts.
func (f *Finder) Within(ctx context.Context, model string, opts Options) (Result, error) {
	return f.Find(ctx, model, FindWithin, opts)
}
