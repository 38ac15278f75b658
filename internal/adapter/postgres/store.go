package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/geolookup/internal/locatable"
)

// Bindings resolves the field configuration of a bound model.
type Bindings interface {
	Binding(model string) (locatable.BindingConfig, bool)
}

// Store executes finds against one table per model. It implements
// locatable.QueryExecutor and locatable.Indexer.
type Store struct {
	db       querier
	bindings Bindings
	logger   *slog.Logger
}

// NewStore creates a Store. bindings may be set later with SetBindings
// when the Locatable that owns them also needs the Store as its indexer.
func NewStore(db querier, bindings Bindings, logger *slog.Logger) *Store {
	return &Store{db: db, bindings: bindings, logger: logger}
}

// SetBindings sets the source of model field configurations.
func (s *Store) SetBindings(b Bindings) {
	s.bindings = b
}

// EnsureIndex creates the expression index over a model's coordinates.
func (s *Store) EnsureIndex(ctx context.Context, model string, fields locatable.Fields, opts locatable.IndexOptions) error {
	stmt := indexSQL(model, fields, opts)
	if _, err := s.db.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("create spatial index on %s: %w", model, err)
	}
	s.logger.Info("spatial index ensured", "model", model, "concurrently", opts.Background)
	return nil
}

// Find runs a find of findType against model's table. Counts fill only
// Result.Count.
func (s *Store) Find(ctx context.Context, model, findType string, opts locatable.Options) (locatable.Result, error) {
	if s.bindings == nil {
		return locatable.Result{}, fmt.Errorf("find %s: no bindings configured", model)
	}
	cfg, ok := s.bindings.Binding(model)
	if !ok {
		return locatable.Result{}, fmt.Errorf("find %s: model is not bound", model)
	}
	stmt, args, err := findSQL(model, cfg.Fields, findType, opts)
	if err != nil {
		return locatable.Result{}, fmt.Errorf("find %s: %w", model, err)
	}

	if findType == locatable.FindCount {
		var n int64
		if err := s.db.QueryRow(ctx, stmt, args...).Scan(&n); err != nil {
			return locatable.Result{}, fmt.Errorf("count %s: %w", model, err)
		}
		return locatable.Result{Count: n}, nil
	}

	rows, err := s.db.Query(ctx, stmt, args...)
	if err != nil {
		return locatable.Result{}, fmt.Errorf("find %s: %w", model, err)
	}
	defer rows.Close()

	var res locatable.Result
	for rows.Next() {
		var data map[string]any
		if err := rows.Scan(&data); err != nil {
			return locatable.Result{}, fmt.Errorf("scan %s: %w", model, err)
		}
		res.Records = append(res.Records, locatable.Entity{Model: model, Data: data})
	}
	if err := rows.Err(); err != nil {
		return locatable.Result{}, fmt.Errorf("find %s: %w", model, err)
	}
	res.Count = int64(len(res.Records))
	return res, nil
}
