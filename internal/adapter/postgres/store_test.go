package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/couchcryptid/geolookup/internal/locatable"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeRow struct {
	n   int64
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*int64) = r.n
	return nil
}

type fakeRows struct {
	records []map[string]any
	scanErr error
	err     error
	pos     int
	closed  bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.records) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	*dest[0].(*map[string]any) = r.records[r.pos-1]
	return nil
}

type fakeDB struct {
	execErr  error
	queryErr error
	row      fakeRow
	rows     *fakeRows

	statements []string
	args       [][]any
}

func (d *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	d.statements = append(d.statements, sql)
	d.args = append(d.args, args)
	return pgconn.NewCommandTag("CREATE INDEX"), d.execErr
}

func (d *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	d.statements = append(d.statements, sql)
	d.args = append(d.args, args)
	if d.queryErr != nil {
		return nil, d.queryErr
	}
	return d.rows, nil
}

func (d *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	d.statements = append(d.statements, sql)
	d.args = append(d.args, args)
	return d.row
}

type fakeBindings map[string]locatable.BindingConfig

func (b fakeBindings) Binding(model string) (locatable.BindingConfig, bool) {
	cfg, ok := b[model]
	return cfg, ok
}

func newTestStore(db *fakeDB) *Store {
	bindings := fakeBindings{"museums": {Fields: embedded}}
	return NewStore(db, bindings, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func nearMuseums() locatable.Options {
	return locatable.Options{
		"conditions": map[string]any{
			"location": map[string]any{locatable.OpNear: []float64{84.13, 11.38}},
		},
	}
}

// --- tests ---

func TestStore_EnsureIndex(t *testing.T) {
	db := &fakeDB{}
	s := newTestStore(db)

	require.NoError(t, s.EnsureIndex(context.Background(), "museums", embedded, locatable.IndexOptions{Background: true}))
	require.Len(t, db.statements, 1)
	assert.True(t, strings.HasPrefix(db.statements[0], `CREATE INDEX CONCURRENTLY IF NOT EXISTS "museums_location_geo_idx"`))
}

func TestStore_EnsureIndex_Error(t *testing.T) {
	cause := errors.New("permission denied for table museums")
	s := newTestStore(&fakeDB{execErr: cause})

	err := s.EnsureIndex(context.Background(), "museums", embedded, locatable.IndexOptions{})
	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "create spatial index on museums")
}

func TestStore_Find_Count(t *testing.T) {
	db := &fakeDB{row: fakeRow{n: 7}}
	s := newTestStore(db)

	opts := locatable.Options{
		"conditions": map[string]any{},
		"location":   map[string]any{locatable.OpNear: []float64{84.13, 11.38}},
	}
	res, err := s.Find(context.Background(), "museums", locatable.FindCount, opts)
	require.NoError(t, err)
	assert.Equal(t, locatable.Result{Count: 7}, res)
	require.Len(t, db.statements, 1)
	assert.True(t, strings.HasPrefix(db.statements[0], `SELECT count(*) FROM "museums"`))
}

func TestStore_Find_CountError(t *testing.T) {
	cause := errors.New("connection reset")
	s := newTestStore(&fakeDB{row: fakeRow{err: cause}})

	_, err := s.Find(context.Background(), "museums", locatable.FindCount, locatable.Options{})
	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "count museums")
}

func TestStore_Find_Records(t *testing.T) {
	rows := &fakeRows{records: []map[string]any{
		{"name": "Louvre"},
		{"name": "Orsay"},
	}}
	db := &fakeDB{rows: rows}
	s := newTestStore(db)

	res, err := s.Find(context.Background(), "museums", locatable.FindNear, nearMuseums())
	require.NoError(t, err)

	assert.Equal(t, int64(2), res.Count)
	assert.Equal(t, []locatable.Entity{
		{Model: "museums", Data: map[string]any{"name": "Louvre"}},
		{Model: "museums", Data: map[string]any{"name": "Orsay"}},
	}, res.Records)
	assert.True(t, rows.closed)
	require.Len(t, db.statements, 1)
	assert.Contains(t, db.statements[0], "ORDER BY")
}

func TestStore_Find_Errors(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name    string
		db      *fakeDB
		wantMsg string
	}{
		{"query", &fakeDB{queryErr: cause}, "find museums"},
		{"scan", &fakeDB{rows: &fakeRows{records: []map[string]any{{}}, scanErr: cause}}, "scan museums"},
		{"rows", &fakeDB{rows: &fakeRows{err: cause}}, "find museums"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestStore(tt.db).Find(context.Background(), "museums", locatable.FindNear, nearMuseums())
			require.ErrorIs(t, err, cause)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestStore_Find_Unbound(t *testing.T) {
	db := &fakeDB{}
	_, err := newTestStore(db).Find(context.Background(), "venues", locatable.FindNear, nearMuseums())
	assert.EqualError(t, err, "find venues: model is not bound")
	assert.Empty(t, db.statements)

	s := NewStore(db, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err = s.Find(context.Background(), "museums", locatable.FindNear, nearMuseums())
	assert.EqualError(t, err, "find museums: no bindings configured")
}
