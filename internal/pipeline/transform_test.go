package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/couchcryptid/geolookup/internal/domain"
	"github.com/couchcryptid/geolookup/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLookup struct {
	loc *domain.Location
	err error
	ops []domain.OperationKind
}

func (s *stubLookup) Find(_ context.Context, _ string, q domain.Query) (*domain.Location, error) {
	op, _ := q.Operation()
	s.ops = append(s.ops, op)
	return s.loc, s.err
}

func (s *stubLookup) Run(_ context.Context, op domain.OperationKind, _ string, _ domain.Query) (*domain.Location, error) {
	s.ops = append(s.ops, op)
	return s.loc, s.err
}

func TestLookupTransformer_Transform(t *testing.T) {
	now := time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(now))
	t.Cleanup(func() { domain.SetClock(nil) })

	paris := &domain.Location{Coordinates: &domain.Coordinates{Latitude: 48.8566, Longitude: 2.3522}}

	cases := []struct {
		name      string
		value     string
		lookup    *stubLookup
		wantID    string
		wantOp    domain.OperationKind
		wantState string
	}{
		{
			name:      "address routes to coords",
			value:     `{"id":"req-1","service":"osm","address":"Paris"}`,
			lookup:    &stubLookup{loc: paris},
			wantID:    "req-1",
			wantOp:    domain.OpCoords,
			wantState: domain.StatusFound,
		},
		{
			name:      "point routes to address",
			value:     `{"service":"osm","latitude":48.8566,"longitude":2.3522}`,
			lookup:    &stubLookup{},
			wantID:    "key-2",
			wantOp:    domain.OpAddress,
			wantState: domain.StatusEmpty,
		},
		{
			name:      "explicit operation",
			value:     `{"id":"req-3","service":"google","operation":"coords","address":"Paris"}`,
			lookup:    &stubLookup{err: errors.New("status 500")},
			wantID:    "req-3",
			wantOp:    domain.OpCoords,
			wantState: domain.StatusFailed,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tfm := pipeline.NewTransformer(tc.lookup, discardLogger())
			out, err := tfm.Transform(context.Background(), domain.RawMessage{Key: []byte("key-2"), Value: []byte(tc.value)})
			require.NoError(t, err)

			assert.Equal(t, tc.wantID, out.ID)
			assert.Equal(t, tc.wantOp, out.Operation)
			assert.Equal(t, tc.wantState, out.Status)
			assert.Equal(t, now, out.ProcessedAt)
			assert.Equal(t, []domain.OperationKind{tc.wantOp}, tc.lookup.ops)
		})
	}
}

func TestLookupTransformer_Undecodable(t *testing.T) {
	lookup := &stubLookup{}
	tfm := pipeline.NewTransformer(lookup, discardLogger())

	for _, value := range []string{`not json`, `{"address":"Paris"}`, `{"service":"osm","operation":"route"}`} {
		_, err := tfm.Transform(context.Background(), domain.RawMessage{Value: []byte(value)})
		assert.Error(t, err, value)
	}
	assert.Empty(t, lookup.ops)
}
