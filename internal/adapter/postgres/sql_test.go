package postgres

import (
	"testing"

	"github.com/couchcryptid/geolookup/internal/locatable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var embedded = locatable.Fields{Latitude: "location.latitude", Longitude: "location.longitude"}

const (
	latExpr = `("location"->>'latitude')::double precision`
	lonExpr = `("location"->>'longitude')::double precision`
)

func TestDistanceExpr(t *testing.T) {
	got := DistanceExpr("40.6", "-74.0", "lon", "lat")
	assert.Equal(t,
		"(3958 * 3.1415926 * SQRT((lat - 40.6) * (lat - 40.6) + "+
			"COS(lat / 57.29578) * COS(40.6 / 57.29578) * (lon - -74.0) * (lon - -74.0)) / 180)",
		got)
}

func TestFieldExpr(t *testing.T) {
	assert.Equal(t, `"latitude"`, fieldExpr("latitude"))
	assert.Equal(t, latExpr, fieldExpr("location.latitude"))
	assert.Equal(t, `("geo"->'point'->>'lat')::double precision`, fieldExpr("geo.point.lat"))
	assert.Equal(t, `("geo"->>'it''s')::double precision`, fieldExpr("geo.it's"))
}

func TestCoordinateExprs_SharedColumn(t *testing.T) {
	lat, lon := coordinateExprs(locatable.Fields{Latitude: "point", Longitude: "point"})
	assert.Equal(t, `"point"[0]`, lat)
	assert.Equal(t, `"point"[1]`, lon)
}

func TestIndexSQL(t *testing.T) {
	tests := []struct {
		name   string
		fields locatable.Fields
		opts   locatable.IndexOptions
		want   string
	}{
		{
			name:   "embedded background",
			fields: embedded,
			opts:   locatable.IndexOptions{Background: true, Include: []string{"name"}},
			want: `CREATE INDEX CONCURRENTLY IF NOT EXISTS "museums_location_geo_idx" ON "museums" ((` +
				latExpr + `), (` + lonExpr + `)) INCLUDE ("name")`,
		},
		{
			name:   "separate columns",
			fields: locatable.Fields{Latitude: "lat", Longitude: "lng"},
			want:   `CREATE INDEX IF NOT EXISTS "museums_lat_lng_geo_idx" ON "museums" (("lat"), ("lng"))`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, indexSQL("museums", tt.fields, tt.opts))
		})
	}
}

func TestFindSQL_Near(t *testing.T) {
	opts := locatable.Options{
		"conditions": map[string]any{
			"location": map[string]any{locatable.OpNear: []float64{84.13, 11.38}},
			"kind":     "museum",
		},
		"limit": 10.0,
	}

	stmt, args, err := findSQL("museums", embedded, locatable.FindNear, opts)
	require.NoError(t, err)

	distance := DistanceExpr("$1::double precision", "$2::double precision", lonExpr, latExpr)
	assert.Equal(t, `SELECT to_jsonb(t) FROM "museums" AS t WHERE "kind" = $3 ORDER BY `+distance+` LIMIT $4`, stmt)
	assert.Equal(t, []any{84.13, 11.38, "museum", int64(10)}, args)
}

func TestFindSQL_NearMaxDistance(t *testing.T) {
	opts := locatable.Options{"conditions": map[string]any{
		"location": map[string]any{locatable.OpNear: []any{1.0, 2.0}, "$maxDistance": 5.0},
	}}

	stmt, args, err := findSQL("museums", embedded, "all", opts)
	require.NoError(t, err)
	assert.Contains(t, stmt, " <= $3 ORDER BY ")
	assert.Equal(t, []any{1.0, 2.0, 5.0}, args)
}

func TestFindSQL_Within(t *testing.T) {
	opts := locatable.Options{"conditions": map[string]any{
		"location": map[string]any{locatable.OpWithin: map[string]any{
			locatable.OpBox: [][]float64{{89.13, 16.38}, {84.13, 11.38}},
		}},
	}}

	stmt, args, err := findSQL("museums", embedded, locatable.FindWithin, opts)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT to_jsonb(t) FROM "museums" AS t WHERE `+latExpr+` BETWEEN $1 AND $2 AND `+lonExpr+` BETWEEN $3 AND $4`,
		stmt)
	assert.Equal(t, []any{84.13, 89.13, 11.38, 16.38}, args)
}

func TestFindSQL_CountTopLevel(t *testing.T) {
	opts := locatable.Options{
		"conditions": map[string]any{},
		"location":   map[string]any{locatable.OpNear: []float64{1, 2}},
	}

	stmt, args, err := findSQL("museums", embedded, locatable.FindCount, opts)
	require.NoError(t, err)
	assert.Equal(t, `SELECT count(*) FROM "museums" AS t`, stmt)
	assert.Empty(t, args, "counts are unordered")
}

func TestFindSQL_First(t *testing.T) {
	stmt, args, err := findSQL("museums", embedded, "first", locatable.Options{
		"conditions": map[string]any{"city": []any{"Paris", "Lyon"}, "closed": nil},
	})
	require.NoError(t, err)
	assert.Equal(t, `SELECT to_jsonb(t) FROM "museums" AS t WHERE "city"::text = ANY($1) AND "closed" IS NULL LIMIT $2`, stmt)
	assert.Equal(t, []any{[]string{"Paris", "Lyon"}, int64(1)}, args)
}

func TestFindSQL_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts locatable.Options
	}{
		{"bad near", locatable.Options{"conditions": map[string]any{"location": map[string]any{locatable.OpNear: "here"}}}},
		{"bad box", locatable.Options{"conditions": map[string]any{"location": map[string]any{
			locatable.OpWithin: map[string]any{locatable.OpBox: []any{1.0}},
		}}}},
		{"operator on plain column", locatable.Options{"conditions": map[string]any{"rating": map[string]any{"$gt": 3}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := findSQL("museums", embedded, "all", tt.opts)
			assert.ErrorIs(t, err, ErrUnsupportedCondition)
		})
	}
}
