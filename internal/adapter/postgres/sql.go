package postgres

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/couchcryptid/geolookup/internal/domain"
	"github.com/couchcryptid/geolookup/internal/locatable"
	"github.com/jackc/pgx/v5"
)

// ErrUnsupportedCondition is returned for conditions that cannot be
// expressed as SQL.
var ErrUnsupportedCondition = errors.New("unsupported condition")

const maxDistanceKey = "$maxDistance"

// DistanceExpr returns an SQL expression for the great-circle distance in
// miles between the point (y, x) and the coordinates held in yField and
// xField. All four arguments are SQL fragments.
func DistanceExpr(y, x, xField, yField string) string {
	return fmt.Sprintf(
		"(3958 * 3.1415926 * SQRT((%[3]s - %[1]s) * (%[3]s - %[1]s) + "+
			"COS(%[3]s / 57.29578) * COS(%[1]s / 57.29578) * (%[4]s - %[2]s) * (%[4]s - %[2]s)) / 180)",
		y, x, yField, xField,
	)
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func literal(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// fieldExpr maps a field path to a numeric SQL expression. A dotted path
// reads a member of a jsonb column.
func fieldExpr(path string) string {
	parts := strings.Split(path, ".")
	if len(parts) == 1 {
		return ident(path)
	}
	var b strings.Builder
	b.WriteString(ident(parts[0]))
	for _, p := range parts[1 : len(parts)-1] {
		b.WriteString("->" + literal(p))
	}
	b.WriteString("->>" + literal(parts[len(parts)-1]))
	return "(" + b.String() + ")::double precision"
}

// coordinateExprs returns the latitude and longitude expressions of fields.
// A single shared column is read as a native point, latitude first.
func coordinateExprs(fields locatable.Fields) (lat, lon string) {
	if fields.Latitude == fields.Longitude && !strings.Contains(fields.Latitude, ".") {
		col := ident(fields.Latitude)
		return col + "[0]", col + "[1]"
	}
	return fieldExpr(fields.Latitude), fieldExpr(fields.Longitude)
}

func indexName(table, base string) string {
	name := strings.NewReplacer(".", "_", " ", "_").Replace(table + "_" + base + "_geo_idx")
	if len(name) > 63 {
		name = name[:63]
	}
	return name
}

// indexSQL builds the statement creating the spatial index of a model.
func indexSQL(table string, fields locatable.Fields, opts locatable.IndexOptions) string {
	lat, lon := coordinateExprs(fields)
	base := locatable.BaseField(fields)
	if base == "" {
		base = fields.Latitude + "_" + fields.Longitude
	}

	var b strings.Builder
	b.WriteString("CREATE INDEX ")
	if opts.Background {
		b.WriteString("CONCURRENTLY ")
	}
	fmt.Fprintf(&b, "IF NOT EXISTS %s ON %s ((%s), (%s))", ident(indexName(table, base)), ident(table), lat, lon)
	if len(opts.Include) > 0 {
		cols := make([]string, len(opts.Include))
		for i, c := range opts.Include {
			cols[i] = ident(c)
		}
		fmt.Fprintf(&b, " INCLUDE (%s)", strings.Join(cols, ", "))
	}
	return b.String()
}

// query accumulates a SELECT statement and its arguments.
type query struct {
	args    []any
	where   []string
	orderBy string
}

func (q *query) arg(v any) string {
	q.args = append(q.args, v)
	return fmt.Sprintf("$%d", len(q.args))
}

// findSQL translates rewritten find options into SQL. Spatial conditions
// are read from conditions[base field], or from the top level for counts.
func findSQL(table string, fields locatable.Fields, findType string, opts locatable.Options) (string, []any, error) {
	q := &query{}
	base := locatable.BaseField(fields)
	lat, lon := coordinateExprs(fields)

	conditions, _ := asMap(opts["conditions"])
	spatial, hasSpatial := asMap(conditions[base])
	if findType == locatable.FindCount && !hasSpatial {
		spatial, hasSpatial = asMap(opts[base])
	}
	if hasSpatial && base != "" {
		if err := q.spatial(spatial, lat, lon, findType != locatable.FindCount); err != nil {
			return "", nil, err
		}
	}

	keys := make([]string, 0, len(conditions))
	for k := range conditions {
		if k != base || !hasSpatial {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	for _, k := range keys {
		if err := q.equality(k, conditions[k]); err != nil {
			return "", nil, err
		}
	}

	var b strings.Builder
	if findType == locatable.FindCount {
		fmt.Fprintf(&b, "SELECT count(*) FROM %s AS t", ident(table))
	} else {
		fmt.Fprintf(&b, "SELECT to_jsonb(t) FROM %s AS t", ident(table))
	}
	if len(q.where) > 0 {
		b.WriteString(" WHERE " + strings.Join(q.where, " AND "))
	}
	if findType != locatable.FindCount {
		if q.orderBy != "" {
			b.WriteString(" ORDER BY " + q.orderBy)
		}
		if limit, ok := limitOf(opts, findType); ok {
			b.WriteString(" LIMIT " + q.arg(limit))
		}
	}
	return b.String(), q.args, nil
}

// spatial adds the $near and $within conditions. A $near without
// $maxDistance only orders rows, so it is dropped when ordered is false.
func (q *query) spatial(cond map[string]any, lat, lon string, ordered bool) error {
	if near, ok := cond[locatable.OpNear]; ok {
		point, ok := pair(near)
		if !ok {
			return fmt.Errorf("%w: %s needs [latitude, longitude]", ErrUnsupportedCondition, locatable.OpNear)
		}
		maxDistance, bounded := cond[maxDistanceKey]
		if ordered || bounded {
			distance := DistanceExpr(q.arg(point[0])+"::double precision", q.arg(point[1])+"::double precision", lon, lat)
			if ordered {
				q.orderBy = distance
			}
			if bounded {
				q.where = append(q.where, distance+" <= "+q.arg(domain.ToFloat(maxDistance)))
			}
		}
	}
	if within, ok := cond[locatable.OpWithin]; ok {
		w, _ := asMap(within)
		box, ok := asSlice(w[locatable.OpBox])
		if !ok || len(box) != 2 {
			return fmt.Errorf("%w: %s needs a %s of two corners", ErrUnsupportedCondition, locatable.OpWithin, locatable.OpBox)
		}
		a, okA := pair(box[0])
		c, okC := pair(box[1])
		if !okA || !okC {
			return fmt.Errorf("%w: %s corners need [latitude, longitude]", ErrUnsupportedCondition, locatable.OpBox)
		}
		q.where = append(q.where,
			fmt.Sprintf("%s BETWEEN %s AND %s", lat, q.arg(math.Min(a[0], c[0])), q.arg(math.Max(a[0], c[0]))),
			fmt.Sprintf("%s BETWEEN %s AND %s", lon, q.arg(math.Min(a[1], c[1])), q.arg(math.Max(a[1], c[1]))),
		)
	}
	return nil
}

func (q *query) equality(column string, v any) error {
	switch t := v.(type) {
	case nil:
		q.where = append(q.where, ident(column)+" IS NULL")
	case map[string]any, locatable.Options:
		return fmt.Errorf("%w: operators on %q", ErrUnsupportedCondition, column)
	case []any:
		values := make([]string, len(t))
		for i, e := range t {
			values[i] = fmt.Sprint(e)
		}
		q.where = append(q.where, fmt.Sprintf("%s::text = ANY(%s)", ident(column), q.arg(values)))
	default:
		q.where = append(q.where, fmt.Sprintf("%s = %s", ident(column), q.arg(t)))
	}
	return nil
}

func limitOf(opts locatable.Options, findType string) (int64, bool) {
	if findType == "first" {
		return 1, true
	}
	v, ok := opts["limit"]
	if !ok {
		return 0, false
	}
	n := int64(domain.ToFloat(v))
	return n, n > 0
}

func pair(v any) ([2]float64, bool) {
	s, ok := asSlice(v)
	if !ok || len(s) != 2 {
		return [2]float64{}, false
	}
	return [2]float64{domain.ToFloat(s[0]), domain.ToFloat(s[1])}, true
}

func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []float64:
		out := make([]any, len(s))
		for i, f := range s {
			out[i] = f
		}
		return out, true
	case [][]float64:
		out := make([]any, len(s))
		for i, f := range s {
			out[i] = f
		}
		return out, true
	}
	return nil, false
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case locatable.Options:
		return m, true
	}
	return nil, false
}
