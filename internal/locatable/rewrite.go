package locatable

import (
	"maps"
	"reflect"

	"github.com/couchcryptid/geolookup/internal/domain"
)

// Find types with special handling.
const (
	FindNear   = "near"
	FindWithin = "within"
	FindCount  = "count"
)

// Condition operators written by Rewrite.
const (
	OpNear   = "$near"
	OpWithin = "$within"
	OpBox    = "$box"
)

const conditionsKey = "conditions"

// Options are the parameters of a find: "conditions" plus any query
// options, and possibly spatial shorthand such as positional "0"/"1" keys.
type Options map[string]any

// extractor looks for a location value in opts and removes it when found.
type extractor func(opts Options, conditions map[string]any, field, findType string) (any, bool)

// extractors are tried in order; the first match wins.
var extractors = []extractor{
	positional,
	namedFindKey,
	conditionField,
	optionField,
}

func positional(opts Options, _ map[string]any, _, _ string) (any, bool) {
	first, ok0 := opts["0"]
	second, ok1 := opts["1"]
	if !ok0 || !ok1 || first == nil || second == nil {
		return nil, false
	}
	delete(opts, "0")
	delete(opts, "1")
	return []any{first, second}, true
}

func namedFindKey(opts Options, _ map[string]any, _, findType string) (any, bool) {
	if !isSpatial(findType) {
		return nil, false
	}
	v, ok := opts[findType]
	if !ok || v == nil {
		return nil, false
	}
	delete(opts, findType)
	return v, true
}

func conditionField(_ Options, conditions map[string]any, field, _ string) (any, bool) {
	v, ok := conditions[field]
	if !ok || v == nil {
		return nil, false
	}
	delete(conditions, field)
	return v, true
}

func optionField(opts Options, _ map[string]any, field, _ string) (any, bool) {
	v, ok := opts[field]
	if !ok || v == nil {
		return nil, false
	}
	delete(opts, field)
	return v, true
}

// Rewrite returns a copy of opts in which the location shorthand for field
// is replaced by a canonical condition:
//
//	{"conditions": {field: {"$near": [lat, lon]}}}
//	{"conditions": {field: {"$within": {"$box": [corner2, corner1]}}}}
//
// For find types other than near and within, the intent is inferred from
// the location's shape: two numbers mean near, two pairs mean within.
// A count with no other conditions receives the condition at the top level,
// next to an empty conditions map.
// The second return value is the condition applied, or "" when opts is
// returned unchanged.
func Rewrite(field, findType string, opts Options) (Options, string) {
	conditions, _ := asMap(opts[conditionsKey])
	if alreadyRewritten(conditions[field], findType) {
		return opts, ""
	}

	out := maps.Clone(opts)
	if out == nil {
		out = Options{}
	}
	conditions = maps.Clone(conditions)
	if conditions == nil {
		conditions = map[string]any{}
	}

	var location any
	for _, extract := range extractors {
		if v, ok := extract(out, conditions, field, findType); ok {
			location = v
			break
		}
	}
	loc, ok := asSlice(location)
	if !ok || len(loc) != 2 {
		return opts, ""
	}

	intent := findType
	if !isSpatial(intent) {
		intent = classify(loc)
	}

	var op string
	var value any
	switch intent {
	case FindNear:
		op, value = OpNear, []float64{domain.ToFloat(loc[0]), domain.ToFloat(loc[1])}
	case FindWithin:
		first, ok1 := floats(loc[0])
		second, ok2 := floats(loc[1])
		if !ok1 || !ok2 {
			return opts, ""
		}
		op, value = OpWithin, map[string]any{OpBox: [][]float64{second, first}}
	default:
		return opts, ""
	}

	target := map[string]any(out)
	if findType == FindCount && len(conditions) == 0 {
		out[conditionsKey] = map[string]any{}
	} else {
		out[conditionsKey] = conditions
		target = conditions
	}
	existing, _ := asMap(target[field])
	merged := maps.Clone(existing)
	if merged == nil {
		merged = map[string]any{}
	}
	merged[op] = value
	target[field] = merged

	return out, intent
}

func isSpatial(findType string) bool {
	return findType == FindNear || findType == FindWithin
}

// alreadyRewritten reports whether cond carries the operator for findType,
// or either spatial operator when the find type is generic.
func alreadyRewritten(cond any, findType string) bool {
	m, ok := asMap(cond)
	if !ok {
		return false
	}
	if isSpatial(findType) {
		_, exists := m["$"+findType]
		return exists
	}
	_, near := m[OpNear]
	_, within := m[OpWithin]
	return near || within
}

// classify infers the spatial intent of a two-element location.
func classify(loc []any) string {
	if isNumber(loc[0]) && isNumber(loc[1]) {
		return FindNear
	}
	a, okA := asSlice(loc[0])
	b, okB := asSlice(loc[1])
	if okA && okB && len(a) == 2 && len(b) == 2 {
		return FindWithin
	}
	return ""
}

func isNumber(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func floats(v any) ([]float64, bool) {
	s, ok := asSlice(v)
	if !ok {
		return nil, false
	}
	out := make([]float64, len(s))
	for i, e := range s {
		out[i] = domain.ToFloat(e)
	}
	return out, true
}

func asSlice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Options:
		return m, true
	}
	return nil, false
}
