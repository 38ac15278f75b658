package domain

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	floatPrefix = regexp.MustCompile(`^\s*[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)
	intPrefix   = regexp.MustCompile(`^\s*[+-]?\d+`)
)

// leadingFloat parses the longest numeric prefix of s: "2.5km" is 2.5 and
// "abc" is 0. Provider payloads and unit codes rely on this leniency.
func leadingFloat(s string) float64 {
	m := floatPrefix.FindString(s)
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(m), 64)
	if err != nil {
		return 0
	}
	return f
}

func leadingInt(s string) int64 {
	m := intPrefix.FindString(s)
	if m == "" {
		return 0
	}
	n, err := strconv.ParseInt(strings.TrimSpace(m), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// ToFloat converts a loosely typed value (JSON number, numeric string,
// integer) to float64. Anything else is 0.
func ToFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case string:
		return leadingFloat(n)
	case bool:
		if n {
			return 1
		}
	}
	return 0
}
