package domain

import (
	"fmt"
	"regexp"
	"slices"
)

// OperationKind identifies a lookup direction.
type OperationKind string

const (
	// OpCoords resolves a free-form address to coordinates.
	OpCoords OperationKind = "coords"
	// OpAddress resolves coordinates to an address.
	OpAddress OperationKind = "address"
)

// ParseOperationKind validates an operation name from user input.
func ParseOperationKind(s string) (OperationKind, error) {
	switch OperationKind(s) {
	case OpCoords, OpAddress:
		return OperationKind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedOperation, s)
}

// ParseFunc decodes a raw provider payload. A nil Location with a nil error
// means the provider had no match.
type ParseFunc func(raw []byte) (*Location, error)

// ParserKind tags the variant held by a ParserSpec.
type ParserKind int

const (
	ParserRegex ParserKind = iota + 1
	ParserCallback
)

func (k ParserKind) String() string {
	switch k {
	case ParserRegex:
		return "regex"
	case ParserCallback:
		return "callback"
	}
	return "invalid"
}

// ParserSpec turns a provider response into a Location. Build one with
// RegexParser or CallbackParser; the zero value is invalid.
type ParserSpec struct {
	kind    ParserKind
	pattern *regexp.Regexp
	fn      ParseFunc
}

// RegexParser compiles a pattern that must define the named groups
// "latitude" and "longitude".
func RegexParser(pattern string) (ParserSpec, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return ParserSpec{}, fmt.Errorf("%w: compile parser pattern: %w", ErrInvalidService, err)
	}
	for _, group := range []string{"latitude", "longitude"} {
		if re.SubexpIndex(group) < 0 {
			return ParserSpec{}, fmt.Errorf("%w: parser pattern %q lacks named group %q", ErrInvalidService, pattern, group)
		}
	}
	return ParserSpec{kind: ParserRegex, pattern: re}, nil
}

// MustRegexParser is like RegexParser but panics on an invalid pattern.
func MustRegexParser(pattern string) ParserSpec {
	p, err := RegexParser(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

// CallbackParser wraps a decoding function.
func CallbackParser(fn ParseFunc) ParserSpec {
	return ParserSpec{kind: ParserCallback, fn: fn}
}

// Kind reports which variant p holds.
func (p ParserSpec) Kind() ParserKind {
	return p.kind
}

// Valid reports whether p was built by one of the constructors.
func (p ParserSpec) Valid() bool {
	switch p.kind {
	case ParserRegex:
		return p.pattern != nil
	case ParserCallback:
		return p.fn != nil
	}
	return false
}

// Parse decodes raw. Only the named latitude and longitude groups of a
// regex parser are used; any other capture is ignored.
func (p ParserSpec) Parse(raw []byte) (*Location, error) {
	switch p.kind {
	case ParserRegex:
		m := p.pattern.FindSubmatch(raw)
		if m == nil {
			return nil, nil
		}
		return &Location{
			Coordinates: &Coordinates{
				Latitude:  leadingFloat(string(m[p.pattern.SubexpIndex("latitude")])),
				Longitude: leadingFloat(string(m[p.pattern.SubexpIndex("longitude")])),
			},
		}, nil
	case ParserCallback:
		return p.fn(raw)
	default:
		return nil, fmt.Errorf("%w: parser kind %s", ErrInvalidService, p.kind)
	}
}

// ServiceConfig describes one geocoding provider.
type ServiceConfig struct {
	Name       string
	Host       string
	Operations map[OperationKind]string
	Parsers    map[OperationKind]ParserSpec
}

// Validate checks that the config is usable: a name, a host, parseable
// templates, and a valid parser for every templated operation.
func (c ServiceConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidService)
	}
	if c.Host == "" {
		return fmt.Errorf("%w: service %q: host is required", ErrInvalidService, c.Name)
	}
	for op, tmpl := range c.Operations {
		if _, err := ParseOperationKind(string(op)); err != nil {
			return fmt.Errorf("%w: service %q: %w", ErrInvalidService, c.Name, err)
		}
		if _, err := ParseURLTemplate(tmpl); err != nil {
			return fmt.Errorf("%w: service %q: %w", ErrInvalidService, c.Name, err)
		}
		parser, ok := c.Parsers[op]
		if !ok || !parser.Valid() {
			return fmt.Errorf("%w: service %q: operation %q has no parser", ErrInvalidService, c.Name, op)
		}
	}
	return nil
}

// Supports reports whether the service has a template for op.
func (c ServiceConfig) Supports(op OperationKind) bool {
	_, ok := c.Operations[op]
	return ok
}

// OperationKinds returns the supported operations in a stable order.
func (c ServiceConfig) OperationKinds() []OperationKind {
	ops := make([]OperationKind, 0, len(c.Operations))
	for op := range c.Operations {
		ops = append(ops, op)
	}
	slices.Sort(ops)
	return ops
}

// Clone returns a copy whose maps can be modified independently.
func (c ServiceConfig) Clone() ServiceConfig {
	out := c
	out.Operations = make(map[OperationKind]string, len(c.Operations))
	for k, v := range c.Operations {
		out.Operations[k] = v
	}
	out.Parsers = make(map[OperationKind]ParserSpec, len(c.Parsers))
	for k, v := range c.Parsers {
		out.Parsers[k] = v
	}
	return out
}
