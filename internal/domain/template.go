package domain

import (
	"fmt"
	"regexp"
)

// Placeholder names a substitution slot in a service URL template.
type Placeholder string

const (
	PlaceholderAddress   Placeholder = "address"
	PlaceholderLatitude  Placeholder = "latitude"
	PlaceholderLongitude Placeholder = "longitude"
	PlaceholderKey       Placeholder = "key"
)

var placeholderPattern = regexp.MustCompile(`\{:(\w+)\}`)

var urlPlaceholders = map[Placeholder]bool{
	PlaceholderAddress:   true,
	PlaceholderLatitude:  true,
	PlaceholderLongitude: true,
	PlaceholderKey:       true,
}

// URLTemplate is a validated request path such as
// "/search?q={:address}&format=json".
type URLTemplate struct {
	raw string
}

// ParseURLTemplate validates that s only uses known placeholders.
func ParseURLTemplate(s string) (URLTemplate, error) {
	for _, m := range placeholderPattern.FindAllStringSubmatch(s, -1) {
		if !urlPlaceholders[Placeholder(m[1])] {
			return URLTemplate{}, fmt.Errorf("%w: unknown placeholder {:%s} in %q", ErrInvalidTemplate, m[1], s)
		}
	}
	return URLTemplate{raw: s}, nil
}

// Fill substitutes values into the template. Placeholders without a value
// become empty strings. Values are inserted verbatim; callers encode them.
func (t URLTemplate) Fill(values map[Placeholder]string) string {
	return placeholderPattern.ReplaceAllStringFunc(t.raw, func(m string) string {
		return values[Placeholder(m[2:len(m)-1])]
	})
}

func (t URLTemplate) String() string {
	return t.raw
}

// Insert replaces every {:name} in template with values[name]. Unlike
// URLTemplate it accepts any name, so it serves free-form address formats
// like "{:address} {:city}, {:state} {:zip}".
func Insert(template string, values map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(m string) string {
		return values[m[2:len(m)-1]]
	})
}
