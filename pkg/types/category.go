package types

import (
	"fmt"
	"strings"
)

// Category is the closed set of outcomes a file scan can be classified into.
type Category int

const (
	CategoryJS    Category = iota // signature tied to JavaScript files
	CategoryUnix                  // Unix shell payload, any extension
	CategoryMacOS                 // macOS persistence payload, any extension
	CategoryNone                  // nothing matched
)

// Categories lists every suspicious category in report order.
var Categories = []Category{CategoryJS, CategoryUnix, CategoryMacOS}

// String returns the identifier used in catalogs, JSON and the store.
func (c Category) String() string {
	switch c {
	case CategoryJS:
		return "js"
	case CategoryUnix:
		return "unix"
	case CategoryMacOS:
		return "macos"
	case CategoryNone:
		return "none"
	default:
		return "unknown"
	}
}

// Label returns the human-readable name used in the scan summary.
func (c Category) Label() string {
	switch c {
	case CategoryJS:
		return "JS"
	case CategoryUnix:
		return "Unix"
	case CategoryMacOS:
		return "macOS"
	default:
		return "None"
	}
}

// Suspicious reports whether c is anything other than CategoryNone.
func (c Category) Suspicious() bool {
	return c >= CategoryJS && c < CategoryNone
}

// ParseCategory converts an identifier back to a Category.
// Matching is case-insensitive.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "js":
		return CategoryJS, nil
	case "unix":
		return CategoryUnix, nil
	case "macos":
		return CategoryMacOS, nil
	case "none", "":
		return CategoryNone, nil
	default:
		return CategoryNone, fmt.Errorf("unknown category %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
