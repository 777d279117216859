// Package source reads raw content rows. A row is an ordered list of
// loosely named fields; turning it into a model.Record is the job of the
// record package.
package source

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a required input does not exist.
var ErrNotFound = errors.New("source not found")

// Field is one raw (name, value) pair. Value is a string for tabular input
// and may be a list, number or time for frontmatter input.
type Field struct {
	Name  string
	Value any
}

// Row is one raw content item before normalization.
type Row struct {
	Index  int    // 1-based position within its source
	Origin string // human readable location, used in diagnostics
	Fields []Field
}

// Get returns the first value whose name matches key case-insensitively.
func (r Row) Get(key string) (any, bool) {
	for _, f := range r.Fields {
		if strings.EqualFold(strings.TrimSpace(f.Name), key) {
			return f.Value, true
		}
	}
	return nil, false
}

// String renders the row compactly for diagnostics.
func (r Row) String() string {
	parts := make([]string, 0, len(r.Fields))
	for _, f := range r.Fields {
		parts = append(parts, fmt.Sprintf("%s=%q", f.Name, truncate(fmt.Sprint(f.Value), 40)))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
