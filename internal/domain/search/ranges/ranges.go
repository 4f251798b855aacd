// Package ranges parses and serializes the "A..B" range notation used by
// range filters and range aggregations.
package ranges

import (
	"strconv"
	"strings"
)

const (
	// Separator splits the lower and the upper bound.
	Separator = ".."
	// InclusiveUpper marks the upper bound as inclusive when it ends the string.
	InclusiveUpper = "]"
)

// Range is a parsed range value. Empty bounds are open.
type Range struct {
	from         string
	to           string
	includeUpper bool
}

// New creates a Range from its bounds.
func New(from, to string, includeUpper bool) Range {
	return Range{
		from:         strings.TrimSpace(from),
		to:           strings.TrimSpace(to),
		includeUpper: includeUpper,
	}
}

// Parse reads "LOWER..UPPER" with an optional trailing "]".
// A value without separator is treated as a lower bound only.
func Parse(s string) Range {
	s = strings.TrimSpace(s)
	includeUpper := false
	if strings.HasSuffix(s, InclusiveUpper) {
		includeUpper = true
		s = strings.TrimSuffix(s, InclusiveUpper)
	}
	s = strings.TrimPrefix(s, "[")

	from, to, found := strings.Cut(s, Separator)
	if !found {
		return New(from, "", includeUpper)
	}
	return New(from, to, includeUpper)
}

// From returns the lower bound and whether it is set.
func (r Range) From() (string, bool) { return r.from, r.from != "" }

// To returns the upper bound and whether it is set.
func (r Range) To() (string, bool) { return r.to, r.to != "" }

// IncludesUpper reports whether the upper bound is inclusive.
func (r Range) IncludesUpper() bool { return r.includeUpper }

// IsUnconstrained reports whether both bounds are open.
func (r Range) IsUnconstrained() bool { return r.from == "" && r.to == "" }

// FromValue returns the lower bound as float64 when numeric, as string
// otherwise, and nil when open.
func (r Range) FromValue() any { return boundValue(r.from) }

// ToValue returns the upper bound as float64 when numeric, as string
// otherwise, and nil when open.
func (r Range) ToValue() any { return boundValue(r.to) }

// String serializes the range back into its notation.
func (r Range) String() string {
	s := r.from + Separator + r.to
	if r.includeUpper {
		s += InclusiveUpper
	}
	return s
}

func boundValue(bound string) any {
	if bound == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(bound, 64); err == nil {
		return f
	}
	return bound
}

// Boundaries builds consecutive range keys from ordered points:
// Boundaries(0, 1000, 2000) = ["0..1000", "1000..2000"].
func Boundaries(points ...float64) []string {
	if len(points) < 2 {
		return nil
	}
	out := make([]string, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		out = append(out, New(formatPoint(points[i-1]), formatPoint(points[i]), false).String())
	}
	return out
}

func formatPoint(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
