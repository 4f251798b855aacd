package query

import (
	"maps"
	"strings"
)

// Fuzziness is none, a scalar for every field, or a per-field map.
type Fuzziness struct {
	scalar   string
	perField map[string]string
}

// NoFuzziness disables fuzzy matching.
func NoFuzziness() Fuzziness { return Fuzziness{} }

// ScalarFuzziness applies one fuzziness ("AUTO", "1", ...) to every field.
func ScalarFuzziness(v string) Fuzziness { return Fuzziness{scalar: v} }

// PerFieldFuzziness applies fuzziness by field name.
func PerFieldFuzziness(m map[string]string) Fuzziness {
	if len(m) == 0 {
		return Fuzziness{}
	}
	return Fuzziness{perField: maps.Clone(m)}
}

// IsNone reports whether fuzzy matching is disabled.
func (f Fuzziness) IsNone() bool { return f.scalar == "" && len(f.perField) == 0 }

// Scalar returns the global fuzziness, if any.
func (f Fuzziness) Scalar() (string, bool) { return f.scalar, f.scalar != "" }

// IsPerField reports whether fuzziness is defined per field.
func (f Fuzziness) IsPerField() bool { return len(f.perField) > 0 }

// For returns the fuzziness of a field; boosts ("field^3") are ignored.
func (f Fuzziness) For(field string) (string, bool) {
	name, _, _ := strings.Cut(field, "^")
	if v, ok := f.perField[name]; ok {
		return v, true
	}
	if f.scalar != "" {
		return f.scalar, true
	}
	return "", false
}
