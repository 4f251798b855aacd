package filter

import (
	"fmt"
	"strings"
)

// Reserved names and fields.
const (
	// QueryName is the name of the free-text filter every query carries.
	QueryName = "_query"
	// UUIDField and IndexedUUIDField address the engine document id.
	UUIDField        = "uuid"
	IndexedUUIDField = "indexed_metadata.uuid"
	// ExactMatchingTokenizedField switches a filter to exact-matching mode.
	ExactMatchingTokenizedField = "indexed_metadata.exact_matching_tokenized"
	// DefaultGeoField is used by geo filters without an explicit field.
	DefaultGeoField = "coordinate"
)

// ApplicationType is the boolean combinator a filter's values are joined with.
type ApplicationType string

// Application types.
const (
	MustAll           ApplicationType = "must_all"
	MustAllWithLevels ApplicationType = "must_all_with_levels"
	AtLeastOne        ApplicationType = "at_least_one"
	Exclude           ApplicationType = "exclude"
)

// IsValid checks if the application type is one of the supported values.
func (a ApplicationType) IsValid() bool {
	switch a {
	case MustAll, MustAllWithLevels, AtLeastOne, Exclude:
		return true
	}
	return false
}

// IsLeveled reports whether values form a hierarchy.
func (a ApplicationType) IsLeveled() bool { return a == MustAllWithLevels }

// Type selects how a filter's values are turned into predicates.
type Type string

// Filter types.
const (
	Field               Type = "field"
	Range               Type = "range"
	RangeWithMinMax     Type = "range_with_min_max"
	DateRange           Type = "date_range"
	DateRangeWithMinMax Type = "date_range_with_min_max"
	Geo                 Type = "geo"
	Query               Type = "query"
)

// IsValid checks if the filter type is one of the supported values.
func (t Type) IsValid() bool {
	switch t {
	case Field, Range, RangeWithMinMax, DateRange, DateRangeWithMinMax, Geo, Query:
		return true
	}
	return false
}

// IsRange reports whether values use the range notation.
func (t Type) IsRange() bool {
	return t == Range || t == RangeWithMinMax || t == DateRange || t == DateRangeWithMinMax
}

// IsDate reports whether range bounds are dates.
func (t Type) IsDate() bool { return t == DateRange || t == DateRangeWithMinMax }

// HasMinMax reports whether aggregations of this type report min/max only.
func (t Type) HasMinMax() bool { return t == RangeWithMinMax || t == DateRangeWithMinMax }

// Terms locks a filter to one subgroup value while a leveled aggregation
// is still being drilled into.
type Terms struct {
	Field string
	Value any
}

// Filter is a named constraint over one field.
// Empty values keep the filter identity without constraining results.
type Filter struct {
	name            string
	field           string
	values          []any
	applicationType ApplicationType
	filterType      Type
	terms           *Terms
}

// New validates and creates a Filter.
func New(name, field string, values []any, at ApplicationType, ft Type) (Filter, error) {
	if name == "" {
		return Filter{}, fmt.Errorf("filter name is required")
	}
	if !at.IsValid() {
		return Filter{}, fmt.Errorf("filter %q: invalid application type %q", name, at)
	}
	if !ft.IsValid() {
		return Filter{}, fmt.Errorf("filter %q: invalid filter type %q", name, ft)
	}
	switch ft {
	case Query:
	case Geo:
		if field == "" {
			field = DefaultGeoField
		}
		if len(values) > 1 {
			return Filter{}, fmt.Errorf("filter %q: geo filter takes a single location range", name)
		}
		for _, v := range values {
			if _, ok := v.(LocationRange); !ok {
				return Filter{}, fmt.Errorf("filter %q: geo value must be a location range, got %T", name, v)
			}
		}
	default:
		if field == "" {
			return Filter{}, fmt.Errorf("filter %q: field is required", name)
		}
	}
	if ft.IsRange() {
		for _, v := range values {
			if _, ok := v.(string); !ok {
				return Filter{}, fmt.Errorf("filter %q: range value must be a string, got %T", name, v)
			}
		}
	}

	cp := make([]any, len(values))
	copy(cp, values)
	return Filter{
		name:            name,
		field:           field,
		values:          cp,
		applicationType: at,
		filterType:      ft,
	}, nil
}

// NewQuery creates the free-text filter for text.
func NewQuery(text string) Filter {
	return Filter{
		name:            QueryName,
		values:          []any{text},
		applicationType: MustAll,
		filterType:      Query,
	}
}

// WithTerms returns a copy locked to the given subgroup term.
func (f Filter) WithTerms(field string, value any) Filter {
	f.terms = &Terms{Field: field, Value: value}
	return f
}

// Name returns the filter name.
func (f Filter) Name() string { return f.name }

// Field returns the field path.
func (f Filter) Field() string { return f.field }

// Values returns the filter values.
func (f Filter) Values() []any { return f.values }

// ApplicationType returns the boolean combinator.
func (f Filter) ApplicationType() ApplicationType { return f.applicationType }

// Type returns the filter type.
func (f Filter) Type() Type { return f.filterType }

// Terms returns the subgroup term, if any.
func (f Filter) Terms() (Terms, bool) {
	if f.terms == nil {
		return Terms{}, false
	}
	return *f.terms, true
}

// HasValues reports whether the filter constrains anything by itself.
func (f Filter) HasValues() bool { return len(f.values) > 0 }

// IsExactMatching reports whether the filter targets the exact-matching field.
func (f Filter) IsExactMatching() bool { return f.field == ExactMatchingTokenizedField }

// FieldSegments splits the field path on dots.
func (f Filter) FieldSegments() []string { return strings.Split(f.field, ".") }

// RestrictToSubgroup derives the at-least-one filter matching only the
// locked subgroup term. ok is false when the filter carries no term.
func RestrictToSubgroup(f Filter) (Filter, bool) {
	if f.terms == nil {
		return Filter{}, false
	}
	return Filter{
		name:            f.name,
		field:           f.terms.Field,
		values:          []any{f.terms.Value},
		applicationType: AtLeastOne,
		filterType:      Field,
	}, true
}
