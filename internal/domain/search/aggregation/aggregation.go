package aggregation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/apisearch-io/search-server-sub000/internal/domain/search/filter"
)

// Aggregation limits.
const (
	// NoLimit lets the engine default apply.
	NoLimit = 0
	// DefaultSize is the bucket count requested when no limit is set.
	DefaultSize = 1000
	// MaxSize caps client supplied limits.
	MaxSize = 10000
)

// Sort is a bucket ordering.
type Sort struct {
	Field string
	Asc   bool
}

// Bucket orderings.
var (
	SortByCountDesc = Sort{Field: "_count", Asc: false}
	SortByCountAsc  = Sort{Field: "_count", Asc: true}
	SortByNameAsc   = Sort{Field: "_key", Asc: true}
	SortByNameDesc  = Sort{Field: "_key", Asc: false}
)

// Aggregation is a facet requested by a query.
type Aggregation struct {
	name            string
	field           string
	filterType      filter.Type
	applicationType filter.ApplicationType
	sort            Sort
	limit           int
	subgroup        []string
}

// New validates and creates an Aggregation.
// Zero sort defaults to count desc. Subgroup restricts reported bucket keys.
func New(
	name, field string,
	at filter.ApplicationType, ft filter.Type,
	sort Sort, limit int, subgroup []string,
) (Aggregation, error) {
	if name == "" {
		return Aggregation{}, fmt.Errorf("aggregation name is required")
	}
	if field == "" {
		return Aggregation{}, fmt.Errorf("aggregation %q: field is required", name)
	}
	if !at.IsValid() {
		return Aggregation{}, fmt.Errorf("aggregation %q: invalid application type %q", name, at)
	}
	if !ft.IsValid() {
		return Aggregation{}, fmt.Errorf("aggregation %q: invalid filter type %q", name, ft)
	}
	if limit < 0 {
		return Aggregation{}, fmt.Errorf("aggregation %q: limit must be positive", name)
	}
	if limit > MaxSize {
		limit = MaxSize
	}
	if sort.Field == "" {
		sort = SortByCountDesc
	}
	return Aggregation{
		name:            name,
		field:           field,
		filterType:      ft,
		applicationType: at,
		sort:            sort,
		limit:           limit,
		subgroup:        slices.Clone(subgroup),
	}, nil
}

// Name returns the aggregation name.
func (a Aggregation) Name() string { return a.name }

// Field returns the raw field, possibly "|"-delimited.
func (a Aggregation) Field() string { return a.field }

// FieldPath returns the first "|" segment, the engine field to aggregate on.
func (a Aggregation) FieldPath() string {
	path, _, _ := strings.Cut(a.field, "|")
	return path
}

// Type returns the filter type the buckets follow.
func (a Aggregation) Type() filter.Type { return a.filterType }

// ApplicationType returns the application type.
func (a Aggregation) ApplicationType() filter.ApplicationType { return a.applicationType }

// Sort returns the bucket ordering.
func (a Aggregation) Sort() Sort { return a.sort }

// Limit returns the bucket limit, NoLimit when unset.
func (a Aggregation) Limit() int { return a.limit }

// Size returns the bucket count to request from the engine.
func (a Aggregation) Size() int {
	if a.limit == NoLimit {
		return DefaultSize
	}
	return a.limit
}

// Subgroup returns the bucket key whitelist.
func (a Aggregation) Subgroup() []string { return a.subgroup }

// InSubgroup reports whether key may be reported.
// Every key passes when no subgroup is declared.
func (a Aggregation) InSubgroup(key string) bool {
	return len(a.subgroup) == 0 || slices.Contains(a.subgroup, key)
}

// IgnoresOwnFilter reports whether the same-named filter is left out of the
// aggregation scope, so unselected alternatives keep their counts.
func (a Aggregation) IgnoresOwnFilter() bool {
	return a.applicationType == filter.AtLeastOne
}
