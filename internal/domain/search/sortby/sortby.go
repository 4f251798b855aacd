package sortby

import (
	"fmt"
	"strings"

	"github.com/apisearch-io/search-server-sub000/internal/domain/geo"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/filter"
)

// Kind is the sort clause type.
type Kind string

// Clause kinds.
const (
	Score    Kind = "score"
	Field    Kind = "field"
	Function Kind = "function"
	Distance Kind = "distance"
	Nested   Kind = "nested"
	Random   Kind = "random"
)

// Order is the sort direction.
type Order string

// Sort orders.
const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Nested aggregation modes.
const (
	ModeMin = "min"
	ModeMax = "max"
	ModeAvg = "avg"
)

// DefaultDistanceUnit is used by distance clauses without unit.
const DefaultDistanceUnit = "km"

// Clause is one sort criterion.
type Clause struct {
	kind       Kind
	field      string
	order      Order
	function   string
	coordinate geo.Coordinate
	unit       string
	mode       string
	filter     *filter.Filter
}

// ByScore sorts by relevance, highest first.
func ByScore() Clause { return Clause{kind: Score, order: Desc} }

// ByField sorts by a document field.
func ByField(field string, order Order) (Clause, error) {
	if field == "" {
		return Clause{}, fmt.Errorf("sort field is required")
	}
	if err := validateOrder(order); err != nil {
		return Clause{}, err
	}
	return Clause{kind: Field, field: field, order: order}, nil
}

// ByFunction sorts by a numeric script.
func ByFunction(function string, order Order) (Clause, error) {
	if function == "" {
		return Clause{}, fmt.Errorf("sort function is required")
	}
	if err := validateOrder(order); err != nil {
		return Clause{}, err
	}
	return Clause{kind: Function, function: function, order: order}, nil
}

// ByDistance sorts by distance to c, closest first.
func ByDistance(c geo.Coordinate, unit string) (Clause, error) {
	if !geo.ValidateCoordinates(c.Lat, c.Lon) {
		return Clause{}, fmt.Errorf("sort coordinate out of range")
	}
	if unit == "" {
		unit = DefaultDistanceUnit
	}
	return Clause{kind: Distance, field: filter.DefaultGeoField, coordinate: c, unit: unit, order: Asc}, nil
}

// ByNested sorts by a field inside a nested container. The container path is
// the field without its last segment; f optionally narrows nested documents.
func ByNested(field string, order Order, mode string, f *filter.Filter) (Clause, error) {
	if strings.Count(field, ".") < 1 {
		return Clause{}, fmt.Errorf("nested sort field %q has no container", field)
	}
	if err := validateOrder(order); err != nil {
		return Clause{}, err
	}
	switch mode {
	case "":
		mode = ModeAvg
	case ModeMin, ModeMax, ModeAvg:
	default:
		return Clause{}, fmt.Errorf("invalid nested sort mode %q", mode)
	}
	return Clause{kind: Nested, field: field, order: order, mode: mode, filter: f}, nil
}

// ByRandom shuffles results.
func ByRandom() Clause { return Clause{kind: Random} }

func validateOrder(o Order) error {
	if o != Asc && o != Desc {
		return fmt.Errorf("invalid sort order %q", o)
	}
	return nil
}

// Kind returns the clause kind.
func (c Clause) Kind() Kind { return c.kind }

// Field returns the sorted field.
func (c Clause) Field() string { return c.field }

// Order returns the sort order.
func (c Clause) Order() Order { return c.order }

// IsAsc reports ascending order.
func (c Clause) IsAsc() bool { return c.order == Asc }

// Function returns the script body.
func (c Clause) Function() string { return c.function }

// Coordinate returns the distance origin.
func (c Clause) Coordinate() geo.Coordinate { return c.coordinate }

// Unit returns the distance unit.
func (c Clause) Unit() string { return c.unit }

// Mode returns the nested aggregation mode.
func (c Clause) Mode() string { return c.mode }

// NestedPath returns the nested container of the field.
func (c Clause) NestedPath() string {
	i := strings.LastIndex(c.field, ".")
	if i < 0 {
		return ""
	}
	return c.field[:i]
}

// Filter returns the nested gating filter, if any.
func (c Clause) Filter() (filter.Filter, bool) {
	if c.filter == nil {
		return filter.Filter{}, false
	}
	return *c.filter, true
}

// SortBy is an ordered list of sort clauses.
type SortBy struct {
	clauses []Clause
}

// New creates a SortBy.
func New(clauses ...Clause) SortBy {
	return SortBy{clauses: append([]Clause(nil), clauses...)}
}

// Clauses returns the clauses in order.
func (s SortBy) Clauses() []Clause { return s.clauses }

// IsRandom reports whether any clause is random.
func (s SortBy) IsRandom() bool {
	for _, c := range s.clauses {
		if c.kind == Random {
			return true
		}
	}
	return false
}

// IsScoreOnly reports whether the engine default order applies.
func (s SortBy) IsScoreOnly() bool {
	if len(s.clauses) == 0 {
		return true
	}
	return len(s.clauses) == 1 && s.clauses[0].kind == Score && s.clauses[0].order == Desc
}

// DistanceOrigin returns the coordinate of the first distance clause.
func (s SortBy) DistanceOrigin() (geo.Coordinate, bool) {
	if i, ok := s.DistancePosition(); ok {
		return s.clauses[i].coordinate, true
	}
	return geo.Coordinate{}, false
}

// DistancePosition returns the index of the first distance clause, which is
// also the index of its value in each hit's sort values.
func (s SortBy) DistancePosition() (int, bool) {
	for i, c := range s.clauses {
		if c.kind == Distance {
			return i, true
		}
	}
	return 0, false
}
