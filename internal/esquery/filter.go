package esquery

import (
	"fmt"
	"strings"

	"github.com/olivere/elastic/v7"
	"github.com/spf13/cast"

	"github.com/apisearch-io/search-server-sub000/internal/domain/search/filter"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/query"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/ranges"
)

// Engine fields.
const (
	IDField            = "_id"
	ExactMatchingField = "exact_matching_metadata"
)

// DefaultSearchableFields are matched by free text without an override.
var DefaultSearchableFields = []string{"searchable_metadata.*", "exact_matching_metadata^5"}

// filterCompiler turns domain filters into engine predicates. The zero
// value is usable; text settings come from the query being compiled.
type filterCompiler struct {
	searchableFields []string
	fuzziness        query.Fuzziness
	exactFuzzy       bool
}

// compile dispatches f by type. A nil query means f constrains nothing.
func (fc filterCompiler) compile(f filter.Filter, onlyDefinedTerm, takeLevel, checkNested bool) (elastic.Query, error) {
	switch f.Type() {
	case filter.Query:
		text := ""
		if vs := f.Values(); len(vs) > 0 {
			text = cast.ToString(vs[0])
		}
		return fc.text(text), nil
	case filter.Geo:
		return fc.geo(f)
	case filter.Field, filter.Range, filter.RangeWithMinMax, filter.DateRange, filter.DateRangeWithMinMax:
		if f.IsExactMatching() {
			return fc.exactMatching(f), nil
		}
		return fc.byApplicationType(f, onlyDefinedTerm, takeLevel, checkNested)
	default:
		return nil, fmt.Errorf("%w: %q in filter %q", ErrUnsupportedFilterType, f.Type(), f.Name())
	}
}

// byApplicationType joins per-value predicates with the application type
// verb, plus the locked subgroup term when levels are taken into account.
func (fc filterCompiler) byApplicationType(f filter.Filter, onlyDefinedTerm, takeLevel, checkNested bool) (elastic.Query, error) {
	group := elastic.NewBoolQuery()
	clauses := 0

	if !onlyDefinedTerm {
		for _, v := range f.Values() {
			p, err := fc.value(f, v, checkNested)
			if err != nil {
				return nil, err
			}
			if p == nil {
				continue
			}
			switch f.ApplicationType() {
			case filter.MustAll, filter.MustAllWithLevels:
				group.Must(p)
			case filter.AtLeastOne:
				group.Should(p)
			case filter.Exclude:
				group.MustNot(p)
			default:
				return nil, fmt.Errorf("%w: application type %q in filter %q",
					ErrUnsupportedFilterType, f.ApplicationType(), f.Name())
			}
			clauses++
		}
		if clauses > 0 && f.ApplicationType() == filter.AtLeastOne {
			group.MinimumNumberShouldMatch(1)
		}
	}

	if takeLevel {
		if sub, ok := filter.RestrictToSubgroup(f); ok {
			p, err := fc.byApplicationType(sub, false, false, checkNested)
			if err != nil {
				return nil, err
			}
			if p != nil {
				group.Filter(p)
				clauses++
			}
		}
	}

	if clauses == 0 {
		return nil, nil
	}
	return group, nil
}

func (fc filterCompiler) value(f filter.Filter, v any, checkNested bool) (elastic.Query, error) {
	switch f.Type() {
	case filter.Field:
		return term(f.Field(), v, checkNested), nil
	case filter.Range, filter.RangeWithMinMax:
		return rangeQuery(f.Field(), cast.ToString(v), false), nil
	case filter.DateRange, filter.DateRangeWithMinMax:
		return rangeQuery(f.Field(), cast.ToString(v), true), nil
	default:
		return nil, fmt.Errorf("%w: %q in filter %q", ErrUnsupportedFilterType, f.Type(), f.Name())
	}
}

// term matches one value. Slices are OR-ed, each value nested on its own.
func term(field string, v any, checkNested bool) elastic.Query {
	if vs, ok := v.([]any); ok {
		b := elastic.NewBoolQuery()
		for _, item := range vs {
			b.Should(term(field, item, checkNested))
		}
		return b
	}

	if field == filter.UUIDField || field == filter.IndexedUUIDField {
		return elastic.NewTermQuery(IDField, v)
	}
	q := elastic.NewTermQuery(field, v)
	if path, ok := nestedPath(field, checkNested); ok {
		return elastic.NewNestedQuery(path, q)
	}
	return q
}

// nestedPath returns the container of a three segment field.
func nestedPath(field string, checkNested bool) (string, bool) {
	if !checkNested {
		return "", false
	}
	segments := strings.Split(field, ".")
	if len(segments) != 3 {
		return "", false
	}
	return segments[0] + "." + segments[1], true
}

// rangeQuery returns nil for unconstrained ranges. Date bounds stay strings.
func rangeQuery(field, value string, date bool) elastic.Query {
	r := ranges.Parse(value)
	if r.IsUnconstrained() {
		return nil
	}
	q := elastic.NewRangeQuery(field)
	if from, ok := r.From(); ok {
		if date {
			q.Gte(from)
		} else {
			q.Gte(r.FromValue())
		}
	}
	if to, ok := r.To(); ok {
		var bound any = to
		if !date {
			bound = r.ToValue()
		}
		if r.IncludesUpper() {
			q.Lte(bound)
		} else {
			q.Lt(bound)
		}
	}
	return q
}

func (fc filterCompiler) geo(f filter.Filter) (elastic.Query, error) {
	vs := f.Values()
	if len(vs) == 0 {
		return nil, nil
	}
	field := f.Field()
	if field == "" {
		field = filter.DefaultGeoField
	}

	switch lr := vs[0].(type) {
	case filter.CoordinateAndDistance:
		return elastic.NewGeoDistanceQuery(field).
			Point(lr.Coordinate.Lat, lr.Coordinate.Lon).
			Distance(lr.Distance), nil
	case filter.Polygon:
		q := elastic.NewGeoPolygonQuery(field)
		for _, c := range lr.Coordinates {
			q.AddPoint(c.Lat, c.Lon)
		}
		return q, nil
	case filter.Square:
		return elastic.NewGeoBoundingBoxQuery(field).
			TopLeft(lr.TopLeft.Lat, lr.TopLeft.Lon).
			BottomRight(lr.BottomRight.Lat, lr.BottomRight.Lon), nil
	default:
		return nil, fmt.Errorf("%w: geo value %T in filter %q", ErrUnsupportedFilterType, vs[0], f.Name())
	}
}
