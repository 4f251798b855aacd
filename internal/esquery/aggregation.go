package esquery

import (
	"github.com/olivere/elastic/v7"

	"github.com/apisearch-io/search-server-sub000/internal/domain/search/aggregation"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/filter"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/query"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/ranges"
)

// Aggregation tree names shared with the result assembler.
const (
	GlobalAggregation   = "all"
	UniverseAggregation = "universe"
	MinAggregation      = "min"
	MaxAggregation      = "max"
)

// aggregations builds global "all" > filter "universe" > filter <name> > <name>.
func (c *Compiler) aggregations(q query.Query, fc filterCompiler) (elastic.Aggregation, error) {
	universeScope := elastic.NewBoolQuery()
	if err := addFilters(universeScope, q.UniverseFilters(), fc, "", false); err != nil {
		return nil, err
	}
	universe := elastic.NewFilterAggregation().Filter(universeScope)

	for _, a := range q.Aggregations() {
		inner, ok := c.bucketAggregation(a)
		if !ok {
			continue
		}

		ignore := ""
		if a.IgnoresOwnFilter() {
			ignore = a.Name()
		}
		scope := elastic.NewBoolQuery()
		if err := addFilters(scope, q.Filters(), fc, ignore, true); err != nil {
			return nil, err
		}

		scoped := elastic.NewFilterAggregation().Filter(scope)
		if a.Type().HasMinMax() {
			scoped.SubAggregation(MinAggregation, elastic.NewMinAggregation().Field(a.FieldPath()))
			scoped.SubAggregation(MaxAggregation, elastic.NewMaxAggregation().Field(a.FieldPath()))
		} else {
			scoped.SubAggregation(a.Name(), inner)
		}
		universe.SubAggregation(a.Name(), scoped)
	}

	return elastic.NewGlobalAggregation().SubAggregation(UniverseAggregation, universe), nil
}

// bucketAggregation returns the bucket source of a. ok is false for types
// that cannot be aggregated.
func (c *Compiler) bucketAggregation(a aggregation.Aggregation) (elastic.Aggregation, bool) {
	switch a.Type() {
	case filter.Field:
		sort := a.Sort()
		return elastic.NewTermsAggregation().
			Field(a.FieldPath()).
			Size(a.Size()).
			Order(sort.Field, sort.Asc), true
	case filter.Range:
		r := elastic.NewRangeAggregation().Field(a.FieldPath())
		for _, key := range a.Subgroup() {
			parsed := ranges.Parse(key)
			r.AddRangeWithKey(key, parsed.FromValue(), parsed.ToValue())
		}
		return r, true
	case filter.DateRange:
		r := elastic.NewDateRangeAggregation().Field(a.FieldPath())
		for _, key := range a.Subgroup() {
			parsed := ranges.Parse(key)
			r.AddRangeWithKey(key, dateBound(parsed.From()), dateBound(parsed.To()))
		}
		return r, true
	case filter.RangeWithMinMax, filter.DateRangeWithMinMax:
		return nil, true
	default:
		return nil, false
	}
}

func dateBound(v string, ok bool) any {
	if !ok {
		return nil
	}
	return v
}

// addFilters applies filters to b. The filter named ignore only
// contributes its locked subgroup term.
func addFilters(b *elastic.BoolQuery, filters []filter.Filter, fc filterCompiler, ignore string, takeLevel bool) error {
	for _, f := range filters {
		onlyDefinedTerm := !f.HasValues() || (ignore != "" && f.Name() == ignore)
		p, err := fc.compile(f, onlyDefinedTerm, takeLevel, true)
		if err != nil {
			return err
		}
		if p == nil {
			continue
		}
		switch f.Type() {
		case filter.Query, filter.Geo:
			b.Must(p)
		default:
			b.Filter(p)
		}
	}
	return nil
}
