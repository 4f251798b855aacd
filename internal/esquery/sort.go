package esquery

import (
	"fmt"

	"github.com/olivere/elastic/v7"

	"github.com/apisearch-io/search-server-sub000/internal/domain/search/sortby"
)

// Random sort parameters.
const (
	randomSeedField = "_seq_no"
	randomBoostMode = "replace"
	scriptSortType  = "number"
)

// sortCompiler turns sort clauses into engine sorters.
type sortCompiler struct {
	filters filterCompiler
	seed    func() int64
}

// compile returns the sorters to attach and the query to search with.
// Random sort wraps base in a random function_score and yields no sorters.
func (sc sortCompiler) compile(sb sortby.SortBy, base elastic.Query) ([]elastic.Sorter, elastic.Query, error) {
	if sb.IsRandom() {
		random := elastic.NewRandomFunction().Seed(sc.seed()).Field(randomSeedField)
		return nil, elastic.NewFunctionScoreQuery().
			Query(base).
			AddScoreFunc(random).
			BoostMode(randomBoostMode), nil
	}
	if sb.IsScoreOnly() {
		return nil, base, nil
	}

	sorters := make([]elastic.Sorter, 0, len(sb.Clauses()))
	for _, c := range sb.Clauses() {
		s, err := sc.clause(c)
		if err != nil {
			return nil, nil, err
		}
		sorters = append(sorters, s)
	}
	return sorters, base, nil
}

func (sc sortCompiler) clause(c sortby.Clause) (elastic.Sorter, error) {
	switch c.Kind() {
	case sortby.Score:
		return elastic.NewScoreSort().Order(c.IsAsc()), nil
	case sortby.Field:
		return elastic.NewFieldSort(c.Field()).Order(c.IsAsc()), nil
	case sortby.Function:
		return elastic.NewScriptSort(elastic.NewScript(c.Function()), scriptSortType).Order(c.IsAsc()), nil
	case sortby.Distance:
		return elastic.NewGeoDistanceSort(c.Field()).
			Point(c.Coordinate().Lat, c.Coordinate().Lon).
			Unit(c.Unit()).
			Order(true), nil
	case sortby.Nested:
		nested := elastic.NewNestedSort(c.NestedPath())
		if f, ok := c.Filter(); ok {
			gate, err := sc.filters.compile(f, !f.HasValues(), false, false)
			if err != nil {
				return nil, err
			}
			if gate != nil {
				nested.Filter(gate)
			}
		}
		return elastic.NewFieldSort(c.Field()).
			Order(c.IsAsc()).
			SortMode(c.Mode()).
			Nested(nested), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSortKind, c.Kind())
	}
}
