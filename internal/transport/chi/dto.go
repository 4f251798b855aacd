package chi

import (
	"fmt"

	"github.com/spf13/cast"

	"github.com/apisearch-io/search-server-sub000/internal/domain"
	"github.com/apisearch-io/search-server-sub000/internal/domain/geo"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/aggregation"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/filter"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/query"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/score"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/sortby"
)

// SearchRequest is the body of POST /v1/apps/{app}/indices/{indices}/search.
// Filters and aggregations are ordered lists; their order is kept in the
// compiled engine query.
type SearchRequest struct {
	Q                string                  `json:"q"`
	Page             int                     `json:"page"`
	Size             int                     `json:"size"`
	Fields           []string                `json:"fields,omitempty"`
	Filters          []FilterRequest         `json:"filters,omitempty"`
	UniverseFilters  []FilterRequest         `json:"universe_filters,omitempty"`
	Aggregations     []AggregationRequest    `json:"aggregations,omitempty"`
	Sort             []SortRequest           `json:"sort,omitempty"`
	ScoreStrategies  *ScoreStrategiesRequest `json:"score_strategies,omitempty"`
	Fuzziness        any                     `json:"fuzziness,omitempty"`
	MinScore         float64                 `json:"min_score,omitempty"`
	SearchableFields []string                `json:"searchable_fields,omitempty"`
	Like             []string                `json:"like,omitempty"`
	Options          *OptionsRequest         `json:"options,omitempty"`
}

// FilterRequest describes one named filter.
type FilterRequest struct {
	Name            string              `json:"name"`
	Field           string              `json:"field"`
	Values          []any               `json:"values"`
	ApplicationType string              `json:"application_type"`
	FilterType      string              `json:"filter_type"`
	FilterTerms     *FilterTermsRequest `json:"filter_terms,omitempty"`
}

// FilterTermsRequest locks a leveled filter to one subgroup value.
type FilterTermsRequest struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// AggregationRequest describes one facet.
type AggregationRequest struct {
	Name            string   `json:"name"`
	Field           string   `json:"field"`
	ApplicationType string   `json:"application_type"`
	FilterType      string   `json:"filter_type"`
	Sort            string   `json:"sort,omitempty"`
	Limit           int      `json:"limit,omitempty"`
	Subgroup        []string `json:"subgroup,omitempty"`
}

// SortRequest describes one sort clause.
type SortRequest struct {
	Type       string          `json:"type"`
	Field      string          `json:"field,omitempty"`
	Order      string          `json:"order,omitempty"`
	Function   string          `json:"function,omitempty"`
	Coordinate *geo.Coordinate `json:"coordinate,omitempty"`
	Unit       string          `json:"unit,omitempty"`
	Mode       string          `json:"mode,omitempty"`
	Filter     *FilterRequest  `json:"filter,omitempty"`
}

// ScoreStrategiesRequest describes the scoring strategies and how they combine.
type ScoreStrategiesRequest struct {
	Mode       string                 `json:"mode"`
	Strategies []ScoreStrategyRequest `json:"strategies"`
}

// ScoreStrategyRequest describes one scoring strategy.
type ScoreStrategyRequest struct {
	Type           string          `json:"type"`
	Weight         float64         `json:"weight,omitempty"`
	Filters        []FilterRequest `json:"filters,omitempty"`
	Configuration  map[string]any  `json:"configuration,omitempty"`
	ScoreMode      string          `json:"score_mode,omitempty"`
	MatchMainQuery *bool           `json:"match_main_query,omitempty"`
}

// OptionsRequest toggles query features. Unset fields keep their defaults.
type OptionsRequest struct {
	ResultsEnabled      *bool `json:"results_enabled,omitempty"`
	AggregationsEnabled *bool `json:"aggregations_enabled,omitempty"`
	HighlightEnabled    *bool `json:"highlight_enabled,omitempty"`
	SuggestionsEnabled  *bool `json:"suggestions_enabled,omitempty"`
	NumberOfSuggestions *int  `json:"number_of_suggestions,omitempty"`
	ExactMatchingFuzzy  *bool `json:"exact_matching_fuzzy,omitempty"`
}

// aggregationSorts maps request sort names to bucket orderings.
var aggregationSorts = map[string]aggregation.Sort{
	"":           {},
	"count_desc": aggregation.SortByCountDesc,
	"count_asc":  aggregation.SortByCountAsc,
	"name_asc":   aggregation.SortByNameAsc,
	"name_desc":  aggregation.SortByNameDesc,
}

// pagination bounds the page size of incoming queries.
type pagination struct {
	defaultSize int
	maxSize     int
}

// toQuery converts a request into a validated domain query.
func (req SearchRequest) toQuery(p pagination) (query.Query, error) {
	var opts []query.Option

	for i, fr := range req.Filters {
		f, err := fr.toFilter()
		if err != nil {
			return query.Query{}, invalid(fmt.Sprintf("filters[%d]", i), err)
		}
		opts = append(opts, query.WithFilter(f))
	}
	for i, fr := range req.UniverseFilters {
		f, err := fr.toFilter()
		if err != nil {
			return query.Query{}, invalid(fmt.Sprintf("universe_filters[%d]", i), err)
		}
		opts = append(opts, query.WithUniverseFilter(f))
	}
	for i, ar := range req.Aggregations {
		a, err := ar.toAggregation()
		if err != nil {
			return query.Query{}, invalid(fmt.Sprintf("aggregations[%d]", i), err)
		}
		opts = append(opts, query.WithAggregation(a))
	}

	if len(req.Sort) > 0 {
		clauses := make([]sortby.Clause, 0, len(req.Sort))
		for i, sr := range req.Sort {
			c, err := sr.toClause()
			if err != nil {
				return query.Query{}, invalid(fmt.Sprintf("sort[%d]", i), err)
			}
			clauses = append(clauses, c)
		}
		opts = append(opts, query.WithSortBy(sortby.New(clauses...)))
	}

	if req.ScoreStrategies != nil {
		s, err := req.ScoreStrategies.toStrategies()
		if err != nil {
			return query.Query{}, invalid("score_strategies", err)
		}
		opts = append(opts, query.WithScoreStrategies(s))
	}

	if req.Fuzziness != nil {
		f, err := parseFuzziness(req.Fuzziness)
		if err != nil {
			return query.Query{}, invalid("fuzziness", err)
		}
		opts = append(opts, query.WithFuzziness(f))
	}

	if len(req.Like) > 0 {
		items := make([]query.ItemUUID, 0, len(req.Like))
		for _, s := range req.Like {
			u, err := query.ParseItemUUID(s)
			if err != nil {
				return query.Query{}, invalid("like", err)
			}
			items = append(items, u)
		}
		opts = append(opts, query.WithLikeItems(items...))
	}

	if len(req.Fields) > 0 {
		opts = append(opts, query.WithFields(req.Fields...))
	}
	if len(req.SearchableFields) > 0 {
		opts = append(opts, query.WithSearchableFields(req.SearchableFields...))
	}
	if req.MinScore != 0 {
		opts = append(opts, query.WithMinScore(req.MinScore))
	}
	if req.Options != nil {
		opts = append(opts, query.WithOptions(req.Options.apply(query.DefaultOptions())))
	}

	if req.Page < 0 || req.Size < 0 {
		return query.Query{}, domain.NewValidationError("page", "page and size must not be negative")
	}
	size := req.Size
	if size == 0 {
		size = p.defaultSize
	}
	if p.maxSize > 0 {
		size = min(size, p.maxSize)
	}
	opts = append(opts, query.WithPage(req.Page, size))

	q, err := query.New(req.Q, opts...)
	if err != nil {
		return query.Query{}, invalid("query", err)
	}
	return q, nil
}

func (fr FilterRequest) toFilter() (filter.Filter, error) {
	ft := filter.Type(fr.FilterType)
	if ft == "" {
		ft = filter.Field
	}
	at := filter.ApplicationType(fr.ApplicationType)
	if at == "" {
		at = filter.MustAll
	}

	values := make([]any, 0, len(fr.Values))
	for _, v := range fr.Values {
		switch {
		case ft == filter.Geo:
			payload, err := cast.ToStringMapE(v)
			if err != nil {
				return filter.Filter{}, fmt.Errorf("filter %q: geo value: %w", fr.Name, err)
			}
			lr, err := filter.ParseLocationRange(payload)
			if err != nil {
				return filter.Filter{}, fmt.Errorf("filter %q: %w", fr.Name, err)
			}
			values = append(values, lr)
		case ft.IsRange():
			s, err := cast.ToStringE(v)
			if err != nil {
				return filter.Filter{}, fmt.Errorf("filter %q: range value: %w", fr.Name, err)
			}
			values = append(values, s)
		default:
			values = append(values, v)
		}
	}

	f, err := filter.New(fr.Name, fr.Field, values, at, ft)
	if err != nil {
		return filter.Filter{}, err
	}
	if t := fr.FilterTerms; t != nil {
		if t.Field == "" {
			return filter.Filter{}, fmt.Errorf("filter %q: filter_terms field is required", fr.Name)
		}
		f = f.WithTerms(t.Field, t.Value)
	}
	return f, nil
}

func (ar AggregationRequest) toAggregation() (aggregation.Aggregation, error) {
	sort, ok := aggregationSorts[ar.Sort]
	if !ok {
		return aggregation.Aggregation{}, fmt.Errorf("aggregation %q: unknown sort %q", ar.Name, ar.Sort)
	}
	ft := filter.Type(ar.FilterType)
	if ft == "" {
		ft = filter.Field
	}
	at := filter.ApplicationType(ar.ApplicationType)
	if at == "" {
		at = filter.MustAll
	}
	return aggregation.New(ar.Name, ar.Field, at, ft, sort, ar.Limit, ar.Subgroup)
}

func (sr SortRequest) toClause() (sortby.Clause, error) {
	order := sortby.Order(sr.Order)
	if order == "" {
		order = sortby.Desc
	}

	switch sortby.Kind(sr.Type) {
	case sortby.Score, "":
		return sortby.ByScore(), nil
	case sortby.Field:
		return sortby.ByField(sr.Field, order)
	case sortby.Function:
		return sortby.ByFunction(sr.Function, order)
	case sortby.Distance:
		if sr.Coordinate == nil {
			return sortby.Clause{}, fmt.Errorf("distance sort: coordinate is required")
		}
		return sortby.ByDistance(*sr.Coordinate, sr.Unit)
	case sortby.Nested:
		var f *filter.Filter
		if sr.Filter != nil {
			nf, err := sr.Filter.toFilter()
			if err != nil {
				return sortby.Clause{}, err
			}
			f = &nf
		}
		return sortby.ByNested(sr.Field, order, sr.Mode, f)
	case sortby.Random:
		return sortby.ByRandom(), nil
	default:
		return sortby.Clause{}, fmt.Errorf("unknown sort type %q", sr.Type)
	}
}

func (sr ScoreStrategiesRequest) toStrategies() (score.Strategies, error) {
	mode := score.Mode(sr.Mode)
	if mode == "" {
		mode = score.Sum
	}

	strategies := make([]score.Strategy, 0, len(sr.Strategies))
	for i, r := range sr.Strategies {
		filters := make([]filter.Filter, 0, len(r.Filters))
		for _, fr := range r.Filters {
			f, err := fr.toFilter()
			if err != nil {
				return score.Strategies{}, fmt.Errorf("strategy %d: %w", i, err)
			}
			filters = append(filters, f)
		}

		matchMainQuery := true
		if r.MatchMainQuery != nil {
			matchMainQuery = *r.MatchMainQuery
		}

		s, err := score.New(score.Type(r.Type), r.Weight, filters, r.Configuration, r.ScoreMode, matchMainQuery)
		if err != nil {
			return score.Strategies{}, fmt.Errorf("strategy %d: %w", i, err)
		}
		strategies = append(strategies, s)
	}
	return score.NewStrategies(mode, strategies...)
}

// parseFuzziness accepts a scalar ("AUTO", 1) or a per-field map.
func parseFuzziness(v any) (query.Fuzziness, error) {
	switch raw := v.(type) {
	case map[string]any:
		m, err := cast.ToStringMapStringE(raw)
		if err != nil {
			return query.Fuzziness{}, fmt.Errorf("per-field fuzziness: %w", err)
		}
		return query.PerFieldFuzziness(m), nil
	default:
		s, err := cast.ToStringE(raw)
		if err != nil {
			return query.Fuzziness{}, fmt.Errorf("fuzziness: %w", err)
		}
		if s == "" {
			return query.NoFuzziness(), nil
		}
		return query.ScalarFuzziness(s), nil
	}
}

func (o OptionsRequest) apply(opts query.Options) query.Options {
	if o.ResultsEnabled != nil {
		opts.ResultsEnabled = *o.ResultsEnabled
	}
	if o.AggregationsEnabled != nil {
		opts.AggregationsEnabled = *o.AggregationsEnabled
	}
	if o.HighlightEnabled != nil {
		opts.HighlightEnabled = *o.HighlightEnabled
	}
	if o.SuggestionsEnabled != nil {
		opts.SuggestionsEnabled = *o.SuggestionsEnabled
	}
	if o.NumberOfSuggestions != nil {
		opts.NumberOfSuggestions = *o.NumberOfSuggestions
	}
	if o.ExactMatchingFuzzy != nil {
		opts.ExactMatchingFuzzy = *o.ExactMatchingFuzzy
	}
	return opts
}

func invalid(field string, err error) error {
	return domain.NewValidationError(field, err.Error())
}
