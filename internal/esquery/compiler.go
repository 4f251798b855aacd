// Package esquery compiles domain queries into Elasticsearch search sources.
package esquery

import (
	"errors"
	"strings"
	"time"

	"github.com/olivere/elastic/v7"

	"github.com/apisearch-io/search-server-sub000/internal/domain/search/query"
)

var (
	// ErrUnsupportedFilterType signals a filter type without predicate branch.
	ErrUnsupportedFilterType = errors.New("unsupported filter type")
	// ErrUnsupportedScoreStrategy signals a strategy type without scoring branch.
	ErrUnsupportedScoreStrategy = errors.New("unsupported score strategy")
	// ErrUnsupportedSortKind signals a sort kind without sorter branch.
	ErrUnsupportedSortKind = errors.New("unsupported sort kind")
)

// Similarity and result shaping parameters.
const (
	moreLikeThisMinDocFreq  = 5
	moreLikeThisMinTermFreq = 1
	moreLikeThisField       = "searchable_metadata.*"
	uuidSourceInclude       = "uuid.*"
	highlightField          = "searchable_metadata.*"
	highlightPreTag         = "<em>"
	highlightPostTag        = "</em>"
	suggestionField         = "suggest"
)

// SuggestionName names the completion suggester in requests and responses.
const SuggestionName = "completion"

// Compiler turns a query.Query into an engine search source.
// It holds no per-call state and is safe for concurrent use.
type Compiler struct {
	seed             func() int64
	searchableFields []string
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithSeed sets the random sort seed source.
func WithSeed(seed func() int64) Option {
	return func(c *Compiler) { c.seed = seed }
}

// WithSearchableFields sets the free-text fields used when a query has no override.
func WithSearchableFields(fields ...string) Option {
	return func(c *Compiler) { c.searchableFields = append([]string(nil), fields...) }
}

// New creates a Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		seed:             func() int64 { return time.Now().UnixNano() },
		searchableFields: DefaultSearchableFields,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile translates q. Apart from random sort seeds, equal queries
// always yield equal sources.
func (c *Compiler) Compile(q query.Query) (*elastic.SearchSource, error) {
	fc := filterCompiler{
		searchableFields: c.searchableFields,
		fuzziness:        q.Fuzziness(),
		exactFuzzy:       q.Options().ExactMatchingFuzzy,
	}
	if fields := q.SearchableFields(); len(fields) > 0 {
		fc.searchableFields = fields
	}
	sc := scoreCompiler{filters: fc}

	src := elastic.NewSearchSource()
	src.FetchSourceContext(fetchSource(q.Fields()))

	main := elastic.NewBoolQuery()
	if q.IsSimilarity() {
		main.Must(moreLikeThis(q))
	} else if err := addFilters(main, q.Filters(), fc, "", true); err != nil {
		return nil, err
	}

	var root elastic.Query = main
	boosts, err := sc.independent(q.ScoreStrategies())
	if err != nil {
		return nil, err
	}
	if len(boosts) > 0 {
		root = elastic.NewBoolQuery().
			Should(append([]elastic.Query{main}, boosts...)...).
			MinimumNumberShouldMatch(1)
	}

	if len(q.UniverseFilters()) > 0 {
		universe := elastic.NewBoolQuery()
		if err := addFilters(universe, q.UniverseFilters(), fc, "", false); err != nil {
			return nil, err
		}
		root = elastic.NewBoolQuery().Must(universe, root)
	}

	if q.Text() != "" && q.MinScore() > 0 {
		src.MinScore(q.MinScore())
	}

	if !q.ScoreStrategies().IsEmpty() {
		if root, err = sc.compile(q.ScoreStrategies(), root); err != nil {
			return nil, err
		}
	}

	srt := sortCompiler{filters: fc, seed: c.seed}
	sorters, root, err := srt.compile(q.SortBy(), root)
	if err != nil {
		return nil, err
	}
	if len(sorters) > 0 {
		src.SortBy(sorters...)
	}
	src.Query(root)

	if q.Options().AggregationsEnabled && !q.IsSimilarity() && len(q.Aggregations()) > 0 {
		agg, err := c.aggregations(q, fc)
		if err != nil {
			return nil, err
		}
		src.Aggregation(GlobalAggregation, agg)
	}

	c.shape(src, q)
	return src, nil
}

// shape applies pagination, highlighting and suggestions.
func (c *Compiler) shape(src *elastic.SearchSource, q query.Query) {
	opts := q.Options()
	if opts.ResultsEnabled {
		src.From(q.From()).Size(q.Size())
	} else {
		src.Size(0)
	}

	if opts.HighlightEnabled && opts.ResultsEnabled && q.Text() != "" {
		src.Highlight(elastic.NewHighlight().
			Field(highlightField).
			PreTags(highlightPreTag).
			PostTags(highlightPostTag))
	}

	if opts.SuggestionsEnabled && opts.NumberOfSuggestions > 0 && q.Text() != "" {
		src.Suggester(elastic.NewCompletionSuggester(SuggestionName).
			Field(suggestionField).
			Text(q.Text()).
			Size(opts.NumberOfSuggestions).
			SkipDuplicates(true))
	}
}

// fetchSource splits "!"-prefixed excludes from includes. Any include
// implies the uuid fields.
func fetchSource(fields []string) *elastic.FetchSourceContext {
	ctx := elastic.NewFetchSourceContext(true)
	if len(fields) == 0 {
		return ctx
	}
	var includes, excludes []string
	for _, f := range fields {
		if name, ok := strings.CutPrefix(f, query.ExcludeFieldTag); ok {
			excludes = append(excludes, name)
			continue
		}
		includes = append(includes, f)
	}
	if len(includes) > 0 {
		includes = append(includes, uuidSourceInclude)
	} else {
		includes = []string{"*"}
	}
	ctx.Include(includes...)
	if len(excludes) > 0 {
		ctx.Exclude(excludes...)
	}
	return ctx
}

func moreLikeThis(q query.Query) elastic.Query {
	mlt := elastic.NewMoreLikeThisQuery().
		Field(moreLikeThisField).
		MinDocFreq(moreLikeThisMinDocFreq).
		MinTermFreq(moreLikeThisMinTermFreq)
	for _, item := range q.LikeItems() {
		mlt.LikeItems(elastic.NewMoreLikeThisQueryItem().Id(item.Composed()))
	}
	return mlt
}
