package query

import (
	"fmt"
	"strings"

	"github.com/apisearch-io/search-server-sub000/internal/domain/search/aggregation"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/filter"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/score"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/sortby"
)

// Query limits.
const (
	// MaxTextLength is the maximum allowed free-text length.
	MaxTextLength   = 4096
	DefaultPage     = 1
	DefaultSize     = 10
	MaxSize         = 1000
	MaxLikeItems    = 100
	MaxSuggestions  = 50
	ExcludeFieldTag = "!"
)

// Options carries per-query feature flags.
type Options struct {
	ResultsEnabled      bool
	AggregationsEnabled bool
	HighlightEnabled    bool
	SuggestionsEnabled  bool
	NumberOfSuggestions int
	// ExactMatchingFuzzy allows fuzzy matches on the exact-matching field.
	ExactMatchingFuzzy bool
}

// DefaultOptions returns results and aggregations enabled, nothing else.
func DefaultOptions() Options {
	return Options{
		ResultsEnabled:      true,
		AggregationsEnabled: true,
		NumberOfSuggestions: 10,
	}
}

// ItemUUID references an indexed item.
type ItemUUID struct {
	ID   string
	Type string
}

// Composed returns the engine document id, "id~~type".
func (u ItemUUID) Composed() string {
	if u.Type == "" {
		return u.ID
	}
	return u.ID + "~~" + u.Type
}

// ParseItemUUID reads "id~~type".
func ParseItemUUID(s string) (ItemUUID, error) {
	id, typ, _ := strings.Cut(s, "~~")
	if id == "" {
		return ItemUUID{}, fmt.Errorf("item uuid %q: id is required", s)
	}
	return ItemUUID{ID: id, Type: typ}, nil
}

// Query is a validated domain search query. It is immutable after New.
type Query struct {
	text             string
	filters          []filter.Filter
	universeFilters  []filter.Filter
	aggregations     []aggregation.Aggregation
	fields           []string
	sortBy           sortby.SortBy
	scoreStrategies  score.Strategies
	fuzziness        Fuzziness
	minScore         float64
	searchableFields []string
	likeItems        []ItemUUID
	options          Options
	page             int
	size             int
}

// Option configures a Query under construction.
type Option func(*Query) error

// New validates and creates a Query for text. The free-text filter is
// always registered first under filter.QueryName.
func New(text string, opts ...Option) (Query, error) {
	text = strings.TrimSpace(text)
	if len(text) > MaxTextLength {
		return Query{}, fmt.Errorf("query too long (max %d chars)", MaxTextLength)
	}
	q := Query{
		text:    text,
		filters: []filter.Filter{filter.NewQuery(text)},
		sortBy:  sortby.New(sortby.ByScore()),
		options: DefaultOptions(),
		page:    DefaultPage,
		size:    DefaultSize,
	}
	q.scoreStrategies, _ = score.NewStrategies(score.Sum)
	for _, opt := range opts {
		if err := opt(&q); err != nil {
			return Query{}, err
		}
	}
	return q, nil
}

// WithFilter adds or replaces a result filter by name.
func WithFilter(f filter.Filter) Option {
	return func(q *Query) error {
		if f.Name() == filter.QueryName {
			return fmt.Errorf("filter name %q is reserved", filter.QueryName)
		}
		q.filters = upsert(q.filters, f)
		return nil
	}
}

// WithUniverseFilter adds or replaces a universe filter by name.
func WithUniverseFilter(f filter.Filter) Option {
	return func(q *Query) error {
		if f.Type() == filter.Query {
			return fmt.Errorf("universe filter %q: query filters are not allowed", f.Name())
		}
		q.universeFilters = upsert(q.universeFilters, f)
		return nil
	}
}

func upsert(filters []filter.Filter, f filter.Filter) []filter.Filter {
	for i := range filters {
		if filters[i].Name() == f.Name() {
			filters[i] = f
			return filters
		}
	}
	return append(filters, f)
}

// WithAggregation adds an aggregation. Names must be unique.
func WithAggregation(a aggregation.Aggregation) Option {
	return func(q *Query) error {
		for _, existing := range q.aggregations {
			if existing.Name() == a.Name() {
				return fmt.Errorf("duplicate aggregation %q", a.Name())
			}
		}
		q.aggregations = append(q.aggregations, a)
		return nil
	}
}

// WithFields selects returned source fields; "!field" excludes.
func WithFields(fields ...string) Option {
	return func(q *Query) error {
		for _, f := range fields {
			if strings.TrimPrefix(f, ExcludeFieldTag) == "" {
				return fmt.Errorf("empty field selector")
			}
		}
		q.fields = append([]string(nil), fields...)
		return nil
	}
}

// WithSortBy sets the sort order.
func WithSortBy(s sortby.SortBy) Option {
	return func(q *Query) error {
		q.sortBy = s
		return nil
	}
}

// WithScoreStrategies sets the scoring pipeline.
func WithScoreStrategies(s score.Strategies) Option {
	return func(q *Query) error {
		q.scoreStrategies = s
		return nil
	}
}

// WithFuzziness sets the free-text fuzziness.
func WithFuzziness(f Fuzziness) Option {
	return func(q *Query) error {
		q.fuzziness = f
		return nil
	}
}

// WithMinScore sets the relevance threshold applied to free-text queries.
func WithMinScore(minScore float64) Option {
	return func(q *Query) error {
		if minScore < 0 {
			return fmt.Errorf("min_score must not be negative")
		}
		q.minScore = minScore
		return nil
	}
}

// WithSearchableFields overrides the fields free text is matched against.
func WithSearchableFields(fields ...string) Option {
	return func(q *Query) error {
		q.searchableFields = append([]string(nil), fields...)
		return nil
	}
}

// WithLikeItems turns the query into a similarity search.
func WithLikeItems(items ...ItemUUID) Option {
	return func(q *Query) error {
		if len(items) > MaxLikeItems {
			return fmt.Errorf("too many like items (max %d)", MaxLikeItems)
		}
		q.likeItems = append([]ItemUUID(nil), items...)
		return nil
	}
}

// WithOptions sets feature flags.
func WithOptions(o Options) Option {
	return func(q *Query) error {
		if o.NumberOfSuggestions < 0 || o.NumberOfSuggestions > MaxSuggestions {
			return fmt.Errorf("number of suggestions must be between 0 and %d", MaxSuggestions)
		}
		q.options = o
		return nil
	}
}

// WithPage sets 1-based pagination. Zero values keep defaults.
func WithPage(page, size int) Option {
	return func(q *Query) error {
		if page < 0 || size < 0 {
			return fmt.Errorf("page and size must not be negative")
		}
		if page > 0 {
			q.page = page
		}
		if size > 0 {
			q.size = min(size, MaxSize)
		}
		return nil
	}
}

// Text returns the free text.
func (q Query) Text() string { return q.text }

// Filters returns the result filters in insertion order.
func (q Query) Filters() []filter.Filter { return q.filters }

// Filter returns the result filter named name.
func (q Query) Filter(name string) (filter.Filter, bool) {
	for _, f := range q.filters {
		if f.Name() == name {
			return f, true
		}
	}
	return filter.Filter{}, false
}

// UniverseFilters returns the universe filters in insertion order.
func (q Query) UniverseFilters() []filter.Filter { return q.universeFilters }

// Aggregations returns the aggregations in insertion order.
func (q Query) Aggregations() []aggregation.Aggregation { return q.aggregations }

// Aggregation returns the aggregation named name.
func (q Query) Aggregation(name string) (aggregation.Aggregation, bool) {
	for _, a := range q.aggregations {
		if a.Name() == name {
			return a, true
		}
	}
	return aggregation.Aggregation{}, false
}

// Fields returns the field selectors.
func (q Query) Fields() []string { return q.fields }

// SortBy returns the sort order.
func (q Query) SortBy() sortby.SortBy { return q.sortBy }

// ScoreStrategies returns the scoring pipeline.
func (q Query) ScoreStrategies() score.Strategies { return q.scoreStrategies }

// Fuzziness returns the free-text fuzziness.
func (q Query) Fuzziness() Fuzziness { return q.fuzziness }

// MinScore returns the relevance threshold.
func (q Query) MinScore() float64 { return q.minScore }

// SearchableFields returns the searchable field override.
func (q Query) SearchableFields() []string { return q.searchableFields }

// LikeItems returns the similarity references.
func (q Query) LikeItems() []ItemUUID { return q.likeItems }

// IsSimilarity reports whether this is a more-like-this query.
func (q Query) IsSimilarity() bool { return len(q.likeItems) > 0 }

// Options returns feature flags.
func (q Query) Options() Options { return q.options }

// Page returns the 1-based page.
func (q Query) Page() int { return q.page }

// Size returns the page size.
func (q Query) Size() int { return q.size }

// From returns the offset of the first hit.
func (q Query) From() int { return (q.page - 1) * q.size }
