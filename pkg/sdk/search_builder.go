package apisearch

import (
	"context"
	"fmt"
	"strconv"

	"github.com/apisearch-io/search-server-sub000/internal/domain/geo"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/filter"
)

// indexedPrefix is where filterable item fields live in the engine.
const indexedPrefix = "indexed_metadata."

// Hit is a typed search result.
type Hit[T any] struct {
	ID         string
	Item       T
	Score      float64
	Distance   *float64 // km, only when sorted by distance
	Highlights map[string][]string
}

// TypedResult is the typed result of one search.
type TypedResult[T any] struct {
	Total        int64
	Hits         []Hit[T]
	Aggregations []*AggregationResult
	Suggestions  []string
}

// SearchBuilder is a fluent builder for typed search queries.
// The first error is kept and returned by Do.
type SearchBuilder[T any] struct {
	idx  *TypedIndex[T]
	text string
	opts []QueryOption
	sort []SortClause

	near      *Coordinate
	page      int
	size      int
	err       error
	filterSeq int
}

// Query sets the free text.
func (b *SearchBuilder[T]) Query(text string) *SearchBuilder[T] {
	b.text = text
	return b
}

// Where requires every value on an indexed field.
func (b *SearchBuilder[T]) Where(field string, values ...any) *SearchBuilder[T] {
	return b.filter(field, values, MustAll)
}

// AnyOf requires at least one value on an indexed field.
func (b *SearchBuilder[T]) AnyOf(field string, values ...any) *SearchBuilder[T] {
	return b.filter(field, values, AtLeastOne)
}

// Exclude rejects items holding any of the values.
func (b *SearchBuilder[T]) Exclude(field string, values ...any) *SearchBuilder[T] {
	return b.filter(field, values, Exclude)
}

// Between keeps items whose indexed field falls within [from, to).
func (b *SearchBuilder[T]) Between(field string, from, to float64) *SearchBuilder[T] {
	r := strconv.FormatFloat(from, 'f', -1, 64) + ".." + strconv.FormatFloat(to, 'f', -1, 64)
	b.add(NewFilter(field, indexedPrefix+field, []any{r}, MustAll, RangeFilter))
	return b
}

// Near keeps items within km of the point and sorts them by distance.
func (b *SearchBuilder[T]) Near(lat, lon, km float64) *SearchBuilder[T] {
	lr := filter.CoordinateAndDistance{
		Coordinate: geo.Coordinate{Lat: lat, Lon: lon},
		Distance:   strconv.FormatFloat(km, 'f', -1, 64) + "km",
	}
	b.add(NewFilter("near", "", []any{lr}, MustAll, GeoFilter))
	b.near = &lr.Coordinate
	return b
}

// SortBy adds a field sort clause.
func (b *SearchBuilder[T]) SortBy(field string, order SortOrder) *SearchBuilder[T] {
	c, err := SortByField(indexedPrefix+field, order)
	if err != nil {
		b.fail(err)
		return b
	}
	b.sort = append(b.sort, c)
	return b
}

// Facet requests a count aggregation over an indexed field.
func (b *SearchBuilder[T]) Facet(field string, limit int) *SearchBuilder[T] {
	a, err := NewAggregation(field, indexedPrefix+field, AtLeastOne, FieldFilter, AggregationSort{}, limit, nil)
	if err != nil {
		b.fail(err)
		return b
	}
	b.opts = append(b.opts, WithAggregation(a))
	return b
}

// Page sets 1-based pagination.
func (b *SearchBuilder[T]) Page(page, size int) *SearchBuilder[T] {
	b.page, b.size = page, size
	return b
}

// Do executes the search and returns typed results.
func (b *SearchBuilder[T]) Do(ctx context.Context) (TypedResult[T], error) {
	if b.err != nil {
		return TypedResult[T]{}, b.err
	}

	opts := append([]QueryOption(nil), b.opts...)
	sort := b.sort
	if b.near != nil {
		c, err := SortByDistance(*b.near, "km")
		if err != nil {
			return TypedResult[T]{}, fmt.Errorf("typed search: %w", err)
		}
		sort = append([]SortClause{c}, sort...)
	}
	if len(sort) > 0 {
		opts = append(opts, WithSortBy(NewSortBy(sort...)))
	}
	opts = append(opts, WithPage(b.page, b.size))

	q, err := NewQuery(b.text, opts...)
	if err != nil {
		return TypedResult[T]{}, fmt.Errorf("typed search: %w", err)
	}

	res, err := b.idx.search(ctx, q)
	if err != nil {
		return TypedResult[T]{}, fmt.Errorf("typed search: %w", err)
	}
	return toTyped[T](res)
}

func (b *SearchBuilder[T]) add(f Filter, err error) {
	if err != nil {
		b.fail(err)
		return
	}
	b.opts = append(b.opts, WithFilter(f))
}

func (b *SearchBuilder[T]) filter(field string, values []any, at ApplicationType) *SearchBuilder[T] {
	b.filterSeq++
	name := field
	if at == Exclude {
		name = fmt.Sprintf("%s_exclude_%d", field, b.filterSeq)
	}
	b.add(NewFilter(name, indexedPrefix+field, values, at, FieldFilter))
	return b
}

func (b *SearchBuilder[T]) fail(err error) {
	if b.err == nil {
		b.err = fmt.Errorf("typed search: %w", err)
	}
}

func toTyped[T any](res *Result) (TypedResult[T], error) {
	out := TypedResult[T]{
		Total:       res.TotalHits(),
		Hits:        make([]Hit[T], 0, len(res.Items())),
		Suggestions: res.Suggestions(),
	}
	for _, it := range res.Items() {
		item, err := decode[T](it.Source())
		if err != nil {
			return TypedResult[T]{}, fmt.Errorf("hit %s: %w", it.ID(), err)
		}
		out.Hits = append(out.Hits, Hit[T]{
			ID:         it.ID(),
			Item:       item,
			Score:      it.Score(),
			Distance:   it.Distance(),
			Highlights: it.Highlights(),
		})
	}
	if aggs := res.Aggregations(); aggs != nil {
		out.Aggregations = aggs.All()
	}
	return out, nil
}
