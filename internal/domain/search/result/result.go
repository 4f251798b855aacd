package result

// Item is a single search hit.
type Item struct {
	id         string
	index      string
	score      float64
	source     map[string]any
	highlights map[string][]string
	distance   *float64
}

// NewItem creates a search hit.
func NewItem(
	id, index string, score float64,
	source map[string]any, highlights map[string][]string,
	distance *float64,
) Item {
	return Item{
		id: id, index: index, score: score,
		source: source, highlights: highlights, distance: distance,
	}
}

// ID returns the document identifier.
func (i *Item) ID() string { return i.id }

// Index returns the engine index the hit came from.
func (i *Item) Index() string { return i.index }

// Score returns the relevance score.
func (i *Item) Score() float64 { return i.score }

// Source returns the stored document.
func (i *Item) Source() map[string]any { return i.source }

// Highlights returns highlighted fragments by field.
func (i *Item) Highlights() map[string][]string { return i.highlights }

// Distance returns the distance in km to the sort origin, if sorted by distance.
func (i *Item) Distance() *float64 { return i.distance }

// Result is the translated engine response for one index.
type Result struct {
	totalHits    int64
	items        []Item
	aggregations *Aggregations
	suggestions  []string
}

// New creates a Result.
func New(totalHits int64, items []Item, aggs *Aggregations, suggestions []string) *Result {
	return &Result{totalHits: totalHits, items: items, aggregations: aggs, suggestions: suggestions}
}

// TotalHits returns the number of matching documents.
func (r *Result) TotalHits() int64 { return r.totalHits }

// Items returns the hits of the requested page.
func (r *Result) Items() []Item { return r.items }

// Aggregations returns the facets, nil when disabled.
func (r *Result) Aggregations() *Aggregations { return r.aggregations }

// Suggestions returns completion suggestions.
func (r *Result) Suggestions() []string { return r.suggestions }
