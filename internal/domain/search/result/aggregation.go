package result

import (
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/filter"
)

// Aggregation is the result of one requested facet.
type Aggregation struct {
	name            string
	applicationType filter.ApplicationType
	totalElements   int64
	activeElements  []string
	metadata        map[string]any
	counters        []Counter
	index           map[string]int
	// used counters of a leveled aggregation, kept apart for level pruning
	selected []Counter
}

// NewAggregation creates an empty aggregation result.
func NewAggregation(name string, at filter.ApplicationType, totalElements int64, activeElements []string) *Aggregation {
	return &Aggregation{
		name:            name,
		applicationType: at,
		totalElements:   totalElements,
		activeElements:  activeElements,
		metadata:        make(map[string]any),
		index:           make(map[string]int),
	}
}

// AddCounter records a bucket. Zero counts are ignored. For leveled
// aggregations the active elements are set aside instead of reported.
func (a *Aggregation) AddCounter(key string, count int64) {
	if count == 0 {
		return
	}
	c := NewCounter(key, count, a.activeElements)
	if a.applicationType.IsLeveled() && c.Used() {
		a.selected = append(a.selected, c)
		return
	}
	if i, ok := a.index[key]; ok {
		a.counters[i] = c
		return
	}
	a.index[key] = len(a.counters)
	a.counters = append(a.counters, c)
}

// CleanByLevel keeps only counters one level below the deepest selected
// one. Without selection only first-level counters remain.
func (a *Aggregation) CleanByLevel() {
	deepest := 0
	for _, c := range a.selected {
		if l := c.Level(); l > deepest {
			deepest = l
		}
	}
	next := deepest + 1

	kept := a.counters[:0]
	index := make(map[string]int, len(a.counters))
	for _, c := range a.counters {
		if c.Level() != next {
			continue
		}
		index[c.key] = len(kept)
		kept = append(kept, c)
	}
	a.counters = kept
	a.index = index
}

// SetMetadata records a metadata value such as min or max.
func (a *Aggregation) SetMetadata(key string, value any) { a.metadata[key] = value }

// Name returns the aggregation name.
func (a *Aggregation) Name() string { return a.name }

// ApplicationType returns the application type.
func (a *Aggregation) ApplicationType() filter.ApplicationType { return a.applicationType }

// TotalElements returns the document count in scope.
func (a *Aggregation) TotalElements() int64 { return a.totalElements }

// ActiveElements returns the values of the same-named filter.
func (a *Aggregation) ActiveElements() []string { return a.activeElements }

// Metadata returns the metadata map.
func (a *Aggregation) Metadata() map[string]any { return a.metadata }

// Counters returns the reported counters in bucket order.
func (a *Aggregation) Counters() []Counter { return a.counters }

// Counter returns the counter for key.
func (a *Aggregation) Counter(key string) (Counter, bool) {
	i, ok := a.index[key]
	if !ok {
		return Counter{}, false
	}
	return a.counters[i], true
}

// IsFiltered reports whether any value of this facet is selected.
func (a *Aggregation) IsFiltered() bool { return len(a.activeElements) > 0 }

// Aggregations is the faceting result of a query.
type Aggregations struct {
	totalElements int64
	aggregations  []*Aggregation
}

// NewAggregations creates an empty result with the universe doc count.
func NewAggregations(totalElements int64) *Aggregations {
	return &Aggregations{totalElements: totalElements}
}

// Add appends an aggregation result.
func (a *Aggregations) Add(agg *Aggregation) { a.aggregations = append(a.aggregations, agg) }

// TotalElements returns the universe doc count.
func (a *Aggregations) TotalElements() int64 { return a.totalElements }

// All returns every aggregation in order.
func (a *Aggregations) All() []*Aggregation { return a.aggregations }

// Get returns the aggregation named name.
func (a *Aggregations) Get(name string) (*Aggregation, bool) {
	for _, agg := range a.aggregations {
		if agg.name == name {
			return agg, true
		}
	}
	return nil, false
}
