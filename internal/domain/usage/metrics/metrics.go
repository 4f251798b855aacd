package metrics

// Metrics holds search traffic of one app for a time period.
type Metrics struct {
	searches int64
	indices  int64
	hits     int64
}

// New creates a Metrics snapshot.
func New(searches, indices, hits int64) Metrics {
	return Metrics{searches: searches, indices: indices, hits: hits}
}

// Searches returns the number of search requests.
func (m Metrics) Searches() int64 { return m.searches }

// Indices returns the number of per-index engine queries issued.
func (m Metrics) Indices() int64 { return m.indices }

// Hits returns the total number of matching documents reported.
func (m Metrics) Hits() int64 { return m.hits }

// Add returns the sum of m and o.
func (m Metrics) Add(o Metrics) Metrics {
	return Metrics{
		searches: m.searches + o.searches,
		indices:  m.indices + o.indices,
		hits:     m.hits + o.hits,
	}
}
