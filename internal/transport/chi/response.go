package chi

import (
	"time"

	"github.com/apisearch-io/search-server-sub000/internal/domain/search/result"
	domusage "github.com/apisearch-io/search-server-sub000/internal/domain/usage"
)

// SearchResponse carries one result per requested index, in request order.
type SearchResponse struct {
	Results []IndexResult `json:"results"`
}

// IndexResult is the result of one index.
type IndexResult struct {
	Index        string               `json:"index"`
	TotalHits    int64                `json:"total_hits"`
	Items        []ItemResponse       `json:"items"`
	Aggregations AggregationsResponse `json:"aggregations"`
	Suggestions  []string             `json:"suggestions,omitempty"`
}

// ItemResponse is one hit.
type ItemResponse struct {
	ID         string              `json:"id"`
	Index      string              `json:"index,omitempty"`
	Score      float64             `json:"score"`
	Source     map[string]any      `json:"source"`
	Highlights map[string][]string `json:"highlights,omitempty"`
	Distance   *float64            `json:"distance,omitempty"`
}

// AggregationsResponse lists facets in the order they were requested.
type AggregationsResponse struct {
	TotalElements int64                 `json:"total_elements"`
	Items         []AggregationResponse `json:"items"`
}

// AggregationResponse is one facet.
type AggregationResponse struct {
	Name            string            `json:"name"`
	ApplicationType string            `json:"application_type"`
	TotalElements   int64             `json:"total_elements"`
	ActiveElements  []string          `json:"active_elements,omitempty"`
	Metadata        map[string]any    `json:"metadata,omitempty"`
	Counters        []CounterResponse `json:"counters"`
}

// CounterResponse is one bucket of a facet.
type CounterResponse struct {
	Key    string            `json:"key"`
	Values map[string]string `json:"values"`
	Level  int               `json:"level"`
	Count  int64             `json:"count"`
	Used   bool              `json:"used"`
}

// UsageResponse is the body of GET /v1/apps/{app}/usage.
type UsageResponse struct {
	App           string        `json:"app"`
	Period        string        `json:"period"`
	PeriodStartAt time.Time     `json:"period_start_at"`
	PeriodEndAt   time.Time     `json:"period_end_at"`
	Usage         UsageCounters `json:"usage"`
}

// UsageCounters are the metered totals of a period.
type UsageCounters struct {
	Searches int64 `json:"searches"`
	Indices  int64 `json:"indices"`
	Hits     int64 `json:"hits"`
}

// HealthResponse is the body of GET /health and GET /ready.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

func resultToResponse(index string, r *result.Result) IndexResult {
	out := IndexResult{
		Index:       index,
		TotalHits:   r.TotalHits(),
		Items:       make([]ItemResponse, 0, len(r.Items())),
		Suggestions: r.Suggestions(),
	}
	for _, it := range r.Items() {
		out.Items = append(out.Items, ItemResponse{
			ID:         it.ID(),
			Index:      it.Index(),
			Score:      it.Score(),
			Source:     it.Source(),
			Highlights: it.Highlights(),
			Distance:   it.Distance(),
		})
	}

	out.Aggregations.Items = []AggregationResponse{}
	if aggs := r.Aggregations(); aggs != nil {
		out.Aggregations.TotalElements = aggs.TotalElements()
		for _, a := range aggs.All() {
			out.Aggregations.Items = append(out.Aggregations.Items, aggregationToResponse(a))
		}
	}
	return out
}

func aggregationToResponse(a *result.Aggregation) AggregationResponse {
	resp := AggregationResponse{
		Name:            a.Name(),
		ApplicationType: string(a.ApplicationType()),
		TotalElements:   a.TotalElements(),
		ActiveElements:  a.ActiveElements(),
		Metadata:        a.Metadata(),
		Counters:        make([]CounterResponse, 0, len(a.Counters())),
	}
	for _, c := range a.Counters() {
		resp.Counters = append(resp.Counters, CounterResponse{
			Key:    c.Key(),
			Values: c.Values(),
			Level:  c.Level(),
			Count:  c.Count(),
			Used:   c.Used(),
		})
	}
	return resp
}

func usageToResponse(r domusage.Report) UsageResponse {
	return UsageResponse{
		App:           r.App(),
		Period:        string(r.Period()),
		PeriodStartAt: time.UnixMilli(r.PeriodStart()).UTC(),
		PeriodEndAt:   time.UnixMilli(r.PeriodEnd()).UTC(),
		Usage: UsageCounters{
			Searches: r.Metrics().Searches(),
			Indices:  r.Metrics().Indices(),
			Hits:     r.Metrics().Hits(),
		},
	}
}
