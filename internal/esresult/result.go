package esresult

import (
	"encoding/json"
	"fmt"

	"github.com/olivere/elastic/v7"
	"github.com/spf13/cast"

	"github.com/apisearch-io/search-server-sub000/internal/domain/geo"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/filter"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/query"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/result"
	"github.com/apisearch-io/search-server-sub000/internal/esquery"
)

// Result converts an engine response for q into the domain result.
func Result(q query.Query, res *elastic.SearchResult) (*result.Result, error) {
	if res == nil {
		return result.New(0, nil, result.NewAggregations(0), nil), nil
	}

	var items []result.Item
	if res.Hits != nil {
		origin, byDistance := q.SortBy().DistanceOrigin()
		pos, _ := q.SortBy().DistancePosition()
		items = make([]result.Item, 0, len(res.Hits.Hits))
		for _, hit := range res.Hits.Hits {
			item, err := toItem(hit, origin, pos, byDistance)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
	}

	aggs := result.NewAggregations(0)
	if len(res.Aggregations) > 0 {
		aggs = Assemble(q, res.Aggregations)
	}

	return result.New(res.TotalHits(), items, aggs, suggestions(res)), nil
}

func toItem(hit *elastic.SearchHit, origin geo.Coordinate, pos int, byDistance bool) (result.Item, error) {
	var source map[string]any
	if len(hit.Source) > 0 {
		if err := json.Unmarshal(hit.Source, &source); err != nil {
			return result.Item{}, fmt.Errorf("decode hit %s: %w", hit.Id, err)
		}
	}

	score := 0.0
	if hit.Score != nil {
		score = *hit.Score
	}

	var distance *float64
	if byDistance {
		distance = hitDistance(hit, source, origin, pos)
	}

	return result.NewItem(hit.Id, hit.Index, score, source, hit.Highlight, distance), nil
}

// hitDistance returns the km distance between origin and the document
// coordinate, falling back to the sort value at pos, in the sort unit, when
// the coordinate was not fetched.
func hitDistance(hit *elastic.SearchHit, source map[string]any, origin geo.Coordinate, pos int) *float64 {
	if raw, ok := source[filter.DefaultGeoField].(map[string]any); ok {
		lat, errLat := cast.ToFloat64E(raw["lat"])
		lon, errLon := cast.ToFloat64E(raw["lon"])
		if errLat == nil && errLon == nil {
			km := geo.Haversine(origin.Lat, origin.Lon, lat, lon) / 1000
			return &km
		}
	}
	if pos < len(hit.Sort) {
		if d, err := cast.ToFloat64E(hit.Sort[pos]); err == nil {
			return &d
		}
	}
	return nil
}

// suggestions returns the distinct completion texts in engine order.
func suggestions(res *elastic.SearchResult) []string {
	entries, ok := res.Suggest[esquery.SuggestionName]
	if !ok {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, entry := range entries {
		for _, opt := range entry.Options {
			if _, dup := seen[opt.Text]; dup {
				continue
			}
			seen[opt.Text] = struct{}{}
			out = append(out, opt.Text)
		}
	}
	return out
}
