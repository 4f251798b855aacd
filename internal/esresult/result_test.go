package esresult

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/olivere/elastic/v7"

	"github.com/apisearch-io/search-server-sub000/internal/domain/geo"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/filter"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/query"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/sortby"
)

func searchResult(t *testing.T, raw string) *elastic.SearchResult {
	t.Helper()
	var res elastic.SearchResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return &res
}

func TestResult_Items(t *testing.T) {
	res := searchResult(t, `{
		"hits": {
			"total": {"value": 12, "relation": "eq"},
			"hits": [
				{"_index": "products", "_id": "4~~product", "_score": 2.5,
				 "_source": {"metadata": {"name": "Shoe"}},
				 "highlight": {"searchable_metadata.name": ["<em>Shoe</em>"]}},
				{"_index": "products", "_id": "5~~product", "_source": {}}
			]
		},
		"suggest": {"completion": [{"text": "sh", "offset": 0, "length": 2, "options": [
			{"text": "shoe"}, {"text": "shirt"}, {"text": "shoe"}
		]}]}
	}`)

	r, err := Result(newQuery(t), res)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if r.TotalHits() != 12 {
		t.Errorf("TotalHits() = %d", r.TotalHits())
	}
	items := r.Items()
	if len(items) != 2 {
		t.Fatalf("items = %v", items)
	}
	if items[0].ID() != "4~~product" || items[0].Index() != "products" || items[0].Score() != 2.5 {
		t.Errorf("items[0] = %+v", items[0])
	}
	if name := items[0].Source()["metadata"].(map[string]any)["name"]; name != "Shoe" {
		t.Errorf("source name = %v", name)
	}
	if hl := items[0].Highlights()["searchable_metadata.name"]; len(hl) != 1 || hl[0] != "<em>Shoe</em>" {
		t.Errorf("highlights = %v", items[0].Highlights())
	}
	if items[1].Score() != 0 || items[1].Distance() != nil {
		t.Errorf("items[1] = %+v", items[1])
	}

	if got := r.Suggestions(); len(got) != 2 || got[0] != "shoe" || got[1] != "shirt" {
		t.Errorf("Suggestions() = %v", got)
	}
	if len(r.Aggregations().All()) != 0 {
		t.Errorf("no aggregations were returned: %v", r.Aggregations().All())
	}
}

func TestResult_Distance(t *testing.T) {
	origin := geo.Coordinate{Lat: 41.3874, Lon: 2.1686}
	clause, err := sortby.ByDistance(origin, "")
	if err != nil {
		t.Fatalf("ByDistance: %v", err)
	}
	q := newQuery(t, query.WithSortBy(sortby.New(clause)))

	res := searchResult(t, `{"hits": {"total": {"value": 2}, "hits": [
		{"_id": "1", "_source": {"`+filter.DefaultGeoField+`": {"lat": 40.4168, "lon": -3.7038}}, "sort": [505.1]},
		{"_id": "2", "_source": {}, "sort": [12.5]}
	]}}`)

	r, err := Result(q, res)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	items := r.Items()

	d := items[0].Distance()
	if d == nil {
		t.Fatal("distance missing")
	}
	want := geo.Haversine(origin.Lat, origin.Lon, 40.4168, -3.7038) / 1000
	if math.Abs(*d-want) > 1e-9 {
		t.Errorf("distance = %v, want %v", *d, want)
	}
	if *d < 490 || *d > 520 {
		t.Errorf("Barcelona-Madrid distance = %v km", *d)
	}

	if d := items[1].Distance(); d == nil || *d != 12.5 {
		t.Errorf("sort value fallback = %v", d)
	}
}

func TestResult_DistanceAfterFieldSort(t *testing.T) {
	price, err := sortby.ByField("indexed_metadata.price", sortby.Asc)
	if err != nil {
		t.Fatalf("ByField: %v", err)
	}
	dist, err := sortby.ByDistance(geo.Coordinate{Lat: 41.3874, Lon: 2.1686}, "km")
	if err != nil {
		t.Fatalf("ByDistance: %v", err)
	}
	q := newQuery(t, query.WithSortBy(sortby.New(price, dist)))

	res := searchResult(t, `{"hits": {"total": {"value": 1}, "hits": [
		{"_id": "1", "_source": {}, "sort": [49.9, 3.25]}
	]}}`)

	r, err := Result(q, res)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if d := r.Items()[0].Distance(); d == nil || *d != 3.25 {
		t.Errorf("distance = %v, want the value of the distance sort", d)
	}
}

func TestResult_Aggregations(t *testing.T) {
	q := newQuery(t, newAggregation(t, "color", filter.AtLeastOne, filter.Field))
	res := searchResult(t, `{"hits": {"total": {"value": 3}, "hits": []},
		"aggregations": {"all": {"doc_count": 3, "universe": {"doc_count": 3,
			"color": {"doc_count": 3, "color": {"buckets": [{"key": "red", "doc_count": 3}]}}}}}}`)

	r, err := Result(q, res)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	color, ok := r.Aggregations().Get("color")
	if !ok || len(color.Counters()) != 1 {
		t.Fatalf("aggregations = %+v", r.Aggregations().All())
	}
}

func TestResult_InvalidSource(t *testing.T) {
	res := &elastic.SearchResult{Hits: &elastic.SearchHits{Hits: []*elastic.SearchHit{
		{Id: "1", Source: json.RawMessage(`[1,2]`)},
	}}}
	if _, err := Result(newQuery(t), res); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestResult_Nil(t *testing.T) {
	r, err := Result(query.Query{}, nil)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if r.TotalHits() != 0 || len(r.Items()) != 0 {
		t.Errorf("r = %+v", r)
	}
}
