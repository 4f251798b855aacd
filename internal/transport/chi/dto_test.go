package chi

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/apisearch-io/search-server-sub000/internal/domain"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/aggregation"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/filter"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/score"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/sortby"
)

var testPagination = pagination{defaultSize: 10, maxSize: 100}

func decodeRequest(t *testing.T, raw string) SearchRequest {
	t.Helper()
	var req SearchRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return req
}

func TestToQuery_Full(t *testing.T) {
	req := decodeRequest(t, `{
		"q": "  running shoes ",
		"page": 2,
		"size": 20,
		"fields": ["metadata.name", "!metadata.secret"],
		"filters": [
			{"name": "color", "field": "indexed_metadata.color", "values": ["red", "blue"], "application_type": "at_least_one"},
			{"name": "price", "field": "indexed_metadata.price", "values": ["0..100", 200], "filter_type": "range"},
			{"name": "near", "filter_type": "geo", "values": [
				{"type": "CoordinateAndDistance", "data": {"coordinate": {"lat": 41.38, "lon": 2.17}, "distance": "10km"}}
			]}
		],
		"universe_filters": [{"name": "brand", "field": "indexed_metadata.brand", "values": ["acme"]}],
		"aggregations": [{"name": "color", "field": "indexed_metadata.color", "application_type": "at_least_one", "sort": "name_asc", "limit": 5}],
		"sort": [
			{"type": "field", "field": "indexed_metadata.price", "order": "asc"},
			{"type": "distance", "coordinate": {"lat": 41.38, "lon": 2.17}},
			{"type": "score"}
		],
		"score_strategies": {"mode": "multiply", "strategies": [
			{"type": "boosting_field_value", "configuration": {"field": "indexed_metadata.popularity", "factor": 1.2}},
			{"type": "weight", "weight": 3, "filters": [{"name": "promo", "field": "indexed_metadata.promo", "values": [true]}], "match_main_query": false}
		]},
		"fuzziness": "AUTO",
		"min_score": 0.5,
		"searchable_fields": ["searchable_metadata.name"],
		"options": {"highlight_enabled": true, "number_of_suggestions": 5}
	}`)

	q, err := req.toQuery(testPagination)
	if err != nil {
		t.Fatalf("toQuery: %v", err)
	}

	if q.Text() != "running shoes" {
		t.Errorf("Text() = %q", q.Text())
	}
	if q.Page() != 2 || q.Size() != 20 || q.From() != 20 {
		t.Errorf("page=%d size=%d from=%d", q.Page(), q.Size(), q.From())
	}
	if len(q.Fields()) != 2 {
		t.Errorf("Fields() = %v", q.Fields())
	}

	color, ok := q.Filter("color")
	if !ok || color.ApplicationType() != filter.AtLeastOne || len(color.Values()) != 2 {
		t.Errorf("color filter = %+v", color)
	}
	price, _ := q.Filter("price")
	if v := price.Values(); len(v) != 2 || v[1] != "200" {
		t.Errorf("range values = %v", v)
	}
	near, _ := q.Filter("near")
	if near.Field() != filter.DefaultGeoField {
		t.Errorf("geo field = %q", near.Field())
	}
	if _, ok := near.Values()[0].(filter.CoordinateAndDistance); !ok {
		t.Errorf("geo value = %T", near.Values()[0])
	}
	if len(q.UniverseFilters()) != 1 {
		t.Errorf("UniverseFilters() = %v", q.UniverseFilters())
	}

	agg, ok := q.Aggregation("color")
	if !ok || agg.Sort() != aggregation.SortByNameAsc || agg.Limit() != 5 {
		t.Errorf("aggregation = %+v", agg)
	}

	clauses := q.SortBy().Clauses()
	if len(clauses) != 3 {
		t.Fatalf("clauses = %v", clauses)
	}
	if clauses[0].Kind() != sortby.Field || !clauses[0].IsAsc() {
		t.Errorf("clauses[0] = %+v", clauses[0])
	}
	if clauses[1].Kind() != sortby.Distance || clauses[1].Unit() != sortby.DefaultDistanceUnit {
		t.Errorf("clauses[1] = %+v", clauses[1])
	}

	strategies := q.ScoreStrategies()
	if strategies.Mode() != score.Multiply || len(strategies.All()) != 2 {
		t.Fatalf("strategies = %+v", strategies)
	}
	if len(strategies.Independent()) != 1 {
		t.Errorf("Independent() = %v", strategies.Independent())
	}

	if s, ok := q.Fuzziness().Scalar(); !ok || s != "AUTO" {
		t.Errorf("Fuzziness() = %+v", q.Fuzziness())
	}
	if q.MinScore() != 0.5 {
		t.Errorf("MinScore() = %v", q.MinScore())
	}
	if len(q.SearchableFields()) != 1 {
		t.Errorf("SearchableFields() = %v", q.SearchableFields())
	}

	opts := q.Options()
	if !opts.HighlightEnabled || opts.NumberOfSuggestions != 5 || !opts.ResultsEnabled || !opts.AggregationsEnabled {
		t.Errorf("Options() = %+v", opts)
	}
}

func TestToQuery_Pagination(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantPage int
		wantSize int
	}{
		{"defaults", `{}`, 1, 10},
		{"explicit", `{"page": 3, "size": 25}`, 3, 25},
		{"clamped to max", `{"size": 5000}`, 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := decodeRequest(t, tt.raw).toQuery(testPagination)
			if err != nil {
				t.Fatalf("toQuery: %v", err)
			}
			if q.Page() != tt.wantPage || q.Size() != tt.wantSize {
				t.Errorf("page=%d size=%d, want %d/%d", q.Page(), q.Size(), tt.wantPage, tt.wantSize)
			}
		})
	}
}

func TestToQuery_FuzzinessPerField(t *testing.T) {
	q, err := decodeRequest(t, `{"q": "x", "fuzziness": {"searchable_metadata.name": 1, "searchable_metadata.brand": "AUTO"}}`).
		toQuery(testPagination)
	if err != nil {
		t.Fatalf("toQuery: %v", err)
	}
	f := q.Fuzziness()
	if !f.IsPerField() {
		t.Fatalf("Fuzziness() = %+v", f)
	}
	if v, ok := f.For("searchable_metadata.name"); !ok || v != "1" {
		t.Errorf("name fuzziness = %q", v)
	}
}

func TestToQuery_LikeItems(t *testing.T) {
	q, err := decodeRequest(t, `{"like": ["1~~product", "2"]}`).toQuery(testPagination)
	if err != nil {
		t.Fatalf("toQuery: %v", err)
	}
	items := q.LikeItems()
	if !q.IsSimilarity() || len(items) != 2 {
		t.Fatalf("LikeItems() = %v", items)
	}
	if items[0].ID != "1" || items[0].Type != "product" || items[1].Type != "" {
		t.Errorf("items = %+v", items)
	}
}

func TestToQuery_FilterTerms(t *testing.T) {
	raw := `{"filters": [{
		"name": "category",
		"field": "indexed_metadata.category",
		"values": ["1"],
		"application_type": "must_all_with_levels",
		"filter_terms": {"field": "indexed_metadata.category.level", "value": 2}
	}]}`

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	var req SearchRequest
	if err := dec.Decode(&req); err != nil {
		t.Fatalf("decode: %v", err)
	}

	q, err := req.toQuery(testPagination)
	if err != nil {
		t.Fatalf("toQuery: %v", err)
	}
	f, ok := q.Filter("category")
	if !ok {
		t.Fatal("category filter missing")
	}
	terms, ok := f.Terms()
	if !ok {
		t.Fatal("filter terms were dropped")
	}
	if terms.Field != "indexed_metadata.category.level" || terms.Value != float64(2) {
		t.Errorf("terms = %+v", terms)
	}
	if f.ApplicationType() != filter.MustAllWithLevels {
		t.Errorf("application type = %q", f.ApplicationType())
	}
}

func TestToQuery_Errors(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantField string
	}{
		{"filter without field", `{"filters": [{"name": "color", "values": ["red"]}]}`, "filters[0]"},
		{"bad application type", `{"filters": [{"name": "c", "field": "f", "application_type": "sometimes"}]}`, "filters[0]"},
		{"bad geo payload", `{"filters": [{"name": "g", "filter_type": "geo", "values": [{"type": "Circle", "data": {}}]}]}`, "filters[0]"},
		{"geo value not an object", `{"filters": [{"name": "g", "filter_type": "geo", "values": [3]}]}`, "filters[0]"},
		{"filter terms without field", `{"filters": [{"name": "c", "field": "f", "filter_terms": {"value": 2}}]}`, "filters[0]"},
		{"bad universe filter", `{"universe_filters": [{"name": ""}]}`, "universe_filters[0]"},
		{"unknown aggregation sort", `{"aggregations": [{"name": "a", "field": "f", "sort": "random"}]}`, "aggregations[0]"},
		{"unknown sort type", `{"sort": [{"type": "popularity"}]}`, "sort[0]"},
		{"distance without coordinate", `{"sort": [{"type": "distance"}]}`, "sort[0]"},
		{"nested without container", `{"sort": [{"type": "nested", "field": "price"}]}`, "sort[0]"},
		{"bad strategy", `{"score_strategies": {"strategies": [{"type": "decay"}]}}`, "score_strategies"},
		{"bad fuzziness", `{"fuzziness": [1, 2]}`, "fuzziness"},
		{"bad like item", `{"like": ["~~product"]}`, "like"},
		{"negative page", `{"page": -1}`, "page"},
		{"negative min score", `{"min_score": -1}`, "query"},
		{"too many suggestions", `{"options": {"number_of_suggestions": 500}}`, "query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeRequest(t, tt.raw).toQuery(testPagination)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, domain.ErrInvalidQuery) {
				t.Errorf("error %v is not ErrInvalidQuery", err)
			}
			var ve *domain.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.wantField {
				t.Errorf("field = %v, want %q", ve, tt.wantField)
			}
		})
	}
}
