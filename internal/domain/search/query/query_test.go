package query

import (
	"strings"
	"testing"

	"github.com/apisearch-io/search-server-sub000/internal/domain/search/aggregation"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/filter"
)

func mustFilter(t *testing.T, name string, values ...any) filter.Filter {
	t.Helper()
	f, err := filter.New(name, "indexed_metadata."+name, values, filter.AtLeastOne, filter.Field)
	if err != nil {
		t.Fatalf("filter.New: %v", err)
	}
	return f
}

func TestNew_Defaults(t *testing.T) {
	q, err := New("  shoes ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Text() != "shoes" {
		t.Errorf("Text() = %q", q.Text())
	}
	if q.Page() != DefaultPage || q.Size() != DefaultSize || q.From() != 0 {
		t.Errorf("page=%d size=%d from=%d", q.Page(), q.Size(), q.From())
	}
	f, ok := q.Filter(filter.QueryName)
	if !ok || f.Type() != filter.Query || f.Values()[0] != "shoes" {
		t.Fatalf("query filter = %+v,%v", f, ok)
	}
	if !q.Options().ResultsEnabled || !q.Options().AggregationsEnabled {
		t.Error("results and aggregations enabled by default")
	}
	if !q.SortBy().IsScoreOnly() {
		t.Error("default sort is score")
	}
	if !q.ScoreStrategies().IsEmpty() {
		t.Error("default has no strategies")
	}
	if q.IsSimilarity() {
		t.Error("default is not similarity")
	}
}

func TestNew_FilterOrderAndReplace(t *testing.T) {
	q, err := New("",
		WithFilter(mustFilter(t, "brand", "nike")),
		WithFilter(mustFilter(t, "color", "red")),
		WithFilter(mustFilter(t, "brand", "adidas")),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := q.Filters()
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].Name() != filter.QueryName || got[1].Name() != "brand" || got[2].Name() != "color" {
		t.Errorf("order = %s,%s,%s", got[0].Name(), got[1].Name(), got[2].Name())
	}
	if got[1].Values()[0] != "adidas" {
		t.Errorf("brand not replaced: %v", got[1].Values())
	}
}

func TestNew_Errors(t *testing.T) {
	agg, err := aggregation.New("brand", "indexed_metadata.brand", filter.AtLeastOne, filter.Field,
		aggregation.Sort{}, 0, nil)
	if err != nil {
		t.Fatalf("aggregation.New: %v", err)
	}
	reserved, _ := filter.New(filter.QueryName, "f", nil, filter.MustAll, filter.Field)

	tests := []struct {
		desc    string
		text    string
		opts    []Option
		wantErr string
	}{
		{"too long", strings.Repeat("a", MaxTextLength+1), nil, "too long"},
		{"reserved filter", "", []Option{WithFilter(reserved)}, "reserved"},
		{"universe query filter", "", []Option{WithUniverseFilter(filter.NewQuery("x"))}, "not allowed"},
		{"duplicate aggregation", "", []Option{WithAggregation(agg), WithAggregation(agg)}, "duplicate aggregation"},
		{"empty field", "", []Option{WithFields("title", "!")}, "empty field"},
		{"negative min score", "", []Option{WithMinScore(-1)}, "min_score"},
		{"negative page", "", []Option{WithPage(-1, 10)}, "negative"},
		{"too many suggestions", "", []Option{WithOptions(Options{NumberOfSuggestions: MaxSuggestions + 1})}, "suggestions"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			_, err := New(tt.text, tt.opts...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want contains %q", err, tt.wantErr)
			}
		})
	}
}

func TestNew_Pagination(t *testing.T) {
	q, err := New("", WithPage(3, 20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.From() != 40 || q.Size() != 20 {
		t.Errorf("from=%d size=%d", q.From(), q.Size())
	}
	q, _ = New("", WithPage(0, MaxSize*2))
	if q.Page() != DefaultPage || q.Size() != MaxSize {
		t.Errorf("page=%d size=%d", q.Page(), q.Size())
	}
}

func TestItemUUID(t *testing.T) {
	u, err := ParseItemUUID("4~~product")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != "4" || u.Type != "product" || u.Composed() != "4~~product" {
		t.Errorf("got %+v", u)
	}
	if _, err := ParseItemUUID("~~product"); err == nil {
		t.Error("expected error for missing id")
	}
	if (ItemUUID{ID: "9"}).Composed() != "9" {
		t.Error("untyped uuid composes to its id")
	}
}

func TestFuzziness(t *testing.T) {
	if !NoFuzziness().IsNone() {
		t.Error("NoFuzziness is none")
	}
	s := ScalarFuzziness("AUTO")
	if v, ok := s.For("searchable_metadata.title^3"); !ok || v != "AUTO" {
		t.Errorf("scalar For = %q,%v", v, ok)
	}
	p := PerFieldFuzziness(map[string]string{"searchable_metadata.title": "1"})
	if !p.IsPerField() {
		t.Fatal("expected per-field")
	}
	if v, ok := p.For("searchable_metadata.title^3"); !ok || v != "1" {
		t.Errorf("per-field For = %q,%v", v, ok)
	}
	if _, ok := p.For("searchable_metadata.body"); ok {
		t.Error("undefined field has no fuzziness")
	}
	if !PerFieldFuzziness(nil).IsNone() {
		t.Error("empty map is none")
	}
}
