package esquery

import (
	"encoding/json"
	"testing"

	"github.com/olivere/elastic/v7"

	"github.com/apisearch-io/search-server-sub000/internal/domain/search/aggregation"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/filter"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/query"
)

type sourcer interface {
	Source() (interface{}, error)
}

// render serializes an engine builder and decodes it back into plain maps.
func render(t *testing.T, s sourcer) map[string]any {
	t.Helper()
	raw, err := s.Source()
	if err != nil {
		t.Fatalf("Source(): %v", err)
	}
	b, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal %s: %v", b, err)
	}
	return out
}

func renderJSON(t *testing.T, s sourcer) string {
	t.Helper()
	raw, err := s.Source()
	if err != nil {
		t.Fatalf("Source(): %v", err)
	}
	b, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

// dig walks nested maps by key.
func dig(t *testing.T, v any, path ...string) any {
	t.Helper()
	cur := v
	for i, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			t.Fatalf("path %v: %v is %T, not an object", path[:i+1], path[:i], cur)
		}
		next, ok := m[key]
		if !ok {
			t.Fatalf("path %v: key %q missing in %v", path[:i+1], key, m)
		}
		cur = next
	}
	return cur
}

// has reports whether the object at path contains key.
func has(t *testing.T, v any, key string, path ...string) bool {
	t.Helper()
	m, ok := dig(t, v, path...).(map[string]any)
	if !ok {
		t.Fatalf("path %v is not an object", path)
	}
	_, found := m[key]
	return found
}

// clauses normalizes a bool clause, rendered as object when single.
func clauses(v any) []any {
	switch c := v.(type) {
	case nil:
		return nil
	case []any:
		return c
	default:
		return []any{c}
	}
}

func mustQuery(t *testing.T, text string, opts ...query.Option) query.Query {
	t.Helper()
	q, err := query.New(text, opts...)
	if err != nil {
		t.Fatalf("query.New: %v", err)
	}
	return q
}

func mustFilter(t *testing.T, name, field string, at filter.ApplicationType, ft filter.Type, values ...any) filter.Filter {
	t.Helper()
	f, err := filter.New(name, field, values, at, ft)
	if err != nil {
		t.Fatalf("filter.New: %v", err)
	}
	return f
}

func mustAggregation(t *testing.T, name, field string, at filter.ApplicationType, ft filter.Type, subgroup ...string) aggregation.Aggregation {
	t.Helper()
	a, err := aggregation.New(name, field, at, ft, aggregation.Sort{}, aggregation.NoLimit, subgroup)
	if err != nil {
		t.Fatalf("aggregation.New: %v", err)
	}
	return a
}

func compile(t *testing.T, q query.Query, opts ...Option) map[string]any {
	t.Helper()
	src, err := New(opts...).Compile(q)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return render(t, src)
}

func fixedSeed() int64 { return 42 }

var _ sourcer = (*elastic.SearchSource)(nil)
