package searchcache

import (
	"context"
	"testing"
	"time"

	"github.com/olivere/elastic/v7"
	"go.uber.org/zap"

	"github.com/apisearch-io/search-server-sub000/internal/db"
)

type mockSearcher struct {
	result *elastic.SearchResult
	err    error
	calls  int
	index  string
}

func (m *mockSearcher) Search(_ context.Context, index string, _ *elastic.SearchSource) (*elastic.SearchResult, error) {
	m.calls++
	m.index = index
	return m.result, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

// memStore is a map-backed store for round-trip tests.
type memStore struct {
	data map[string][]byte
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func newTestCachedSearcher(t *testing.T, inner *mockSearcher) (*CachedSearcher, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	return New(inner, ms, time.Minute, "", nil, zap.NewNop()), ms
}

func engineResult(ids ...string) *elastic.SearchResult {
	hits := make([]*elastic.SearchHit, 0, len(ids))
	for _, id := range ids {
		hits = append(hits, &elastic.SearchHit{Id: id, Index: "products"})
	}
	return &elastic.SearchResult{Hits: &elastic.SearchHits{
		TotalHits: &elastic.TotalHits{Value: int64(len(ids)), Relation: "eq"},
		Hits:      hits,
	}}
}

func source(text string) *elastic.SearchSource {
	return elastic.NewSearchSource().Query(elastic.NewMultiMatchQuery(text, "searchable_metadata.*"))
}
