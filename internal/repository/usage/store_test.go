package usage

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/apisearch-io/search-server-sub000/internal/db"
	domusage "github.com/apisearch-io/search-server-sub000/internal/domain/usage"
	"github.com/apisearch-io/search-server-sub000/internal/domain/usage/metrics"
)

// mockKVStore is an in-memory counter store that records TTL calls.
type mockKVStore struct {
	counters map[string]int64
	ttls     map[string]time.Duration
	raw      map[string][]byte
	incrErr  error
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{
		counters: map[string]int64{},
		ttls:     map[string]time.Duration{},
		raw:      map[string][]byte{},
	}
}

func (m *mockKVStore) Get(_ context.Context, key string) ([]byte, error) {
	if v, ok := m.raw[key]; ok {
		return v, nil
	}
	v, ok := m.counters[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return []byte(strconv.FormatInt(v, 10)), nil
}

func (m *mockKVStore) IncrBy(_ context.Context, key string, val int64) error {
	if m.incrErr != nil {
		return m.incrErr
	}
	m.counters[key] += val
	return nil
}

func (m *mockKVStore) Expire(_ context.Context, key string, ttl time.Duration, nx bool) error {
	if _, ok := m.ttls[key]; ok && nx {
		return nil
	}
	m.ttls[key] = ttl
	return nil
}

var at = time.Date(2024, time.February, 29, 12, 0, 0, 0, time.UTC)

func TestStore_AddAndGet(t *testing.T) {
	kv := newMockKVStore()
	s := New(kv, 48*time.Hour, 62*24*time.Hour)
	ctx := context.Background()

	if err := s.Add(ctx, "shop", at, metrics.New(1, 2, 30)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add(ctx, "shop", at.Add(time.Hour), metrics.New(1, 1, 5)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	for _, p := range []domusage.Period{domusage.PeriodDay, domusage.PeriodMonth} {
		m, err := s.Get(ctx, "shop", p, at)
		if err != nil {
			t.Fatalf("Get(%s): %v", p, err)
		}
		if m.Searches() != 2 || m.Indices() != 3 || m.Hits() != 35 {
			t.Errorf("%s metrics = %+v", p, m)
		}
	}
}

func TestStore_Keys(t *testing.T) {
	kv := newMockKVStore()
	s := New(kv, 48*time.Hour, 62*24*time.Hour)

	if err := s.Add(context.Background(), "shop", at, metrics.New(1, 0, 0)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	daily := "apisearch:usage:shop:daily:2024-02-29:searches"
	monthly := "apisearch:usage:shop:monthly:2024-02:searches"
	if kv.counters[daily] != 1 || kv.counters[monthly] != 1 {
		t.Fatalf("counters = %v", kv.counters)
	}
	if kv.ttls[daily] != 48*time.Hour {
		t.Errorf("daily ttl = %v", kv.ttls[daily])
	}
	if kv.ttls[monthly] != 62*24*time.Hour {
		t.Errorf("monthly ttl = %v", kv.ttls[monthly])
	}
	if _, ok := kv.counters["apisearch:usage:shop:daily:2024-02-29:hits"]; ok {
		t.Error("zero counters must not be written")
	}
}

func TestStore_GetMissingIsZero(t *testing.T) {
	s := New(newMockKVStore(), time.Hour, time.Hour)

	m, err := s.Get(context.Background(), "shop", domusage.PeriodDay, at)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if m.Searches() != 0 || m.Hits() != 0 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestStore_GetParseError(t *testing.T) {
	kv := newMockKVStore()
	kv.raw["apisearch:usage:shop:daily:2024-02-29:searches"] = []byte("nan")
	s := New(kv, time.Hour, time.Hour)

	if _, err := s.Get(context.Background(), "shop", domusage.PeriodDay, at); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestStore_AddError(t *testing.T) {
	kv := newMockKVStore()
	kv.incrErr = &db.Error{Op: db.OpIncrBy, Err: errors.New("READONLY")}
	s := New(kv, time.Hour, time.Hour)

	err := s.Add(context.Background(), "shop", at, metrics.New(1, 1, 1))
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpIncrBy {
		t.Fatalf("err = %v", err)
	}
}
