// Package usage persists per-app search counters in a key-value store.
package usage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/apisearch-io/search-server-sub000/internal/db"
	domusage "github.com/apisearch-io/search-server-sub000/internal/domain/usage"
	"github.com/apisearch-io/search-server-sub000/internal/domain/usage/metrics"
)

const keyPrefix = "apisearch:usage:"

// Counter names stored per app and period.
const (
	counterSearches = "searches"
	counterIndices  = "indices"
	counterHits     = "hits"
)

// store is the consumer interface for usage counters (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Store keeps daily and monthly counters on top of DB (INCRBY + GET with TTL).
type Store struct {
	store    store
	dailyTTL time.Duration
	monthTTL time.Duration
}

// New creates a usage store.
// dailyTTL is the TTL for daily keys (recommended: 48h).
// monthTTL is the TTL for monthly keys (recommended: 62 days).
func New(s store, dailyTTL, monthTTL time.Duration) *Store {
	return &Store{
		store:    s,
		dailyTTL: dailyTTL,
		monthTTL: monthTTL,
	}
}

// Add increments the app counters of both periods containing at.
func (s *Store) Add(ctx context.Context, app string, at time.Time, m metrics.Metrics) error {
	for _, p := range []domusage.Period{domusage.PeriodDay, domusage.PeriodMonth} {
		counters := []struct {
			name string
			val  int64
		}{
			{counterSearches, m.Searches()},
			{counterIndices, m.Indices()},
			{counterHits, m.Hits()},
		}
		for _, c := range counters {
			if c.val == 0 {
				continue
			}
			if err := s.incrBy(ctx, key(app, p, at, c.name), c.val, s.ttl(p)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Get returns the app counters of the period containing at.
func (s *Store) Get(ctx context.Context, app string, p domusage.Period, at time.Time) (metrics.Metrics, error) {
	searches, err := s.get(ctx, key(app, p, at, counterSearches))
	if err != nil {
		return metrics.Metrics{}, err
	}
	indices, err := s.get(ctx, key(app, p, at, counterIndices))
	if err != nil {
		return metrics.Metrics{}, err
	}
	hits, err := s.get(ctx, key(app, p, at, counterHits))
	if err != nil {
		return metrics.Metrics{}, err
	}
	return metrics.New(searches, indices, hits), nil
}

// incrBy atomically increments the key value and sets TTL.
func (s *Store) incrBy(ctx context.Context, key string, val int64, ttl time.Duration) error {
	if err := s.store.IncrBy(ctx, key, val); err != nil {
		return fmt.Errorf("usage INCRBY %s: %w", key, err)
	}

	// Set TTL only if the key has no expiry yet (NX, not reset on repeat).
	if err := s.store.Expire(ctx, key, ttl, true); err != nil {
		return fmt.Errorf("usage EXPIRE %s: %w", key, err)
	}

	return nil
}

// get returns the current counter value. Returns 0 if the key does not exist.
func (s *Store) get(ctx context.Context, key string) (int64, error) {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("usage GET %s: %w", key, err)
	}

	val, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("usage GET %s parse: %w", key, err)
	}
	return val, nil
}

func (s *Store) ttl(p domusage.Period) time.Duration {
	if p == domusage.PeriodDay {
		return s.dailyTTL
	}
	return s.monthTTL
}

// key follows apisearch:usage:{app}:daily:2024-02-29:{counter} or :monthly:2024-02:{counter}.
func key(app string, p domusage.Period, at time.Time, counter string) string {
	at = at.UTC()
	if p == domusage.PeriodDay {
		return keyPrefix + app + ":daily:" + at.Format("2006-01-02") + ":" + counter
	}
	return keyPrefix + app + ":monthly:" + at.Format("2006-01") + ":" + counter
}
