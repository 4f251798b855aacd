// Package searchcache caches engine responses in a key-value store.
package searchcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/olivere/elastic/v7"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/apisearch-io/search-server-sub000/internal/db"
)

// DefaultKeyPrefix namespaces cache entries in the store.
const DefaultKeyPrefix = "apisearch:search_cache:"

// store is the consumer interface for the response cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedSearcher caches engine responses keyed by index and compiled source.
type CachedSearcher struct {
	inner      db.Searcher
	store      store
	ttl        time.Duration
	prefix     string
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner db.Searcher,
	s store,
	ttl time.Duration,
	prefix string,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedSearcher {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &CachedSearcher{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		prefix:     prefix,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Search returns a cached response or calls the inner searcher.
// Store failures degrade to a miss.
func (c *CachedSearcher) Search(
	ctx context.Context, index string, src *elastic.SearchSource,
) (*elastic.SearchResult, error) {
	key, err := c.cacheKey(index, src)
	if err != nil {
		return nil, fmt.Errorf("cache key: %w", err)
	}

	if res, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return res, nil
	}

	c.incCache("miss")

	res, err := c.inner.Search(ctx, index, src)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", index, err)
	}

	c.putToCache(ctx, key, res)
	return res, nil
}

func (c *CachedSearcher) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedSearcher) cacheKey(index string, src *elastic.SearchSource) (string, error) {
	body, err := src.Source()
	if err != nil {
		return "", fmt.Errorf("render source: %w", err)
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal source: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(index))
	h.Write([]byte{0})
	h.Write(data)
	return c.prefix + hex.EncodeToString(h.Sum(nil)), nil
}

func (c *CachedSearcher) getFromCache(ctx context.Context, key string) (*elastic.SearchResult, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached search response", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var res elastic.SearchResult
	if err := json.Unmarshal(data, &res); err != nil {
		c.logger.Warn("Failed to parse cached search response", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &res, true
}

func (c *CachedSearcher) putToCache(ctx context.Context, key string, res *elastic.SearchResult) {
	data, err := json.Marshal(res)
	if err != nil {
		c.logger.Warn("Failed to encode search response", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache search response", zap.String("key", key), zap.Error(err))
	}
}
