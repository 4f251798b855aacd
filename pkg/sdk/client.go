package apisearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/apisearch-io/search-server-sub000/internal/db"
	"github.com/apisearch-io/search-server-sub000/internal/db/elasticsearch"
	dbRedis "github.com/apisearch-io/search-server-sub000/internal/db/redis"
	"github.com/apisearch-io/search-server-sub000/internal/esquery"
	"github.com/apisearch-io/search-server-sub000/internal/metrics"
	"github.com/apisearch-io/search-server-sub000/internal/repository/searchcache"
	usagerepo "github.com/apisearch-io/search-server-sub000/internal/repository/usage"
	healthuc "github.com/apisearch-io/search-server-sub000/internal/usecase/health"
	searchuc "github.com/apisearch-io/search-server-sub000/internal/usecase/search"
	usageuc "github.com/apisearch-io/search-server-sub000/internal/usecase/usage"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultRequestTimeout   = 5 * time.Second
	defaultUsageDailyTTL    = 48 * time.Hour
	defaultUsageMonthTTL    = 62 * 24 * time.Hour
)

// Client is the embedded gateway entry point.
type Client struct {
	engine    db.Pinger
	closers   []func()
	searchSvc searchUseCase
	usageSvc  usageUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client and connects to Elasticsearch, plus Redis when configured.
// The provided context is used for the initial readiness checks.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		timeout:          defaultRequestTimeout,
		readinessTimeout: defaultReadinessTimeout,
		usageDailyTTL:    defaultUsageDailyTTL,
		usageMonthTTL:    defaultUsageMonthTTL,
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.usageDailyTTL <= 0 {
		cfg.usageDailyTTL = defaultUsageDailyTTL
	}
	if cfg.usageMonthTTL <= 0 {
		cfg.usageMonthTTL = defaultUsageMonthTTL
	}

	if len(cfg.urls) == 0 {
		return nil, errors.New("apisearch: elasticsearch url required (use WithElasticsearch)")
	}
	if (cfg.cacheTTL > 0 || cfg.usage) && len(cfg.redisAddrs) == 0 {
		return nil, errors.New("apisearch: cache and usage need a redis store (use WithRedis)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	engine, err := elasticsearch.NewStore(elasticsearch.Config{
		URLs:        cfg.urls,
		Username:    cfg.username,
		Password:    cfg.password,
		Timeout:     cfg.timeout,
		IndexPrefix: cfg.indexPrefix,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("apisearch: create elasticsearch client: %w", err)
	}
	if err := engine.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		engine.Close()
		return nil, fmt.Errorf("apisearch: elasticsearch not ready: %w", err)
	}

	var kv *dbRedis.Store
	if len(cfg.redisAddrs) > 0 {
		kv, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.redisAddrs,
			Password: cfg.redisPassword,
		})
		if err != nil {
			engine.Close()
			return nil, fmt.Errorf("apisearch: create redis store: %w", err)
		}
		if err := kv.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
			kv.Close()
			engine.Close()
			return nil, fmt.Errorf("apisearch: redis not ready: %w", err)
		}
	}

	return wireClient(engine, kv, cfg, obs), nil
}

func wireClient(engine db.Engine, kv *dbRedis.Store, cfg *clientConfig, obs *observer) *Client {
	c := &Client{engine: engine, closers: []func(){engine.Close}, obs: obs}

	// Nil interfaces, not typed nil pointers, when Redis is off.
	var usageStore usageuc.Store
	var cachePinger healthuc.Pinger
	if kv != nil {
		c.closers = append(c.closers, kv.Close)
		cachePinger = kv
		if cfg.usage {
			usageStore = usagerepo.New(kv, cfg.usageDailyTTL, cfg.usageMonthTTL)
		}
	}
	usageSvc := usageuc.New(usageStore)

	searchOpts := []searchuc.Option{
		searchuc.WithConcurrency(cfg.concurrency),
		searchuc.WithUsage(usageSvc),
	}
	if kv != nil && cfg.cacheTTL > 0 {
		cached := searchcache.New(engine, kv, cfg.cacheTTL, searchcache.DefaultKeyPrefix,
			metrics.SearchCacheTotal, zap.NewNop())
		searchOpts = append(searchOpts, searchuc.WithCache(cached))
	}
	compiler := esquery.New(esquery.WithSearchableFields(cfg.searchableFields...))

	c.searchSvc = searchuc.New(compiler, engine, searchOpts...)
	c.usageSvc = usageSvc
	c.healthSvc = healthuc.New(engine, cachePinger)
	return c
}

// Close releases all resources.
func (c *Client) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Ping checks engine connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.engine.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
