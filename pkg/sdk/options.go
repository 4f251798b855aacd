package apisearch

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	urls        []string
	username    string
	password    string
	indexPrefix string
	timeout     time.Duration

	redisAddrs    []string
	redisPassword string
	cacheTTL      time.Duration
	usage         bool
	usageDailyTTL time.Duration
	usageMonthTTL time.Duration

	concurrency      int
	searchableFields []string
	readinessTimeout time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithElasticsearch sets the engine node URLs.
func WithElasticsearch(urls ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.urls = urls
	})
}

// WithBasicAuth sets engine credentials.
func WithBasicAuth(username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
		c.password = password
	})
}

// WithIndexPrefix prepends prefix to every index name sent to the engine.
func WithIndexPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.indexPrefix = prefix
	})
}

// WithRequestTimeout bounds each engine request. Default: 5s.
func WithRequestTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithRedis configures the Redis store used by WithCache and WithUsage.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.redisAddrs = []string{addr}
		c.redisPassword = password
	})
}

// WithCache caches engine responses in Redis for ttl. Requires WithRedis.
func WithCache(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithUsage meters searches per app in Redis. Requires WithRedis.
// Zero TTLs keep the defaults of 48h and 62 days.
func WithUsage(dailyTTL, monthlyTTL time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.usage = true
		c.usageDailyTTL = dailyTTL
		c.usageMonthTTL = monthlyTTL
	})
}

// WithConcurrency bounds the per-call index fan-out. Default: 4.
func WithConcurrency(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.concurrency = n
	})
}

// WithSearchableFields sets the fields free text is matched against when a
// query does not name its own.
func WithSearchableFields(fields ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.searchableFields = fields
	})
}

// WithReadinessTimeout bounds the initial connectivity check. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
