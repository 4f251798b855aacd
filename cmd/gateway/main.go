package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/apisearch-io/search-server-sub000/internal/config"
	"github.com/apisearch-io/search-server-sub000/internal/db/elasticsearch"
	dbRedis "github.com/apisearch-io/search-server-sub000/internal/db/redis"
	"github.com/apisearch-io/search-server-sub000/internal/esquery"
	logpkg "github.com/apisearch-io/search-server-sub000/internal/logger"
	"github.com/apisearch-io/search-server-sub000/internal/metrics"
	"github.com/apisearch-io/search-server-sub000/internal/repository/searchcache"
	usagerepo "github.com/apisearch-io/search-server-sub000/internal/repository/usage"
	chiTransport "github.com/apisearch-io/search-server-sub000/internal/transport/chi"
	healthuc "github.com/apisearch-io/search-server-sub000/internal/usecase/health"
	searchuc "github.com/apisearch-io/search-server-sub000/internal/usecase/search"
	usageuc "github.com/apisearch-io/search-server-sub000/internal/usecase/usage"
	"github.com/apisearch-io/search-server-sub000/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting search gateway",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("elasticsearch_urls", cfg.Elasticsearch.URLs),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Bool("usage_enabled", cfg.Usage.Enabled),
	)

	engine, err := elasticsearch.NewStore(elasticsearch.Config{
		URLs:        cfg.Elasticsearch.URLs,
		Username:    cfg.Elasticsearch.Username,
		Password:    cfg.Elasticsearch.Password,
		Sniff:       cfg.Elasticsearch.Sniff,
		Healthcheck: cfg.Elasticsearch.Healthcheck,
		Timeout:     cfg.Elasticsearch.Timeout(),
		IndexPrefix: cfg.Elasticsearch.IndexPrefix,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create elasticsearch client", zap.Error(err))
	}
	defer engine.Close()

	ctx := context.Background()
	if err := engine.WaitForReady(ctx, time.Duration(cfg.Elasticsearch.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Elasticsearch not ready", zap.Error(err))
	}
	logger.Info("Connected to elasticsearch")

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	// The redis store backs both the response cache and the usage counters.
	var kv *dbRedis.Store
	if cfg.Cache.Enabled || cfg.Usage.Enabled {
		kv, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:       cfg.Cache.Addrs,
			Username:    cfg.Cache.Username,
			Password:    cfg.Cache.Password,
			DB:          cfg.Cache.DB,
			DialTimeout: cfg.Cache.DialTimeout(),
		})
		if err != nil {
			logger.Fatal("Failed to create redis store", zap.Error(err))
		}
		defer kv.Close()

		if err := kv.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Redis not ready", zap.Error(err))
		}
		logger.Info("Connected to redis", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	// Pass nil interfaces (not typed nil pointers!) when a backend is off.
	// Go gotcha: (*usagerepo.Store)(nil) wrapped in usageuc.Store != nil.
	var usageStore usageuc.Store
	if cfg.Usage.Enabled {
		usageStore = usagerepo.New(kv,
			time.Duration(cfg.Usage.DailyTTLHrs)*time.Hour,
			time.Duration(cfg.Usage.MonthlyTTLHrs)*time.Hour,
		)
	}
	usageSvc := usageuc.New(usageStore)

	searchOpts := []searchuc.Option{
		searchuc.WithConcurrency(cfg.Search.Concurrency),
		searchuc.WithUsage(usageSvc),
		searchuc.WithLogger(logger),
	}
	if cfg.Cache.Enabled {
		cached := searchcache.New(engine, kv, cfg.Cache.TTL(), cfg.Cache.KeyPrefix, metrics.SearchCacheTotal, logger)
		searchOpts = append(searchOpts, searchuc.WithCache(cached))
	}
	compiler := esquery.New(esquery.WithSearchableFields(cfg.Search.SearchableFields...))
	searchSvc := searchuc.New(compiler, engine, searchOpts...)

	var cachePinger healthuc.Pinger
	if kv != nil {
		cachePinger = kv
	}
	healthSvc := healthuc.New(engine, cachePinger)

	server := chiTransport.NewServer(searchSvc, usageSvc, healthSvc, chiTransport.Config{
		MaxIndices:      cfg.Search.MaxIndices,
		MaxBodyBytes:    cfg.HTTP.MaxBodyBytes,
		DefaultPageSize: cfg.Search.DefaultPageSize,
		MaxPageSize:     cfg.Search.MaxPageSize,
	}, logger)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiTransport.RequestID)
	r.Use(chiTransport.WideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
