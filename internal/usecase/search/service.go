package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/apisearch-io/search-server-sub000/internal/db"
	"github.com/apisearch-io/search-server-sub000/internal/domain"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/query"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/result"
	"github.com/apisearch-io/search-server-sub000/internal/domain/usage/metrics"
	"github.com/apisearch-io/search-server-sub000/internal/esquery"
	"github.com/apisearch-io/search-server-sub000/internal/esresult"
	"github.com/apisearch-io/search-server-sub000/internal/logger"
	appmetrics "github.com/apisearch-io/search-server-sub000/internal/metrics"
)

// DefaultConcurrency bounds the number of in-flight engine requests per search.
const DefaultConcurrency = 4

// Service runs queries against one or more indices of an app.
type Service struct {
	compiler    Compiler
	engine      Searcher
	cache       Searcher
	usage       UsageRecorder
	concurrency int
	logger      *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCache routes cacheable searches through c.
func WithCache(c Searcher) Option {
	return func(s *Service) { s.cache = c }
}

// WithUsage records served searches through u.
func WithUsage(u UsageRecorder) Option {
	return func(s *Service) { s.usage = u }
}

// WithConcurrency bounds concurrent engine requests. Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLogger sets the fallback logger used when the context carries none.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a search service.
func New(compiler Compiler, engine Searcher, opts ...Option) *Service {
	s := &Service{
		compiler:    compiler,
		engine:      engine,
		concurrency: DefaultConcurrency,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search runs q against every index concurrently. The i-th result
// belongs to indices[i]; the first failure cancels the rest.
func (s *Service) Search(
	ctx context.Context, app string, indices []string, q query.Query,
) ([]*result.Result, error) {
	if len(indices) == 0 {
		return nil, domain.NewValidationError("indices", "at least one index is required")
	}
	for _, index := range indices {
		if index == "" {
			return nil, domain.NewValidationError("indices", "index name must not be empty")
		}
	}

	appmetrics.SearchFanoutWidth.Observe(float64(len(indices)))

	results := make([]*result.Result, len(indices))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, index := range indices {
		i, index := i, index
		g.Go(func() error {
			res, err := s.searchIndex(gctx, index, q)
			if err != nil {
				return fmt.Errorf("index %s: %w", index, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		appmetrics.SearchErrorsTotal.WithLabelValues(errorType(err)).Inc()
		return nil, err
	}

	s.recordUsage(ctx, app, results)
	return results, nil
}

// SearchOne runs q against a single index.
func (s *Service) SearchOne(ctx context.Context, app, index string, q query.Query) (*result.Result, error) {
	results, err := s.Search(ctx, app, []string{index}, q)
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

func (s *Service) searchIndex(ctx context.Context, index string, q query.Query) (*result.Result, error) {
	start := time.Now()
	src, err := s.compiler.Compile(q)
	appmetrics.SearchCompileDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("compile query: %w", translate(err))
	}

	searcher := s.engine
	if s.cache != nil && !q.SortBy().IsRandom() {
		searcher = s.cache
	}

	start = time.Now()
	raw, err := searcher.Search(ctx, index, src)
	duration := time.Since(start)
	if err != nil {
		appmetrics.SearchEngineDuration.WithLabelValues("error").Observe(duration.Seconds())
		appmetrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("engine search: %w", translate(err))
	}
	appmetrics.SearchEngineDuration.WithLabelValues("ok").Observe(duration.Seconds())
	appmetrics.SearchRequestsTotal.WithLabelValues("ok").Inc()

	res, err := esresult.Result(q, raw)
	if err != nil {
		return nil, fmt.Errorf("assemble result: %w", err)
	}

	s.log(ctx).Debug("Index searched",
		zap.String("index", index),
		zap.Duration("duration", duration),
		zap.Int64("total_hits", res.TotalHits()),
	)
	return res, nil
}

// recordUsage is best-effort: failures are logged, never returned.
func (s *Service) recordUsage(ctx context.Context, app string, results []*result.Result) {
	if s.usage == nil {
		return
	}
	var hits int64
	for _, r := range results {
		hits += r.TotalHits()
	}
	m := metrics.New(1, int64(len(results)), hits)
	if err := s.usage.Record(ctx, app, m); err != nil {
		s.log(ctx).Warn("Failed to record usage", zap.String("app", app), zap.Error(err))
	}
}

func (s *Service) log(ctx context.Context) *zap.Logger {
	return logger.FromContextOr(ctx, s.logger)
}

// translate maps compiler and backend errors onto domain sentinels.
func translate(err error) error {
	switch {
	case errors.Is(err, esquery.ErrUnsupportedFilterType),
		errors.Is(err, esquery.ErrUnsupportedScoreStrategy),
		errors.Is(err, esquery.ErrUnsupportedSortKind),
		errors.Is(err, db.ErrBadRequest):
		return fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	case errors.Is(err, db.ErrIndexNotFound):
		return fmt.Errorf("%w: %w", domain.ErrIndexNotFound, err)
	case errors.Is(err, db.ErrUnavailable):
		return fmt.Errorf("%w: %w", domain.ErrEngineUnavailable, err)
	default:
		return err
	}
}

func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		return "invalid_query"
	case errors.Is(err, domain.ErrIndexNotFound):
		return "index_not_found"
	case errors.Is(err, domain.ErrEngineUnavailable):
		return "unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
