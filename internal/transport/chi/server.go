// Package chi exposes the search gateway over HTTP using the chi router.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/apisearch-io/search-server-sub000/internal/domain"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/query"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/result"
	domusage "github.com/apisearch-io/search-server-sub000/internal/domain/usage"
	healthuc "github.com/apisearch-io/search-server-sub000/internal/usecase/health"
	"github.com/apisearch-io/search-server-sub000/internal/version"
)

// Defaults applied to zero Config fields.
const (
	DefaultMaxIndices   = 10
	DefaultMaxBodyBytes = 1 << 20
)

type searchService interface {
	Search(ctx context.Context, app string, indices []string, q query.Query) ([]*result.Result, error)
}

type usageService interface {
	GetReport(ctx context.Context, app string, period domusage.Period) (domusage.Report, error)
}

type healthService interface {
	Check(ctx context.Context) healthuc.Report
}

// Config bounds incoming requests.
type Config struct {
	MaxIndices      int
	MaxBodyBytes    int64
	DefaultPageSize int
	MaxPageSize     int
}

// Server serves the gateway HTTP API.
type Server struct {
	search        searchService
	usage         usageService
	health        healthService
	cfg           Config
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search searchService,
	usage usageService,
	health healthService,
	cfg Config,
	logger *zap.Logger,
) *Server {
	if cfg.MaxIndices <= 0 {
		cfg.MaxIndices = DefaultMaxIndices
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = query.DefaultSize
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = query.MaxSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		search:        search,
		usage:         usage,
		health:        health,
		cfg:           cfg,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Routes registers the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/ready", s.Readiness)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1/apps/{app}", func(r chi.Router) {
		r.Post("/indices/{indices}/search", s.Search)
		r.Get("/usage", s.GetUsage)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})
}

// Search handles POST /v1/apps/{app}/indices/{indices}/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	app := chi.URLParam(r, "app")
	indices, err := s.parseIndices(chi.URLParam(r, "indices"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	var req SearchRequest
	if err := s.decode(w, r, &req); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusRequestEntityTooLarge, CodePayloadTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", mbe.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	q, err := req.toQuery(pagination{defaultSize: s.cfg.DefaultPageSize, maxSize: s.cfg.MaxPageSize})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	results, err := s.search.Search(r.Context(), app, indices, q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := SearchResponse{Results: make([]IndexResult, len(results))}
	for i, res := range results {
		resp.Results[i] = resultToResponse(indices[i], res)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetUsage handles GET /v1/apps/{app}/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period := domusage.PeriodMonth
	if p := r.URL.Query().Get("period"); p != "" {
		period = domusage.Period(p)
	}

	report, err := s.usage.GetReport(r.Context(), chi.URLParam(r, "app"), period)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, usageToResponse(report))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthToResponse(report))
}

// Readiness handles GET /ready. A degraded cache does not make the gateway unready.
func (s *Server) Readiness(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if !report.Ready() {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthToResponse(report))
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) parseIndices(raw string) ([]string, error) {
	parts := strings.Split(raw, ",")
	indices := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, domain.NewValidationError("indices", "index name must not be empty")
		}
		indices = append(indices, p)
	}
	if len(indices) > s.cfg.MaxIndices {
		return nil, domain.NewValidationError("indices",
			fmt.Sprintf("too many indices (max %d)", s.cfg.MaxIndices))
	}
	return indices, nil
}

// decode reads a JSON body. An empty body leaves v untouched.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func healthToResponse(report healthuc.Report) HealthResponse {
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthResponse{Status: string(report.Status), Version: version.Version, Checks: checks}
}
