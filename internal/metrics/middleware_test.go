package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddleware_RecordsDurationAndCount(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	req := httptest.NewRequest("GET", "/health", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != 200 {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	requestsVal := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/health", "200"))
	if requestsVal < 1 {
		t.Errorf("expected http_requests_total >= 1, got %f", requestsVal)
	}

	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds to have observations")
	}
}

func TestMetricsMiddleware_StatusCodes(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())

	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/bad", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	r.Get("/unavailable", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	tests := []struct {
		path           string
		expectedStatus string
	}{
		{"/ok", "200"},
		{"/bad", "400"},
		{"/unavailable", "503"},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			req := httptest.NewRequest("GET", tc.path, http.NoBody)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", tc.path, tc.expectedStatus))
			if val < 1 {
				t.Errorf("expected requests_total for %s with status %s >= 1, got %f", tc.path, tc.expectedStatus, val)
			}
		})
	}
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	const pattern = "/v1/apps/{app}/indices/{indices}/search"

	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post(pattern, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{}"))
	})

	for _, path := range []string{"/v1/apps/a1/indices/products/search", "/v1/apps/a2/indices/x,y/search"} {
		req := httptest.NewRequest("POST", path, http.NoBody)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	if val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", pattern, "200")); val < 2 {
		t.Errorf("expected both requests under the route pattern, got %f", val)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "unmatched"},
		{"/*", "unmatched"},
		{"/v1/apps/{app}/*", "unmatched"},
		{"/v1/apps/{app}/usage", "/v1/apps/{app}/usage"},
		{"/v1/apps/{app}/usage/", "/v1/apps/{app}/usage"},
		{"/", "/"},
		{"/health", "/health"},
	}

	for _, tc := range tests {
		result := normalizePath(tc.input)
		if result != tc.expected {
			t.Errorf("normalizePath(%q) = %q, want %q", tc.input, result, tc.expected)
		}
	}
}

func TestMetricsMiddleware_SubrouterMiss(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Route("/v1/apps/{app}", func(r chi.Router) {
		r.Get("/usage", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("{}"))
		})
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unmatched", "404"))
	for _, app := range []string{"a1", "a2", "a3"} {
		req := httptest.NewRequest("GET", "/v1/apps/"+app+"/unknown", http.NoBody)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unmatched", "404")) - before; got != 3 {
		t.Errorf("expected tenant misses under one label, got %v", got)
	}
}

func TestMetricsMiddleware_InFlight(t *testing.T) {
	var during float64
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/v1/apps/{app}/usage", func(w http.ResponseWriter, r *http.Request) {
		during = testutil.ToFloat64(httpRequestsInFlight.WithLabelValues("api"))
		_, _ = w.Write([]byte("{}"))
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/v1/apps/shop/usage", http.NoBody))

	if during < 1 {
		t.Errorf("in-flight during request = %v", during)
	}
	if after := testutil.ToFloat64(httpRequestsInFlight.WithLabelValues("api")); after != 0 {
		t.Errorf("in-flight after request = %v", after)
	}
	if scope("/health") != "ops" || scope("/v1/apps/shop/usage") != "api" {
		t.Error("unexpected scopes")
	}
}

func TestRegisterSearchMetrics_Exposed(t *testing.T) {
	RegisterSearchMetrics()
	RegisterSearchMetrics() // second call is a no-op

	SearchCacheTotal.WithLabelValues("hit").Inc()
	SearchFanoutWidth.Observe(2)

	rr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", http.NoBody))

	body, err := io.ReadAll(rr.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	for _, name := range []string{"apisearch_search_cache_total", "apisearch_search_fanout_width"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics output misses %s", name)
		}
	}
}
