package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/facets/{facet}/documents", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, facet := range []string{"license", "tags", "title"} {
		req := httptest.NewRequest("GET", "/facets/"+facet+"/documents", http.NoBody)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rr.Code)
		}
	}

	val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/facets/{facet}/documents", "200"))
	if val < 3 {
		t.Errorf("expected requests_total >= 3 for the route pattern, got %f", val)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds to have observations")
	}
}

func TestMetricsMiddleware_StatusCodes(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/bad", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	r.Get("/upstream", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	r.Get("/implicit", func(w http.ResponseWriter, r *http.Request) {})

	tests := []struct {
		path   string
		status string
	}{
		{"/bad", "400"},
		{"/upstream", "502"},
		{"/implicit", "200"},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			req := httptest.NewRequest("GET", tc.path, http.NoBody)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", tc.path, tc.status))
			if val < 1 {
				t.Errorf("expected requests_total for %s with status %s >= 1, got %f", tc.path, tc.status, val)
			}
		})
	}
}

func TestRoutePattern_NoRouteContext(t *testing.T) {
	req := httptest.NewRequest("GET", "/x", http.NoBody)
	if got := routePattern(req); got != "unknown" {
		t.Errorf("routePattern = %q, want unknown", got)
	}
}

func TestRegisterSearchMetrics_Idempotent(t *testing.T) {
	RegisterSearchMetrics()
	RegisterSearchMetrics()

	SearchRequestsTotal.WithLabelValues("search", "ok").Inc()
	if testutil.ToFloat64(SearchRequestsTotal.WithLabelValues("search", "ok")) < 1 {
		t.Error("expected search_requests_total to be incremented")
	}
}

func TestRegisterHTTPMetrics_Explicit(t *testing.T) {
	collider := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "facetdex",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "route", "status"})
	if err := prometheus.Register(collider); err != nil {
		t.Fatalf("http metrics registered before RegisterHTTPMetrics: %v", err)
	}
	prometheus.Unregister(collider)

	RegisterHTTPMetrics()
	RegisterHTTPMetrics()
	if err := prometheus.Register(collider); err == nil {
		t.Error("expected http_requests_total to be registered")
		prometheus.Unregister(collider)
	}
}
