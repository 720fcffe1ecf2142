package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/eldarhac/GraphMind/pkg/metrics"
)

func TestMetricsMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(MetricsMiddleware)
	e.GET("/metrics-test/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics-fail", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "nope")
	})

	ok := metrics.HttpRequestsTotal.WithLabelValues(http.MethodGet, "/metrics-test/:id", "200")
	failed := metrics.HttpRequestsTotal.WithLabelValues(http.MethodGet, "/metrics-fail", "418")
	beforeOK, beforeFailed := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	for _, path := range []string{"/metrics-test/1", "/metrics-test/2", "/metrics-fail"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(ok) - beforeOK; got != 2 {
		t.Fatalf("requests for route template = %v, want 2", got)
	}
	if got := testutil.ToFloat64(failed) - beforeFailed; got != 1 {
		t.Fatalf("failed requests = %v, want 1", got)
	}
}
