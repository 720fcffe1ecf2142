package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eldarhac/GraphMind/pkg/metrics"
)

// MetricsMiddleware records request count and latency per route template.
func MetricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}

		path := c.Path()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request().Method
		status := strconv.Itoa(c.Response().Status)

		metrics.HttpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		metrics.HttpRequestsTotal.WithLabelValues(method, path, status).Inc()
		return nil
	}
}
