package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HTTPMetricsMiddleware tracks HTTP request metrics
func HTTPMetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		HTTPRequestsInFlight.Inc()
		defer HTTPRequestsInFlight.Dec()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		method := c.Method()
		path := SanitizePath(c.Path())

		HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()

		return err
	}
}

// SanitizePath removes dynamic segments to avoid high cardinality.
// Example: /api/users/42 -> /api/users/:id
func SanitizePath(path string) string {
	if strings.HasPrefix(path, "/api/users/") && len(path) > len("/api/users/") {
		return "/api/users/:id"
	}
	if strings.HasPrefix(path, "/users/") && len(path) > len("/users/") {
		return "/users/:id"
	}

	switch path {
	case "/", "/healthz", "/readyz", "/metrics", "/api/users", "/api/health", "/users", "/health":
		return path
	}
	if strings.HasPrefix(path, "/assets/") {
		return "/assets/:file"
	}
	return "/other"
}
