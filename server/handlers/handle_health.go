package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/redis/go-redis/v9"
)

// HealthCheckHandler serves liveness and readiness for the preview server.
// Readiness depends on the user API and, when configured, Redis.
type HealthCheckHandler struct {
	apiBaseURL string
	rdb        *redis.Client
	timeout    time.Duration
}

// NewHealthCheckHandler probes apiBaseURL + "/health". rdb may be nil.
func NewHealthCheckHandler(apiBaseURL string, rdb *redis.Client) *HealthCheckHandler {
	return &HealthCheckHandler{
		apiBaseURL: apiBaseURL,
		rdb:        rdb,
		timeout:    3 * time.Second,
	}
}

type HealthCheckResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Uptime    float64                `json:"uptime_seconds"`
	Checks    map[string]CheckStatus `json:"checks,omitempty"`
}

type CheckStatus struct {
	Status  string  `json:"status"`
	Message string  `json:"message,omitempty"`
	Latency float64 `json:"latency_ms"`
}

var startTime = time.Now()

// HandleLiveness reports that the process is serving
func (h *HealthCheckHandler) HandleLiveness() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(HealthCheckResponse{
			Status:    "healthy",
			Timestamp: time.Now().Format(time.RFC3339),
			Uptime:    time.Since(startTime).Seconds(),
		})
	}
}

// HandleReadiness checks every dependency and answers 503 when one is down
func (h *HealthCheckHandler) HandleReadiness() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
		defer cancel()

		response := HealthCheckResponse{
			Status:    "ready",
			Timestamp: time.Now().Format(time.RFC3339),
			Uptime:    time.Since(startTime).Seconds(),
			Checks:    make(map[string]CheckStatus),
		}

		response.Checks["user_api"] = h.checkAPI()
		if h.rdb != nil {
			response.Checks["redis"] = h.checkRedis(ctx)
		}

		for _, check := range response.Checks {
			if check.Status != "healthy" {
				response.Status = "degraded"
				return c.Status(fiber.StatusServiceUnavailable).JSON(response)
			}
		}

		return c.JSON(response)
	}
}

func (h *HealthCheckHandler) checkAPI() CheckStatus {
	start := time.Now()

	a := fiber.Get(h.apiBaseURL + "/health")
	a.Timeout(h.timeout)
	code, _, errs := a.Bytes()
	latency := float64(time.Since(start).Milliseconds())

	if len(errs) > 0 {
		return CheckStatus{
			Status:  "unhealthy",
			Message: "User API unreachable: " + errs[0].Error(),
			Latency: latency,
		}
	}
	if code < 200 || code > 299 {
		return CheckStatus{
			Status:  "unhealthy",
			Message: "User API health returned " + utils.StatusMessage(code),
			Latency: latency,
		}
	}

	return CheckStatus{Status: "healthy", Message: "User API is responding", Latency: latency}
}

func (h *HealthCheckHandler) checkRedis(ctx context.Context) CheckStatus {
	start := time.Now()
	err := h.rdb.Ping(ctx).Err()
	latency := float64(time.Since(start).Milliseconds())

	if err != nil {
		return CheckStatus{
			Status:  "unhealthy",
			Message: "Redis connection failed: " + err.Error(),
			Latency: latency,
		}
	}
	return CheckStatus{Status: "healthy", Message: "Redis is responding", Latency: latency}
}
