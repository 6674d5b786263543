package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics (preview server)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)

	// User API client metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "useradmin_api_requests_total",
			Help: "Total number of calls made to the user API",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "useradmin_api_request_duration_seconds",
			Help:    "User API call latency in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "useradmin_api_requests_in_flight",
			Help: "User API calls currently holding the loading indicator",
		},
	)

	NotificationsShown = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "useradmin_notifications_total",
			Help: "Notifications shown, by type",
		},
		[]string{"type"},
	)

	CachedUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "useradmin_cached_users",
			Help: "Number of users currently held in the client cache",
		},
	)

	TabSwitches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "useradmin_tab_switches_total",
			Help: "Tab activations, by tab",
		},
		[]string{"tab"},
	)

	// Preview server
	RateLimitExceeded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_exceeded_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"path"},
	)

	FrontendFilesGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "useradmin_frontend_files_generated_total",
			Help: "Files written by the frontend generator",
		},
	)

	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Application errors, by code",
		},
		[]string{"code", "status"},
	)
)

func RecordAPICall(method, endpoint, status string, seconds float64) {
	APIRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(seconds)
}

func RecordNotification(kind string) {
	NotificationsShown.WithLabelValues(kind).Inc()
}

func SetCachedUsers(n int) {
	CachedUsers.Set(float64(n))
}

func RecordTabSwitch(tab string) {
	TabSwitches.WithLabelValues(tab).Inc()
}

func IncrementRateLimitExceeded(path string) {
	RateLimitExceeded.WithLabelValues(path).Inc()
}

func RecordError(code, status string) {
	ErrorsTotal.WithLabelValues(code, status).Inc()
}
