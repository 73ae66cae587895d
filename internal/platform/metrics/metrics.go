package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
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

	// Auth
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Login attempts by outcome",
		},
		[]string{"outcome"},
	)

	TokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_token_refreshes_total",
			Help: "Access token refreshes by outcome",
		},
		[]string{"outcome"},
	)

	ActiveRefreshTokens = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "auth_refresh_tokens_active",
			Help: "Refresh tokens held by the in-memory session store",
		},
	)

	// Catalog
	ProductMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_product_mutations_total",
			Help: "Product create/update/delete operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	ImagesStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_images_stored_total",
			Help: "Uploaded product images written to disk",
		},
	)

	ImagesSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_images_swept_total",
			Help: "Orphaned product images removed by the sweeper",
		},
	)
)
