package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edumart_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edumart_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	dbQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "edumart_db_query_duration_seconds",
			Help:    "Database query latency.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	webhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edumart_webhook_events_total",
			Help: "Webhook events received by source and outcome.",
		},
		[]string{"source", "outcome"},
	)

	purchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edumart_purchases_total",
			Help: "Purchase records by resulting status.",
		},
		[]string{"status"},
	)
)

// Middleware collects request counts and latencies for every route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordDBQuery observes a single database query duration.
func RecordDBQuery(elapsed time.Duration) {
	dbQueryDuration.Observe(elapsed.Seconds())
}

// RecordWebhookEvent counts a processed webhook event.
func RecordWebhookEvent(source, outcome string) {
	webhookEventsTotal.WithLabelValues(source, outcome).Inc()
}

// RecordPurchase counts a purchase reaching the given status.
func RecordPurchase(status string) {
	purchasesTotal.WithLabelValues(status).Inc()
}
