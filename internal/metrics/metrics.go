package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "auction"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	bidsAccepted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bids",
			Name:      "accepted_total",
			Help:      "Total number of accepted bids.",
		},
	)

	bidsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bids",
			Name:      "rejected_total",
			Help:      "Total number of rejected bids by reason.",
		},
		[]string{"reason"},
	)

	bidConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bids",
			Name:      "conflict_retries_total",
			Help:      "Total number of bid attempts retried after a concurrent price change.",
		},
	)

	listingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "listings",
			Name:      "created_total",
			Help:      "Total number of listings created.",
		},
	)

	listingsClosed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "listings",
			Name:      "closed_total",
			Help:      "Total number of listings closed, split by whether a winner was set.",
		},
		[]string{"has_winner"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		bidsAccepted,
		bidsRejected,
		bidConflicts,
		listingsCreated,
		listingsClosed,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency per matched route
func Middleware(c *gin.Context) {
	route := c.FullPath()
	if route == "/metrics" {
		c.Next()
		return
	}
	if route == "" {
		route = "unmatched"
	}

	start := time.Now()
	httpInFlight.Inc()
	defer httpInFlight.Dec()

	c.Next()

	method := strings.ToUpper(c.Request.Method)
	httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
	httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
}

// RecordBidAccepted counts a stored bid.
func RecordBidAccepted() {
	bidsAccepted.Inc()
}

// RecordBidRejected counts a refused bid under its rejection reason.
func RecordBidRejected(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	bidsRejected.WithLabelValues(reason).Inc()
}

// RecordBidConflict counts one retry caused by a lost price race.
func RecordBidConflict() {
	bidConflicts.Inc()
}

func RecordListingCreated() {
	listingsCreated.Inc()
}

func RecordListingClosed(hasWinner bool) {
	listingsClosed.WithLabelValues(strconv.FormatBool(hasWinner)).Inc()
}
