package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cyberapp",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, path and status.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cyberapp",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
		},
		[]string{"method", "path"},
	)

	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cyberapp",
			Name:      "active_sessions",
			Help:      "Number of currently active sessions.",
		},
	)
)

// Register registers the Prometheus collectors. Safe to call more than once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, activeSessions)
	})
}

// Middleware records per-request counters and latency.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// SessionOpened bumps the active-session gauge.
func SessionOpened() { activeSessions.Inc() }

// SessionClosed drops the active-session gauge.
func SessionClosed() { activeSessions.Dec() }
