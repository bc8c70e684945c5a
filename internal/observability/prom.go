package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the process collectors: HTTP serving on one side, the
// best-effort spreadsheet sync on the other.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec

	RemoteRequests *prometheus.CounterVec
	RemoteDuration *prometheus.HistogramVec
}

// Remote request outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped" // no endpoint configured
)

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bidtracker",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "bidtracker",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		RemoteRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bidtracker",
				Subsystem: "remote",
				Name:      "requests_total",
				Help:      "Spreadsheet sync requests by operation and outcome.",
			},
			[]string{"op", "outcome"},
		),
		RemoteDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "bidtracker",
				Subsystem: "remote",
				Name:      "request_duration_seconds",
				Help:      "Spreadsheet sync request latency by operation.",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
			},
			[]string{"op"},
		),
	}
	m.registry.MustRegister(m.RequestsTotal, m.RequestsDuration, m.RemoteRequests, m.RemoteDuration)
	return m
}

// ObserveRemote records one sync attempt. Nil-safe so the remote client can be
// constructed without metrics in tests.
func (m *Metrics) ObserveRemote(op, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RemoteRequests.WithLabelValues(op, outcome).Inc()
	if outcome != OutcomeSkipped {
		m.RemoteDuration.WithLabelValues(op).Observe(elapsed.Seconds())
	}
}

// GinMiddleware counts and times every routed request.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// route template is only available after routing; best effort:
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		m.RequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		m.RequestsDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the /metrics endpoint for this process's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
