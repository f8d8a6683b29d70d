package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// IngestMetrics counts message-bus handler outcomes per topic.
type IngestMetrics struct {
	Outcomes *prometheus.CounterVec
}

func NewIngestMetrics() *IngestMetrics {
	return &IngestMetrics{
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "accounting",
			Subsystem: "ingest",
			Name:      "messages_total",
			Help:      "Messages handled per topic, labelled by outcome (ok, permanent, transient).",
		}, []string{"topic", "outcome"}),
	}
}

func (m *IngestMetrics) Observe(topic, outcome string) {
	if m == nil {
		return
	}
	m.Outcomes.WithLabelValues(topic, outcome).Inc()
}

// HTTPMetrics records request durations for the read API.
type HTTPMetrics struct {
	Duration *prometheus.HistogramVec
}

func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		Duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "accounting",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Duration.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
