package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus metrics for the API
type Metrics struct {
	RequestCounter    *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	RequestsInFlight  prometheus.Gauge
	ModerationActions *prometheus.CounterVec
	RealtimeEvents    *prometheus.CounterVec
	Backups           *prometheus.CounterVec
}

// New registers the metrics on reg. Pass prometheus.DefaultRegisterer in main and a
// fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "adrena",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "adrena",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		RequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "adrena",
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Number of requests currently being processed",
			},
		),
		ModerationActions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "adrena",
				Name:      "moderation_actions_total",
				Help:      "Admin moderation actions by outcome",
			},
			[]string{"kind", "action", "result"},
		),
		RealtimeEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "adrena",
				Name:      "realtime_events_total",
				Help:      "Change events published to the realtime feed",
			},
			[]string{"table", "type"},
		),
		Backups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "adrena",
				Name:      "backups_total",
				Help:      "Database backup runs by result",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(
		m.RequestCounter,
		m.RequestDuration,
		m.RequestsInFlight,
		m.ModerationActions,
		m.RealtimeEvents,
		m.Backups,
	)
	return m
}

// Middleware records request count, latency and in-flight gauge
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.RequestsInFlight.Inc()
		defer m.RequestsInFlight.Dec()

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
		m.RequestCounter.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// ObserveModeration counts one moderation attempt
func (m *Metrics) ObserveModeration(kind, action, result string) {
	if m == nil {
		return
	}
	m.ModerationActions.WithLabelValues(kind, action, result).Inc()
}

// ObserveRealtime counts one published change event
func (m *Metrics) ObserveRealtime(table, eventType string) {
	if m == nil {
		return
	}
	m.RealtimeEvents.WithLabelValues(table, eventType).Inc()
}

// ObserveBackup counts one backup run
func (m *Metrics) ObserveBackup(result string) {
	if m == nil {
		return
	}
	m.Backups.WithLabelValues(result).Inc()
}

// Handler exposes the default registry
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
