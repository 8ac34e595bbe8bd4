// Package utils provides utility functions including metrics collection.
package utils

import (
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics
var (
	bankOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bank_registry_operations_total",
		Help: "Total number of bank operations by operation and outcome",
	}, []string{"operation", "outcome"})

	auditQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bank_registry_audit_queue_depth",
		Help: "Current depth of the audit write queue",
	})

	// activeGoroutines is used by Prometheus for monitoring active goroutines
	//nolint:unused // Used by Prometheus metrics collection
	activeGoroutines = promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "bank_registry_goroutines_active",
		Help: "Number of active goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bank_registry_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status_code"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bank_registry_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// MetricsCollector collects basic application metrics.
type MetricsCollector struct {
	startTime  time.Time
	operations int64
	failures   int64
	queueDepth int64
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		startTime: time.Now(),
	}
}

// RecordOperation counts one bank operation. outcome is "ok", "not_found",
// "invalid" or "error".
func (m *MetricsCollector) RecordOperation(operation, outcome string) {
	atomic.AddInt64(&m.operations, 1)
	if outcome == "error" {
		atomic.AddInt64(&m.failures, 1)
	}
	bankOperationsTotal.WithLabelValues(operation, outcome).Inc()
}

// SetQueueDepth sets the current audit queue depth.
func (m *MetricsCollector) SetQueueDepth(depth int) {
	atomic.StoreInt64(&m.queueDepth, int64(depth))
	auditQueueDepth.Set(float64(depth))
}

// RecordHTTPRequest records an HTTP request metric.
func (m *MetricsCollector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// GetMetrics returns the current metrics as a JSON-serializable struct.
func (m *MetricsCollector) GetMetrics() *Metrics {
	return &Metrics{
		Uptime:        time.Since(m.startTime).String(),
		UptimeSeconds: int64(time.Since(m.startTime).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
		QueueDepth:    atomic.LoadInt64(&m.queueDepth),
		Operations:    atomic.LoadInt64(&m.operations),
		Failures:      atomic.LoadInt64(&m.failures),
	}
}

// Metrics represents the application metrics.
type Metrics struct {
	Uptime        string `json:"uptime"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Goroutines    int    `json:"goroutines"`
	QueueDepth    int64  `json:"queue_depth"`
	Operations    int64  `json:"operations"`
	Failures      int64  `json:"failures"`
}
