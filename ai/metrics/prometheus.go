// Package metrics exports assistant metrics in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "taskgpt"

// PrometheusExporter records session, turn and classifier metrics.
// All methods are safe on a nil receiver so callers can run without metrics.
type PrometheusExporter struct {
	registry *prometheus.Registry

	sessionsActive prometheus.Gauge
	sessionsTotal  *prometheus.CounterVec

	turns       *prometheus.CounterVec
	turnLatency *prometheus.HistogramVec

	classifications *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
}

// Config configures the Prometheus exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns default Prometheus configuration.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}
}

// NewPrometheusExporter creates a new Prometheus metrics exporter.
func NewPrometheusExporter(cfg Config) *PrometheusExporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &PrometheusExporter{registry: registry}

	e.sessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "active",
		Help:      "Number of chat sessions currently running",
	})
	e.sessionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "started_total",
		Help:      "Total number of chat sessions started",
	}, []string{"channel"})
	e.turns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "turns_total",
		Help:      "Total number of conversation turns by intent and outcome",
	}, []string{"intent", "outcome"})
	e.turnLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "turn_latency_seconds",
		Help:      "Conversation turn latency in seconds, user think time included",
		Buckets:   cfg.LatencyBuckets,
	}, []string{"intent"})
	e.classifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "classifier",
		Name:      "classifications_total",
		Help:      "Total number of classifications by option set, source and result",
	}, []string{"option_set", "source", "result"})
	e.cacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ai",
		Name:      "cache_hits_total",
		Help:      "Total number of cache hits",
	}, []string{"cache_type"})
	e.cacheMisses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ai",
		Name:      "cache_misses_total",
		Help:      "Total number of cache misses",
	}, []string{"cache_type"})

	registry.MustRegister(
		e.sessionsActive,
		e.sessionsTotal,
		e.turns,
		e.turnLatency,
		e.classifications,
		e.cacheHits,
		e.cacheMisses,
	)
	return e
}

// SessionStarted marks a session as running on the named channel.
func (e *PrometheusExporter) SessionStarted(channel string) {
	if e == nil {
		return
	}
	e.sessionsActive.Inc()
	e.sessionsTotal.WithLabelValues(channel).Inc()
}

// SessionEnded marks a session as finished.
func (e *PrometheusExporter) SessionEnded() {
	if e == nil {
		return
	}
	e.sessionsActive.Dec()
}

// RecordTurn records one conversation turn.
func (e *PrometheusExporter) RecordTurn(intent, outcome string, latency time.Duration) {
	if e == nil {
		return
	}
	e.turns.WithLabelValues(intent, outcome).Inc()
	e.turnLatency.WithLabelValues(intent).Observe(latency.Seconds())
}

// RecordClassification records one classifier result.
func (e *PrometheusExporter) RecordClassification(optionSet, source, result string) {
	if e == nil {
		return
	}
	e.classifications.WithLabelValues(optionSet, source, result).Inc()
}

// RecordCacheHit records a cache hit.
func (e *PrometheusExporter) RecordCacheHit(cacheType string) {
	if e == nil {
		return
	}
	e.cacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss records a cache miss.
func (e *PrometheusExporter) RecordCacheMiss(cacheType string) {
	if e == nil {
		return
	}
	e.cacheMisses.WithLabelValues(cacheType).Inc()
}

// Handler returns the HTTP handler for the metrics endpoint.
func (e *PrometheusExporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// GetRegistry returns the Prometheus registry.
func (e *PrometheusExporter) GetRegistry() *prometheus.Registry {
	return e.registry
}
