// Package metrics exports title pipeline and classifier metrics in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cognicore/minwon/pkg/minwon/ingest"
)

const namespace = "minwon"

// Exporter implements ingest.Observer and records classifier and HTTP
// request metrics.
type Exporter struct {
	registry *prometheus.Registry

	summaries         *prometheus.CounterVec
	tokenizerFailures prometheus.Counter

	classifyLatency  *prometheus.HistogramVec
	complaintsStored prometheus.Counter

	httpRequests *prometheus.CounterVec
}

// Config configures the exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}
}

// NewExporter creates an exporter and registers its collectors.
func NewExporter(cfg Config) *Exporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &Exporter{registry: registry}

	e.summaries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "title",
			Name:      "summaries_total",
			Help:      "Summaries produced, by extraction tier",
		},
		[]string{"tier"},
	)
	e.tokenizerFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "title",
			Name:      "tokenizer_failures_total",
			Help:      "Tokenizer errors, panics and malformed outputs",
		},
	)
	e.classifyLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "classify",
			Name:      "latency_seconds",
			Help:      "Classifier call latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"status"},
	)
	e.complaintsStored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "complaints_saved_total",
			Help:      "Complaints written to the store",
		},
	)
	e.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP API requests",
		},
		[]string{"route", "code"},
	)

	registry.MustRegister(
		e.summaries,
		e.tokenizerFailures,
		e.classifyLatency,
		e.complaintsStored,
		e.httpRequests,
	)
	return e
}

var _ ingest.Observer = (*Exporter)(nil)

// ObserveSummary implements ingest.Observer.
func (e *Exporter) ObserveSummary(tier ingest.Tier) {
	e.summaries.WithLabelValues(tier.String()).Inc()
}

// ObserveTokenizerFailure implements ingest.Observer.
func (e *Exporter) ObserveTokenizerFailure() {
	e.tokenizerFailures.Inc()
}

// ObserveClassify records one classifier call.
func (e *Exporter) ObserveClassify(latency time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	e.classifyLatency.WithLabelValues(status).Observe(latency.Seconds())
}

// RecordComplaintSaved counts a stored complaint.
func (e *Exporter) RecordComplaintSaved() {
	e.complaintsStored.Inc()
}

// RecordHTTPRequest counts an API request by route pattern and status code.
func (e *Exporter) RecordHTTPRequest(route, code string) {
	e.httpRequests.WithLabelValues(route, code).Inc()
}

// Registry returns the underlying registry.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Handler returns the /metrics HTTP handler.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
