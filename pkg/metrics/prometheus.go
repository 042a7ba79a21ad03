package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder implements domain.repository.Metrics using Prometheus.
// Every collector lives on the recorder's own registry so tests can build
// as many recorders as they like.
type Recorder struct {
	registry     *prometheus.Registry
	fetches      *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec
	cacheEvents  *prometheus.CounterVec
	comparisons  *prometheus.CounterVec
	compareTime  prometheus.Histogram
	publishes    *prometheus.CounterVec
	publishBytes prometheus.Counter
	errorsTotal  *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg)
}

// NewWithRegistry registers the recorder's collectors on reg.
func NewWithRegistry(reg *prometheus.Registry) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		fetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "peerbench_fdic_fetches_total",
				Help: "FDIC API fetches by outcome",
			},
			[]string{"endpoint", "result"},
		),
		fetchLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "peerbench_fdic_fetch_duration_seconds",
				Help:    "Duration of FDIC API calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"endpoint"},
		),
		cacheEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "peerbench_series_cache_events_total",
				Help: "Series cache lookups by outcome (hit, miss, fallback)",
			},
			[]string{"event"},
		),
		comparisons: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "peerbench_comparisons_total",
				Help: "Assembled comparisons by status and data source",
			},
			[]string{"status", "source"},
		),
		compareTime: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "peerbench_comparison_duration_seconds",
				Help:    "End-to-end comparison assembly time",
				Buckets: prometheus.DefBuckets,
			},
		),
		publishes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "peerbench_kafka_publish_total",
				Help: "Comparison results published to Kafka",
			},
			[]string{"topic", "result"},
		),
		publishBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "peerbench_kafka_publish_bytes_total",
				Help: "Total payload bytes published",
			},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "peerbench_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// Registry exposes the underlying registry, for HTTP middleware registration.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// RecordFetch records one upstream call.
func (r *Recorder) RecordFetch(endpoint string, dur time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.fetches.WithLabelValues(endpoint, result).Inc()
	r.fetchLatency.WithLabelValues(endpoint).Observe(dur.Seconds())
}

// RecordCacheEvent records a cache hit, miss or fallback.
func (r *Recorder) RecordCacheEvent(event string) {
	r.cacheEvents.WithLabelValues(event).Inc()
}

// RecordComparison records one assembled comparison.
func (r *Recorder) RecordComparison(status, source string, dur time.Duration) {
	r.comparisons.WithLabelValues(status, source).Inc()
	r.compareTime.Observe(dur.Seconds())
}

// RecordPublish records one Kafka publish attempt.
func (r *Recorder) RecordPublish(topic string, bytes int, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.publishes.WithLabelValues(topic, result).Inc()
	if err == nil {
		r.publishBytes.Add(float64(bytes))
	}
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
