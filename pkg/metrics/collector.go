package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mercator-hq/callisto/pkg/event"
)

// Config contains configuration for the metrics collector.
type Config struct {
	// Namespace prefixes every metric name. Default: "callisto".
	Namespace string

	// SaveDurationBuckets are the histogram buckets for store write
	// latencies, in seconds.
	SaveDurationBuckets []float64
}

// Collector registers and records the pipeline's own Prometheus metrics.
//
// Metrics:
//   - callisto_events_total{component, event_type, provider}
//   - callisto_store_errors_total{component}
//   - callisto_save_duration_seconds{backend}
type Collector struct {
	registry *prometheus.Registry

	eventsTotal  *prometheus.CounterVec
	storeErrors  *prometheus.CounterVec
	saveDuration *prometheus.HistogramVec
}

// NewCollector creates a collector registered against the given registry.
// A nil registry gets a fresh one.
func NewCollector(cfg *Config, registry *prometheus.Registry) *Collector {
	if cfg == nil {
		cfg = &Config{}
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "callisto"
	}
	if len(cfg.SaveDurationBuckets) == 0 {
		// Store writes are local; sub-millisecond to low seconds.
		cfg.SaveDurationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0}
	}

	c := &Collector{
		registry: registry,
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "events_total",
				Help:      "Total number of telemetry events emitted",
			},
			[]string{"component", "event_type", "provider"},
		),
		storeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "store_errors_total",
				Help:      "Total number of failed store writes",
			},
			[]string{"component"},
		),
		saveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "save_duration_seconds",
				Help:      "Latency of store writes in seconds",
				Buckets:   cfg.SaveDurationBuckets,
			},
			[]string{"backend"},
		),
	}

	registry.MustRegister(c.eventsTotal, c.storeErrors, c.saveDuration)
	return c
}

// RecordEvent counts one emitted event.
func (c *Collector) RecordEvent(component string, e *event.Event) {
	provider := e.Provider
	if provider == "" {
		provider = "unknown"
	}
	c.eventsTotal.WithLabelValues(component, string(e.Type), provider).Inc()
}

// RecordStoreError counts one failed store write.
func (c *Collector) RecordStoreError(component string) {
	c.storeErrors.WithLabelValues(component).Inc()
}

// ObserveSaveDuration records the latency of one store write.
func (c *Collector) ObserveSaveDuration(backend string, d time.Duration) {
	c.saveDuration.WithLabelValues(backend).Observe(d.Seconds())
}

// Handler returns the HTTP handler serving the registry in Prometheus
// exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
