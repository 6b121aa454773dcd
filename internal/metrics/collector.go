// Package metrics exposes prometheus metrics for validation runs.
package metrics

import (
	"time"

	"github.com/JonMunkholm/prevalidate/internal/config"
	"github.com/JonMunkholm/prevalidate/internal/core"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns the validation metrics and the registry they live in.
//
// Metrics:
//   - <ns>_validations_total: runs by result and outcome
//   - <ns>_validation_rows_total: data rows read across all runs
//   - <ns>_validation_duration_seconds: run duration by outcome
//   - <ns>_validations_rejected_total: requests turned away by the limiter
//   - <ns>_validations_active / <ns>_validations_capacity: limiter occupancy
type Collector struct {
	enabled   bool
	namespace string
	registry  *prometheus.Registry

	validations *prometheus.CounterVec
	rows        prometheus.Counter
	duration    *prometheus.HistogramVec
	rejected    prometheus.Counter
}

// NewCollector creates and registers the validation metrics. If registry is
// nil a fresh one is used.
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "prevalidate"
	}

	c := &Collector{
		enabled:   cfg.Enabled,
		namespace: cfg.Namespace,
		registry:  registry,

		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "validations_total",
				Help:      "Total number of input files validated",
			},
			[]string{"result", "outcome"},
		),

		rows: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "validation_rows_total",
				Help:      "Total number of data rows read by validations",
			},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "validation_duration_seconds",
				Help:      "Duration of validation runs in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.1, 3, 10), // 100ms to ~33m
			},
			[]string{"outcome"},
		),

		rejected: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "validations_rejected_total",
				Help:      "Validation requests rejected because every slot was busy",
			},
		),
	}

	registry.MustRegister(c.validations, c.rows, c.duration, c.rejected)

	return c
}

// RecordValidation records one finished run.
func (c *Collector) RecordValidation(report core.Report, elapsed time.Duration) {
	if !c.enabled {
		return
	}

	c.validations.WithLabelValues(string(report.Result), string(report.Outcome)).Inc()
	c.rows.Add(float64(report.RowsProcessed()))
	c.duration.WithLabelValues(string(report.Outcome)).Observe(elapsed.Seconds())
}

// RecordRejected records a request the limiter turned away.
func (c *Collector) RecordRejected() {
	if !c.enabled {
		return
	}
	c.rejected.Inc()
}

// TrackLimiter exposes the limiter's occupancy as gauges sampled at scrape time.
func (c *Collector) TrackLimiter(l *core.ValidationLimiter) {
	c.registry.MustRegister(
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: c.namespace,
				Name:      "validations_active",
				Help:      "Validations currently running",
			},
			func() float64 { return float64(l.ActiveCount()) },
		),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: c.namespace,
				Name:      "validations_capacity",
				Help:      "Maximum number of concurrent validations",
			},
			func() float64 { return float64(l.MaxConcurrent()) },
		),
	)
}

// Registry returns the registry the collector registered into.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
