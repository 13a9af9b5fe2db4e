// Package metrics exposes pipeline counters in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	reg *prometheus.Registry

	recordsExtracted  prometheus.Counter
	recordsNormalized prometheus.Counter
	recordsSkipped    *prometheus.CounterVec
	coercionFailures  *prometheus.CounterVec
	stagingFailures   prometheus.Counter
	jobsLoaded        prometheus.Counter
	runsTotal         *prometheus.CounterVec
	runDuration       prometheus.Histogram
	lastSuccess       prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		recordsExtracted: f.NewCounter(prometheus.CounterOpts{
			Name: "jobetl_records_extracted_total",
			Help: "Payloads read from the source",
		}),
		recordsNormalized: f.NewCounter(prometheus.CounterOpts{
			Name: "jobetl_records_normalized_total",
			Help: "Payloads mapped into normalized records",
		}),
		recordsSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jobetl_records_skipped_total",
			Help: "Payloads dropped under the skip policy",
		}, []string{"reason"}),
		coercionFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jobetl_field_coercion_failures_total",
			Help: "Numeric fields holding non-numeric values",
		}, []string{"field"}),
		stagingFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "jobetl_staging_write_failures_total",
			Help: "Staging snapshots that could not be written",
		}),
		jobsLoaded: f.NewCounter(prometheus.CounterOpts{
			Name: "jobetl_jobs_loaded_total",
			Help: "Job rows committed with their dependents",
		}),
		runsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jobetl_runs_total",
			Help: "Pipeline attempts by outcome",
		}, []string{"status"}),
		runDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "jobetl_run_duration_seconds",
			Help:    "Duration of one pipeline attempt",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
		lastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Name: "jobetl_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run",
		}),
	}
}

func (m *Metrics) Extracted(n int) {
	if m == nil {
		return
	}
	m.recordsExtracted.Add(float64(n))
}

func (m *Metrics) Normalized() {
	if m == nil {
		return
	}
	m.recordsNormalized.Inc()
}

func (m *Metrics) Skipped(reason string) {
	if m == nil {
		return
	}
	m.recordsSkipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) CoercionFailed(field string) {
	if m == nil {
		return
	}
	m.coercionFailures.WithLabelValues(field).Inc()
}

func (m *Metrics) StagingFailed() {
	if m == nil {
		return
	}
	m.stagingFailures.Inc()
}

func (m *Metrics) Loaded(n int) {
	if m == nil {
		return
	}
	m.jobsLoaded.Add(float64(n))
}

// RunFinished records one attempt. status is "ok" or "failed".
func (m *Metrics) RunFinished(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(status).Inc()
	m.runDuration.Observe(d.Seconds())
	if status == "ok" {
		m.lastSuccess.SetToCurrentTime()
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}
