// Package metrics exposes replication and recording counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "motion_collector"

// Metrics holds the collectors. It satisfies replication.Metrics.
type Metrics struct {
	registry *prometheus.Registry

	scansTotal         *prometheus.CounterVec
	uploadsStarted     prometheus.Counter
	uploadsTotal       *prometheus.CounterVec
	uploadsInFlight    prometheus.Gauge
	uploadProgress     prometheus.Gauge
	uploadDuration     *prometheus.HistogramVec
	recordingsFinished *prometheus.CounterVec
	samplesCaptured    prometheus.Counter
}

// New registers the collectors on a fresh registry, together with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		scansTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upload_scans_total",
				Help:      "Upload queue scans by result",
			},
			[]string{"result"},
		),

		uploadsStarted: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "uploads_started_total",
				Help:      "Transfers started",
			},
		),

		uploadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "uploads_total",
				Help:      "Finished transfers by outcome",
			},
			[]string{"uploaded"},
		),

		uploadsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "uploads_in_flight",
				Help:      "Transfers currently running",
			},
		),

		uploadProgress: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "upload_progress_ratio",
				Help:      "Progress of the current transfer between 0 and 1",
			},
		),

		uploadDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upload_duration_seconds",
				Help:      "Transfer duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
			},
			[]string{"uploaded"},
		),

		recordingsFinished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recordings_finished_total",
				Help:      "Recordings finished by resulting state",
			},
			[]string{"state"},
		),

		samplesCaptured: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "samples_captured_total",
				Help:      "Samples written to recording artifacts",
			},
		),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ScanCompleted(result string) {
	m.scansTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) UploadStarted() {
	m.uploadsStarted.Inc()
	m.uploadsInFlight.Inc()
	m.uploadProgress.Set(0)
}

func (m *Metrics) UploadProgress(fraction float64) {
	m.uploadProgress.Set(fraction)
}

func (m *Metrics) UploadFinished(uploaded bool, elapsed time.Duration) {
	label := strconv.FormatBool(uploaded)
	m.uploadsTotal.WithLabelValues(label).Inc()
	m.uploadDuration.WithLabelValues(label).Observe(elapsed.Seconds())
	m.uploadsInFlight.Dec()
}

// RecordingFinished counts a recording leaving the recording state.
func (m *Metrics) RecordingFinished(state string, samples int) {
	m.recordingsFinished.WithLabelValues(state).Inc()
	m.samplesCaptured.Add(float64(samples))
}
