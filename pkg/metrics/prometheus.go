package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	reloads       *prometheus.CounterVec
	reloadLatency prometheus.Histogram
	snapshotSize  *prometheus.GaugeVec
	computeTime   *prometheus.HistogramVec
	features      *prometheus.HistogramVec
	errorsTotal   *prometheus.CounterVec
}

// New creates a Prometheus recorder registered on the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a recorder registered on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		reloads: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weights_snapshot_reloads_total",
				Help: "Snapshot rebuilds by outcome",
			},
			[]string{"status"},
		),
		reloadLatency: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "weights_snapshot_reload_duration_seconds",
				Help:    "Duration of snapshot rebuilds in seconds",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
			},
		),
		snapshotSize: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "weights_snapshot_size",
				Help: "Number of entries in the installed snapshot",
			},
			[]string{"kind"},
		),
		computeTime: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "weights_compute_duration_seconds",
				Help:    "Duration of weight vector computations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"granularity"},
		),
		features: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "weights_compute_features",
				Help:    "Number of non-zero features per computed vector",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100, 250},
			},
			[]string{"granularity"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weights_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordReload records a rebuild outcome and its duration.
func (r *Recorder) RecordReload(status string, seconds float64) {
	r.reloads.WithLabelValues(status).Inc()
	r.reloadLatency.Observe(seconds)
}

// RecordSnapshotSize records the size of one part of the installed snapshot.
func (r *Recorder) RecordSnapshotSize(kind string, n int) {
	r.snapshotSize.WithLabelValues(kind).Set(float64(n))
}

// RecordCompute records one weight vector computation.
func (r *Recorder) RecordCompute(granularity string, seconds float64, features int) {
	r.computeTime.WithLabelValues(granularity).Observe(seconds)
	r.features.WithLabelValues(granularity).Observe(float64(features))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
