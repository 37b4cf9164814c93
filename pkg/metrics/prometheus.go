package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	snapshotLoads *prometheus.CounterVec
	fetches       *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	lastClose     *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
}

// New creates a recorder registered on the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a recorder registered on reg. A nil reg leaves
// the collectors unregistered.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		snapshotLoads: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "govtracker_snapshot_loads_total",
				Help: "Snapshot loads by outcome (loaded, cache_hit, missing, error)",
			},
			[]string{"result"},
		),
		fetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "govtracker_fetch_total",
				Help: "Per-series fetch outcomes of the refresh job",
			},
			[]string{"result"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "govtracker_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastClose: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "govtracker_last_close",
				Help: "Last close of a series as seen by the last load or fetch",
			},
			[]string{"key"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "govtracker_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordSnapshotLoad counts one snapshot load outcome.
func (r *Recorder) RecordSnapshotLoad(result string) {
	r.snapshotLoads.WithLabelValues(result).Inc()
}

// RecordFetch counts one fetch outcome.
func (r *Recorder) RecordFetch(result string) {
	r.fetches.WithLabelValues(result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastClose records the last close for a series key.
func (r *Recorder) RecordLastClose(key string, value float64) {
	r.lastClose.WithLabelValues(key).Set(value)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
