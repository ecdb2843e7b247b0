package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/bucketbook/internal/ingest"
)

// Metrics holds the server's Prometheus collectors.
type Metrics struct {
	registry    *prometheus.Registry
	submissions *prometheus.CounterVec
	rows        prometheus.Counter
	files       prometheus.Counter
	failures    prometheus.Counter
	uploads     prometheus.Counter
	duration    prometheus.Histogram
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bucketbook",
			Name:      "submissions_total",
			Help:      "Submissions processed, by outcome status.",
		}, []string{"status"}),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bucketbook",
			Name:      "rows_total",
			Help:      "Rows received in non-empty submissions.",
		}),
		files: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bucketbook",
			Name:      "files_written_total",
			Help:      "Entity files written.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bucketbook",
			Name:      "bucket_failures_total",
			Help:      "Buckets that could not be merged.",
		}),
		uploads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bucketbook",
			Name:      "uploads_total",
			Help:      "Raw files saved by the upload endpoint.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bucketbook",
			Name:      "submission_duration_seconds",
			Help:      "Time spent processing one submission.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(m.submissions, m.rows, m.files, m.failures, m.uploads, m.duration)
	return m
}

// Registry returns the registry backing /metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observe(status ingest.Status, res *ingest.Result, seconds float64) {
	m.submissions.WithLabelValues(string(status)).Inc()
	m.duration.Observe(seconds)
	if res == nil {
		return
	}
	m.rows.Add(float64(res.Rows))
	m.files.Add(float64(len(res.Files)))
	m.failures.Add(float64(len(res.Failures)))
}
