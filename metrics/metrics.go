// Package metrics exposes Prometheus collectors for widget sessions and uploads.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "upload_widget"

type Metrics struct {
	Registry *prometheus.Registry

	sessionsOpened prometheus.Counter
	filesSelected  prometheus.Counter
	filesRejected  *prometheus.CounterVec
	uploads        *prometheus.CounterVec
	uploadedBytes  prometheus.Counter
	uploadDuration prometheus.Histogram
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		sessionsOpened: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "sessions_opened_total",
			Help:      "Widget sessions opened.",
		}),
		filesSelected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "files_selected_total",
			Help:      "Files accepted by the selection filter.",
		}),
		filesRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "files_rejected_total",
			Help:      "Files refused by the selection filter.",
		}, []string{"reason"}),
		uploads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "uploads_total",
			Help:      "Upload attempts by outcome.",
		}, []string{"outcome"}),
		uploadedBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Bytes of successfully uploaded files.",
		}),
		uploadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "upload_duration_seconds",
			Help:      "Duration of upload attempts.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
	}
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessionsOpened.Inc()
}

func (m *Metrics) FilesSelected(n int) {
	if m == nil {
		return
	}
	m.filesSelected.Add(float64(n))
}

func (m *Metrics) FileRejected(reason string) {
	if m == nil {
		return
	}
	m.filesRejected.WithLabelValues(reason).Inc()
}

// UploadFinished records one attempt; size counts only on success.
func (m *Metrics) UploadFinished(outcome string, size int64, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(outcome).Inc()
	m.uploadDuration.Observe(elapsed.Seconds())
	if outcome == "success" {
		m.uploadedBytes.Add(float64(size))
	}
}
