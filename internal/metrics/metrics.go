// Package metrics exposes studio counters in the Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "flipdot"

// Export results
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	Exports        *prometheus.CounterVec
	EncodeDuration prometheus.Histogram
	ExportBytes    prometheus.Histogram
	PlayersActive  prometheus.Gauge
	FramesSent     *prometheus.CounterVec
}

// New creates a registry holding the studio metrics plus the Go runtime
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Lottie exports by source and result.",
		}, []string{"source", "result"}),
		EncodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "encode_duration_seconds",
			Help:      "Time spent encoding a Lottie document.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		ExportBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_bytes",
			Help:      "Size of encoded Lottie documents.",
			Buckets:   prometheus.ExponentialBuckets(4096, 2, 10),
		}),
		PlayersActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "players_active",
			Help:      "Playback loops currently running.",
		}),
		FramesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_sent_total",
			Help:      "Frames pushed to playback sinks.",
		}, []string{"sink"}),
	}

	m.registry.MustRegister(
		m.Exports,
		m.EncodeDuration,
		m.ExportBytes,
		m.PlayersActive,
		m.FramesSent,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveExport records one export attempt.
func (m *Metrics) ObserveExport(source, result string, took time.Duration, size int) {
	m.Exports.WithLabelValues(source, result).Inc()
	if result == ResultOK {
		m.EncodeDuration.Observe(took.Seconds())
		m.ExportBytes.Observe(float64(size))
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
