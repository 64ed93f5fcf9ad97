package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PromMetrics is the promauto-backed Metrics implementation, matching the
// teacher's decision/metrics.Metrics shape.
type PromMetrics struct {
	processDuration prometheus.Histogram
	processed       *prometheus.CounterVec
	failed          *prometheus.CounterVec
	alerts          *prometheus.CounterVec
}

// NewMetrics registers and returns the worker's prometheus metrics.
func NewMetrics() *PromMetrics {
	return &PromMetrics{
		processDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vigil_worker_process_duration_seconds",
			Help:    "Duration of the full per-event scoring pipeline.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		processed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_worker_events_processed_total",
			Help: "Total events processed by final risk level.",
		}, []string{"risk_level"}),
		failed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_worker_stage_failures_total",
			Help: "Total pipeline stage failures by stage name.",
		}, []string{"stage"}),
		alerts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_worker_alerts_created_total",
			Help: "Total alerts created by priority.",
		}, []string{"priority"}),
	}
}

func (m *PromMetrics) ObserveProcessDuration(d time.Duration) {
	if m != nil {
		m.processDuration.Observe(d.Seconds())
	}
}

func (m *PromMetrics) IncrementProcessed(riskLevel string) {
	if m != nil {
		m.processed.WithLabelValues(riskLevel).Inc()
	}
}

func (m *PromMetrics) IncrementFailed(stage string) {
	if m != nil {
		m.failed.WithLabelValues(stage).Inc()
	}
}

func (m *PromMetrics) IncrementAlert(priority string) {
	if m != nil {
		m.alerts.WithLabelValues(priority).Inc()
	}
}
