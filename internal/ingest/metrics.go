package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PromMetrics is the promauto-backed Metrics implementation for the ingest
// handler.
type PromMetrics struct {
	accepted *prometheus.CounterVec
	rejected *prometheus.CounterVec
}

// NewMetrics registers and returns the ingest handler's prometheus metrics.
func NewMetrics() *PromMetrics {
	return &PromMetrics{
		accepted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_ingest_events_accepted_total",
			Help: "Total events admitted onto the scoring queue by action.",
		}, []string{"action"}),
		rejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_ingest_events_rejected_total",
			Help: "Total ingest requests rejected by reason.",
		}, []string{"reason"}),
	}
}

func (m *PromMetrics) IncrementAccepted(action string) {
	if m != nil {
		m.accepted.WithLabelValues(action).Inc()
	}
}

func (m *PromMetrics) IncrementRejected(reason string) {
	if m != nil {
		m.rejected.WithLabelValues(reason).Inc()
	}
}
