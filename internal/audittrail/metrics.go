package audittrail

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PromMetrics is the promauto-backed Metrics implementation for the audit
// trail publisher.
type PromMetrics struct {
	published     *prometheus.CounterVec
	publishFailed *prometheus.CounterVec
	sampledOut    prometheus.Counter
}

// NewMetrics registers and returns the audit trail's prometheus metrics.
func NewMetrics() *PromMetrics {
	return &PromMetrics{
		published: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_audittrail_records_published_total",
			Help: "Total audit records successfully published by category.",
		}, []string{"category"}),
		publishFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_audittrail_publish_failures_total",
			Help: "Total audit record publish failures by category.",
		}, []string{"category"}),
		sampledOut: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vigil_audittrail_records_sampled_out_total",
			Help: "Total low-signal audit records dropped by the sampler.",
		}),
	}
}

func (m *PromMetrics) IncrementPublished(category string) {
	if m != nil {
		m.published.WithLabelValues(category).Inc()
	}
}

func (m *PromMetrics) IncrementPublishFailed(category string) {
	if m != nil {
		m.publishFailed.WithLabelValues(category).Inc()
	}
}

func (m *PromMetrics) IncrementSampledOut() {
	if m != nil {
		m.sampledOut.Inc()
	}
}
