package broadcast

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PromMetrics is the promauto-backed Metrics implementation for the
// broadcast hub.
type PromMetrics struct {
	connected    prometheus.Counter
	disconnected prometheus.Counter
	dropped      *prometheus.CounterVec
	broadcast    *prometheus.CounterVec
}

// NewMetrics registers and returns the broadcast hub's prometheus metrics.
func NewMetrics() *PromMetrics {
	return &PromMetrics{
		connected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vigil_broadcast_sessions_connected_total",
			Help: "Total admin websocket sessions established.",
		}),
		disconnected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vigil_broadcast_sessions_disconnected_total",
			Help: "Total admin websocket sessions torn down.",
		}),
		dropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_broadcast_messages_dropped_total",
			Help: "Total broadcast messages dropped by reason.",
		}, []string{"reason"}),
		broadcast: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_broadcast_messages_sent_total",
			Help: "Total broadcast messages fanned out by message type.",
		}, []string{"message_type"}),
	}
}

func (m *PromMetrics) IncrementConnected() {
	if m != nil {
		m.connected.Inc()
	}
}

func (m *PromMetrics) IncrementDisconnected() {
	if m != nil {
		m.disconnected.Inc()
	}
}

func (m *PromMetrics) IncrementDropped(reason string) {
	if m != nil {
		m.dropped.WithLabelValues(reason).Inc()
	}
}

func (m *PromMetrics) IncrementBroadcast(messageType string) {
	if m != nil {
		m.broadcast.WithLabelValues(messageType).Inc()
	}
}
