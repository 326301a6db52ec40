package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for audit delivery.
type Metrics struct {
	Published prometheus.Counter
	Dropped   prometheus.Counter
	Failures  prometheus.Counter
}

// NewMetrics registers the audit metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Published: f.NewCounter(prometheus.CounterOpts{
			Name: "decosjoin_audit_published_total",
			Help: "Total audit events written to the sink",
		}),
		Dropped: f.NewCounter(prometheus.CounterOpts{
			Name: "decosjoin_audit_dropped_total",
			Help: "Total audit events dropped because the buffer was full",
		}),
		Failures: f.NewCounter(prometheus.CounterOpts{
			Name: "decosjoin_audit_sink_failures_total",
			Help: "Total audit events the sink failed to write",
		}),
	}
}

func (m *Metrics) incPublished() {
	if m != nil {
		m.Published.Inc()
	}
}

func (m *Metrics) incDropped() {
	if m != nil {
		m.Dropped.Inc()
	}
}

func (m *Metrics) incFailures() {
	if m != nil {
		m.Failures.Inc()
	}
}
