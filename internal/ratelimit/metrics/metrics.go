package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Limiter modes.
const (
	ModePrimary  = "redis"
	ModeFallback = "memory"
)

type Metrics struct {
	Checks       *prometheus.CounterVec
	Rejected     *prometheus.CounterVec
	StoreErrors  prometheus.Counter
	CircuitState prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Checks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "decosjoin_ratelimit_checks_total",
			Help: "Total rate limit checks by limiter mode",
		}, []string{"mode"}),
		Rejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "decosjoin_ratelimit_rejected_total",
			Help: "Total requests rejected with 429 by limiter mode",
		}, []string{"mode"}),
		StoreErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "decosjoin_ratelimit_store_errors_total",
			Help: "Total rate limit store failures",
		}),
		CircuitState: f.NewGauge(prometheus.GaugeOpts{
			Name: "decosjoin_ratelimit_circuit_open",
			Help: "Rate limit store circuit state (0=closed, 1=open)",
		}),
	}
}

func (m *Metrics) ObserveCheck(mode string, allowed bool) {
	if m == nil {
		return
	}
	m.Checks.WithLabelValues(mode).Inc()
	if !allowed {
		m.Rejected.WithLabelValues(mode).Inc()
	}
}

func (m *Metrics) IncStoreErrors() {
	if m != nil {
		m.StoreErrors.Inc()
	}
}

func (m *Metrics) SetCircuitOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.CircuitState.Set(1)
	} else {
		m.CircuitState.Set(0)
	}
}
