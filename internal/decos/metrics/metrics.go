package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers calls from this service into the Decos API.
type Metrics struct {
	// Upstream call latency by operation and outcome
	RequestLatency *prometheus.HistogramVec

	// Upstream failures by operation and kind (status, transport, circuit_open)
	Failures *prometheus.CounterVec

	// Folder pages fetched per case listing
	Pages prometheus.Histogram

	// 1 while the circuit breaker is open
	CircuitOpen prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "decosjoin_upstream_request_duration_seconds",
			Help:    "Latency of Decos API calls",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"operation", "outcome"}),

		Failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "decosjoin_upstream_failures_total",
			Help: "Failed Decos API calls by operation and failure kind",
		}, []string{"operation", "kind"}),

		Pages: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "decosjoin_upstream_folder_pages",
			Help:    "Number of pages fetched for one paginated listing",
			Buckets: []float64{1, 2, 3, 5, 8, 13},
		}),

		CircuitOpen: f.NewGauge(prometheus.GaugeOpts{
			Name: "decosjoin_upstream_circuit_open",
			Help: "Whether the Decos circuit breaker is open (1) or closed (0)",
		}),
	}
}

func (m *Metrics) ObserveRequest(operation, outcome string, d time.Duration) {
	if m != nil {
		m.RequestLatency.WithLabelValues(operation, outcome).Observe(d.Seconds())
	}
}

func (m *Metrics) IncFailure(operation, kind string) {
	if m != nil {
		m.Failures.WithLabelValues(operation, kind).Inc()
	}
}

func (m *Metrics) ObservePages(n int) {
	if m != nil {
		m.Pages.Observe(float64(n))
	}
}

func (m *Metrics) SetCircuitOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.CircuitOpen.Set(1)
	} else {
		m.CircuitOpen.Set(0)
	}
}
