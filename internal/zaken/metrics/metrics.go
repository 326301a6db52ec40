package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Drop reasons recorded by the transformer.
const (
	DropNoDiscriminator = "no_discriminator"
	DropUnknownType     = "unknown_type"
	DropInvalidSource   = "invalid_source"
	DropPendingPayment  = "pending_payment"
	DropVoided          = "voided"
	DropDeleted         = "deleted"
)

// Metrics provides observability for the case transformer.
type Metrics struct {
	// Zaken emitted, by case type
	Transformed *prometheus.CounterVec

	// Raw records skipped, by reason
	Dropped *prometheus.CounterVec

	// Field coercion failures, by output field
	ParseErrors *prometheus.CounterVec

	// Duration of the deferred pass
	DeferLatency prometheus.Histogram
}

// New registers the transformer metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Transformed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "decosjoin_zaken_transformed_total",
			Help: "Total zaken produced by the transformer by case type",
		}, []string{"case_type"}),

		Dropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "decosjoin_zaken_dropped_total",
			Help: "Total raw records dropped by the transformer by reason",
		}, []string{"reason"}),

		ParseErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "decosjoin_zaken_parse_errors_total",
			Help: "Total field values that could not be coerced and were nulled",
		}, []string{"field"}),

		DeferLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "decosjoin_zaken_defer_duration_seconds",
			Help:    "Duration of the deferred transform pass including workflow lookups",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

func (m *Metrics) IncTransformed(caseType string) {
	if m != nil {
		m.Transformed.WithLabelValues(caseType).Inc()
	}
}

func (m *Metrics) IncDropped(reason string) {
	if m != nil {
		m.Dropped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) IncParseError(field string) {
	if m != nil {
		m.ParseErrors.WithLabelValues(field).Inc()
	}
}

func (m *Metrics) ObserveDeferLatency(d time.Duration) {
	if m != nil {
		m.DeferLatency.Observe(d.Seconds())
	}
}
