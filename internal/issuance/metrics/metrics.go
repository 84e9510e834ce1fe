// Package metrics exposes Prometheus metrics for the issuance saga.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the issuance instruments.
type Metrics struct {
	IssuedTotal              prometheus.Counter
	FailuresTotal            *prometheus.CounterVec
	SkippedCorrelativesTotal prometheus.Counter
	IssueDuration            prometheus.Histogram
}

// New creates and registers all issuance metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		IssuedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "recibo_receipts_issued_total",
			Help: "Total number of receipts issued successfully",
		}),
		FailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recibo_issuance_failures_total",
			Help: "Total number of failed issuance sagas by stage",
		}, []string{"stage"}),
		SkippedCorrelativesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "recibo_correlatives_skipped_total",
			Help: "Correlatives spent by sagas that failed after allocation",
		}),
		IssueDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "recibo_issuance_duration_seconds",
			Help:    "Duration of issuance saga runs",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ObserveOutcome records one finished saga run.
func (m *Metrics) ObserveOutcome(stage string, durationSeconds float64, spentCorrelative bool) {
	if m == nil {
		return
	}
	m.IssueDuration.Observe(durationSeconds)
	if stage == "" {
		m.IssuedTotal.Inc()
		return
	}
	m.FailuresTotal.WithLabelValues(stage).Inc()
	if spentCorrelative {
		m.SkippedCorrelativesTotal.Inc()
	}
}
