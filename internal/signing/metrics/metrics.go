package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the signing module. Nil-safe.
type Metrics struct {
	// Eligibility outcomes by classification
	EligibilityOutcome *prometheus.CounterVec

	// Signature attempts by result ("signed", "blocked", "failed")
	SignAttempts *prometheus.CounterVec

	// End-to-end sign operation latency
	SignLatency prometheus.Histogram
}

// New creates and registers all signing module metrics.
func New() *Metrics {
	return &Metrics{
		EligibilityOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "assina_eligibility_outcomes_total",
			Help: "Total eligibility resolutions by classification",
		}, []string{"classification"}),

		SignAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "assina_sign_attempts_total",
			Help: "Total signature attempts by result",
		}, []string{"result"}),

		SignLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "assina_sign_duration_seconds",
			Help:    "Duration of the full sign operation including audit writes",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementOutcome records an eligibility classification.
func (m *Metrics) IncrementOutcome(classification string) {
	if m != nil {
		m.EligibilityOutcome.WithLabelValues(classification).Inc()
	}
}

// IncrementSignAttempt records a signature attempt result.
func (m *Metrics) IncrementSignAttempt(result string) {
	if m != nil {
		m.SignAttempts.WithLabelValues(result).Inc()
	}
}

// ObserveSignLatency records the duration of a sign operation.
func (m *Metrics) ObserveSignLatency(d time.Duration) {
	if m != nil {
		m.SignLatency.Observe(d.Seconds())
	}
}
