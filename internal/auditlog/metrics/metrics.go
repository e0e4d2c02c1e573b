package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the audit log. All methods are
// nil-safe so callers can run without instrumentation in tests.
type Metrics struct {
	Writes        *prometheus.CounterVec
	WriteFailures *prometheus.CounterVec
	Cleanups      prometheus.Counter
}

// New creates and registers all audit log metrics.
func New() *Metrics {
	return &Metrics{
		Writes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "assina_audit_writes_total",
			Help: "Total audit records persisted, by level and category",
		}, []string{"level", "category"}),

		WriteFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "assina_audit_write_failures_total",
			Help: "Total audit writes that failed, by level and category",
		}, []string{"level", "category"}),

		Cleanups: promauto.NewCounter(prometheus.CounterOpts{
			Name: "assina_audit_cleanup_deleted_total",
			Help: "Total audit records deleted by retention cleanup",
		}),
	}
}

// IncrementWrite records a successful audit write.
func (m *Metrics) IncrementWrite(level, category string) {
	if m != nil {
		m.Writes.WithLabelValues(level, category).Inc()
	}
}

// IncrementWriteFailure records a failed audit write.
func (m *Metrics) IncrementWriteFailure(level, category string) {
	if m != nil {
		m.WriteFailures.WithLabelValues(level, category).Inc()
	}
}

// AddCleanupDeleted records how many rows a retention cleanup removed.
func (m *Metrics) AddCleanupDeleted(count int64) {
	if m != nil && count > 0 {
		m.Cleanups.Add(float64(count))
	}
}
