package reconcile

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks reconciliation outcomes.
type Metrics struct {
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers reconciliation metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "afparfum",
		Subsystem: "reconcile",
		Name:      "outcomes_total",
		Help:      "Reconciliation attempts by outcome and matching strategy.",
	}, []string{"source", "outcome", "strategy"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "afparfum",
		Subsystem: "reconcile",
		Name:      "duration_seconds",
		Help:      "Time spent resolving and confirming a signal.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source"})

	reg.MustRegister(outcomes, duration)
	return &Metrics{outcomes: outcomes, duration: duration}
}

func (m *Metrics) observe(source string, res Result, err error, started time.Time) {
	if m == nil {
		return
	}
	outcome := string(res.Outcome)
	if err != nil {
		outcome = "error"
	}
	strategy := res.Strategy
	if strategy == "" {
		strategy = "none"
	}
	m.outcomes.WithLabelValues(source, outcome, strategy).Inc()
	m.duration.WithLabelValues(source).Observe(time.Since(started).Seconds())
}
