package notify

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts deliveries per sink.
type Metrics struct {
	deliveries *prometheus.CounterVec
}

// NewMetrics registers notification metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	deliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "afparfum",
		Subsystem: "notify",
		Name:      "deliveries_total",
		Help:      "Notification deliveries by sink and result.",
	}, []string{"sink", "result"})
	reg.MustRegister(deliveries)
	return &Metrics{deliveries: deliveries}
}

func (m *Metrics) observe(sink string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.deliveries.WithLabelValues(sink, result).Inc()
}
