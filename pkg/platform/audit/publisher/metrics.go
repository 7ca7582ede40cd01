package publisher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts emitted audit events by retention category.
type Metrics struct {
	Emitted *prometheus.CounterVec
	Failed  *prometheus.CounterVec
}

// NewMetrics registers the publisher counters with reg. A nil reg leaves
// them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Emitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vaxledger_audit_events_emitted_total",
			Help: "Audit events accepted by the publisher, by category",
		}, []string{"category"}),
		Failed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vaxledger_audit_events_failed_total",
			Help: "Audit events the publisher could not hand to its store, by category",
		}, []string{"category"}),
	}
}

func (m *Metrics) observe(action string, err error) {
	if m == nil {
		return
	}
	category := string(categoryOf(action))
	if err != nil {
		m.Failed.WithLabelValues(category).Inc()
		return
	}
	m.Emitted.WithLabelValues(category).Inc()
}
