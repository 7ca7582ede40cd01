package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CentersRegistered    prometheus.Counter
	RegistrationRejected *prometheus.CounterVec
}

// New registers center metrics with reg; nil leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CentersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "vaxledger_centers_registered_total",
			Help: "Total number of vaccination centers registered",
		}),
		RegistrationRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vaxledger_center_registrations_rejected_total",
			Help: "Center registrations rejected, by error code",
		}, []string{"code"}),
	}
}

func (m *Metrics) IncrementRegistered() {
	m.CentersRegistered.Inc()
}

func (m *Metrics) IncrementRejected(code string) {
	m.RegistrationRejected.WithLabelValues(code).Inc()
}
