package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Certifications  *prometheus.CounterVec
	Validations     *prometheus.CounterVec
	ValidateLatency prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Certifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vaxledger_certifications_total",
			Help: "Certification attempts by result code",
		}, []string{"result"}),
		Validations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vaxledger_validations_total",
			Help: "Credential validations by decision and reason code",
		}, []string{"decision", "reason"}),
		ValidateLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "vaxledger_validate_duration_seconds",
			Help:    "Time spent validating a presented credential",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
	}
}

func (m *Metrics) ObserveCertification(result string) {
	m.Certifications.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveValidation(decision, reason string, seconds float64) {
	m.Validations.WithLabelValues(decision, reason).Inc()
	m.ValidateLatency.Observe(seconds)
}
