package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RulesRegistered prometheus.Counter
	Evaluations     *prometheus.CounterVec
	CacheLookups    *prometheus.CounterVec
	CacheBypassed   prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RulesRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "vaxledger_rules_registered_total",
			Help: "Total number of acceptance rule registrations (including replacements)",
		}),
		Evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vaxledger_rule_evaluations_total",
			Help: "Rule evaluations by verdict",
		}, []string{"verdict"}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vaxledger_rule_cache_lookups_total",
			Help: "Rule cache lookups by result (hit, miss, error)",
		}, []string{"result"}),
		CacheBypassed: factory.NewCounter(prometheus.CounterOpts{
			Name: "vaxledger_rule_cache_bypassed_total",
			Help: "Rule reads served from the source store while the cache circuit was open",
		}),
	}
}

func (m *Metrics) IncrementRegistered() {
	m.RulesRegistered.Inc()
}

func (m *Metrics) ObserveVerdict(verdict string) {
	m.Evaluations.WithLabelValues(verdict).Inc()
}

func (m *Metrics) ObserveCacheLookup(result string) {
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementBypassed() {
	m.CacheBypassed.Inc()
}
