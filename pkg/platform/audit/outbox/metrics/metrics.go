package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the outbox worker.
type Metrics struct {
	PendingDepth    prometheus.Gauge
	PublishedTotal  prometheus.Counter
	PublishFailures prometheus.Counter
	PublishDuration prometheus.Histogram
	BatchSize       prometheus.Histogram
	PollDuration    prometheus.Histogram
}

// New registers the outbox metrics with reg. A nil reg leaves them
// unregistered, which tests use to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	latency := []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}
	return &Metrics{
		PendingDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "vaxledger_outbox_pending_total",
			Help: "Current number of pending (unprocessed) outbox entries",
		}),
		PublishedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "vaxledger_outbox_published_total",
			Help: "Total number of outbox entries successfully published to Kafka",
		}),
		PublishFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "vaxledger_outbox_publish_failures_total",
			Help: "Total number of outbox publish failures",
		}),
		PublishDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "vaxledger_outbox_publish_duration_seconds",
			Help:    "Time taken to publish an outbox entry to Kafka",
			Buckets: latency,
		}),
		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "vaxledger_outbox_batch_size",
			Help:    "Number of entries processed per batch",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
		PollDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "vaxledger_outbox_poll_duration_seconds",
			Help:    "Time taken for each poll cycle",
			Buckets: latency,
		}),
	}
}

func (m *Metrics) SetPendingDepth(count int64) {
	m.PendingDepth.Set(float64(count))
}

func (m *Metrics) IncPublished() {
	m.PublishedTotal.Inc()
}

func (m *Metrics) IncPublishFailures() {
	m.PublishFailures.Inc()
}

func (m *Metrics) ObservePublishDuration(durationSeconds float64) {
	m.PublishDuration.Observe(durationSeconds)
}

func (m *Metrics) ObserveBatchSize(size int) {
	m.BatchSize.Observe(float64(size))
}

func (m *Metrics) ObservePollDuration(durationSeconds float64) {
	m.PollDuration.Observe(durationSeconds)
}
