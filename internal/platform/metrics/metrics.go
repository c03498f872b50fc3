package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	AdjudicationsTotal *prometheus.CounterVec
	FanOutFailures     *prometheus.CounterVec
	EmailsScheduled    prometheus.Counter
	OutboxPublished    prometheus.Counter
	QueueDepth         prometheus.Gauge
	HTTPLatency        *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		AdjudicationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "skgov_adjudications_total",
			Help: "Adjudication outcomes partitioned by action and result",
		}, []string{"action", "result"}),
		FanOutFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "skgov_fanout_failures_total",
			Help: "Post-commit side effect failures by channel",
		}, []string{"channel"}),
		EmailsScheduled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "skgov_emails_scheduled_total",
			Help: "Notification emails handed to the mail scheduler",
		}),
		OutboxPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "skgov_audit_outbox_published_total",
			Help: "Audit outbox rows published to Kafka",
		}),
		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "skgov_validation_queue_depth",
			Help: "Number of survey responses awaiting adjudication",
		}),
		HTTPLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "skgov_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// ObserveAdjudication records one adjudication outcome.
func (m *Metrics) ObserveAdjudication(action, result string) {
	if m == nil {
		return
	}
	m.AdjudicationsTotal.WithLabelValues(action, result).Inc()
}

// AddOutboxPublished records audit outbox rows acknowledged by Kafka.
func (m *Metrics) AddOutboxPublished(n int) {
	if m == nil {
		return
	}
	m.OutboxPublished.Add(float64(n))
}

// SetQueueDepth records the current number of pending queue entries.
func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(n))
}

// ObserveFanOutFailure records a failed post-commit side effect.
func (m *Metrics) ObserveFanOutFailure(channel string) {
	if m == nil {
		return
	}
	m.FanOutFailures.WithLabelValues(channel).Inc()
}
