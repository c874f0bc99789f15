package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/actr-go/core/actor"
	"github.com/codewandler/actr-go/core/metrics"
)

// ActorMetrics implements actor.Metrics. Share one instance between actors;
// per-actor series are labelled with actor_id.
type ActorMetrics struct {
	messageDuration *prometheus.HistogramVec
	messagesTotal   *prometheus.CounterVec
	panicTotal      *prometheus.CounterVec
	droppedTotal    *prometheus.CounterVec
	mailboxDepth    *prometheus.GaugeVec
	running         prometheus.Gauge
	stoppedTotal    *prometheus.CounterVec
	restartsTotal   *prometheus.CounterVec
}

func NewActorMetrics(reg prometheus.Registerer) *ActorMetrics {
	m := &ActorMetrics{
		messageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "actor_message_duration_seconds",
			Help:      "Message handling time in seconds",
			Buckets:   defaultBuckets,
		}, []string{"message_type"}),

		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actor_messages_total",
			Help:      "Total number of messages handled",
		}, []string{"message_type", "success"}),

		panicTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actor_panics_total",
			Help:      "Total number of handler panics",
		}, []string{"message_type"}),

		droppedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actor_messages_dropped_total",
			Help:      "Messages dropped by DoSend on a full mailbox",
		}, []string{"actor_id"}),

		mailboxDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "actor_mailbox_depth",
			Help:      "Current mailbox queue depth",
		}, []string{"actor_id"}),

		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "actor_running",
			Help:      "Number of running actor instances",
		}),

		stoppedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actor_stopped_total",
			Help:      "Total number of stopped actor instances",
		}, []string{"failed"}),

		restartsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actor_restarts_total",
			Help:      "Total number of supervised restarts",
		}, []string{"actor_id"}),
	}

	reg.MustRegister(
		m.messageDuration,
		m.messagesTotal,
		m.panicTotal,
		m.droppedTotal,
		m.mailboxDepth,
		m.running,
		m.stoppedTotal,
		m.restartsTotal,
	)

	return m
}

func (m *ActorMetrics) MessageDuration(msgType string) metrics.Timer {
	return newTimer(m.messageDuration.WithLabelValues(msgType))
}

func (m *ActorMetrics) MessageProcessed(msgType string, success bool) {
	m.messagesTotal.WithLabelValues(msgType, boolToStr(success)).Inc()
}

func (m *ActorMetrics) MessagePanic(msgType string) {
	m.panicTotal.WithLabelValues(msgType).Inc()
}

func (m *ActorMetrics) MessageDropped(actorID string) {
	m.droppedTotal.WithLabelValues(actorID).Inc()
}

func (m *ActorMetrics) MailboxDepth(actorID string, depth int) {
	m.mailboxDepth.WithLabelValues(actorID).Set(float64(depth))
}

func (m *ActorMetrics) ActorStarted(string) {
	m.running.Inc()
}

func (m *ActorMetrics) ActorStopped(actorID string, failed bool) {
	m.running.Dec()
	m.stoppedTotal.WithLabelValues(boolToStr(failed)).Inc()
	m.mailboxDepth.DeleteLabelValues(actorID)
}

func (m *ActorMetrics) ActorRestarted(actorID string) {
	m.restartsTotal.WithLabelValues(actorID).Inc()
}

var _ actor.Metrics = (*ActorMetrics)(nil)
