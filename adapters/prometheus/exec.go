package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/actr-go/core/exec"
	"github.com/codewandler/actr-go/core/metrics"
)

// ExecMetrics implements exec.Metrics.
type ExecMetrics struct {
	inflight     prometheus.Gauge
	taskDuration prometheus.Histogram
	tasksTotal   *prometheus.CounterVec
}

func NewExecMetrics(reg prometheus.Registerer) *ExecMetrics {
	m := &ExecMetrics{
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "exec_inflight",
			Help:      "Number of tasks currently running on the executor",
		}),
		taskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "exec_task_duration_seconds",
			Help:      "Task run time in seconds",
			Buckets:   prometheus.ExponentialBuckets(.001, 4, 12),
		}),
		tasksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exec_tasks_total",
			Help:      "Total number of tasks completed",
		}, []string{"success"}),
	}

	reg.MustRegister(m.inflight, m.taskDuration, m.tasksTotal)
	return m
}

func (m *ExecMetrics) Inflight(count int) {
	m.inflight.Set(float64(count))
}

func (m *ExecMetrics) TaskDuration() metrics.Timer {
	return newTimer(m.taskDuration)
}

func (m *ExecMetrics) TaskCompleted(success bool) {
	m.tasksTotal.WithLabelValues(boolToStr(success)).Inc()
}

var _ exec.Metrics = (*ExecMetrics)(nil)
