// Package prometheus provides Prometheus implementations of the runtime's
// metrics interfaces: actor.Metrics for actors and exec.Metrics for
// executors.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/actr-go/core/metrics"
)

const namespace = "actr"

// Default histogram buckets for latency metrics (in seconds).
var defaultBuckets = []float64{
	.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5,
}

func newTimer(o prometheus.Observer) metrics.Timer {
	return metrics.Since(o)
}

func boolToStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// AllMetrics holds the Prometheus implementations for the whole runtime.
type AllMetrics struct {
	Actor *ActorMetrics
	Exec  *ExecMetrics
}

// NewAllMetrics registers every runtime metric with reg.
func NewAllMetrics(reg prometheus.Registerer) *AllMetrics {
	return &AllMetrics{
		Actor: NewActorMetrics(reg),
		Exec:  NewExecMetrics(reg),
	}
}
