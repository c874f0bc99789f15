// Package metrics defines the instrument interfaces the actor runtime reports
// through, so core packages stay independent of any metrics backend.
package metrics

import "time"

// Histogram samples observations, typically durations in seconds.
type Histogram interface {
	Observe(value float64)
}

// Timer measures one operation. Call ObserveDuration when it completes:
//
//	defer m.MessageDuration(msgType).ObserveDuration()
type Timer interface {
	ObserveDuration()
}

// Since starts a Timer that records elapsed seconds into h.
func Since(h Histogram) Timer {
	return &histogramTimer{h: h, start: time.Now()}
}

type histogramTimer struct {
	h     Histogram
	start time.Time
}

func (t *histogramTimer) ObserveDuration() {
	t.h.Observe(time.Since(t.start).Seconds())
}
