// Package clock abstracts time for the actor runtime so scheduled messages
// and restart backoff can be driven deterministically in tests.
package clock

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Timer is a pending callback created by Clock.AfterFunc.
type Timer interface {
	// Stop prevents the callback from running. It returns false if the
	// callback already ran or the timer was already stopped.
	Stop() bool
}

type Clock interface {
	Now() time.Time
	// AfterFunc calls f in its own goroutine once d has elapsed.
	AfterFunc(d time.Duration, f func()) Timer
}

var wall = Wrap(clockwork.NewRealClock())

// Real returns the wall clock.
func Real() Clock { return wall }

// Wrap adapts a clockwork clock, e.g. a clockwork.FakeClock shared with other
// components. Note that clockwork runs AfterFunc callbacks in their own
// goroutine, also for fake clocks; use Manual when callbacks must have run
// by the time the clock was advanced.
func Wrap(c clockwork.Clock) Clock { return wrapped{c: c} }

type wrapped struct{ c clockwork.Clock }

func (w wrapped) Now() time.Time { return w.c.Now() }

func (w wrapped) AfterFunc(d time.Duration, f func()) Timer {
	return w.c.AfterFunc(d, f)
}

// Every calls f each period until the returned Timer is stopped. The next
// tick is armed after f returns, so slow callbacks never overlap.
func Every(c Clock, period time.Duration, f func()) Timer {
	e := &everyTimer{clock: c, period: period, f: f}
	e.arm()
	return e
}

type everyTimer struct {
	clock  Clock
	period time.Duration
	f      func()

	mu      sync.Mutex
	current Timer
	stopped bool
}

func (e *everyTimer) arm() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	e.current = e.clock.AfterFunc(e.period, e.tick)
}

func (e *everyTimer) tick() {
	e.mu.Lock()
	stopped := e.stopped
	e.mu.Unlock()
	if stopped {
		return
	}
	e.f()
	e.arm()
}

func (e *everyTimer) Stop() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return false
	}
	e.stopped = true
	if e.current != nil {
		e.current.Stop()
	}
	return true
}
