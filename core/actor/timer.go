package actor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/codewandler/actr-go/core/clock"
)

// Timer is a handle to a scheduled message or an attached stream. All
// timers of an instance are canceled when it stops.
type Timer struct {
	id       string
	canceled atomic.Bool
	// inflight is set while a tick waits for mailbox space.
	inflight atomic.Bool
	done     chan struct{}
	once     sync.Once
	forget   func(*Timer)

	// ctx ends with the timer; blocked deliveries send with it.
	ctx    context.Context
	cancel context.CancelFunc

	mu sync.Mutex
	ct clock.Timer
}

func (t *Timer) ID() string { return t.id }

// Done is closed when a one-shot timer has delivered its message, when a
// stream has ended, or when the timer is canceled.
func (t *Timer) Done() <-chan struct{} { return t.done }

// Cancel prevents further deliveries. It reports whether this call stopped a
// pending delivery. Safe to call from any goroutine, any number of times.
func (t *Timer) Cancel() bool {
	if !t.canceled.CompareAndSwap(false, true) {
		return false
	}
	t.mu.Lock()
	ct := t.ct
	t.mu.Unlock()
	stopped := ct != nil && ct.Stop()
	t.finish()
	return stopped
}

func (t *Timer) finish() {
	t.once.Do(func() {
		t.cancel()
		close(t.done)
		if t.forget != nil {
			t.forget(t)
		}
	})
}

func (t *Timer) setClock(ct clock.Timer) {
	t.mu.Lock()
	t.ct = ct
	t.mu.Unlock()
}

type stopFunc func() bool

func (f stopFunc) Stop() bool { return f() }

// NotifyLater delivers msg to the actor itself after delay.
func NotifyLater[A any, R any](c *Context[A], msg Message[A, R], delay time.Duration) *Timer {
	return c.schedule(delay, false, func() *Envelope[A] { return NewEnvelope(msg, nil) })
}

// NotifyInterval delivers msg to the actor itself every period. A tick that
// falls due while the previous one still waits for mailbox space is
// skipped.
func NotifyInterval[A any, R any](c *Context[A], msg Message[A, R], period time.Duration) *Timer {
	return c.schedule(period, true, func() *Envelope[A] { return NewEnvelope(msg, nil) })
}

// RunLater runs fn inside the actor after delay.
func (c *Context[A]) RunLater(delay time.Duration, fn func(act A, c *Context[A])) *Timer {
	return NotifyLater[A, struct{}](c, runFunc(fn), delay)
}

// RunInterval runs fn inside the actor every period.
func (c *Context[A]) RunInterval(period time.Duration, fn func(act A, c *Context[A])) *Timer {
	return NotifyInterval[A, struct{}](c, runFunc(fn), period)
}

func runFunc[A any](fn func(act A, c *Context[A])) Func[A, struct{}] {
	return func(act A, c *Context[A]) (struct{}, error) {
		fn(act, c)
		return struct{}{}, nil
	}
}

// AddStream delivers every value received from ch to the actor itself, in
// order, blocking while the mailbox is full. It ends when ch is closed, the
// handle is canceled or the instance stops. The pump occupies one executor
// task while it runs.
func AddStream[A any, M Message[A, R], R any](c *Context[A], ch <-chan M) *Timer {
	t, ok := c.newTimer()
	if !ok {
		return t
	}
	t.setClock(stopFunc(func() bool { return t.ctx.Err() == nil }))

	c.cell.opts.Executor.Go(func() {
		defer t.finish()
		for {
			select {
			case <-t.ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || t.ctx.Err() != nil {
					return
				}
				env := NewEnvelope[A, R](m, nil)
				if err := c.mb.Send(t.ctx, env); err != nil {
					env.Discard(err)
					return
				}
			}
		}
	})
	return t
}

// newTimer creates and tracks a timer. Once the instance is stopping it
// returns an already canceled timer and false.
func (c *Context[A]) newTimer() (*Timer, bool) {
	ctx, cancel := context.WithCancel(c.ctx)
	t := &Timer{
		id:     gonanoid.Must(8),
		done:   make(chan struct{}),
		forget: c.untrack,
		ctx:    ctx,
		cancel: cancel,
	}
	if !c.track(t) {
		t.canceled.Store(true)
		t.finish()
		return t, false
	}
	return t, true
}

func (c *Context[A]) schedule(d time.Duration, repeat bool, mk func() *Envelope[A]) *Timer {
	t, ok := c.newTimer()
	if !ok {
		return t
	}

	fire := func() {
		if t.canceled.Load() || t.inflight.Load() {
			return
		}
		after := func() {}
		if !repeat {
			after = t.finish
		}
		c.deliver(t, mk(), after)
	}

	if repeat {
		t.setClock(clock.Every(c.Clock(), d, fire))
	} else {
		t.setClock(c.Clock().AfterFunc(d, fire))
	}
	return t
}

// deliver enqueues a scheduled envelope without blocking the clock. On a
// full mailbox the send moves to the executor and the timer stays inflight
// until it completes; a cancel in the meantime withdraws it.
func (c *Context[A]) deliver(t *Timer, env *Envelope[A], after func()) {
	err := c.mb.TrySend(env)
	if !errors.Is(err, ErrFull) {
		if err != nil {
			env.Discard(err)
		}
		after()
		return
	}

	t.inflight.Store(true)
	c.cell.opts.Executor.Go(func() {
		defer after()
		defer t.inflight.Store(false)
		if t.canceled.Load() {
			env.Discard(context.Canceled)
			return
		}
		if err := c.mb.Send(t.ctx, env); err != nil {
			env.Discard(err)
		}
	})
}

func (c *Context[A]) track(t *Timer) bool {
	c.timersMu.Lock()
	defer c.timersMu.Unlock()
	if c.timersClosed {
		return false
	}
	c.timers[t] = struct{}{}
	return true
}

func (c *Context[A]) untrack(t *Timer) {
	c.timersMu.Lock()
	defer c.timersMu.Unlock()
	delete(c.timers, t)
}

// Timers returns the number of scheduled messages and streams still
// pending.
func (c *Context[A]) Timers() int {
	c.timersMu.Lock()
	defer c.timersMu.Unlock()
	return len(c.timers)
}

func (c *Context[A]) stopTimers() {
	c.timersMu.Lock()
	c.timersClosed = true
	pending := make([]*Timer, 0, len(c.timers))
	for t := range c.timers {
		pending = append(pending, t)
	}
	c.timersMu.Unlock()

	for _, t := range pending {
		t.Cancel()
	}
}
