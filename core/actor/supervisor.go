package actor

import (
	"log/slog"
	"time"

	"github.com/codewandler/actr-go/core/mailbox"
)

// BackoffFunc returns the delay before restart number attempt (0-based).
type BackoffFunc func(attempt int) time.Duration

// ExponentialBackoff doubles the delay from base on every attempt, capped
// at max.
func ExponentialBackoff(base, max time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		d := base
		for i := 0; i < attempt && d < max; i++ {
			d *= 2
		}
		if d > max {
			d = max
		}
		return d
	}
}

// ConstantBackoff waits d before every restart.
func ConstantBackoff(d time.Duration) BackoffFunc {
	return func(int) time.Duration { return d }
}

// RestartPolicy decides whether a failed instance is replaced.
type RestartPolicy struct {
	// MaxRestarts caps the number of restarts; negative means unlimited.
	MaxRestarts int
	// Backoff delays each restart; nil restarts immediately.
	Backoff BackoffFunc
}

func NoRestart() RestartPolicy { return RestartPolicy{} }

// Restart allows up to n immediate restarts.
func Restart(n int) RestartPolicy { return RestartPolicy{MaxRestarts: n} }

func RestartForever() RestartPolicy { return RestartPolicy{MaxRestarts: -1} }

// Backoff allows up to n restarts, each delayed by b.
func Backoff(n int, b BackoffFunc) RestartPolicy {
	return RestartPolicy{MaxRestarts: n, Backoff: b}
}

func (p RestartPolicy) allows(restarts int) bool {
	return p.MaxRestarts < 0 || restarts < p.MaxRestarts
}

func (p RestartPolicy) delay(attempt int) time.Duration {
	if p.Backoff == nil {
		return 0
	}
	return p.Backoff(attempt)
}

type SupervisorOptions struct {
	Options
	Policy RestartPolicy
}

type supervisor[A any] struct {
	cell    *cell[A]
	factory func() A
	policy  RestartPolicy
}

// Supervise runs actors built by factory behind one stable Addr. When an
// instance fails, the policy decides whether a fresh instance replaces it.
// Messages sent while a replacement is pending are queued for it; messages
// already taken by the failed instance are not replayed. Clean stops are
// never restarted.
func Supervise[A any](factory func() A, opts SupervisorOptions) *Addr[A] {
	o := opts.Options.withDefaults()
	s := &supervisor[A]{
		cell:    newCell[A](o),
		factory: factory,
		policy:  opts.Policy,
	}
	s.start(s.cell.newMailbox())
	return &Addr[A]{c: s.cell}
}

func (s *supervisor[A]) start(mb *mailbox.Mailbox[*Envelope[A]]) {
	c := s.cell
	if !c.alive.Load() {
		c.finish(nil)
		return
	}
	act, failure := s.build()
	if failure != nil {
		s.exited(failure)
		return
	}
	ctx := newContext(c, mb, act, s.exited)
	c.opts.Executor.Go(ctx.run)
}

func (s *supervisor[A]) build() (act A, failure error) {
	defer func() {
		if r := recover(); r != nil {
			failure = &HandlerFailure{ActorID: s.cell.id, MsgType: "factory", Cause: recoveredCause(r), Recovered: r}
		}
	}()
	return s.factory(), nil
}

func (s *supervisor[A]) exited(cause error) {
	c := s.cell
	if cause == nil || !c.alive.Load() {
		c.finish(cause)
		return
	}

	attempt := int(c.restarts.Load())
	if !s.policy.allows(attempt) {
		c.log.Warn("restart limit reached", slog.Int("restarts", attempt), slog.Any("error", cause))
		c.finish(cause)
		return
	}
	c.restarts.Add(1)

	// A factory failure leaves the mailbox open; keep what was queued.
	mb := c.mb.Load()
	if mb.Closed() {
		mb = c.newMailbox()
	}
	if !c.alive.Load() {
		c.finish(cause)
		return
	}

	delay := s.policy.delay(attempt)
	c.opts.Metrics.ActorRestarted(c.id)
	c.log.Warn("restarting actor",
		slog.Int("attempt", attempt+1),
		slog.Duration("delay", delay),
		slog.Any("error", cause),
	)
	if delay > 0 {
		c.opts.Clock.AfterFunc(delay, func() { s.start(mb) })
		return
	}
	c.opts.Executor.Go(func() { s.start(mb) })
}
