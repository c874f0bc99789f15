package actor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/codewandler/actr-go/core/clock"
	"github.com/codewandler/actr-go/core/mailbox"
)

type selfKey struct{}

func isSelf[A any](ctx context.Context, c *cell[A]) bool {
	v, _ := ctx.Value(selfKey{}).(*cell[A])
	return v == c
}

// Context is the execution environment of one actor instance. It owns the
// actor value, runs the message loop and tracks scheduled messages.
//
// Methods documented as loop-only may only be called from handlers and
// lifecycle hooks of the same actor.
type Context[A any] struct {
	cell   *cell[A]
	mb     *mailbox.Mailbox[*Envelope[A]]
	act    A
	ctx    context.Context
	cancel context.CancelFunc
	log    *slog.Logger
	onExit func(cause error)

	// loop-only
	current string
	stopReq bool
	failure *HandlerFailure

	timersMu     sync.Mutex
	timers       map[*Timer]struct{}
	timersClosed bool
}

func newContext[A any](c *cell[A], mb *mailbox.Mailbox[*Envelope[A]], act A, onExit func(error)) *Context[A] {
	ctx, cancel := context.WithCancel(context.WithValue(c.opts.Context, selfKey{}, c))
	c.state.Store(int32(StateCreated))
	return &Context[A]{
		cell:   c,
		mb:     mb,
		act:    act,
		ctx:    ctx,
		cancel: cancel,
		log:    c.log,
		onExit: onExit,
		timers: make(map[*Timer]struct{}),
	}
}

// Spawn starts act in its own message loop and returns the first strong
// handle to it.
func Spawn[A any](act A, opts Options) *Addr[A] {
	return Create(func(*Context[A]) A { return act }, opts)
}

// Create is like Spawn but builds the actor with access to its Context,
// e.g. to keep a weak handle to itself.
func Create[A any](build func(c *Context[A]) A, opts Options) *Addr[A] {
	opts = opts.withDefaults()
	c := newCell[A](opts)
	var zero A
	ctx := newContext(c, c.newMailbox(), zero, c.finish)
	ctx.act = build(ctx)
	opts.Executor.Go(ctx.run)
	return &Addr[A]{c: c}
}

// Context is canceled when the instance stops. Passing it to Ask lets the
// runtime detect requests a handler makes to its own actor.
func (c *Context[A]) Context() context.Context { return c.ctx }

func (c *Context[A]) Log() *slog.Logger { return c.log }

func (c *Context[A]) ID() string {
	if c == nil {
		return ""
	}
	return c.cell.id
}

func (c *Context[A]) State() State { return State(c.cell.state.Load()) }

func (c *Context[A]) Clock() clock.Clock { return c.cell.opts.Clock }

// Self returns a weak handle to this actor.
func (c *Context[A]) Self() *WeakAddr[A] { return &WeakAddr[A]{c: c.cell} }

// Addr returns a new strong handle to this actor, if it is still alive. The
// caller must Release it.
func (c *Context[A]) Addr() (*Addr[A], bool) { return c.Self().Upgrade() }

// Stop asks the loop to stop after the current message. Messages still
// queued resolve with ErrCanceled. Loop-only.
func (c *Context[A]) Stop() { c.stopReq = true }

// Fail stops the instance with a *HandlerFailure wrapping err, as if the
// current handler had panicked. Loop-only.
func (c *Context[A]) Fail(err error) {
	if c.failure != nil {
		return
	}
	if err == nil {
		err = errors.New("failed")
	}
	c.failure = &HandlerFailure{ActorID: c.ID(), MsgType: c.current, Cause: err}
}

// Schedule runs f outside the actor on the configured executor. f must not
// touch actor state; it can send messages back through Self.
func (c *Context[A]) Schedule(f func(ctx context.Context)) {
	c.cell.opts.Executor.Go(func() { f(c.ctx) })
}

func (c *Context[A]) failed() error {
	if c == nil || c.failure == nil {
		return nil
	}
	return c.failure
}

func (c *Context[A]) metrics() Metrics { return c.cell.opts.Metrics }

func (c *Context[A]) setState(s State) {
	c.cell.state.Store(int32(s))
}

func (c *Context[A]) run() {
	c.terminate(c.loop())
}

func (c *Context[A]) loop() error {
	c.setState(StateStarting)
	if s, ok := any(c.act).(Starter[A]); ok {
		if f := c.guard("OnStart", func() error { return s.OnStart(c) }); f != nil {
			c.failure = f
		}
		if c.failure != nil {
			return c.failure
		}
	}

	c.setState(StateRunning)
	c.metrics().ActorStarted(c.ID())
	c.log.Debug("actor started")

	for {
		if c.stopReq {
			c.stopReq = false
			if c.stopping(true) {
				return c.failed()
			}
			continue
		}

		env, err := c.mb.Recv(c.ctx)
		if err != nil {
			c.stopping(false)
			return c.failed()
		}
		if err := c.handle(env); err != nil {
			return err
		}
	}
}

func (c *Context[A]) handle(env *Envelope[A]) error {
	mt := env.MessageType()
	c.current = mt
	timer := c.metrics().MessageDuration(mt)
	err := env.Apply(c.act, c)
	timer.ObserveDuration()
	c.current = ""

	if err != nil {
		var hf *HandlerFailure
		if !errors.As(err, &hf) {
			hf = &HandlerFailure{ActorID: c.ID(), MsgType: mt, Cause: err}
		}
		if c.failure == nil {
			c.failure = hf
		}
		c.metrics().MessagePanic(mt)
		c.metrics().MessageProcessed(mt, false)
		c.log.Error("actor panicked",
			slog.String("msg_type", mt),
			slog.Any("recovered", hf.Recovered),
			slog.String("stack", string(hf.Stack)),
		)
		return c.failure
	}
	if c.failure != nil {
		c.metrics().MessageProcessed(mt, false)
		c.log.Error("handler failed", slog.String("msg_type", mt), slog.Any("error", c.failure.Cause))
		return c.failure
	}
	c.metrics().MessageProcessed(mt, true)
	return nil
}

// stopping enters StateStopping and runs OnStop. It returns false if the
// actor vetoed a stop it requested itself.
func (c *Context[A]) stopping(vetoable bool) bool {
	c.setState(StateStopping)
	s, ok := any(c.act).(Stopper[A])
	if !ok {
		return true
	}
	var keep bool
	if f := c.guard("OnStop", func() error { keep = s.OnStop(c); return nil }); f != nil {
		if c.failure == nil {
			c.failure = f
		}
		return true
	}
	if keep && vetoable {
		c.log.Debug("stop vetoed")
		c.setState(StateRunning)
		return false
	}
	return true
}

func (c *Context[A]) terminate(cause error) {
	if c.State() != StateStopping {
		c.stopping(false)
	}
	if cause == nil {
		cause = c.failed()
	}

	c.stopTimers()
	c.mb.Close()

	if f, ok := any(c.act).(Finalizer[A]); ok {
		if hf := c.guard("OnStopped", func() error { f.OnStopped(c); return nil }); hf != nil && cause == nil {
			cause = hf
		}
	}

	c.cancel()
	c.setState(StateStopped)
	c.metrics().ActorStopped(c.ID(), cause != nil)
	if cause != nil {
		c.log.Warn("actor stopped", slog.Any("error", cause))
	} else {
		c.log.Debug("actor stopped")
	}
	c.onExit(cause)
}

// guard runs a lifecycle hook, turning an error or panic into a failure.
func (c *Context[A]) guard(hook string, f func() error) (failure *HandlerFailure) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("actor panicked", slog.String("hook", hook), slog.Any("recovered", r))
			failure = &HandlerFailure{
				ActorID:   c.ID(),
				MsgType:   hook,
				Cause:     recoveredCause(r),
				Recovered: r,
				Stack:     debug.Stack(),
			}
		}
	}()
	if err := f(); err != nil {
		return &HandlerFailure{ActorID: c.ID(), MsgType: hook, Cause: fmt.Errorf("%s: %w", hook, err)}
	}
	return nil
}
