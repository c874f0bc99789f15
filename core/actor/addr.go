package actor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/codewandler/actr-go/core/mailbox"
)

// cell is the identity shared by all Addr and WeakAddr handles of one actor.
// Under supervision it outlives individual instances; mb always points to
// the mailbox of the current instance.
type cell[A any] struct {
	id     string
	opts   Options
	log    *slog.Logger
	strong atomic.Int64
	alive  atomic.Bool
	mb     atomic.Pointer[mailbox.Mailbox[*Envelope[A]]]
	state  atomic.Int32

	restarts atomic.Int32

	done     chan struct{}
	doneOnce sync.Once
	mu       sync.Mutex
	cause    error
}

func newCell[A any](opts Options) *cell[A] {
	c := &cell[A]{
		id:   opts.ID,
		opts: opts,
		log:  opts.Logger.With(slog.String("actor", opts.ID)),
		done: make(chan struct{}),
	}
	c.alive.Store(true)
	c.strong.Store(1)
	return c
}

// newMailbox creates and installs the mailbox for the next instance.
func (c *cell[A]) newMailbox() *mailbox.Mailbox[*Envelope[A]] {
	mb := mailbox.New[*Envelope[A]](mailbox.Options{
		Capacity: c.opts.Capacity,
		OnDepth: func(depth int) {
			c.opts.Metrics.MailboxDepth(c.id, depth)
		},
	})
	c.mb.Store(mb)
	return mb
}

// send enqueues env, retrying once if a restart swapped the mailbox while
// the send was in progress.
func (c *cell[A]) send(ctx context.Context, env *Envelope[A]) error {
	for attempt := 0; ; attempt++ {
		mb := c.mb.Load()
		err := mb.Send(ctx, env)
		if errors.Is(err, ErrClosed) && attempt == 0 && c.mb.Load() != mb {
			continue
		}
		return err
	}
}

func (c *cell[A]) trySend(env *Envelope[A]) error {
	for attempt := 0; ; attempt++ {
		mb := c.mb.Load()
		err := mb.TrySend(env)
		if errors.Is(err, ErrClosed) && attempt == 0 && c.mb.Load() != mb {
			continue
		}
		return err
	}
}

func (c *cell[A]) retain() { c.strong.Add(1) }

func (c *cell[A]) release() {
	if c.strong.Add(-1) == 0 && !c.opts.KeepAlive {
		c.log.Debug("last address released")
		c.shutdown(false)
	}
}

// shutdown marks the actor as no longer wanted and closes (or seals) its
// current mailbox. The running instance then stops and is not restarted.
func (c *cell[A]) shutdown(graceful bool) {
	c.alive.Store(false)
	mb := c.mb.Load()
	if graceful {
		mb.Seal()
	} else {
		mb.Close()
	}
}

// finish marks the actor terminal. cause is nil for a clean stop.
func (c *cell[A]) finish(cause error) {
	c.doneOnce.Do(func() {
		c.alive.Store(false)
		c.mu.Lock()
		c.cause = cause
		c.mu.Unlock()
		c.mb.Load().Close()
		close(c.done)
	})
}

func (c *cell[A]) err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cause
}

// Addr is a strong handle to an actor. While at least one Addr is unreleased
// the actor keeps running (unless it stops itself or fails). Clone for every
// additional owner and Release exactly once per handle.
type Addr[A any] struct {
	c        *cell[A]
	released atomic.Bool
}

// Clone returns a new strong handle to the same actor. Cloning a released
// handle, or a handle to an actor that is no longer alive, yields a handle
// that is already released: sends fail with ErrClosed and the actor is not
// kept alive.
func (a *Addr[A]) Clone() *Addr[A] {
	if a.released.Load() || !a.c.alive.Load() {
		h := &Addr[A]{c: a.c}
		h.released.Store(true)
		return h
	}
	a.c.retain()
	return &Addr[A]{c: a.c}
}

// Release gives up this handle. When the last handle is released the actor
// stops and messages still queued resolve with ErrCanceled. Releasing twice
// has no effect.
func (a *Addr[A]) Release() {
	if a.released.CompareAndSwap(false, true) {
		a.c.release()
	}
}

// Downgrade returns a weak handle that does not keep the actor alive.
func (a *Addr[A]) Downgrade() *WeakAddr[A] { return &WeakAddr[A]{c: a.c} }

func (a *Addr[A]) ID() string { return a.c.id }

// Connected reports whether the actor still accepts messages.
func (a *Addr[A]) Connected() bool {
	return a.c.alive.Load() && !a.c.mb.Load().Closed()
}

// State returns the lifecycle state of the current instance.
func (a *Addr[A]) State() State { return State(a.c.state.Load()) }

// Restarts counts how often a supervisor replaced a failed instance.
func (a *Addr[A]) Restarts() int { return int(a.c.restarts.Load()) }

// Done is closed once the actor has terminated for good.
func (a *Addr[A]) Done() <-chan struct{} { return a.c.done }

// Err returns the termination cause after Done, nil for a clean stop.
func (a *Addr[A]) Err() error { return a.c.err() }

// Stop stops the actor regardless of outstanding handles and waits for it
// to terminate or ctx to end. With graceful set, messages already queued are
// handled first; otherwise they resolve with ErrCanceled.
func (a *Addr[A]) Stop(ctx context.Context, graceful bool) error {
	a.c.shutdown(graceful)
	select {
	case <-a.c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Addr[A]) usable() bool { return a != nil && !a.released.Load() }

// WeakAddr refers to an actor without keeping it alive.
type WeakAddr[A any] struct {
	c *cell[A]
}

// Upgrade returns a strong handle if the actor is still alive.
func (w *WeakAddr[A]) Upgrade() (*Addr[A], bool) {
	if !w.c.alive.Load() {
		return nil, false
	}
	w.c.retain()
	if !w.c.alive.Load() {
		w.c.strong.Add(-1)
		return nil, false
	}
	return &Addr[A]{c: w.c}, true
}

func (w *WeakAddr[A]) ID() string { return w.c.id }

// Send delivers msg and returns the pending response. Send blocks while the
// mailbox is full; if the message cannot be enqueued the future resolves at
// once with ErrCanceled wrapping ErrClosed or the ctx error.
func Send[A any, R any](ctx context.Context, addr *Addr[A], msg Message[A, R]) *Future[R] {
	reply := NewFuture[R]()
	env := NewEnvelope(msg, reply)
	if !addr.usable() {
		env.Discard(ErrClosed)
		return reply
	}
	if err := addr.c.send(ctx, env); err != nil {
		env.Discard(err)
	}
	return reply
}

// Ask sends msg and waits for the response.
func Ask[A any, R any](ctx context.Context, addr *Addr[A], msg Message[A, R]) (R, error) {
	if addr.usable() && isSelf(ctx, addr.c) {
		var zero R
		return zero, ErrSelfRequest
	}
	return Send(ctx, addr, msg).Await(ctx)
}

// TrySend enqueues msg without blocking. It fails with ErrFull or ErrClosed.
func TrySend[A any, R any](addr *Addr[A], msg Message[A, R]) (*Future[R], error) {
	if !addr.usable() {
		return nil, ErrClosed
	}
	reply := NewFuture[R]()
	env := NewEnvelope(msg, reply)
	if err := addr.c.trySend(env); err != nil {
		return nil, err
	}
	return reply, nil
}

// DoSend delivers msg without a response. With BackpressureDrop a full
// mailbox drops the message and DoSend still returns nil.
func DoSend[A any, R any](ctx context.Context, addr *Addr[A], msg Message[A, R]) error {
	if !addr.usable() {
		return ErrClosed
	}
	c := addr.c
	env := NewEnvelope[A, R](msg, nil)

	if c.opts.DoSendPolicy == BackpressureDrop {
		err := c.trySend(env)
		if errors.Is(err, ErrFull) {
			c.opts.Metrics.MessageDropped(c.id)
			c.log.Debug("message dropped", slog.String("msg_type", env.MessageType()))
			return nil
		}
		return err
	}
	return c.send(ctx, env)
}
