package actor

import (
	"runtime/debug"
	"sync/atomic"
)

// Envelope carries one message to an actor of type A. It hides the concrete
// message and response types behind a closure built when the message is
// sent, so a single mailbox can hold any message the actor handles.
//
// An envelope is consumed exactly once: either applied or discarded.
type Envelope[A any] struct {
	msgType string
	apply   func(act A, c *Context[A]) error
	discard func(cause error)
	used    atomic.Bool
}

// NewEnvelope wraps msg. reply may be nil when no response is wanted.
func NewEnvelope[A any, R any](msg Message[A, R], reply *Future[R]) *Envelope[A] {
	e := &Envelope[A]{msgType: msgTypeOf(msg)}

	e.apply = func(act A, c *Context[A]) (failure error) {
		if reply != nil && reply.Ready() {
			// abandoned by the caller
			return nil
		}
		defer func() {
			if r := recover(); r != nil {
				f := &HandlerFailure{
					ActorID:   c.ID(),
					MsgType:   e.msgType,
					Cause:     recoveredCause(r),
					Recovered: r,
					Stack:     debug.Stack(),
				}
				if reply != nil {
					var zero R
					reply.complete(zero, f)
				}
				failure = f
			}
		}()

		res, err := msg.Handle(act, c)
		if reply != nil {
			if f := c.failed(); f != nil {
				var zero R
				reply.complete(zero, f)
			} else {
				reply.complete(res, err)
			}
		}
		return nil
	}

	e.discard = func(cause error) {
		if reply != nil {
			var zero R
			reply.complete(zero, canceled(cause))
		}
	}
	return e
}

// MessageType names the wrapped message for logs and metrics.
func (e *Envelope[A]) MessageType() string { return e.msgType }

// Apply runs the handler against act and resolves the reply. A panic is
// recovered and returned as *HandlerFailure. Calls after the first, or after
// Discard, do nothing.
func (e *Envelope[A]) Apply(act A, c *Context[A]) error {
	if !e.used.CompareAndSwap(false, true) {
		return nil
	}
	return e.apply(act, c)
}

// Discard resolves the reply with ErrCanceled wrapping cause, without running
// the handler. Calls after the first, or after Apply, do nothing.
func (e *Envelope[A]) Discard(cause error) {
	if !e.used.CompareAndSwap(false, true) {
		return
	}
	e.discard(cause)
}
