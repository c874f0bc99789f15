package actor

import (
	"context"
	"sync"
)

// Future is the response slot of a Send. It resolves exactly once, with the
// handler's result, with ErrCanceled (possibly wrapping a cause) when the
// message was discarded, or with a *HandlerFailure.
type Future[R any] struct {
	mu        sync.Mutex
	done      chan struct{}
	resolved  bool
	value     R
	err       error
	callbacks []func(R, error)
}

func NewFuture[R any]() *Future[R] {
	return &Future[R]{done: make(chan struct{})}
}

// complete resolves the future and reports whether this call did it.
func (f *Future[R]) complete(v R, err error) bool {
	f.mu.Lock()
	if f.resolved {
		f.mu.Unlock()
		return false
	}
	f.resolved = true
	f.value, f.err = v, err
	cbs := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, cb := range cbs {
		cb(v, err)
	}
	return true
}

// Done is closed once the future is resolved.
func (f *Future[R]) Done() <-chan struct{} { return f.done }

// Ready reports whether the future is resolved.
func (f *Future[R]) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Await blocks until the future resolves. If ctx ends first, the future is
// abandoned: it resolves with ErrCanceled wrapping ctx.Err(), and a message
// that has not been handled yet is skipped.
func (f *Future[R]) Await(ctx context.Context) (R, error) {
	select {
	case <-f.done:
	case <-ctx.Done():
		var zero R
		f.complete(zero, canceled(ctx.Err()))
		<-f.done
	}
	return f.value, f.err
}

// Cancel abandons the future. It returns false if it was already resolved.
func (f *Future[R]) Cancel() bool {
	var zero R
	return f.complete(zero, ErrCanceled)
}

// OnComplete registers cb to run once the future resolves, on the resolving
// goroutine. If it is already resolved, cb runs immediately.
func (f *Future[R]) OnComplete(cb func(v R, err error)) {
	f.mu.Lock()
	if !f.resolved {
		f.callbacks = append(f.callbacks, cb)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	cb(f.value, f.err)
}
