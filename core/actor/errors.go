package actor

import (
	"errors"
	"fmt"

	"github.com/codewandler/actr-go/core/mailbox"
)

var (
	// ErrFull is returned by non-blocking sends to a mailbox at capacity.
	ErrFull = mailbox.ErrFull
	// ErrClosed is returned by sends to an actor that no longer accepts
	// messages.
	ErrClosed = mailbox.ErrClosed
	// ErrCanceled resolves every response whose message was discarded or
	// whose handler failed.
	ErrCanceled = errors.New("canceled")
	// ErrSelfRequest is returned by Ask when a handler waits on a reply from
	// its own actor, which could never arrive.
	ErrSelfRequest = errors.New("request to self would deadlock")

	ErrNotFound          = errors.New("actor not found")
	ErrAlreadyRegistered = errors.New("actor already registered")
)

// canceled wraps cause so that both ErrCanceled and cause match errors.Is.
func canceled(cause error) error {
	switch {
	case cause == nil:
		return ErrCanceled
	case errors.Is(cause, ErrCanceled):
		return cause
	default:
		return fmt.Errorf("%w: %w", ErrCanceled, cause)
	}
}

// HandlerFailure is the termination cause of an actor whose handler
// panicked or called Context.Fail. Pending replies of the failed message
// resolve with it; it matches ErrCanceled.
type HandlerFailure struct {
	ActorID   string
	MsgType   string
	Cause     error
	Recovered any    // panic value, nil for Context.Fail
	Stack     []byte // set for panics
}

func (f *HandlerFailure) Error() string {
	return fmt.Sprintf("actor %s failed handling %s: %v", f.ActorID, f.MsgType, f.Cause)
}

func (f *HandlerFailure) Unwrap() error { return f.Cause }

func (f *HandlerFailure) Is(target error) bool { return target == ErrCanceled }

func recoveredCause(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
