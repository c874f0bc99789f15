package actor

import "context"

// Recipient sends one message type to some actor without exposing the
// actor's type, so components can depend on "something that takes M".
type Recipient[M any, R any] interface {
	ID() string
	Send(ctx context.Context, msg M) *Future[R]
	Ask(ctx context.Context, msg M) (R, error)
	DoSend(ctx context.Context, msg M) error
	TrySend(msg M) (*Future[R], error)
	// Release gives up the recipient's hold on the actor, if any.
	Release()
}

// RecipientOf returns a Recipient holding its own strong handle to addr.
func RecipientOf[A any, M Message[A, R], R any](addr *Addr[A]) Recipient[M, R] {
	return &recipient[A, M, R]{addr: addr.Clone()}
}

// WeakRecipientOf returns a Recipient that does not keep the actor alive.
// Sends fail with ErrClosed once it is gone.
func WeakRecipientOf[A any, M Message[A, R], R any](weak *WeakAddr[A]) Recipient[M, R] {
	return &weakRecipient[A, M, R]{weak: weak}
}

type recipient[A any, M Message[A, R], R any] struct {
	addr *Addr[A]
}

func (r *recipient[A, M, R]) ID() string { return r.addr.ID() }

func (r *recipient[A, M, R]) Send(ctx context.Context, msg M) *Future[R] {
	return Send[A, R](ctx, r.addr, msg)
}

func (r *recipient[A, M, R]) Ask(ctx context.Context, msg M) (R, error) {
	return Ask[A, R](ctx, r.addr, msg)
}

func (r *recipient[A, M, R]) DoSend(ctx context.Context, msg M) error {
	return DoSend[A, R](ctx, r.addr, msg)
}

func (r *recipient[A, M, R]) TrySend(msg M) (*Future[R], error) {
	return TrySend[A, R](r.addr, msg)
}

func (r *recipient[A, M, R]) Release() { r.addr.Release() }

type weakRecipient[A any, M Message[A, R], R any] struct {
	weak *WeakAddr[A]
}

func (r *weakRecipient[A, M, R]) ID() string { return r.weak.ID() }

func (r *weakRecipient[A, M, R]) Send(ctx context.Context, msg M) *Future[R] {
	addr, ok := r.weak.Upgrade()
	if !ok {
		reply := NewFuture[R]()
		var zero R
		reply.complete(zero, canceled(ErrClosed))
		return reply
	}
	defer addr.Release()
	return Send[A, R](ctx, addr, msg)
}

func (r *weakRecipient[A, M, R]) Ask(ctx context.Context, msg M) (R, error) {
	addr, ok := r.weak.Upgrade()
	if !ok {
		var zero R
		return zero, ErrClosed
	}
	defer addr.Release()
	return Ask[A, R](ctx, addr, msg)
}

func (r *weakRecipient[A, M, R]) DoSend(ctx context.Context, msg M) error {
	addr, ok := r.weak.Upgrade()
	if !ok {
		return ErrClosed
	}
	defer addr.Release()
	return DoSend[A, R](ctx, addr, msg)
}

func (r *weakRecipient[A, M, R]) TrySend(msg M) (*Future[R], error) {
	addr, ok := r.weak.Upgrade()
	if !ok {
		return nil, ErrClosed
	}
	defer addr.Release()
	return TrySend[A, R](addr, msg)
}

func (r *weakRecipient[A, M, R]) Release() {}
