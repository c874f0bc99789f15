// Package actor provides an in-process actor runtime: independent units of
// state that communicate only through messages, each mutated by exactly one
// goroutine at a time.
//
// Each actor:
//   - Owns its state; only its handlers see it
//   - Processes messages one by one, in mailbox order
//   - Is reachable through reference-counted [Addr] handles
//   - Can schedule messages to itself via [NotifyLater] and [NotifyInterval]
//
// # Defining Messages
//
// A message type carries its handler. Any type with a Handle method for the
// actor type is a [Message]:
//
//	type Counter struct{ n int }
//
//	type Inc struct{ By int }
//
//	func (m Inc) Handle(c *Counter, _ *actor.Context[*Counter]) (int, error) {
//	    c.n += m.By
//	    return c.n, nil
//	}
//
// # Sending Messages
//
//	addr := actor.Spawn(&Counter{}, actor.Options{})
//	defer addr.Release()
//
//	n, err := actor.Ask(ctx, addr, Inc{By: 2})   // wait for the result
//	fut := actor.Send(ctx, addr, Inc{By: 1})      // result later via fut.Await
//	err = actor.DoSend(ctx, addr, Inc{By: 1})     // no result
//	fut, err = actor.TrySend(addr, Inc{By: 1})    // fail fast with ErrFull
//
// Send, Ask and blocking DoSend wait while the mailbox is full; waiting
// senders are admitted in arrival order.
//
// # Lifetime
//
// [Spawn] returns the first [Addr]. [Addr.Clone] adds an owner and
// [Addr.Release] removes one. When the last owner releases, the mailbox is
// closed and messages still queued resolve with [ErrCanceled], unless the
// actor was spawned with Options.KeepAlive. A [WeakAddr] refers to the actor
// without keeping it alive.
//
// An actor may implement [Starter], [Stopper] and [Finalizer] to hook into
// its lifecycle. A handler that panics or calls [Context.Fail] stops the
// actor; [Supervise] restarts it according to a [RestartPolicy] behind the
// same Addr.
//
// # Self-Request Detection
//
// A handler that calls [Ask] on its own actor with the Context's
// context.Context gets [ErrSelfRequest] instead of a deadlock.
package actor
