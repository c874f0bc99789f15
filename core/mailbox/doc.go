// Package mailbox implements the bounded multi-producer, single-consumer
// queue that sits in front of every actor.
//
// A [Mailbox] holds up to its capacity of items. Producers that find it full
// either fail fast ([Mailbox.TrySend] returns [ErrFull]) or park in a waiter
// table ([Mailbox.Send]). Parked producers are admitted strictly in the order
// they arrived: every time the consumer removes an item, the oldest waiter's
// item is moved into the freed slot and that waiter is woken. A non-blocking
// send never overtakes a parked one.
//
// # Closing
//
// [Mailbox.Close] rejects all further sends, wakes parked producers with
// [ErrClosed] and hands every queued item back through [Discardable.Discard].
// [Mailbox.Seal] only rejects new sends; the consumer keeps receiving what is
// already queued and sees [ErrClosed] once the queue is empty.
//
// # Ownership
//
// An item belongs to the mailbox once a send returns nil. When a send returns
// an error the caller still owns the item and is responsible for resolving it.
package mailbox
