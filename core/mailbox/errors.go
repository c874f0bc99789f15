package mailbox

import "errors"

var (
	// ErrFull is returned by TrySend when the mailbox is at capacity or other
	// producers are already waiting for room.
	ErrFull = errors.New("mailbox full")
	// ErrClosed is returned once the mailbox was closed or sealed.
	ErrClosed = errors.New("mailbox closed")
)
