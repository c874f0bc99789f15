package mailbox

import (
	"runtime"
	"sync/atomic"
)

// spinTries is the number of busy iterations before a waiting goroutine
// starts yielding the processor.
const spinTries = 16

// spinLock is a ticket lock. Goroutines are served in the order they took a
// ticket, so a hot producer cannot starve the consumer on the same lock.
// Critical sections guarded by it must stay O(1).
type spinLock struct {
	next    atomic.Uint32
	serving atomic.Uint32
}

func (l *spinLock) Lock() {
	ticket := l.next.Add(1) - 1
	for i := 0; l.serving.Load() != ticket; i++ {
		if i >= spinTries {
			runtime.Gosched()
		}
	}
}

func (l *spinLock) Unlock() {
	l.serving.Add(1)
}
