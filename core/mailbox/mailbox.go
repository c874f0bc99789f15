package mailbox

import "context"

const (
	// DefaultCapacity is used when Options.Capacity is zero.
	DefaultCapacity = 1024
	// Unbounded selects a mailbox that grows on demand and never applies
	// backpressure.
	Unbounded = -1
)

// Discardable is implemented by items that must be resolved when the mailbox
// drops them without delivery.
type Discardable interface {
	Discard(cause error)
}

type Options struct {
	// Capacity bounds the number of queued items. Zero selects
	// DefaultCapacity, any negative value means Unbounded.
	Capacity int
	// OnDepth, if set, observes the queue depth after every change. It is
	// called outside the lock and must not block.
	OnDepth func(depth int)
}

// Mailbox is a bounded MPSC queue with FIFO admission of blocked producers.
// Any number of goroutines may send. One goroutine is expected to receive;
// concurrent receivers are safe and each item goes to exactly one of them.
type Mailbox[T Discardable] struct {
	lock    spinLock
	queue   ring[T]
	limit   int
	waiters waitTable[T]
	closed  bool
	sealed  bool

	notify  chan struct{}
	done    chan struct{}
	onDepth func(int)
}

// New creates a mailbox.
func New[T Discardable](opts Options) *Mailbox[T] {
	limit := opts.Capacity
	switch {
	case limit == 0:
		limit = DefaultCapacity
	case limit < 0:
		limit = Unbounded
	}
	initial := limit
	if limit == Unbounded || limit > DefaultCapacity {
		initial = 64
	}
	return &Mailbox[T]{
		queue:   newRing[T](initial),
		limit:   limit,
		waiters: newWaitTable[T](),
		notify:  make(chan struct{}, 1),
		done:    make(chan struct{}),
		onDepth: opts.OnDepth,
	}
}

func (m *Mailbox[T]) hasRoom() bool {
	return m.limit == Unbounded || m.queue.len() < m.limit
}

// TrySend enqueues v without blocking. It returns ErrFull when the mailbox is
// at capacity or producers are already waiting, and ErrClosed once closed.
func (m *Mailbox[T]) TrySend(v T) error {
	m.lock.Lock()
	if m.closed || m.sealed {
		m.lock.Unlock()
		return ErrClosed
	}
	if !m.hasRoom() || m.waiters.waiting > 0 {
		m.lock.Unlock()
		return ErrFull
	}
	m.queue.push(v)
	depth := m.queue.len()
	m.lock.Unlock()

	m.wakeConsumer()
	m.reportDepth(depth)
	return nil
}

// Send enqueues v, blocking while the mailbox is full. Blocked producers are
// admitted in arrival order. If ctx ends first, the registration is withdrawn
// and ctx.Err() returned, unless v had already been accepted, in which case
// Send returns nil.
func (m *Mailbox[T]) Send(ctx context.Context, v T) error {
	m.lock.Lock()
	if m.closed || m.sealed {
		m.lock.Unlock()
		return ErrClosed
	}
	if m.hasRoom() && m.waiters.waiting == 0 {
		m.queue.push(v)
		depth := m.queue.len()
		m.lock.Unlock()
		m.wakeConsumer()
		m.reportDepth(depth)
		return nil
	}
	if err := ctx.Err(); err != nil {
		m.lock.Unlock()
		return err
	}
	idx, wake := m.waiters.register(v)
	m.lock.Unlock()

	select {
	case <-wake:
	case <-ctx.Done():
		m.lock.Lock()
		if m.waiters.state(idx) == slotWaiting {
			m.waiters.abandon(idx)
			m.lock.Unlock()
			return ctx.Err()
		}
		m.lock.Unlock()
		// Resolved concurrently; the wake signal is already buffered.
		<-wake
	}

	m.lock.Lock()
	accepted := m.waiters.release(idx)
	m.lock.Unlock()
	if !accepted {
		return ErrClosed
	}
	return nil
}

// Recv removes the oldest item, blocking while the mailbox is empty. It
// returns ErrClosed once the mailbox is closed, or sealed and drained.
func (m *Mailbox[T]) Recv(ctx context.Context) (T, error) {
	var zero T
	for {
		m.lock.Lock()
		if v, ok := m.queue.pop(); ok {
			if idx, item, ok := m.waiters.front(); ok {
				m.queue.push(item)
				m.waiters.resolve(idx, slotAccepted)
			}
			depth := m.queue.len()
			m.lock.Unlock()
			m.reportDepth(depth)
			return v, nil
		}
		if m.closed || m.sealed {
			m.lock.Unlock()
			// pass the wakeup on to any other blocked receiver
			m.wakeConsumer()
			return zero, ErrClosed
		}
		m.lock.Unlock()

		select {
		case <-m.notify:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// Close rejects further sends, wakes all blocked producers with ErrClosed and
// discards every queued item. It is idempotent.
func (m *Mailbox[T]) Close() {
	m.lock.Lock()
	if m.closed {
		m.lock.Unlock()
		return
	}
	m.closed = true
	items := m.queue.drain()
	m.waiters.rejectAll()
	close(m.done)
	m.lock.Unlock()

	m.wakeConsumer()
	for _, it := range items {
		it.Discard(ErrClosed)
	}
	if len(items) > 0 {
		m.reportDepth(0)
	}
}

// Seal rejects further sends and wakes blocked producers with ErrClosed, but
// leaves queued items for the consumer to drain.
func (m *Mailbox[T]) Seal() {
	m.lock.Lock()
	if m.closed || m.sealed {
		m.lock.Unlock()
		return
	}
	m.sealed = true
	m.waiters.rejectAll()
	m.lock.Unlock()
	m.wakeConsumer()
}

// Len returns the number of queued items.
func (m *Mailbox[T]) Len() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.queue.len()
}

// Cap returns the capacity, or Unbounded.
func (m *Mailbox[T]) Cap() int { return m.limit }

// Waiting returns the number of producers blocked in Send.
func (m *Mailbox[T]) Waiting() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.waiters.waiting
}

// Closed reports whether the mailbox accepts no more items.
func (m *Mailbox[T]) Closed() bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.closed || m.sealed
}

// Done is closed by Close.
func (m *Mailbox[T]) Done() <-chan struct{} { return m.done }

func (m *Mailbox[T]) wakeConsumer() {
	select {
	case m.notify <- struct{}{}:
	default:
	}
}

func (m *Mailbox[T]) reportDepth(depth int) {
	if m.onDepth != nil {
		m.onDepth(depth)
	}
}
