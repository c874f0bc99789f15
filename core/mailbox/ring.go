package mailbox

// ring is a FIFO over a circular slice. It grows by doubling when pushed
// while full; callers enforce their own bound.
type ring[T any] struct {
	buf  []T
	head int
	n    int
}

func newRing[T any](size int) ring[T] {
	if size < 1 {
		size = 1
	}
	return ring[T]{buf: make([]T, size)}
}

func (r *ring[T]) len() int { return r.n }

func (r *ring[T]) push(v T) {
	if r.n == len(r.buf) {
		r.grow()
	}
	r.buf[(r.head+r.n)%len(r.buf)] = v
	r.n++
}

func (r *ring[T]) pop() (T, bool) {
	var zero T
	if r.n == 0 {
		return zero, false
	}
	v := r.buf[r.head]
	r.buf[r.head] = zero
	r.head = (r.head + 1) % len(r.buf)
	r.n--
	return v, true
}

// drain removes and returns all items in FIFO order.
func (r *ring[T]) drain() []T {
	out := make([]T, 0, r.n)
	for r.n > 0 {
		v, _ := r.pop()
		out = append(out, v)
	}
	r.head = 0
	return out
}

func (r *ring[T]) reset() {
	var zero T
	for i := range r.buf {
		r.buf[i] = zero
	}
	r.head, r.n = 0, 0
}

func (r *ring[T]) grow() {
	buf := make([]T, len(r.buf)*2)
	for i := 0; i < r.n; i++ {
		buf[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	r.buf = buf
	r.head = 0
}
