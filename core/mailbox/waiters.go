package mailbox

type slotState uint8

const (
	slotFree slotState = iota
	slotWaiting
	slotAccepted
	slotRejected
)

// waitSlot is one parked producer. Slots and their wake channels are reused;
// gen distinguishes successive occupants of the same slot.
type waitSlot[T any] struct {
	item  T
	state slotState
	gen   uint32
	wake  chan struct{}
}

type ticket struct {
	idx uint32
	gen uint32
}

// waitTable tracks parked producers. order holds registrations in arrival
// order; entries whose slot was abandoned or reused are skipped on pop.
// All methods require the mailbox lock.
type waitTable[T any] struct {
	slots   []waitSlot[T]
	free    []uint32
	order   ring[ticket]
	waiting int
}

func newWaitTable[T any]() waitTable[T] {
	return waitTable[T]{order: newRing[ticket](8)}
}

func (w *waitTable[T]) register(item T) (uint32, chan struct{}) {
	var idx uint32
	if n := len(w.free); n > 0 {
		idx = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		idx = uint32(len(w.slots))
		w.slots = append(w.slots, waitSlot[T]{wake: make(chan struct{}, 1)})
	}
	s := &w.slots[idx]
	s.gen++
	s.state = slotWaiting
	s.item = item
	w.order.push(ticket{idx: idx, gen: s.gen})
	w.waiting++
	return idx, s.wake
}

// front removes the oldest still-waiting producer from the order ring and
// hands out its item. The slot stays occupied until the producer releases it.
func (w *waitTable[T]) front() (uint32, T, bool) {
	var zero T
	for {
		t, ok := w.order.pop()
		if !ok {
			return 0, zero, false
		}
		s := &w.slots[t.idx]
		if s.gen != t.gen || s.state != slotWaiting {
			continue
		}
		item := s.item
		s.item = zero
		return t.idx, item, true
	}
}

// resolve settles a waiting slot and wakes its producer.
func (w *waitTable[T]) resolve(idx uint32, st slotState) {
	var zero T
	s := &w.slots[idx]
	s.state = st
	s.item = zero
	w.waiting--
	if w.waiting == 0 {
		w.order.reset()
	}
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// rejectAll resolves every waiting producer with slotRejected.
func (w *waitTable[T]) rejectAll() {
	for w.waiting > 0 {
		idx, _, ok := w.front()
		if !ok {
			break
		}
		w.resolve(idx, slotRejected)
	}
	w.order.reset()
}

func (w *waitTable[T]) state(idx uint32) slotState {
	return w.slots[idx].state
}

// abandon frees a slot whose producer gave up before being resolved.
func (w *waitTable[T]) abandon(idx uint32) {
	var zero T
	s := &w.slots[idx]
	s.state = slotFree
	s.item = zero
	w.free = append(w.free, idx)
	w.waiting--
	if w.waiting == 0 {
		w.order.reset()
	}
}

// release frees a resolved slot and reports whether its item was accepted.
func (w *waitTable[T]) release(idx uint32) bool {
	s := &w.slots[idx]
	accepted := s.state == slotAccepted
	s.state = slotFree
	w.free = append(w.free, idx)
	return accepted
}
