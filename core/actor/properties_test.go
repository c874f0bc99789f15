package actor

import (
	"context"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type overlapCheck struct {
	inflight   atomic.Int32
	violations atomic.Int32
	handled    int
}

type touch struct{}

func (touch) Handle(p *overlapCheck, _ *Context[*overlapCheck]) (int, error) {
	if p.inflight.Add(1) != 1 {
		p.violations.Add(1)
	}
	runtime.Gosched()
	p.handled++
	p.inflight.Add(-1)
	return p.handled, nil
}

func TestProperty_Exclusivity(t *testing.T) {
	const (
		producers = 16
		perSender = 200
	)
	p := &overlapCheck{}
	addr := Spawn(p, Options{Capacity: 8})
	defer addr.Release()

	g, ctx := errgroup.WithContext(t.Context())
	for range producers {
		g.Go(func() error {
			for range perSender {
				if _, err := Ask(ctx, addr, touch{}); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	n, err := Ask(t.Context(), addr, Func[*overlapCheck, int](func(p *overlapCheck, _ *Context[*overlapCheck]) (int, error) {
		return p.handled, nil
	}))
	require.NoError(t, err)
	require.Equal(t, producers*perSender, n)
	require.Zero(t, p.violations.Load())
}

type recorder struct {
	seen []string
}

type note struct{ name string }

func (m note) Handle(r *recorder, _ *Context[*recorder]) (struct{}, error) {
	r.seen = append(r.seen, m.name)
	return struct{}{}, nil
}

type seq struct {
	producer int
	n        int
}

type seqLog struct {
	last map[int]int
	bad  int
}

func (m seq) Handle(l *seqLog, _ *Context[*seqLog]) (struct{}, error) {
	prev, ok := l.last[m.producer]
	if !ok {
		prev = -1
	}
	if m.n != prev+1 {
		l.bad++
	}
	l.last[m.producer] = m.n
	return struct{}{}, nil
}

func TestProperty_FIFOPerSender(t *testing.T) {
	const (
		producers = 8
		perSender = 500
	)
	addr := Spawn(&seqLog{last: map[int]int{}}, Options{Capacity: 4})
	defer addr.Release()

	g, ctx := errgroup.WithContext(t.Context())
	for p := range producers {
		g.Go(func() error {
			for n := range perSender {
				if err := DoSend(ctx, addr, seq{producer: p, n: n}); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	bad, err := Ask(t.Context(), addr, Func[*seqLog, int](func(l *seqLog, _ *Context[*seqLog]) (int, error) {
		for p := range producers {
			if l.last[p] != perSender-1 {
				return -1, nil
			}
		}
		return l.bad, nil
	}))
	require.NoError(t, err)
	require.Zero(t, bad)
}

func TestProperty_BackpressureFairness(t *testing.T) {
	addr := Spawn(&recorder{}, Options{Capacity: 1})
	defer addr.Release()
	release := occupy(t, addr)

	require.NoError(t, DoSend(t.Context(), addr, note{name: "m1"}))

	var errs []chan error
	for i, name := range []string{"A", "B", "C"} {
		errCh := make(chan error, 1)
		go func() { errCh <- DoSend(t.Context(), addr, note{name: name}) }()
		require.Eventually(t, func() bool { return waiting(addr) == i+1 }, time.Second, time.Millisecond)
		errs = append(errs, errCh)
	}

	release()
	for _, errCh := range errs {
		require.NoError(t, <-errCh)
	}

	seen, err := Ask(t.Context(), addr, Func[*recorder, []string](func(r *recorder, _ *Context[*recorder]) ([]string, error) {
		return append([]string(nil), r.seen...), nil
	}))
	require.NoError(t, err)
	require.Equal(t, []string{"m1", "A", "B", "C"}, seen)
}

func TestProperty_NoLostResponses(t *testing.T) {
	const (
		producers = 8
		perSender = 250
	)
	addr := Spawn(&counter{}, Options{Capacity: 16})

	futures := make(chan *Future[int], producers*perSender)
	g, ctx := errgroup.WithContext(t.Context())
	for p := range producers {
		g.Go(func() error {
			for n := range perSender {
				var f *Future[int]
				if p == 0 && n == perSender/2 {
					f = Send(ctx, addr, boom{})
				} else {
					f = Send(ctx, addr, inc{by: 1})
				}
				futures <- f
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	close(futures)
	addr.Release()

	deadline, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()
	var ok, canceled int
	for f := range futures {
		select {
		case <-f.Done():
		case <-deadline.Done():
			t.Fatal("response lost")
		}
		_, err := f.Await(deadline)
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, ErrCanceled)
		canceled++
	}
	require.Equal(t, producers*perSender, ok+canceled)
	require.GreaterOrEqual(t, canceled, 1)
	waitDone(t, addr)
}

func TestProperty_RefcountDrivenStop(t *testing.T) {
	addr := Spawn(&counter{}, Options{})
	weak := addr.Downgrade()
	clone := addr.Clone()
	release := occupy(t, addr)

	queued := []*Future[int]{
		Send(t.Context(), addr, inc{by: 1}),
		Send(t.Context(), addr, inc{by: 1}),
	}

	addr.Release()
	addr.Release()
	require.True(t, addr.Connected(), "clone keeps the actor alive")
	upgraded, ok := weak.Upgrade()
	require.True(t, ok)
	upgraded.Release()

	clone.Release()
	for _, f := range queued {
		_, err := await(t, f)
		require.ErrorIs(t, err, ErrCanceled)
		require.ErrorIs(t, err, ErrClosed)
	}
	_, ok = weak.Upgrade()
	require.False(t, ok)

	release()
	waitDone(t, addr)
	require.Equal(t, StateStopped, addr.State())
	require.NoError(t, addr.Err())
}

func TestProperty_RefcountWithUpgradedWeak(t *testing.T) {
	addr := Spawn(&counter{}, Options{})
	weak := addr.Downgrade()
	strong, ok := weak.Upgrade()
	require.True(t, ok)

	addr.Release()
	n, err := Ask(t.Context(), strong, inc{by: 1})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	strong.Release()
	waitDone(t, addr)
}

func TestKeepAlive(t *testing.T) {
	addr := Spawn(&counter{}, Options{KeepAlive: true})
	weak := addr.Downgrade()
	addr.Release()

	strong, ok := weak.Upgrade()
	require.True(t, ok)
	n, err := Ask(t.Context(), strong, inc{by: 3})
	require.NoError(t, err)
	require.Equal(t, 3, n)

	require.NoError(t, strong.Stop(t.Context(), false))
	strong.Release()
	_, ok = weak.Upgrade()
	require.False(t, ok)
}

func TestSendAfterRelease(t *testing.T) {
	addr := Spawn(&counter{}, Options{})
	other := addr.Clone()
	defer other.Release()
	addr.Release()

	_, err := Ask(t.Context(), addr, get{})
	require.ErrorIs(t, err, ErrClosed)
	_, err = TrySend(addr, get{})
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, DoSend(t.Context(), addr, inc{by: 1}), ErrClosed)

	// other handles are unaffected
	_, err = Ask(t.Context(), other, get{})
	require.NoError(t, err)
}

func TestStop_Graceful(t *testing.T) {
	addr := spawnCounter(t, Options{})
	release := occupy(t, addr)

	f1 := Send(t.Context(), addr, inc{by: 1})
	f2 := Send(t.Context(), addr, inc{by: 1})

	errCh := make(chan error, 1)
	go func() { errCh <- addr.Stop(t.Context(), true) }()
	require.Eventually(t, func() bool { return !addr.Connected() }, time.Second, time.Millisecond)

	_, err := TrySend(addr, inc{by: 1})
	require.ErrorIs(t, err, ErrClosed)

	release()
	require.NoError(t, <-errCh)
	v, err := await(t, f2)
	require.NoError(t, err)
	require.Equal(t, 2, v)
	require.True(t, f1.Ready())
}

func TestStop_Immediate(t *testing.T) {
	addr := spawnCounter(t, Options{})
	release := occupy(t, addr)
	f := Send(t.Context(), addr, inc{by: 1})

	errCh := make(chan error, 1)
	go func() { errCh <- addr.Stop(t.Context(), false) }()

	_, err := await(t, f)
	require.ErrorIs(t, err, ErrCanceled)

	release()
	require.NoError(t, <-errCh)
}
