package actor

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry(nil)
	t.Cleanup(r.Close)
	return r
}

func TestRegistry_RegisterLookupRemove(t *testing.T) {
	r := newTestRegistry(t)
	addr := Spawn(&counter{}, Options{})
	require.NoError(t, Register(r, "c1", addr))
	addr.Release()

	// the registry keeps it alive
	found, ok := Lookup[*counter](r, "c1")
	require.True(t, ok)
	n, err := Ask(t.Context(), found, inc{by: 1})
	require.NoError(t, err)
	require.Equal(t, 1, n)
	found.Release()

	require.Equal(t, []string{"c1"}, r.Names())
	require.True(t, r.Remove("c1"))
	require.False(t, r.Remove("c1"))
	waitDone(t, addr)

	_, ok = Lookup[*counter](r, "c1")
	require.False(t, ok)
}

func TestRegistry_DuplicateAndWrongType(t *testing.T) {
	r := newTestRegistry(t)
	addr := spawnCounter(t, Options{})
	require.NoError(t, Register(r, "c", addr))
	require.ErrorIs(t, Register(r, "c", addr), ErrAlreadyRegistered)

	_, ok := Lookup[*recorder](r, "c")
	require.False(t, ok)
}

func TestRegistry_RegisterReleasedHandle(t *testing.T) {
	r := newTestRegistry(t)
	addr := Spawn(&counter{}, Options{})
	addr.Release()

	require.ErrorIs(t, Register(r, "gone", addr), ErrClosed)
	require.Equal(t, 0, r.Len())
}

func TestRegistry_DropsTerminatedActors(t *testing.T) {
	r := newTestRegistry(t)
	addr := spawnCounter(t, Options{})
	require.NoError(t, Register(r, "c", addr))

	_, err := Ask(t.Context(), addr, stopSelf{})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, time.Millisecond)
}

func TestRegistry_GetOrSpawnOnce(t *testing.T) {
	r := newTestRegistry(t)
	var spawned atomic.Int32
	spawn := func() (*Addr[*counter], error) {
		spawned.Add(1)
		time.Sleep(5 * time.Millisecond)
		return Spawn(&counter{}, Options{}), nil
	}

	var (
		wg  sync.WaitGroup
		ids sync.Map
	)
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			addr, err := GetOrSpawn(r, "shared", spawn)
			require.NoError(t, err)
			defer addr.Release()
			ids.Store(i, addr.ID())
			_, err = Ask(t.Context(), addr, inc{by: 1})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, spawned.Load())
	var first string
	ids.Range(func(_, v any) bool {
		if first == "" {
			first = v.(string)
		}
		require.Equal(t, first, v.(string))
		return true
	})

	addr, ok := Lookup[*counter](r, "shared")
	require.True(t, ok)
	defer addr.Release()
	n, err := Ask(t.Context(), addr, get{})
	require.NoError(t, err)
	require.Equal(t, 16, n)
}

func TestRegistry_GetOrSpawnError(t *testing.T) {
	r := newTestRegistry(t)
	_, err := GetOrSpawn(r, "bad", func() (*Addr[*counter], error) { return nil, errTest })
	require.ErrorIs(t, err, errTest)
	require.Equal(t, 0, r.Len())
}

func TestRegistry_Close(t *testing.T) {
	r := NewRegistry(nil)
	var addrs []*Addr[*counter]
	for i := range 3 {
		addr := Spawn(&counter{}, Options{})
		require.NoError(t, Register(r, fmt.Sprintf("c%d", i), addr))
		addrs = append(addrs, addr)
		addr.Release()
	}

	r.Close()
	for _, addr := range addrs {
		waitDone(t, addr)
	}

	addr := spawnCounter(t, Options{})
	require.ErrorIs(t, Register(r, "late", addr), ErrClosed)
}
