package actor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type shard struct {
	index int
	keys  map[string]int
}

type hit struct{ key string }

func (m hit) Handle(s *shard, _ *Context[*shard]) (int, error) {
	s.keys[m.key]++
	return s.index, nil
}

func newShard(i int) *shard { return &shard{index: i, keys: map[string]int{}} }

func TestPool_RoutesKeysConsistently(t *testing.T) {
	p := NewPool(4, newShard, Options{ID: "shards"})
	defer p.Release()
	require.Equal(t, 4, p.Len())
	require.Equal(t, "shards-2", p.Member(2).ID())

	used := map[int]bool{}
	for i := range 200 {
		key := fmt.Sprintf("key-%d", i)
		first, err := Ask(t.Context(), p.Pick(key), hit{key: key})
		require.NoError(t, err)
		second, err := Ask(t.Context(), p.Pick(key), hit{key: key})
		require.NoError(t, err)
		require.Equal(t, first, second)
		used[first] = true
	}
	require.Len(t, used, 4)
}

func TestPool_Stop(t *testing.T) {
	p := NewPool(3, newShard, Options{})
	require.NoError(t, p.Stop(t.Context(), true))
	for i := range p.Len() {
		waitDone(t, p.Member(i))
	}
	p.Release()
}

func TestPool_PickSkipsStoppedMember(t *testing.T) {
	p := NewPool(4, newShard, Options{ID: "failover"})
	defer p.Release()

	key := "some-key"
	owner := p.Pick(key)
	ownerIndex, err := Ask(t.Context(), owner, hit{key: key})
	require.NoError(t, err)

	require.NoError(t, owner.Stop(t.Context(), false))

	next := p.Pick(key)
	require.NotSame(t, owner, next)
	idx, err := Ask(t.Context(), next, hit{key: key})
	require.NoError(t, err)
	require.NotEqual(t, ownerIndex, idx)

	// stays on the same replacement
	again, err := Ask(t.Context(), p.Pick(key), hit{key: key})
	require.NoError(t, err)
	require.Equal(t, idx, again)
}

func TestPool_PickAllStoppedReturnsOwner(t *testing.T) {
	p := NewPool(2, newShard, Options{ID: "down"})
	defer p.Release()
	owner := p.Pick("k")
	require.NoError(t, p.Stop(t.Context(), false))
	require.Same(t, owner, p.Pick("k"))
}
