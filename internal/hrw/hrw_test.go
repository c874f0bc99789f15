package hrw

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func members(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("worker-%d", i)
	}
	return out
}

func TestPick_Stable(t *testing.T) {
	m := members(8)
	for i := range 100 {
		key := fmt.Sprintf("key-%d", i)
		a, ok := Pick(key, m, "pool")
		require.True(t, ok)
		b, _ := Pick(key, m, "pool")
		require.Equal(t, a, b)
	}
}

func TestPick_MatchesTopK(t *testing.T) {
	m := members(5)
	for i := range 50 {
		key := fmt.Sprintf("key-%d", i)
		idx, _ := Pick(key, m, "")
		require.Equal(t, idx, TopK(key, m, 1, "")[0])
	}
}

func TestPick_Empty(t *testing.T) {
	_, ok := Pick("k", nil, "")
	require.False(t, ok)
	require.Nil(t, TopK("k", nil, 3, ""))
}

func TestPick_RemovingMemberOnlyMovesItsKeys(t *testing.T) {
	full := members(6)
	reduced := append([]string{}, full[:5]...)

	for i := range 500 {
		key := fmt.Sprintf("key-%d", i)
		before, _ := Pick(key, full, "")
		after, _ := Pick(key, reduced, "")
		if before != 5 {
			require.Equal(t, before, after, key)
		}
	}
}

func TestPick_Spreads(t *testing.T) {
	m := members(4)
	counts := make([]int, len(m))
	for i := range 4000 {
		idx, _ := Pick(fmt.Sprintf("key-%d", i), m, "")
		counts[idx]++
	}
	for _, c := range counts {
		require.Greater(t, c, 500)
	}
}
