// Package hrw implements rendezvous (highest random weight) hashing over a
// set of member IDs. A key maps to the same member for as long as that
// member is present; removing a member only moves the keys it owned.
package hrw

import (
	"encoding/binary"
	"sort"

	"golang.org/x/crypto/blake2b"
)

// TopK returns the indices of up to k members with the highest scores for
// key, best first. seed namespaces the scores, e.g. per pool.
func TopK(key string, members []string, k int, seed string) []int {
	if k <= 0 || len(members) == 0 {
		return nil
	}
	if k > len(members) {
		k = len(members)
	}

	type entry struct {
		score uint64
		idx   int
	}
	all := make([]entry, len(members))
	keyB := []byte(key)
	for i, id := range members {
		all[i] = entry{score: score(keyB, id, seed), idx: i}
	}
	sort.Slice(all, func(a, b int) bool {
		if all[a].score == all[b].score {
			return all[a].idx < all[b].idx
		}
		return all[a].score > all[b].score
	})

	out := make([]int, k)
	for i := range out {
		out[i] = all[i].idx
	}
	return out
}

// Pick returns the index of the best member for key. ok is false if members
// is empty.
func Pick(key string, members []string, seed string) (idx int, ok bool) {
	if len(members) == 0 {
		return 0, false
	}
	keyB := []byte(key)
	best := score(keyB, members[0], seed)
	for i := 1; i < len(members); i++ {
		if s := score(keyB, members[i], seed); s > best {
			best, idx = s, i
		}
	}
	return idx, true
}

func score(key []byte, member string, seed string) uint64 {
	// 8-byte digest => uint64 score
	h, _ := blake2b.New(8, nil)
	if seed != "" {
		h.Write([]byte(seed))
		h.Write([]byte{0})
	}
	h.Write(key)
	h.Write([]byte{0})
	h.Write([]byte(member))
	return binary.BigEndian.Uint64(h.Sum(nil))
}
