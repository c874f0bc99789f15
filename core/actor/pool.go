package actor

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/codewandler/actr-go/internal/hrw"
)

// Pool is a fixed set of actors of the same type. Keys are routed with
// rendezvous hashing, so all messages for one key go to the same member and
// stay ordered.
type Pool[A any] struct {
	id      string
	members []*Addr[A]
	ids     []string
}

// NewPool spawns n members built by factory. Member i gets the ID
// "<opts.ID>-<i>".
func NewPool[A any](n int, factory func(i int) A, opts Options) *Pool[A] {
	if n < 1 {
		n = 1
	}
	opts = opts.withDefaults()
	p := &Pool[A]{id: opts.ID}
	for i := range n {
		o := opts
		o.ID = fmt.Sprintf("%s-%d", opts.ID, i)
		p.members = append(p.members, Spawn(factory(i), o))
		p.ids = append(p.ids, o.ID)
	}
	return p
}

func (p *Pool[A]) ID() string { return p.id }

func (p *Pool[A]) Len() int { return len(p.members) }

// Pick returns the member responsible for key. If that member has stopped,
// the key moves to the next live member in its rendezvous ranking; when no
// member is live the owner is returned anyway. The handle is borrowed from
// the pool: Clone it to keep it past Release.
func (p *Pool[A]) Pick(key string) *Addr[A] {
	idx, _ := hrw.Pick(key, p.ids, p.id)
	if p.members[idx].Connected() {
		return p.members[idx]
	}
	for _, i := range hrw.TopK(key, p.ids, len(p.ids), p.id)[1:] {
		if p.members[i].Connected() {
			return p.members[i]
		}
	}
	return p.members[idx]
}

// Member returns the i-th member, borrowed like Pick.
func (p *Pool[A]) Member(i int) *Addr[A] { return p.members[i] }

// Release gives up the pool's handles. Members without other handles stop.
func (p *Pool[A]) Release() {
	for _, m := range p.members {
		m.Release()
	}
}

// Stop stops all members concurrently and waits for them.
func (p *Pool[A]) Stop(ctx context.Context, graceful bool) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, m := range p.members {
		g.Go(func() error { return m.Stop(ctx, graceful) })
	}
	return g.Wait()
}
