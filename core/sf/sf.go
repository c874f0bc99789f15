package sf

import "golang.org/x/sync/singleflight"

// Group deduplicates concurrent function calls with the same key.
type Group[T any] struct {
	group singleflight.Group
}

// New creates a Group for results of type T.
func New[T any]() *Group[T] {
	return &Group[T]{}
}

// Do runs fn for key unless a call for key is already in flight, in which
// case it waits for that call. shared reports whether the result was handed
// to more than one caller.
func (g *Group[T]) Do(key string, fn func() (T, error)) (v T, shared bool, err error) {
	out, err, shared := g.group.Do(key, func() (any, error) {
		return fn()
	})
	if out != nil {
		v = out.(T)
	}
	return v, shared, err
}

