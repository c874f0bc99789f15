package actor

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/codewandler/actr-go/core/sf"
)

type registered interface {
	ID() string
	Release()
	Done() <-chan struct{}
}

type registration struct {
	addr registered
	stop chan struct{}
}

// Registry maps names to actors. It owns one strong handle per entry, so a
// registered actor stays alive until it is removed, stops on its own, or the
// registry is closed. Entries of actors that terminate are dropped.
type Registry struct {
	log    *slog.Logger
	spawns *sf.Group[struct{}]

	mu      sync.RWMutex
	entries map[string]*registration
	closed  bool
}

func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		log:     log,
		spawns:  sf.New[struct{}](),
		entries: make(map[string]*registration),
	}
}

// Register stores a clone of addr under name. It fails with ErrClosed if
// addr was released or its actor is gone.
func Register[A any](r *Registry, name string, addr *Addr[A]) error {
	h := addr.Clone()
	if !h.usable() {
		return ErrClosed
	}
	if err := r.put(name, h); err != nil {
		h.Release()
		return err
	}
	return nil
}

// Lookup returns a new strong handle to the actor registered under name.
// It fails if there is none or it is not an actor of type A.
func Lookup[A any](r *Registry, name string) (*Addr[A], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	addr, ok := reg.addr.(*Addr[A])
	if !ok {
		return nil, false
	}
	return addr.Clone(), true
}

// GetOrSpawn returns the actor registered under name, spawning and
// registering it first if needed. Concurrent calls for the same name spawn
// at most once.
func GetOrSpawn[A any](r *Registry, name string, spawn func() (*Addr[A], error)) (*Addr[A], error) {
	if addr, ok := Lookup[A](r, name); ok {
		return addr, nil
	}
	_, _, err := r.spawns.Do(name, func() (struct{}, error) {
		if r.has(name) {
			return struct{}{}, nil
		}
		addr, err := spawn()
		if err != nil {
			return struct{}{}, fmt.Errorf("spawn %s: %w", name, err)
		}
		if err := r.put(name, addr); err != nil {
			addr.Release()
			return struct{}{}, err
		}
		return struct{}{}, nil
	})
	if err != nil {
		return nil, err
	}
	if addr, ok := Lookup[A](r, name); ok {
		return addr, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Remove drops name and releases the registry's handle.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	reg, ok := r.entries[name]
	if ok {
		delete(r.entries, name)
	}
	r.mu.Unlock()
	if !ok {
		return false
	}
	close(reg.stop)
	reg.addr.Release()
	return true
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	r.mu.RUnlock()
	slices.Sort(names)
	return names
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Close releases every entry. Further registrations fail with ErrClosed.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	entries := r.entries
	r.entries = make(map[string]*registration)
	r.mu.Unlock()

	for _, reg := range entries {
		close(reg.stop)
		reg.addr.Release()
	}
}

func (r *Registry) has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

func (r *Registry) put(name string, addr registered) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	if _, ok := r.entries[name]; ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}
	reg := &registration{addr: addr, stop: make(chan struct{})}
	r.entries[name] = reg
	r.mu.Unlock()

	r.log.Debug("actor registered", slog.String("name", name), slog.String("actor", addr.ID()))
	go r.watch(name, reg)
	return nil
}

// watch drops the entry once its actor has terminated.
func (r *Registry) watch(name string, reg *registration) {
	select {
	case <-reg.stop:
		return
	case <-reg.addr.Done():
	}

	r.mu.Lock()
	current, ok := r.entries[name]
	if ok && current == reg {
		delete(r.entries, name)
	}
	r.mu.Unlock()
	if ok && current == reg {
		r.log.Debug("actor unregistered", slog.String("name", name), slog.String("actor", reg.addr.ID()))
		reg.addr.Release()
	}
}
