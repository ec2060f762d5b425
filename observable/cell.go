// Package observable provides a minimal mutable value with change notification,
// used to hand tracked device state to whatever UI layer consumes it.
package observable

import (
	"sort"
	"sync"
)

// Cell holds a single value and notifies subscribers synchronously whenever
// the value is replaced.
type Cell[T any] struct {
	mu   sync.RWMutex
	v    T
	subs map[uint64]func(T)
	next uint64
}

// NewCell creates a cell holding v.
func NewCell[T any](v T) *Cell[T] {
	return &Cell[T]{v: v, subs: map[uint64]func(T){}}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v
}

// Set replaces the value and notifies subscribers.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	c.v = v
	subs := c.snapshotLocked()
	c.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// Update computes a new value from the current one. Subscribers are only
// notified when fn reports a change.
func (c *Cell[T]) Update(fn func(cur T) (T, bool)) bool {
	c.mu.Lock()
	next, changed := fn(c.v)
	if !changed {
		c.mu.Unlock()
		return false
	}
	c.v = next
	subs := c.snapshotLocked()
	c.mu.Unlock()

	for _, s := range subs {
		s(next)
	}
	return true
}

// Subscribe registers fn for change notifications. The returned function
// removes the subscription; calling it more than once is harmless.
// fn must not block, it runs on the mutating goroutine.
func (c *Cell[T]) Subscribe(fn func(T)) (cancel func()) {
	c.mu.Lock()
	id := c.next
	c.next++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// Subscribers returns the number of active subscriptions.
func (c *Cell[T]) Subscribers() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs)
}

// snapshotLocked returns subscribers in registration order.
func (c *Cell[T]) snapshotLocked() []func(T) {
	if len(c.subs) == 0 {
		return nil
	}
	ids := make([]uint64, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]func(T), len(ids))
	for i, id := range ids {
		out[i] = c.subs[id]
	}
	return out
}
