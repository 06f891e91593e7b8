package memo

import (
	"context"
	"sync"
)

// Keyed maps keys to lazily constructed values. Unlike Lazy, a computed
// result is stored unconditionally, zero values included: the key space is
// finite and known, so a computed miss is itself a fact worth remembering,
// and asking for the same absent key twice must not repeat the work.
type Keyed[K comparable, V any] struct {
	mu   sync.RWMutex
	gen  func(context.Context, K) (V, error)
	vals map[K]V
}

// NewKeyed creates a Keyed cache backed by gen.
func NewKeyed[K comparable, V any](gen func(context.Context, K) (V, error)) *Keyed[K, V] {
	return &Keyed[K, V]{
		gen:  gen,
		vals: make(map[K]V),
	}
}

// Get returns the value for key, computing and storing it on first request.
// A hit is served under a read lock; a miss re-checks under the write lock
// before running the generator, so concurrent callers for the same key run
// it exactly once and all receive the identical value. Generator errors are
// returned to the caller and nothing is stored.
func (c *Keyed[K, V]) Get(ctx context.Context, key K) (V, error) {
	c.mu.RLock()
	v, ok := c.vals[key]
	c.mu.RUnlock()
	if ok {
		return v, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.vals[key]; ok {
		return v, nil
	}

	v, err := c.gen(ctx, key)
	if err != nil {
		var zero V
		return zero, err
	}

	c.vals[key] = v
	return v, nil
}

// Peek returns the value for key only if it has already been computed.
func (c *Keyed[K, V]) Peek(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.vals[key]
	return v, ok
}

// Each calls fn for every cached entry. It iterates a point-in-time
// snapshot taken under the lock, so fn may call back into the cache.
func (c *Keyed[K, V]) Each(fn func(K, V)) {
	c.mu.RLock()
	snapshot := make(map[K]V, len(c.vals))
	for k, v := range c.vals {
		snapshot[k] = v
	}
	c.mu.RUnlock()

	for k, v := range snapshot {
		fn(k, v)
	}
}

// EachValue calls fn for every cached value.
func (c *Keyed[K, V]) EachValue(fn func(V)) {
	c.Each(func(_ K, v V) { fn(v) })
}

// Len returns the number of cached entries.
func (c *Keyed[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.vals)
}

// Clear discards all cached entries.
func (c *Keyed[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals = make(map[K]V)
}
