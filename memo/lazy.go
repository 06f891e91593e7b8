// Package memo provides small thread-safe memoization primitives: a
// single-slot lazy value, a keyed lazy cache, and synchronized collection
// wrappers for sharing results across goroutines.
package memo

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"
)

// Lazy is a single-slot deferred computation. The generator runs at most
// once per non-nil result: a nil result (nil pointer, slice, map, or
// interface) is not cached, so subsequent Get calls invoke the generator
// again until it produces a non-nil value. Transient "not yet available"
// conditions therefore retry automatically, at the cost of repeated work
// when the condition is persistent.
type Lazy[T any] struct {
	done atomic.Bool
	mu   sync.Mutex
	gen  func(context.Context) (T, error)
	val  T
}

// NewLazy creates a Lazy backed by gen.
func NewLazy[T any](gen func(context.Context) (T, error)) *Lazy[T] {
	return &Lazy[T]{gen: gen}
}

// Get returns the cached value, computing it first if needed. A populated
// slot is read without locking; on a miss the generator runs under the lock
// after a re-check, so concurrent callers racing on the first computation
// run it exactly once.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	if l.done.Load() {
		return l.val, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done.Load() {
		return l.val, nil
	}

	v, err := l.gen(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if !isNil(v) {
		l.val = v
		l.done.Store(true)
	}
	return v, nil
}

// Populated reports whether a value has been computed and cached.
func (l *Lazy[T]) Populated() bool {
	return l.done.Load()
}

// isNil reports whether v is a nil pointer, interface, slice, map, func,
// or channel. Non-nilable kinds are never nil.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
