package memo

import "sync"

// SyncedSet wraps a set so every operation is serialized behind one lock.
// It exists to let many worker goroutines accumulate results into a single
// shared collection during a fan-out scan. Each iterates a point-in-time
// snapshot, so the callback may add or remove members without deadlocking.
type SyncedSet[T comparable] struct {
	mu sync.Mutex
	m  map[T]struct{}
}

// NewSyncedSet creates a set containing the given items.
func NewSyncedSet[T comparable](items ...T) *SyncedSet[T] {
	s := &SyncedSet[T]{m: make(map[T]struct{}, len(items))}
	for _, it := range items {
		s.m[it] = struct{}{}
	}
	return s
}

// Add inserts v and reports whether it was newly added.
func (s *SyncedSet[T]) Add(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[v]; ok {
		return false
	}
	s.m[v] = struct{}{}
	return true
}

// Contains reports whether v is a member.
func (s *SyncedSet[T]) Contains(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.m[v]
	return ok
}

// Remove deletes v and reports whether it was present.
func (s *SyncedSet[T]) Remove(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[v]; !ok {
		return false
	}
	delete(s.m, v)
	return true
}

// Len returns the number of members.
func (s *SyncedSet[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// Values returns the members in unspecified order.
func (s *SyncedSet[T]) Values() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, 0, len(s.m))
	for v := range s.m {
		out = append(out, v)
	}
	return out
}

// Each calls fn for every member of a snapshot taken under the lock.
func (s *SyncedSet[T]) Each(fn func(T)) {
	for _, v := range s.Values() {
		fn(v)
	}
}

// SyncedList wraps an append-only slice behind one lock. Values hands out a
// copy, so readers never observe a concurrent append.
type SyncedList[T any] struct {
	mu    sync.Mutex
	items []T
}

// NewSyncedList creates an empty list.
func NewSyncedList[T any]() *SyncedList[T] {
	return &SyncedList[T]{}
}

// Append adds items to the end of the list.
func (l *SyncedList[T]) Append(items ...T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, items...)
}

// Len returns the number of items.
func (l *SyncedList[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Values returns a copy of the current items in insertion order.
func (l *SyncedList[T]) Values() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// Each calls fn for every item of a snapshot taken under the lock.
func (l *SyncedList[T]) Each(fn func(T)) {
	for _, v := range l.Values() {
		fn(v)
	}
}
