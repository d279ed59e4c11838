package cache

import "sync"

// ListCache is an in-memory optimistic projection of a list view. A mutation
// takes a Snapshot, applies its provisional change so the view reflects the
// mutation immediately, and either rolls back to the snapshot verbatim on
// failure or lets an invalidation-triggered refetch supersede the optimistic
// value on success.
type ListCache[T any] struct {
	mu    sync.RWMutex
	items []T
}

// NewListCache creates an empty ListCache.
func NewListCache[T any]() *ListCache[T] {
	return &ListCache[T]{}
}

// Snapshot returns a copy of the current list state.
func (c *ListCache[T]) Snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := make([]T, len(c.items))
	copy(snap, c.items)
	return snap
}

// Items returns a copy of the current list state for reads.
func (c *ListCache[T]) Items() []T {
	return c.Snapshot()
}

// Replace swaps the whole list, used when a refetch confirms server state.
func (c *ListCache[T]) Replace(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make([]T, len(items))
	copy(c.items, items)
}

// Insert prepends a provisional item.
func (c *ListCache[T]) Insert(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T{item}, c.items...)
}

// Patch applies fn to every item for which match returns true and reports
// whether anything matched.
func (c *ListCache[T]) Patch(match func(T) bool, fn func(*T)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	patched := false
	for i := range c.items {
		if match(c.items[i]) {
			fn(&c.items[i])
			patched = true
		}
	}
	return patched
}

// Rollback restores a previously taken snapshot verbatim.
func (c *ListCache[T]) Rollback(snapshot []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make([]T, len(snapshot))
	copy(c.items, snapshot)
}
