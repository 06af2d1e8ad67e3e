package mixer

import "sync"

// Ring is a fixed-capacity buffer that keeps the most recent items. It is
// safe for concurrent use.
type Ring[T any] struct {
	items []T
	head  int // next write position
	count int
	mu    sync.RWMutex
}

func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}

	return &Ring[T]{items: make([]T, capacity)}
}

// Push appends items, overwriting the oldest when full.
func (r *Ring[T]) Push(items ...T) {
	if len(items) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	capacity := len(r.items)

	for _, item := range items {
		r.items[r.head] = item
		r.head = (r.head + 1) % capacity

		if r.count < capacity {
			r.count++
		}
	}
}

// Last returns up to n most recent items, oldest first.
func (r *Ring[T]) Last(n int) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.count == 0 || n <= 0 {
		return nil
	}

	n = min(n, r.count)
	capacity := len(r.items)
	start := (r.head - n + capacity) % capacity

	out := make([]T, n)
	for i := range n {
		out[i] = r.items[(start+i)%capacity]
	}

	return out
}

func (r *Ring[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.count
}
