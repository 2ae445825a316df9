// Package state holds values that views observe and re-render from.
package state

import "sync"

// Value is a mutex-guarded observable value. Watchers get the latest
// value; intermediate values may be coalesced, and Set never blocks on a
// slow watcher.
type Value[T any] struct {
	mu       sync.Mutex
	v        T
	nextID   int
	watchers map[int]chan T
}

func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{v: initial, watchers: make(map[int]chan T)}
}

func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.v
}

func (v *Value[T]) Set(next T) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.v = next
	for _, ch := range v.watchers {
		// drop the stale pending value, keep only the newest
		select {
		case <-ch:
		default:
		}
		ch <- next
	}
}

// Watch returns a channel receiving every subsequent value and a cancel
// func that closes it. Cancel is safe to call more than once.
func (v *Value[T]) Watch() (<-chan T, func()) {
	v.mu.Lock()
	defer v.mu.Unlock()

	id := v.nextID
	v.nextID++
	ch := make(chan T, 1)
	v.watchers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			delete(v.watchers, id)
			close(ch)
		})
	}
}
