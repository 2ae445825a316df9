package state

import "sync"

// Scope is a component lifetime: setup runs on Mount, and the teardown
// it returns runs exactly once on Unmount.
type Scope struct {
	mu       sync.Mutex
	teardown func()
	done     bool
}

// Mount runs setup and remembers its teardown. Mounting an already
// unmounted scope runs the teardown immediately.
func (s *Scope) Mount(setup func() func()) {
	td := setup()

	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		if td != nil {
			td()
		}
		return
	}
	s.teardown = td
	s.mu.Unlock()
}

func (s *Scope) Unmount() {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	td := s.teardown
	s.teardown = nil
	s.mu.Unlock()

	if td != nil {
		td()
	}
}
