package chartstate

import "sync"

// Store holds one State and serializes actions applied to it.
// Listeners are called after every dispatch with the action and the resulting state,
// in dispatch order. A listener must not call Dispatch.
type Store struct {
	// dispatchMu orders reduce and notify as one step.
	dispatchMu sync.Mutex

	mu        sync.RWMutex
	state     State
	listeners []func(Action, State)
}

// NewStore creates a store starting from initial.
func NewStore(initial State) *Store {
	return &Store{state: initial}
}

// Dispatch reduces a into the held state and notifies listeners.
func (s *Store) Dispatch(a Action) State {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	s.state = Reduce(s.state, a)
	next := s.state
	listeners := make([]func(Action, State), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(a, next)
	}
	return next
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn to be called after each dispatch.
func (s *Store) Subscribe(fn func(Action, State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}
