// Package state holds the original and working matrices of an edit session
// and applies reducer-style transitions to them.
package state

import (
	"sync"

	"tableflip.dev/pricematrix/pkg/matrix"
)

// State is a snapshot of both matrices.
type State struct {
	Original matrix.Matrix
	Working  matrix.Matrix
}

// Dirty reports whether working differs from original.
func (s State) Dirty() bool {
	return !s.Working.Equal(s.Original)
}

func (s State) clone() State {
	return State{
		Original: s.Original.Clone(),
		Working:  s.Working.Clone(),
	}
}

// Store owns the matrices. Each dispatch replaces the whole state atomically,
// so readers never observe a partially applied action.
type Store struct {
	mu     sync.RWMutex
	state  State
	nextID int
	subs   map[int]func(State)
}

// New returns a store with empty matrices.
func New() *Store {
	return &Store{
		state: State{
			Original: matrix.Matrix{},
			Working:  matrix.Matrix{},
		},
		subs: make(map[int]func(State)),
	}
}

// Dispatch applies a to the current state and notifies subscribers.
func (s *Store) Dispatch(a Action) {
	if a == nil {
		return
	}
	s.mu.Lock()
	next := a.apply(s.state)
	s.state = next
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next.clone())
	}
}

// State returns a deep copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe registers fn to receive the state after every dispatch. The
// returned function removes the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}
