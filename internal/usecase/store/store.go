package store

import (
	"sync"

	"github.com/google/uuid"
)

// Listener is notified with the new state after every dispatch.
type Listener func(State)

// Store owns the storefront state. Dispatch is the only way to change it;
// concurrent dispatches are applied one at a time.
type Store struct {
	mu        sync.Mutex
	state     State
	newID     func() string
	listeners map[int]Listener
	nextSub   int
}

// Option configures a Store.
type Option func(*Store)

// WithInitialState seeds the store.
func WithInitialState(s State) Option {
	return func(st *Store) { st.state = s }
}

// WithIDGenerator replaces the cart line id generator (uuid by default).
func WithIDGenerator(fn func() string) Option {
	return func(st *Store) { st.newID = fn }
}

// New creates a store.
func New(opts ...Option) *Store {
	s := &Store{
		newID:     uuid.NewString,
		listeners: make(map[int]Listener),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Dispatch applies a and notifies listeners. It returns the new state.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	if add, ok := a.(AddToCart); ok && add.ItemID == "" {
		add.ItemID = s.newID()
		a = add
	}
	s.state = Reduce(s.state, a)
	next := s.state
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(next)
	}
	return next
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}
