// Package session holds the single source of truth for "who is signed
// in and with what roles". Every other component reads identity state
// through it; only the auth service writes to it.
package session

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/tekmiz/tekmiz-go/internal/model"
)

// State wraps the current identity with readiness metadata.
// Identity is nil when signed out. Initializing is true only during
// the one-time startup session check; while it is true the
// authorization guard must not issue redirect decisions.
type State struct {
	Identity     *model.Identity
	Initializing bool
}

// Authenticated reports whether an identity is present
func (s State) Authenticated() bool {
	return s.Identity != nil
}

// HasRole reports whether the current identity holds the given role
func (s State) HasRole(role model.Role) bool {
	return s.Identity != nil && s.Identity.Roles.Has(role)
}

// IsTeacher reports whether the current identity holds the teacher role
func (s State) IsTeacher() bool {
	return s.HasRole(model.RoleTeacher)
}

// Listener receives the new state after every change
type Listener func(State)

// Store holds the session state and notifies subscribers on change.
// It is a process-wide singleton constructed once by the factory.
type Store struct {
	logger *slog.Logger

	mu        sync.Mutex
	state     State
	listeners map[int]Listener
	nextID    int
	initDone  bool
}

// NewStore creates a session store in the pre-initialization state
func NewStore(logger *slog.Logger) *Store {
	return &Store{
		logger:    logger.With(slog.String("component", "session")),
		state:     State{Initializing: true},
		listeners: make(map[int]Listener),
	}
}

// Get returns the current state. Synchronous, no side effects.
func (s *Store) Get() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetIdentity atomically replaces the current identity and notifies
// all subscribers synchronously. nil means signed out.
func (s *Store) SetIdentity(identity *model.Identity) {
	s.mu.Lock()
	s.state.Identity = identity
	state := s.state
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.notify(listeners, state)
}

// Initialize completes the one-time startup check: the identity is set
// first, then the initializing flag clears, as a single atomic change.
// Subscribers never observe Initializing == false with stale identity.
// Calls after the first are ignored.
func (s *Store) Initialize(identity *model.Identity) {
	s.mu.Lock()
	if s.initDone {
		s.mu.Unlock()
		s.logger.Warn("session initialize called more than once")
		return
	}
	s.initDone = true
	s.state.Identity = identity
	s.state.Initializing = false
	state := s.state
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.notify(listeners, state)
}

// Subscribe registers a listener for state changes. The listener is
// called once immediately with the current state, then on every
// change. The returned function unregisters it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	state := s.state
	s.mu.Unlock()

	fn(state)

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// snapshotListeners copies listeners in registration order.
// Caller must hold s.mu.
func (s *Store) snapshotListeners() []Listener {
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	// map iteration order is random; listeners were handed increasing ids
	sort.Ints(ids)
	out := make([]Listener, len(ids))
	for i, id := range ids {
		out[i] = s.listeners[id]
	}
	return out
}

func (s *Store) notify(listeners []Listener, state State) {
	for _, fn := range listeners {
		fn(state)
	}
}
