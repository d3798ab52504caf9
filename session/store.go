package session

import (
	"sync"
)

// Transition is a state change accepted by [Store.Apply]. The set of
// transitions is closed: only the types declared in this package satisfy it.
type Transition interface {
	apply(*Session)
}

// Pending marks the start of a login, register, or fetch-current-user call.
type Pending struct{}

// Fulfilled records a successful login, register, or fetch-current-user call.
type Fulfilled struct {
	User User
}

// Rejected records a failed login, register, or fetch-current-user call.
type Rejected struct {
	Message string
}

// LoggedOut resets the session after a logout call, successful or not.
type LoggedOut struct{}

// Deauthenticated resets the session after the client detected that the
// server no longer recognises its credential. No network call is implied.
type Deauthenticated struct{}

// ClearError drops the last error message and leaves everything else intact.
type ClearError struct{}

func (Pending) apply(s *Session) {
	s.Loading = true
	s.Error = ""
}

func (t Fulfilled) apply(s *Session) {
	s.Loading = false
	s.IsAuthenticated = true
	s.User = t.User.Clone()
}

func (t Rejected) apply(s *Session) {
	s.Loading = false
	s.Error = t.Message
}

func (LoggedOut) apply(s *Session) {
	*s = Session{}
}

func (Deauthenticated) apply(s *Session) {
	*s = Session{}
}

func (ClearError) apply(s *Session) {
	s.Error = ""
}

// Listener observes every applied transition together with the resulting
// snapshot.
type Listener func(Transition, Session)

// Store is the process-wide holder of the [Session]. All mutation goes
// through [Store.Apply]; readers get copies from [Store.Snapshot].
//
// Transitions are applied in the order Apply is called, so concurrent
// operations settle last-writer-wins.
type Store struct {
	mu        sync.RWMutex
	state     Session
	listeners map[uint64]Listener
	nextID    uint64
}

// NewStore returns a store in the initial unauthenticated state.
func NewStore() *Store {
	return &Store{
		listeners: make(map[uint64]Listener),
	}
}

// Snapshot returns a deep copy of the current session.
func (s *Store) Snapshot() Session {
	if s == nil {
		return Session{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Apply performs t and notifies listeners. It reports whether the session
// changed. A nil store or transition is a no-op.
func (s *Store) Apply(t Transition) bool {
	if s == nil || t == nil {
		return false
	}

	s.mu.Lock()
	before := s.state
	t.apply(&s.state)
	changed := !equal(before, s.state)
	snap := s.state.clone()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	if changed {
		for _, l := range listeners {
			l(t, snap)
		}
	}
	return changed
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	if s == nil || l == nil {
		return func() {}
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func equal(a, b Session) bool {
	if a.IsAuthenticated != b.IsAuthenticated || a.Loading != b.Loading || a.Error != b.Error {
		return false
	}
	if a.User == nil || b.User == nil {
		return a.User == b.User
	}
	if a.User == b.User {
		return true
	}
	ua, ub := a.User, b.User
	if ua.ID != ub.ID || ua.Username != ub.Username || ua.Email != ub.Email ||
		ua.FirstName != ub.FirstName || ua.LastName != ub.LastName ||
		ua.Activated != ub.Activated || len(ua.Roles) != len(ub.Roles) {
		return false
	}
	for i := range ua.Roles {
		if ua.Roles[i] != ub.Roles[i] {
			return false
		}
	}
	return true
}
