// Package session keeps the signed-in user's credentials: the bearer token
// and the serialized user object. Saving or clearing the session notifies
// subscribers and publishes notify.AuthChange.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/meetly-app/meetly/internal/notify"
	"github.com/meetly-app/meetly/pkg/models"
)

// ErrNoSession indicates that nobody is signed in.
var ErrNoSession = errors.New("session: not signed in")

// Change describes the session after a Save or Clear.
type Change struct {
	Token string
	User  *models.User
}

// SignedIn reports whether the change left a session in place.
func (c Change) SignedIn() bool {
	return c.Token != "" && c.User != nil
}

// Store holds the current session.
type Store interface {
	// Token returns the bearer token, or "" when signed out.
	Token() string
	// User returns a copy of the signed-in user, or nil.
	User() *models.User
	// Save replaces the session.
	Save(token string, user models.User) error
	// Clear removes the session.
	Clear() error
	// Subscribe registers fn for every Save and Clear and returns a
	// function that removes it.
	Subscribe(fn func(Change)) func()
}

// state is the in-memory core shared by MemoryStore and FileStore.
type state struct {
	mu     sync.RWMutex
	token  string
	user   *models.User
	bus    *notify.Bus
	nextID int
	subs   map[int]func(Change)
}

func (s *state) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *state) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *state) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs == nil {
		s.subs = make(map[int]func(Change))
	}
	s.nextID++
	id := s.nextID
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// set swaps the session and returns the change plus the subscribers to
// notify. Caller must hold mu.
func (s *state) setLocked(token string, user *models.User) (Change, []func(Change)) {
	s.token = token
	s.user = user
	change := Change{Token: token}
	if user != nil {
		u := *user
		change.User = &u
	}
	subs := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return change, subs
}

func (s *state) announce(change Change, subs []func(Change)) {
	for _, fn := range subs {
		fn(change)
	}
	s.bus.Publish(notify.AuthChange)
}

// MemoryStore is a Store that lives only as long as the process.
type MemoryStore struct {
	state
}

// NewMemoryStore returns an empty MemoryStore publishing on bus (may be nil).
func NewMemoryStore(bus *notify.Bus) *MemoryStore {
	return &MemoryStore{state: state{bus: bus}}
}

// Save replaces the session.
func (m *MemoryStore) Save(token string, user models.User) error {
	m.mu.Lock()
	change, subs := m.setLocked(token, &user)
	m.mu.Unlock()
	m.announce(change, subs)
	return nil
}

// Clear removes the session.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	change, subs := m.setLocked("", nil)
	m.mu.Unlock()
	m.announce(change, subs)
	return nil
}

// SignedIn reports whether store holds a token and user and the token has
// not visibly expired at now. Opaque tokens are trusted until the server
// rejects them.
func SignedIn(store Store, now time.Time) bool {
	token := store.Token()
	if token == "" || store.User() == nil {
		return false
	}
	return !Expired(token, now)
}

// Require returns the signed-in user or ErrNoSession.
func Require(store Store, now time.Time) (*models.User, error) {
	if !SignedIn(store, now) {
		return nil, ErrNoSession
	}
	return store.User(), nil
}
