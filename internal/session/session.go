// Package session owns the authenticated identity of the client: the token,
// the current user and the transitions between anonymous and authenticated.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"

	"tasktrackr/internal/service"
)

// ErrNoToken is returned by Token when the session holds no credential.
var ErrNoToken = errors.New("no session token")

// State is the position of a session in the auth state machine.
type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Snapshot is an immutable view of a session, handed to subscribers.
type Snapshot struct {
	State    State
	User     *service.User
	HasToken bool
}

// Session holds the token and the user. The user is only ever set while a
// token is held; a token may exist before its user has been fetched.
type Session struct {
	mu             sync.RWMutex
	token          *oauth2.Token
	user           *service.User
	authenticating bool
	store          TokenStore
	subscribers    []func(Snapshot)
	log            *slog.Logger
}

// Open creates a session and restores the token kept in store.
// A token that cannot be read is discarded.
func Open(store TokenStore, log *slog.Logger) *Session {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Session{store: store, log: log}

	token, err := store.Load()
	if err != nil {
		log.Warn("discarding unreadable session token", "err", err)
		if err := store.Clear(); err != nil {
			log.Warn("failed to remove session token", "err", err)
		}
		return s
	}
	s.token = token
	return s
}

// Token implements oauth2.TokenSource.
func (s *Session) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return nil, ErrNoToken
	}
	t := *s.token
	return &t, nil
}

// HasToken reports whether a credential is held.
func (s *Session) HasToken() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != nil
}

// User returns a copy of the current user, or nil.
func (s *Session) User() *service.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userCopy()
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Subscribe registers fn to be called after every transition.
func (s *Session) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Invalidate forces the session back to anonymous. It is the handler run when
// the backend rejects the credential of an authenticated request.
func (s *Session) Invalidate() {
	if s.clear() {
		s.log.Info("session invalidated by server")
	}
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{User: s.userCopy(), HasToken: s.token != nil}
	switch {
	case s.token != nil && s.user != nil:
		snap.State = Authenticated
	case s.authenticating || s.token != nil:
		snap.State = Authenticating
	default:
		snap.State = Anonymous
	}
	return snap
}

func (s *Session) userCopy() *service.User {
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// update applies fn under the lock and notifies subscribers afterwards.
func (s *Session) update(fn func() bool) bool {
	s.mu.Lock()
	changed := fn()
	snap := s.snapshot()
	subs := append([]func(Snapshot){}, s.subscribers...)
	s.mu.Unlock()

	if changed {
		for _, sub := range subs {
			sub(snap)
		}
	}
	return changed
}

func (s *Session) beginAuth() {
	s.update(func() bool {
		s.authenticating = true
		return true
	})
}

func (s *Session) abortAuth() {
	s.update(func() bool {
		s.authenticating = false
		return true
	})
}

// establish stores a fresh credential together with its user.
func (s *Session) establish(token *oauth2.Token, user service.User) {
	if err := s.store.Save(token); err != nil {
		s.log.Warn("failed to persist session token", "err", err)
	}
	s.update(func() bool {
		s.token = token
		s.user = &user
		s.authenticating = false
		return true
	})
}

// setUser attaches the user fetched for an existing token.
func (s *Session) setUser(user service.User) bool {
	return s.update(func() bool {
		s.authenticating = false
		if s.token == nil {
			return false
		}
		s.user = &user
		return true
	})
}

// clear drops token and user and removes the persisted token.
// It reports whether anything was held.
func (s *Session) clear() bool {
	changed := s.update(func() bool {
		held := s.token != nil || s.user != nil || s.authenticating
		s.token = nil
		s.user = nil
		s.authenticating = false
		return held
	})
	if err := s.store.Clear(); err != nil {
		s.log.Warn("failed to remove session token", "err", err)
	}
	return changed
}
