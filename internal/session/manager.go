package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/oauth2"

	"tasktrackr/internal/service"
)

// Credentials are submitted to log in.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration holds the fields of a new account.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by the backend for a successful login or register.
type AuthResult struct {
	Token string       `json:"token"`
	User  service.User `json:"user"`
}

// Authenticator is the backend side of the auth endpoints.
type Authenticator interface {
	Register(ctx context.Context, r Registration) (AuthResult, error)
	Login(ctx context.Context, c Credentials) (AuthResult, error)
	// Me returns the user owning the current token.
	Me(ctx context.Context) (service.User, error)
}

// ErrMissingToken is returned when the backend accepts credentials but sends no token.
var ErrMissingToken = errors.New("auth response did not include a token")

// Manager drives the session through login, register, logout and restore.
type Manager struct {
	sess *Session
	auth Authenticator
	log  *slog.Logger
}

// NewManager creates a manager for sess backed by auth.
func NewManager(sess *Session, auth Authenticator, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Manager{sess: sess, auth: auth, log: log}
}

// Session returns the managed session.
func (m *Manager) Session() *Session {
	return m.sess
}

// Register creates an account and signs in with it.
func (m *Manager) Register(ctx context.Context, r Registration) error {
	r.Email = strings.TrimSpace(r.Email)

	m.sess.beginAuth()
	res, err := m.auth.Register(ctx, r)
	if err != nil {
		m.sess.abortAuth()
		return err
	}
	return m.establish(res)
}

// Login signs in with existing credentials.
func (m *Manager) Login(ctx context.Context, c Credentials) error {
	c.Email = strings.TrimSpace(c.Email)

	m.sess.beginAuth()
	res, err := m.auth.Login(ctx, c)
	if err != nil {
		m.sess.abortAuth()
		return err
	}
	return m.establish(res)
}

// Logout drops the session locally. No request is made.
func (m *Manager) Logout() {
	m.sess.clear()
}

// Restore validates a persisted token by fetching the current user.
// It reports whether the session ended up authenticated. Failures are
// logged and leave the session anonymous with the stored token removed.
func (m *Manager) Restore(ctx context.Context) bool {
	if !m.sess.HasToken() {
		return false
	}

	m.sess.beginAuth()
	user, err := m.auth.Me(ctx)
	if err != nil {
		m.log.Warn("session restore failed", "err", err)
		m.sess.clear()
		return false
	}
	if !m.sess.setUser(user) {
		return false
	}
	m.log.Debug("session restored", "user", user.Email)
	return true
}

func (m *Manager) establish(res AuthResult) error {
	if res.Token == "" {
		m.sess.abortAuth()
		return ErrMissingToken
	}
	token := &oauth2.Token{AccessToken: res.Token, TokenType: "Bearer"}
	m.sess.establish(token, res.User)
	m.log.Debug("session established", "user", res.User.Email)
	return nil
}

// Describe formats a user for display.
func Describe(u *service.User) string {
	if u == nil {
		return "guest"
	}
	if u.Email == "" {
		return u.Name
	}
	return fmt.Sprintf("%s <%s>", u.Name, u.Email)
}
