// Package session holds the signed-in identity of the client. It is created at
// sign-in, passed to whatever needs the owner, and torn down at sign-out.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/existflow/toedo/internal/config"
)

// ErrNoSession is returned when nobody is signed in
var ErrNoSession = errors.New("not logged in, run 'toedo auth login' first")

// Session is the identity of the signed-in user
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	ServerURL string    `json:"server_url"`

	path string

	mu       sync.Mutex
	ended    bool
	teardown []func()
}

// DefaultPath returns ~/.toedo/session.json
func DefaultPath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}

// Begin starts a session and persists it to path
func Begin(path, serverURL, userID, email, token string, expiresAt time.Time) (*Session, error) {
	s := &Session{
		UserID:    userID,
		Email:     email,
		Token:     token,
		ExpiresAt: expiresAt,
		ServerURL: serverURL,
		path:      path,
	}
	if err := s.save(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load restores the persisted session. It returns ErrNoSession when there is
// none or it has expired.
func Load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	s := &Session{path: path}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	if s.Token == "" || s.UserID == "" {
		return nil, ErrNoSession
	}
	if !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt) {
		return nil, ErrNoSession
	}
	return s, nil
}

func (s *Session) save() error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

// OwnerID returns the user id for owner scoped queries
func (s *Session) OwnerID() string {
	return s.UserID
}

// Active reports whether End has not been called yet
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.ended
}

// OnEnd registers fn to run when the session ends, e.g. stopping a poller.
// If the session already ended fn runs immediately.
func (s *Session) OnEnd(fn func()) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		fn()
		return
	}
	s.teardown = append(s.teardown, fn)
	s.mu.Unlock()
}

// End runs the teardown hooks in reverse order and removes the persisted
// session. Calling End twice is a no-op.
func (s *Session) End() error {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return nil
	}
	s.ended = true
	hooks := s.teardown
	s.teardown = nil
	s.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}

	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
