package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pageza/masterchef/backend/pkg/types"
)

// SessionStore holds the signed-in identity and its token. It is the one
// place views subscribe to for identity changes. With a path it survives
// restarts.
type SessionStore struct {
	mu      sync.RWMutex
	path    string
	session *types.SessionResponse
	subs    map[int]func(*types.Identity)
	nextID  int
	now     func() time.Time
}

// NewSessionStore returns a store persisted at path, or an in-memory store
// when path is empty
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{
		path: path,
		subs: make(map[int]func(*types.Identity)),
		now:  time.Now,
	}
}

// LoadSessionStore restores a store from path. A missing file or an expired
// session yields a signed-out store.
func LoadSessionStore(path string) (*SessionStore, error) {
	s := NewSessionStore(path)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var sess types.SessionResponse
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if sess.Token != "" && sess.ExpiresAt.After(s.now()) {
		s.session = &sess
	}
	return s, nil
}

// Identity returns the current identity or nil when signed out
func (s *SessionStore) Identity() *types.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	identity := s.session.User
	return &identity
}

// Token returns the bearer token, empty when signed out or expired
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil || !s.session.ExpiresAt.After(s.now()) {
		return ""
	}
	return s.session.Token
}

// Set stores a new session and notifies subscribers
func (s *SessionStore) Set(sess *types.SessionResponse) error {
	s.mu.Lock()
	copied := *sess
	s.session = &copied
	err := s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return err
}

// Clear signs out locally and notifies subscribers
func (s *SessionStore) Clear() error {
	s.mu.Lock()
	s.session = nil
	var err error
	if s.path != "" {
		if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = fmt.Errorf("failed to remove session: %w", rmErr)
		}
	}
	s.mu.Unlock()

	s.notify()
	return err
}

// Subscribe calls fn with the current identity right away and again on
// every change. The returned func unsubscribes.
func (s *SessionStore) Subscribe(fn func(*types.Identity)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	fn(s.Identity())

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *SessionStore) notify() {
	identity := s.Identity()
	s.mu.RLock()
	subs := make([]func(*types.Identity), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(identity)
	}
}

func (s *SessionStore) persistLocked() error {
	if s.path == "" {
		return nil
	}
	data, err := json.Marshal(s.session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}
