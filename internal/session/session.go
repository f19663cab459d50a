// Package session owns the cached Branflu session token. The browser app
// this client mirrors stashed the token in localStorage and read it
// ambiently from every page; here it is an explicit store with a defined
// lifecycle: set on login success, cleared on logout, injected into
// whatever needs it.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Session is the single piece of persistent client state.
type Session struct {
	Token     string    `json:"token"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists the session to a single JSON file.
type Store struct {
	file    string
	mu      sync.Mutex
	current *Session
}

// NewStore creates a store under the user's home directory
// (~/.branflu/session.json) and loads any existing session.
func NewStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	s := NewStoreAt(filepath.Join(home, ".branflu", "session.json"))
	_ = s.Load()
	return s, nil
}

// NewStoreAt creates a store backed by an explicit file path.
func NewStoreAt(file string) *Store {
	return &Store{file: file}
}

// Load reads the session file from disk.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.file)
	if err != nil {
		return err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return fmt.Errorf("reading session file: %w", err)
	}
	s.current = &sess
	return nil
}

// Current returns the active session, or nil when logged out.
func (s *Store) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Set records a new session and persists it. Called on login success.
func (s *Store) Set(sess Session) error {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now()
	}

	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.file), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.file, data, 0o600)
}

// Clear forgets the session and removes the file. Called on logout.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	err := os.Remove(s.file)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
