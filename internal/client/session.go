package client

import (
	"encoding/json"
	"errors"
	"os"
	"sync"

	"bookvault/internal/model"
)

// SessionStore holds the signed token and the user view between calls, the
// way a browser keeps them in local storage. Both values are opaque to the
// store.
type SessionStore interface {
	SetSession(token string, user *model.PublicUser) error
	Token() string
	User() *model.PublicUser
	Clear() error
}

// MemorySessionStore keeps the session in process memory.
type MemorySessionStore struct {
	mu    sync.RWMutex
	token string
	user  *model.PublicUser
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

func (s *MemorySessionStore) SetSession(token string, user *model.PublicUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
	return nil
}

func (s *MemorySessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemorySessionStore) User() *model.PublicUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *MemorySessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	return nil
}

// fileSession is the on-disk layout of a persisted session.
type fileSession struct {
	Token string            `json:"token"`
	User  *model.PublicUser `json:"user"`
}

// FileSessionStore persists the session as a JSON file so it survives
// process restarts.
type FileSessionStore struct {
	mu   sync.Mutex
	path string
}

// NewFileSessionStore creates a session store backed by the given file path.
func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

func (s *FileSessionStore) load() fileSession {
	var session fileSession
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fileSession{}
	}
	if err := json.Unmarshal(data, &session); err != nil {
		return fileSession{}
	}
	return session
}

func (s *FileSessionStore) SetSession(token string, user *model.PublicUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.Marshal(fileSession{Token: token, User: user})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *FileSessionStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load().Token
}

func (s *FileSessionStore) User() *model.PublicUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load().User
}

func (s *FileSessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
