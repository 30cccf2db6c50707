package services

import (
	"crypto/rand"
	"encoding/hex"
	"sync"

	"gitcms/pkg/models"
	"gitcms/pkg/store"
)

// Status is the session's current operation state, surfaced to the
// panel's status indicator.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSaving    Status = "saving"
	StatusUploading Status = "uploading"
	StatusError     Status = "error"
)

// Session is the unit of editing state: one validated credential
// bundle, one store client, one content cache. It exists from login to
// logout; ending it discards every cached document.
type Session struct {
	ID          string
	Credentials models.Credentials
	Store       store.ContentStore
	Cache       *SessionCache

	mu        sync.Mutex
	status    Status
	lastError string
	docLocks  map[string]*sync.Mutex
}

func newSession(id string, creds models.Credentials, st store.ContentStore) *Session {
	return &Session{
		ID:          id,
		Credentials: creds,
		Store:       st,
		Cache:       NewSessionCache(),
		status:      StatusIdle,
		docLocks:    make(map[string]*sync.Mutex),
	}
}

// docLock returns the mutex serializing mutations of one document
// path. A second save to the same document waits for the first to
// fully resolve instead of racing it.
func (s *Session) docLock(path string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.docLocks[path]
	if !ok {
		l = &sync.Mutex{}
		s.docLocks[path] = l
	}
	return l
}

func (s *Session) setStatus(st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
	if st != StatusError {
		s.lastError = ""
	}
}

func (s *Session) setError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusError
	s.lastError = err.Error()
}

// Status returns the current operation state and the message of the
// most recent failure, if any.
func (s *Session) Status() (Status, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.lastError
}

// SessionManager owns the live sessions, keyed by the opaque id stored
// in the browser's session cookie.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	// NewStore builds the store client for a credential bundle.
	// Swapped for a fake in tests.
	NewStore func(models.Credentials) store.ContentStore
}

// NewSessionManager returns a manager creating real store clients.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		NewStore: func(creds models.Credentials) store.ContentStore {
			return store.New(creds)
		},
	}
}

// Create registers a new session for validated credentials and returns
// it. The caller has already probed the store; no session exists for
// credentials that failed validation.
func (m *SessionManager) Create(creds models.Credentials) *Session {
	id := newSessionID()
	s := newSession(id, creds, m.NewStore(creds))
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = s
	return s
}

// Get looks up a live session by id.
func (m *SessionManager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// End removes the session and discards its cached documents.
func (m *SessionManager) End(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Cache.Reset()
	}
}

func newSessionID() string {
	buf := make([]byte, 16)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}
