package storage

import (
	"errors"
	"sync"
	"time"

	"github.com/sketchworks/sketchify/internal/models"
)

var (
	// ErrSessionBusy is returned when a generation attempt is already
	// outstanding for the session.
	ErrSessionBusy = errors.New("a generation is already in progress for this session")

	// ErrNoSource is returned when an attempt starts before a source
	// photo has been uploaded.
	ErrNoSource = errors.New("session has no source image")

	// ErrNotFound is returned for unknown session IDs.
	ErrNotFound = errors.New("session not found")
)

type SessionStore struct {
	sessions map[string]*models.SketchSession
	mu       sync.RWMutex
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*models.SketchSession),
	}
}

func (s *SessionStore) Get(sessionID string) (*models.SketchSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	return session, exists
}

func (s *SessionStore) Set(sessionID string, session *models.SketchSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = session
}

// Snapshot returns a copy of the session taken under the read lock, safe to
// serialize while other goroutines update the store. Image pointers are
// shared; stored images are replaced wholesale, never mutated in place.
func (s *SessionStore) Snapshot(sessionID string) (models.SketchSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	if !exists {
		return models.SketchSession{}, false
	}
	return *session, true
}

// Snapshots returns copies of every session for read-only use.
func (s *SessionStore) Snapshots() []models.SketchSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.SketchSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		result = append(result, *session)
	}
	return result
}

// Update applies fn to the session under the write lock and bumps the
// updated timestamp. A non-nil error from fn aborts the update.
func (s *SessionStore) Update(sessionID string, fn func(*models.SketchSession) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[sessionID]
	if !exists {
		return ErrNotFound
	}
	if err := fn(session); err != nil {
		return err
	}
	session.UpdatedAt = time.Now()
	return nil
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// IsBusy reports whether a generation attempt is outstanding for the session.
func (s *SessionStore) IsBusy(sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	return exists && session.Busy
}

// SetSource replaces the session's source photo. Any previous generated
// image and error are cleared; a new photo always starts a clean slate.
func (s *SessionStore) SetSource(sessionID string, img *models.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[sessionID]
	if !exists {
		return ErrNotFound
	}
	if session.Busy {
		return ErrSessionBusy
	}

	session.Source = img
	session.Generated = nil
	session.Error = ""
	session.UpdatedAt = time.Now()
	return nil
}

// BeginAttempt marks the session busy for one generation attempt. It fails
// when the session is unknown, already busy, or has no source photo.
func (s *SessionStore) BeginAttempt(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[sessionID]
	if !exists {
		return ErrNotFound
	}
	if session.Busy {
		return ErrSessionBusy
	}
	if session.Source == nil {
		return ErrNoSource
	}

	session.Busy = true
	session.UpdatedAt = time.Now()
	return nil
}

// CompleteAttempt records the outcome of a generation attempt and clears the
// busy flag. Exactly one of generated image and error message ends up set.
func (s *SessionStore) CompleteAttempt(sessionID string, img *models.Image, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[sessionID]
	if !exists {
		return ErrNotFound
	}

	session.Busy = false
	if img != nil {
		session.Generated = img
		session.Error = ""
	} else {
		session.Generated = nil
		session.Error = errMsg
	}
	session.UpdatedAt = time.Now()
	return nil
}
