package storage

import (
	"errors"
	"sync"
	"time"

	"github.com/aliskhannn/quran-reader-bot/internal/domain/entities"
)

// ErrStaleLoad is returned when a load finishes after a newer one was requested
// for the same session.
var ErrStaleLoad = errors.New("stale load")

// SessionStorage provides in-memory storage for reading sessions by session ID.
type SessionStorage struct {
	mu       sync.Mutex
	sessions map[int64]*entities.ReadingSession
	now      func() time.Time
}

// NewSessionStorage creates a new SessionStorage.
func NewSessionStorage() *SessionStorage {
	return &SessionStorage{
		sessions: make(map[int64]*entities.ReadingSession),
		now:      time.Now,
	}
}

// Get returns a snapshot of the session.
func (s *SessionStorage) Get(sessionID int64) (*entities.ReadingSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	return sess.Clone(), true
}

// Update runs fn on the session under the storage lock, creating the session
// if needed, and returns a snapshot taken after fn. Changes made by fn are
// kept even when it returns an error.
func (s *SessionStorage) Update(sessionID int64, fn func(*entities.ReadingSession) error) (*entities.ReadingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreate(sessionID)
	err := fn(sess)
	sess.UpdatedAt = s.now()

	return sess.Clone(), err
}

// UpdateExisting is Update for a session that must already exist. A missing
// session is not created and ok is false.
func (s *SessionStorage) UpdateExisting(sessionID int64, fn func(*entities.ReadingSession)) (*entities.ReadingSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	fn(sess)
	sess.UpdatedAt = s.now()

	return sess.Clone(), true
}

// BeginLoad records token as the latest load requested for the session.
func (s *SessionStorage) BeginLoad(sessionID int64, surahNumber int, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreate(sessionID)
	sess.LoadToken = token
	sess.Loading = surahNumber
	sess.UpdatedAt = s.now()
}

// CommitLoad installs the loaded surah if token is still the latest load of
// the session. Playback is reset. Otherwise the session is left untouched and
// ErrStaleLoad is returned.
func (s *SessionStorage) CommitLoad(
	sessionID int64,
	token string,
	surah *entities.Surah,
	verses []entities.Verse,
	bookmarkKey string,
) (*entities.ReadingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok || sess.LoadToken != token {
		return nil, ErrStaleLoad
	}

	sess.Surah = surah
	sess.Verses = verses
	sess.Loading = 0
	sess.Playback.Stop()
	sess.BookmarkKey = bookmarkKey
	sess.UpdatedAt = s.now()

	return sess.Clone(), nil
}

// AbortLoad clears the loading marker if token is still the latest load.
func (s *SessionStorage) AbortLoad(sessionID int64, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[sessionID]; ok && sess.LoadToken == token {
		sess.Loading = 0
	}
}

// Delete removes the session.
func (s *SessionStorage) Delete(sessionID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// PurgeIdle removes sessions not touched for longer than ttl and returns
// how many were removed.
func (s *SessionStorage) PurgeIdle(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-ttl)
	removed := 0
	for id, sess := range s.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions.
func (s *SessionStorage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStorage) getOrCreate(sessionID int64) *entities.ReadingSession {
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = entities.NewReadingSession(sessionID)
		s.sessions[sessionID] = sess
	}
	return sess
}
