package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/aliskhannn/quran-reader-bot/internal/domain/entities"
)

// PlaybackService drives the single audio source of every reading session.
// Operations on one session run one at a time, from the state change to the
// matching surface call.
type PlaybackService struct {
	sessions SessionStorage
	surface  AudioSurface
	locks    sessionLocks
	logger   *zap.Logger
}

// NewPlaybackService creates a new PlaybackService.
func NewPlaybackService(sessions SessionStorage, logger *zap.Logger) *PlaybackService {
	return &PlaybackService{
		sessions: sessions,
		logger:   logger,
	}
}

// SetSurface sets the audio surface (called after the delivery layer is created).
func (s *PlaybackService) SetSurface(surface AudioSurface) {
	s.surface = surface
}

// Play toggles the given verse of the loaded surah. Pressing play on the
// verse that is already playing pauses it.
func (s *PlaybackService) Play(ctx context.Context, sessionID int64, verseNumber int) (*entities.ReadingSession, error) {
	defer s.locks.lock(sessionID)()

	var start bool
	sess, err := s.sessions.Update(sessionID, func(sess *entities.ReadingSession) error {
		if !sess.Loaded() {
			return ErrSurahNotLoaded
		}
		v, ok := sess.Verse(verseNumber)
		if !ok {
			return fmt.Errorf("verse %d: %w", verseNumber, ErrVerseNotLoaded)
		}
		start = sess.Playback.Play(v)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !start {
		s.stop(sessionID)
		return sess, nil
	}

	return s.start(ctx, sess), nil
}

// Pause stops the audio and keeps the current verse.
func (s *PlaybackService) Pause(sessionID int64) (*entities.ReadingSession, error) {
	defer s.locks.lock(sessionID)()

	sess, err := s.sessions.Update(sessionID, func(sess *entities.ReadingSession) error {
		sess.Playback.Pause()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.stop(sessionID)
	return sess, nil
}

// Resume plays the current verse again after a pause.
func (s *PlaybackService) Resume(ctx context.Context, sessionID int64) (*entities.ReadingSession, error) {
	defer s.locks.lock(sessionID)()

	var start bool
	sess, err := s.sessions.Update(sessionID, func(sess *entities.ReadingSession) error {
		if sess.Playback.Playing {
			return nil
		}
		start = sess.Playback.Resume()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !start {
		return sess, nil
	}
	return s.start(ctx, sess), nil
}

// Next advances to the following verse. After the last verse the playback stops.
func (s *PlaybackService) Next(ctx context.Context, sessionID int64) (*entities.ReadingSession, error) {
	defer s.locks.lock(sessionID)()

	var start bool
	sess, err := s.sessions.Update(sessionID, func(sess *entities.ReadingSession) error {
		if !sess.Loaded() {
			return ErrSurahNotLoaded
		}
		start = sess.Playback.Next(sess.Verses)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !start {
		s.stop(sessionID)
		return sess, nil
	}
	return s.start(ctx, sess), nil
}

// Ended is reported by the audio surface when the verse with the given key
// finished playing. Reports about a verse that is no longer current, or about
// a session that is gone, are ignored.
func (s *PlaybackService) Ended(ctx context.Context, sessionID int64, verseKey string) (*entities.ReadingSession, error) {
	defer s.locks.lock(sessionID)()

	var start, current bool
	sess, ok := s.sessions.UpdateExisting(sessionID, func(sess *entities.ReadingSession) {
		current = isCurrentKey(sess, verseKey) && sess.Playback.Playing
		if current {
			start = sess.Playback.Next(sess.Verses)
		}
	})
	if !ok || !current || !start {
		return sess, nil
	}
	return s.start(ctx, sess), nil
}

// Failed is reported by the audio surface when the verse with the given key
// could not be played. The play control stays disabled until another verse
// is chosen. It returns nil when the session is gone.
func (s *PlaybackService) Failed(sessionID int64, verseKey string) *entities.ReadingSession {
	defer s.locks.lock(sessionID)()
	return s.fail(sessionID, verseKey)
}

func (s *PlaybackService) fail(sessionID int64, verseKey string) *entities.ReadingSession {
	sess, _ := s.sessions.UpdateExisting(sessionID, func(sess *entities.ReadingSession) {
		if isCurrentKey(sess, verseKey) {
			sess.Playback.Fail()
		}
	})
	return sess
}

// start hands the current verse to the audio surface and returns the
// resulting session state. The caller holds the session lock.
func (s *PlaybackService) start(ctx context.Context, sess *entities.ReadingSession) *entities.ReadingSession {
	v := *sess.Playback.Current
	failed := func() *entities.ReadingSession {
		if out := s.fail(sess.ID, v.Key()); out != nil {
			return out
		}
		// purged meanwhile, report the failure on the snapshot
		sess.Playback.Fail()
		return sess
	}

	if !v.HasAudio() {
		s.logger.Warn("verse has no audio", zap.String("verse_key", v.Key()))
		return failed()
	}

	if s.surface == nil {
		s.logger.Error("audio surface not set, cannot play", zap.String("verse_key", v.Key()))
		return failed()
	}

	if err := s.surface.Play(ctx, sess.ID, sess.Surah, v); err != nil {
		s.logger.Warn("failed to play verse",
			zap.Int64("session_id", sess.ID),
			zap.String("verse_key", v.Key()),
			zap.Error(err),
		)
		return failed()
	}

	return sess
}

func (s *PlaybackService) stop(sessionID int64) {
	if s.surface != nil {
		s.surface.Stop(sessionID)
	}
}

func isCurrentKey(sess *entities.ReadingSession, verseKey string) bool {
	return sess.Playback.Current != nil && sess.Playback.Current.Key() == verseKey
}

// sessionLocks hands out one mutex per session. Entries are dropped once
// nobody holds or waits for them.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[int64]*sessionLock
}

type sessionLock struct {
	sync.Mutex
	refs int
}

// lock blocks until the session is free and returns the matching unlock.
func (l *sessionLocks) lock(sessionID int64) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[int64]*sessionLock)
	}
	sl, ok := l.locks[sessionID]
	if !ok {
		sl = &sessionLock{}
		l.locks[sessionID] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.Lock()

	return func() {
		sl.Unlock()

		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, sessionID)
		}
		l.mu.Unlock()
	}
}
