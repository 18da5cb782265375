package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aliskhannn/quran-reader-bot/internal/domain/entities"
	"github.com/aliskhannn/quran-reader-bot/internal/storage"
)

var (
	ErrStaleLoad      = storage.ErrStaleLoad
	ErrNoSession      = errors.New("no reading session")
	ErrVerseNotLoaded = errors.New("verse is not part of the loaded surah")
)

// ChapterLoader loads the verses of a surah.
type ChapterLoader interface {
	LoadChapter(ctx context.Context, number int) ([]entities.Verse, error)
}

// ReadingService opens surahs into per-chat reading sessions.
type ReadingService struct {
	surahs   SurahRepository
	loader   ChapterLoader
	sessions SessionStorage
	logger   *zap.Logger
}

// NewReadingService creates a new ReadingService.
func NewReadingService(
	surahs SurahRepository,
	loader ChapterLoader,
	sessions SessionStorage,
	logger *zap.Logger,
) *ReadingService {
	return &ReadingService{
		surahs:   surahs,
		loader:   loader,
		sessions: sessions,
		logger:   logger,
	}
}

// Open loads a surah into the session. user may be nil; when present its
// last read pointer becomes the highlighted bookmark. If another surah was
// requested for the same session while this one was loading, the result is
// discarded and ErrStaleLoad is returned.
func (s *ReadingService) Open(
	ctx context.Context,
	sessionID int64,
	surahNumber int,
	user *entities.User,
) (*entities.ReadingSession, error) {
	surah, err := s.surahs.GetByNumber(ctx, surahNumber)
	if err != nil {
		return nil, fmt.Errorf("get surah %d: %w", surahNumber, err)
	}

	token := uuid.NewString()
	s.sessions.BeginLoad(sessionID, surahNumber, token)

	verses, err := s.loader.LoadChapter(ctx, surahNumber)
	if err != nil {
		s.sessions.AbortLoad(sessionID, token)
		return nil, err
	}

	sess, err := s.sessions.CommitLoad(sessionID, token, surah, verses, user.BookmarkKey())
	if err != nil {
		s.logger.Debug("discarding stale load",
			zap.Int64("session_id", sessionID),
			zap.Int("surah", surahNumber),
		)
		return nil, err
	}

	return sess, nil
}

// Session returns a snapshot of the session.
func (s *ReadingService) Session(sessionID int64) (*entities.ReadingSession, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrNoSession
	}
	return sess, nil
}

// Close drops the session.
func (s *ReadingService) Close(sessionID int64) {
	s.sessions.Delete(sessionID)
}
