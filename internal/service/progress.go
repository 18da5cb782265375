package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/quran-reader-bot/internal/domain/entities"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSurahNotLoaded   = errors.New("no surah loaded")
	ErrNoLastRead       = errors.New("no last read verse")
)

// ProgressService records the user's last read verse.
type ProgressService struct {
	users    UserRepository
	sessions SessionStorage
	logger   *zap.Logger
}

// NewProgressService creates a new ProgressService.
func NewProgressService(users UserRepository, sessions SessionStorage, logger *zap.Logger) *ProgressService {
	return &ProgressService{
		users:    users,
		sessions: sessions,
		logger:   logger,
	}
}

// Bookmark stores the verse as the user's last read position and highlights
// it in the session. It requires a user and a loaded surah; without them
// nothing is persisted. Returns the "surah:verse" key of the bookmark.
func (s *ProgressService) Bookmark(ctx context.Context, user *entities.User, sessionID int64, verseNumber int) (string, error) {
	if user == nil {
		return "", ErrNotAuthenticated
	}

	sess, ok := s.sessions.Get(sessionID)
	if !ok || !sess.Loaded() {
		return "", ErrSurahNotLoaded
	}
	if _, ok := sess.Verse(verseNumber); !ok {
		return "", fmt.Errorf("verse %d: %w", verseNumber, ErrVerseNotLoaded)
	}

	lastRead := entities.LastRead{
		SurahNumber:       sess.Surah.Number,
		VerseNumber:       verseNumber,
		SurahNamePhonetic: sess.Surah.NamePhonetic,
		UpdatedAt:         time.Now().UTC(),
	}

	if err := s.users.UpdateLastRead(ctx, user.ID, lastRead); err != nil {
		return "", fmt.Errorf("update last read: %w", err)
	}

	key := lastRead.Key()
	s.sessions.UpdateExisting(sessionID, func(sess *entities.ReadingSession) {
		if sess.Loaded() && sess.Surah.Number == lastRead.SurahNumber {
			sess.BookmarkKey = key
		}
	})
	user.LastRead = &lastRead

	s.logger.Info("last read updated",
		zap.Int64("user_id", user.ID),
		zap.String("verse_key", key),
	)

	return key, nil
}

// LastRead returns the user's last read pointer.
func (s *ProgressService) LastRead(ctx context.Context, userID int64) (*entities.LastRead, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user.LastRead == nil {
		return nil, ErrNoLastRead
	}
	return user.LastRead, nil
}

// Reset forgets the user's last read pointer.
func (s *ProgressService) Reset(ctx context.Context, userID int64, sessionID int64) error {
	if err := s.users.ClearLastRead(ctx, userID); err != nil {
		return fmt.Errorf("clear last read: %w", err)
	}

	s.sessions.UpdateExisting(sessionID, func(sess *entities.ReadingSession) {
		sess.BookmarkKey = ""
	})
	return nil
}
