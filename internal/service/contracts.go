package service

import (
	"context"

	"github.com/aliskhannn/quran-reader-bot/internal/domain/entities"
	"github.com/aliskhannn/quran-reader-bot/internal/infra/quranapi"
)

// SurahRepository provides the read-only chapter metadata.
type SurahRepository interface {
	GetByNumber(ctx context.Context, number int) (*entities.Surah, error)
	GetAll(ctx context.Context) ([]*entities.Surah, error)
}

// VerseSource fetches raw verse pages from the content API.
type VerseSource interface {
	VersesByChapter(ctx context.Context, chapter, page int) (*quranapi.VersesResponse, error)
}

// VerseCache keeps loaded surahs between requests.
type VerseCache interface {
	Get(surahNumber int) ([]entities.Verse, bool)
	Store(surahNumber int, verses []entities.Verse)
	Purge() int
}

// SessionStorage holds the per-chat reading sessions.
type SessionStorage interface {
	Get(sessionID int64) (*entities.ReadingSession, bool)
	Update(sessionID int64, fn func(*entities.ReadingSession) error) (*entities.ReadingSession, error)
	UpdateExisting(sessionID int64, fn func(*entities.ReadingSession)) (*entities.ReadingSession, bool)
	BeginLoad(sessionID int64, surahNumber int, token string)
	CommitLoad(sessionID int64, token string, surah *entities.Surah, verses []entities.Verse, bookmarkKey string) (*entities.ReadingSession, error)
	AbortLoad(sessionID int64, token string)
	Delete(sessionID int64)
}

// UserRepository persists users and their last read pointer.
type UserRepository interface {
	Save(ctx context.Context, user *entities.User) (bool, error)
	GetByID(ctx context.Context, userID int64) (*entities.User, error)
	UpdateLastRead(ctx context.Context, userID int64, lastRead entities.LastRead) error
	ClearLastRead(ctx context.Context, userID int64) error
	MarkWelcomed(ctx context.Context, userID int64) error
}

// AudioSurface plays a verse recitation for a session. Implementations report
// the outcome back through PlaybackService.Ended and PlaybackService.Failed
// when they can observe it.
type AudioSurface interface {
	Play(ctx context.Context, sessionID int64, surah *entities.Surah, verse entities.Verse) error
	Stop(sessionID int64)
}
