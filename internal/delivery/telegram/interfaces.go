package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/quran-reader-bot/internal/domain/entities"
)

// BotAPI is the part of *tgbotapi.BotAPI the handler uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type UserService interface {
	EnsureUser(ctx context.Context, user *entities.User) (*entities.User, error)
	MarkWelcomed(ctx context.Context, userID int64) error
}

type SurahService interface {
	GetByNumber(ctx context.Context, number int) (*entities.Surah, error)
	GetAll(ctx context.Context) ([]*entities.Surah, error)
	Search(ctx context.Context, term string) ([]*entities.Surah, error)
}

type ReadingService interface {
	Open(ctx context.Context, sessionID int64, surahNumber int, user *entities.User) (*entities.ReadingSession, error)
	Session(sessionID int64) (*entities.ReadingSession, error)
}

type PlaybackService interface {
	Play(ctx context.Context, sessionID int64, verseNumber int) (*entities.ReadingSession, error)
	Pause(sessionID int64) (*entities.ReadingSession, error)
	Resume(ctx context.Context, sessionID int64) (*entities.ReadingSession, error)
	Next(ctx context.Context, sessionID int64) (*entities.ReadingSession, error)
}

type ProgressService interface {
	Bookmark(ctx context.Context, user *entities.User, sessionID int64, verseNumber int) (string, error)
	Reset(ctx context.Context, userID int64, sessionID int64) error
}
