package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/quran-reader-bot/internal/domain/entities"
)

const maxCaptionRunes = 1000

// AudioSender plays verses by sending the recitation as an audio message.
// Telegram downloads the file from the URL itself, so an unreachable file
// surfaces as a send error.
type AudioSender struct {
	bot    BotAPI
	logger *zap.Logger
}

func NewAudioSender(bot BotAPI, logger *zap.Logger) *AudioSender {
	return &AudioSender{bot: bot, logger: logger}
}

// Play sends the recitation of the verse to the chat.
func (a *AudioSender) Play(_ context.Context, chatID int64, surah *entities.Surah, verse entities.Verse) error {
	audio := tgbotapi.NewAudio(chatID, tgbotapi.FileURL(verse.AudioURL))
	audio.Title = verse.Key()
	if surah != nil {
		audio.Title = fmt.Sprintf("%s %s", surah.NamePhonetic, verse.Key())
	}
	audio.Caption = truncate(verse.TextPhonetic, maxCaptionRunes)
	audio.DisableNotification = true

	if _, err := a.bot.Send(audio); err != nil {
		return fmt.Errorf("send audio %s: %w", verse.Key(), err)
	}

	a.logger.Debug("audio sent",
		zap.Int64("chat_id", chatID),
		zap.String("verse_key", verse.Key()),
	)
	return nil
}

// Stop is a no-op: playback of a sent audio message is controlled by the
// Telegram client.
func (a *AudioSender) Stop(int64) {}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
