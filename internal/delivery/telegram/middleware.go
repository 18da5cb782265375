package telegram

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/aliskhannn/quran-reader-bot/internal/repository"
	"github.com/aliskhannn/quran-reader-bot/internal/service"
)

type HandlerFunc func(ctx context.Context, chatID int64) error

func (h *Handler) withErrorHandling(fn HandlerFunc) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if err := fn(ctx, chatID); err != nil {
			text, known := userMessage(err)
			if known {
				h.logger.Debug("handle error",
					zap.Int64("chat_id", chatID),
					zap.Error(err),
				)
			} else {
				h.logger.Error("handle error",
					zap.Int64("chat_id", chatID),
					zap.Error(err),
				)
			}
			h.sendError(chatID, text)
			return nil
		}
		return nil
	}
}

// userMessage maps an error to the text shown to the user. known is false
// for unexpected errors.
func userMessage(err error) (text string, known bool) {
	switch {
	case errors.Is(err, repository.ErrInvalidSurahNumber),
		errors.Is(err, repository.ErrSurahNotFound):
		return msgInvalidSurahNumber, true
	case errors.Is(err, service.ErrNotAuthenticated):
		return msgNotAuthenticated, true
	case errors.Is(err, service.ErrSurahNotLoaded),
		errors.Is(err, service.ErrNoSession):
		return msgSurahNotLoaded, true
	case errors.Is(err, service.ErrVerseNotLoaded):
		return msgVerseNotLoaded, true
	case errors.Is(err, service.ErrNoLastRead):
		return msgNoLastRead, true
	default:
		return msgInternalError, false
	}
}
