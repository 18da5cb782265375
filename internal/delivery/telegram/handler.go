package telegram

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/quran-reader-bot/internal/domain/entities"
	"github.com/aliskhannn/quran-reader-bot/internal/storage"
)

// PlayerStorage remembers the player message of every chat.
type PlayerStorage interface {
	UpsertAndGetPrev(chatID int64, messageID int) (prev storage.PlayerMessage, hadPrev bool)
	Get(chatID int64) (storage.PlayerMessage, bool)
}

type Handler struct {
	bot             BotAPI
	logger          *zap.Logger
	userService     UserService
	surahService    SurahService
	readingService  ReadingService
	playbackService PlaybackService
	progressService ProgressService
	players         PlayerStorage
	maxConcurrent   int
}

func NewHandler(
	bot BotAPI,
	logger *zap.Logger,
	userService UserService,
	surahService SurahService,
	readingService ReadingService,
	playbackService PlaybackService,
	progressService ProgressService,
	players PlayerStorage,
	maxConcurrent int,
) *Handler {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	return &Handler{
		bot:             bot,
		logger:          logger,
		userService:     userService,
		surahService:    surahService,
		readingService:  readingService,
		playbackService: playbackService,
		progressService: progressService,
		players:         players,
		maxConcurrent:   maxConcurrent,
	}
}

// Run polls updates until ctx is done. Up to maxConcurrent updates are
// handled at the same time.
func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started", zap.Int("max_concurrent", h.maxConcurrent))
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	sem := make(chan struct{}, h.maxConcurrent)
	var wg sync.WaitGroup
	defer func() {
		h.bot.StopReceivingUpdates()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}

			select {
			case sem <- struct{}{}: // Acquire
			case <-ctx.Done():
				return ctx.Err()
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() { <-sem }() // Release

				h.handleUpdate(ctx, update)
			}()
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("text", update.Message.Text),
	)

	chatID := update.Message.Chat.ID
	user := h.ensureUser(ctx, update.Message.From, chatID)

	if update.Message.IsCommand() {
		args := update.Message.CommandArguments()

		switch update.Message.Command() {
		case "start":
			_ = h.withErrorHandling(h.startHandler(user))(ctx, chatID)

		case "help":
			h.send(newMessage(chatID, helpMessage()))

		case "surahs":
			_ = h.withErrorHandling(h.surahsHandler())(ctx, chatID)

		case "search":
			_ = h.withErrorHandling(h.searchHandler(args))(ctx, chatID)

		case "read":
			_ = h.withErrorHandling(h.readHandler(args, user))(ctx, chatID)

		case "continue":
			_ = h.withErrorHandling(h.continueHandler(user))(ctx, chatID)

		case "reset":
			_ = h.withErrorHandling(h.resetHandler(user))(ctx, chatID)

		default:
			h.send(newPlainMessage(chatID, msgUnknownCommand))
		}

		return
	}

	_ = h.withErrorHandling(h.textHandler(update.Message.Text, user))(ctx, chatID)
}

// ensureUser stores the sender and returns the stored record, or nil when
// the sender is unknown or the store failed.
func (h *Handler) ensureUser(ctx context.Context, from *tgbotapi.User, chatID int64) *entities.User {
	if from == nil {
		return nil
	}

	user, err := h.userService.EnsureUser(ctx, entities.NewUser(
		from.ID,
		chatID,
		from.FirstName,
		from.UserName,
		from.LanguageCode,
	))
	if err != nil {
		h.logger.Error("failed to ensure user",
			zap.Int64("user_id", from.ID),
			zap.Error(err),
		)
		return nil
	}

	return user
}

func (h *Handler) sendError(chatID int64, err string) {
	h.send(newPlainMessage(chatID, err))
}

func (h *Handler) send(c tgbotapi.Chattable) (tgbotapi.Message, bool) {
	msg, err := h.bot.Send(c)
	if err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
		return msg, false
	}
	return msg, true
}

func (h *Handler) answer(callbackID, text string, alert bool) {
	cfg := tgbotapi.NewCallback(callbackID, text)
	cfg.ShowAlert = alert
	if _, err := h.bot.Request(cfg); err != nil {
		h.logger.Debug("callback answer error", zap.Error(err))
	}
}

// sendOrEdit sends a new MarkdownV2 message, or edits messageID when it is set.
func (h *Handler) sendOrEdit(chatID int64, messageID int, text string, kb tgbotapi.InlineKeyboardMarkup) {
	if messageID == 0 {
		msg := newMessage(chatID, text)
		msg.ReplyMarkup = kb
		h.send(msg)
		return
	}

	edit := newEdit(chatID, messageID, text)
	edit.ReplyMarkup = &kb
	h.send(edit)
}
