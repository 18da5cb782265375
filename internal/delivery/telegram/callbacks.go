package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/quran-reader-bot/internal/domain/entities"
	"github.com/aliskhannn/quran-reader-bot/internal/service"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		h.answer(cb.ID, "", false)
		return
	}

	data := decodeCallback(cb.Data)
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID

	var (
		toast string
		err   error
	)

	switch data.Action {
	case actionNoop:
	case actionSurahs:
		err = h.handleSurahsCallback(ctx, chatID, messageID, data)
	case actionRead:
		err = h.handleReadCallback(ctx, cb, data)
	case actionRetry:
		err = h.handleRetryCallback(ctx, cb, data)
	case actionPlay:
		err = h.handlePlayCallback(ctx, cb, data)
	case actionPause, actionResume, actionNext:
		err = h.handlePlayerCallback(ctx, cb, data)
	case actionBookmark:
		toast, err = h.handleBookmarkCallback(ctx, cb, data)
	case actionReset:
		toast, err = h.handleResetCallback(ctx, cb, data)
	default:
		h.logger.Warn("unknown callback", zap.String("data", cb.Data))
	}

	if err != nil {
		text, known := userMessage(err)
		if !known {
			h.logger.Error("callback error",
				zap.Int64("chat_id", chatID),
				zap.String("data", cb.Data),
				zap.Error(err),
			)
		}
		h.answer(cb.ID, text, true)
		return
	}

	// Remove the user's "clock".
	h.answer(cb.ID, toast, false)
}

func (h *Handler) handleSurahsCallback(ctx context.Context, chatID int64, messageID int, data callbackData) error {
	page, ok := data.intParam(0)
	if !ok {
		return fmt.Errorf("invalid surahs callback %q", data.Raw)
	}

	surahs, err := h.surahService.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("get surahs: %w", err)
	}

	text, kb, ok := renderSurahList(titleSurahList, surahs, page)
	if !ok {
		return fmt.Errorf("surahs page %d: %w", page, errPageOutOfRange)
	}

	h.sendOrEdit(chatID, messageID, text, kb)
	return nil
}

func (h *Handler) handleReadCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) error {
	surah, ok1 := data.intParam(0)
	page, ok2 := data.intParam(1)
	if !ok1 || !ok2 {
		return fmt.Errorf("invalid read callback %q", data.Raw)
	}

	chatID := cb.Message.Chat.ID
	sess, err := h.readingService.Session(chatID)
	if err != nil || !sess.Loaded() || sess.Surah.Number != surah {
		// Opening from the list shows a new reading message.
		return h.showSurah(ctx, chatID, 0, surah, 0, h.ensureUser(ctx, cb.From, chatID))
	}

	return h.showPage(chatID, cb.Message.MessageID, sess, page)
}

func (h *Handler) handleRetryCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) error {
	surah, ok := data.intParam(0)
	if !ok {
		return fmt.Errorf("invalid retry callback %q", data.Raw)
	}

	chatID := cb.Message.Chat.ID
	return h.showSurah(ctx, chatID, cb.Message.MessageID, surah, 0, h.ensureUser(ctx, cb.From, chatID))
}

func (h *Handler) handlePlayCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) error {
	surah, ok1 := data.intParam(0)
	verse, ok2 := data.intParam(1)
	if !ok1 || !ok2 {
		return fmt.Errorf("invalid play callback %q", data.Raw)
	}

	chatID := cb.Message.Chat.ID
	if _, err := h.ensureOpen(ctx, chatID, surah, cb.From); err != nil {
		return err
	}

	sess, err := h.playbackService.Play(ctx, chatID, verse)
	if err != nil {
		return err
	}

	// Refresh the play buttons of the reading page the press came from.
	if _, kb, ok := renderReadingPage(sess, pageOfVerse(sess.Verses, verse)); ok {
		h.send(tgbotapi.NewEditMessageReplyMarkup(chatID, cb.Message.MessageID, kb))
	}

	h.showPlayer(chatID, sess)
	return nil
}

func (h *Handler) handlePlayerCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) error {
	surah, ok := data.intParam(0)
	if !ok {
		return fmt.Errorf("invalid player callback %q", data.Raw)
	}

	chatID := cb.Message.Chat.ID
	current, err := h.readingService.Session(chatID)
	if err != nil {
		return err
	}
	if !current.Loaded() || current.Surah.Number != surah {
		return service.ErrSurahNotLoaded
	}

	var sess *entities.ReadingSession
	switch data.Action {
	case actionPause:
		sess, err = h.playbackService.Pause(chatID)
	case actionResume:
		sess, err = h.playbackService.Resume(ctx, chatID)
	case actionNext:
		sess, err = h.playbackService.Next(ctx, chatID)
	}
	if err != nil {
		return err
	}

	h.showPlayer(chatID, sess)
	return nil
}

func (h *Handler) handleBookmarkCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) (string, error) {
	surah, ok1 := data.intParam(0)
	verse, ok2 := data.intParam(1)
	if !ok1 || !ok2 {
		return "", fmt.Errorf("invalid bookmark callback %q", data.Raw)
	}

	chatID := cb.Message.Chat.ID
	user := h.ensureUser(ctx, cb.From, chatID)
	if user == nil {
		return "", service.ErrNotAuthenticated
	}

	if _, err := h.ensureOpen(ctx, chatID, surah, cb.From); err != nil {
		return "", err
	}

	key, err := h.progressService.Bookmark(ctx, user, chatID, verse)
	if err != nil {
		if _, known := userMessage(err); !known {
			h.logger.Error("failed to bookmark",
				zap.Int64("user_id", user.ID),
				zap.Int("surah", surah),
				zap.Int("verse", verse),
				zap.Error(err),
			)
			return msgBookmarkFailed, nil
		}
		return "", err
	}

	sess, err := h.readingService.Session(chatID)
	if err == nil {
		_ = h.showPage(chatID, cb.Message.MessageID, sess, pageOfVerse(sess.Verses, verse))
	}

	return fmt.Sprintf(toastBookmarked, key), nil
}

func (h *Handler) handleResetCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) (string, error) {
	chatID := cb.Message.Chat.ID

	if len(data.Params) == 0 || data.Params[0] != resetConfirm {
		h.send(newEdit(chatID, cb.Message.MessageID, md(toastResetAborted)))
		return toastResetAborted, nil
	}

	user := h.ensureUser(ctx, cb.From, chatID)
	if user == nil {
		return "", service.ErrNotAuthenticated
	}

	if err := h.progressService.Reset(ctx, user.ID, chatID); err != nil {
		return "", fmt.Errorf("reset progress: %w", err)
	}

	h.send(newEdit(chatID, cb.Message.MessageID, md(toastResetDone)))
	return toastResetDone, nil
}

// ensureOpen returns the session of the chat with the surah loaded, opening
// it again when the session was dropped or holds another surah.
func (h *Handler) ensureOpen(ctx context.Context, chatID int64, surah int, from *tgbotapi.User) (*entities.ReadingSession, error) {
	sess, err := h.readingService.Session(chatID)
	if err == nil && sess.Loaded() && sess.Surah.Number == surah {
		return sess, nil
	}

	sess, err = h.readingService.Open(ctx, chatID, surah, h.ensureUser(ctx, from, chatID))
	if err != nil {
		if errors.Is(err, service.ErrStaleLoad) {
			return nil, service.ErrSurahNotLoaded
		}
		return nil, err
	}
	return sess, nil
}

// showPlayer replaces the player message of the chat. While a verse is
// playing the player is sent again below the audio; otherwise the existing
// player is edited in place.
func (h *Handler) showPlayer(chatID int64, sess *entities.ReadingSession) {
	text := formatPlayer(sess)
	kb := buildPlayerKeyboard(sess)

	if prev, ok := h.players.Get(chatID); ok && !sess.Playback.Playing {
		edit := newEdit(chatID, prev.MessageID, text)
		edit.ReplyMarkup = kb
		h.send(edit)
		return
	}

	msg := newMessage(chatID, text)
	if kb != nil {
		msg.ReplyMarkup = *kb
	}
	sent, ok := h.send(msg)
	if !ok {
		return
	}

	if prev, hadPrev := h.players.UpsertAndGetPrev(chatID, sent.MessageID); hadPrev {
		if _, err := h.bot.Request(tgbotapi.NewDeleteMessage(chatID, prev.MessageID)); err != nil {
			h.logger.Debug("failed to delete previous player", zap.Error(err))
		}
	}
}
