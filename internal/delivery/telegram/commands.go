package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/aliskhannn/quran-reader-bot/internal/domain/entities"
	"github.com/aliskhannn/quran-reader-bot/internal/service"
)

func (h *Handler) startHandler(user *entities.User) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if user == nil {
			h.send(newMessage(chatID, welcomeMessage("")))
			return nil
		}

		if user.Welcomed {
			h.send(newMessage(chatID, greetingMessage(user)))
			return nil
		}

		if _, ok := h.send(newMessage(chatID, welcomeMessage(user.FirstName))); !ok {
			return nil
		}

		if err := h.userService.MarkWelcomed(ctx, user.ID); err != nil {
			return fmt.Errorf("mark welcomed: %w", err)
		}
		return nil
	}
}

func (h *Handler) surahsHandler() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		surahs, err := h.surahService.GetAll(ctx)
		if err != nil {
			return fmt.Errorf("get surahs: %w", err)
		}

		text, kb, ok := renderSurahList(titleSurahList, surahs, 0)
		if !ok {
			h.sendError(chatID, msgSurahsUnavailable)
			return nil
		}

		msg := newMessage(chatID, text)
		msg.ReplyMarkup = kb
		h.send(msg)
		return nil
	}
}

func (h *Handler) searchHandler(term string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		term = strings.TrimSpace(term)
		if term == "" {
			h.send(newPlainMessage(chatID, msgUseSearch))
			return nil
		}

		surahs, err := h.surahService.Search(ctx, term)
		if err != nil {
			return fmt.Errorf("search surahs: %w", err)
		}
		if len(surahs) == 0 {
			h.send(newPlainMessage(chatID, fmt.Sprintf(msgNoSearchResults, term)))
			return nil
		}

		if len(surahs) > maxSearchResults {
			surahs = surahs[:maxSearchResults]
		}

		text, kb := renderSearchResults(term, surahs)
		msg := newMessage(chatID, text)
		msg.ReplyMarkup = kb
		h.send(msg)
		return nil
	}
}

func (h *Handler) readHandler(args string, user *entities.User) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		number, err := strconv.Atoi(strings.TrimSpace(args))
		if err != nil {
			h.send(newPlainMessage(chatID, msgUseRead))
			return nil
		}
		if !entities.ValidSurahNumber(number) {
			h.send(newPlainMessage(chatID, msgInvalidSurahNumber))
			return nil
		}

		return h.showSurah(ctx, chatID, 0, number, 0, user)
	}
}

// textHandler opens the surah when the text is a number and searches
// surah names otherwise.
func (h *Handler) textHandler(text string, user *entities.User) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		text = strings.TrimSpace(text)
		if text == "" {
			return nil
		}

		if _, err := strconv.Atoi(text); err == nil {
			return h.readHandler(text, user)(ctx, chatID)
		}

		return h.searchHandler(text)(ctx, chatID)
	}
}

func (h *Handler) continueHandler(user *entities.User) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if user == nil {
			return service.ErrNotAuthenticated
		}
		if user.LastRead == nil {
			return service.ErrNoLastRead
		}

		return h.showSurah(ctx, chatID, 0, user.LastRead.SurahNumber, user.LastRead.VerseNumber, user)
	}
}

func (h *Handler) resetHandler(user *entities.User) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if user == nil {
			return service.ErrNotAuthenticated
		}

		msg := newMessage(chatID, resetConfirmMessage())
		msg.ReplyMarkup = buildResetKeyboard()
		h.send(msg)
		return nil
	}
}

// showSurah opens the surah and shows the page holding focusVerse (the first
// page when focusVerse is 0). The page replaces messageID when it is set.
// A failed load is reported with a retry button.
func (h *Handler) showSurah(
	ctx context.Context,
	chatID int64,
	messageID int,
	number int,
	focusVerse int,
	user *entities.User,
) error {
	sess, err := h.readingService.Open(ctx, chatID, number, user)
	if err != nil {
		if errors.Is(err, service.ErrStaleLoad) {
			return nil
		}
		if _, known := userMessage(err); known {
			return err
		}

		h.logger.Warn("failed to load surah",
			zap.Int64("chat_id", chatID),
			zap.Int("surah", number),
			zap.Error(err),
		)
		h.sendOrEdit(chatID, messageID, md(msgLoadFailed), buildRetryKeyboard(number))
		return nil
	}

	page := 0
	if focusVerse > 0 {
		page = pageOfVerse(sess.Verses, focusVerse)
	}

	return h.showPage(chatID, messageID, sess, page)
}

// showPage renders a page of the loaded surah into a new or existing message.
func (h *Handler) showPage(chatID int64, messageID int, sess *entities.ReadingSession, page int) error {
	text, kb, ok := renderReadingPage(sess, page)
	if !ok {
		return fmt.Errorf("render page %d: %w", page, errPageOutOfRange)
	}

	h.sendOrEdit(chatID, messageID, text, kb)
	return nil
}
