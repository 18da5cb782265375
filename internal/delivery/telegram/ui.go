package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/quran-reader-bot/internal/domain/entities"
)

// buildNavRow builds the previous/next row of a paginated view, or nil when
// there is a single page.
func buildNavRow(page, totalPages int, prevData, nextData string) []tgbotapi.InlineKeyboardButton {
	if totalPages <= 1 {
		return nil
	}

	var row []tgbotapi.InlineKeyboardButton
	if page > 0 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("◀️ Précédent", prevData))
	}
	row = append(row, tgbotapi.NewInlineKeyboardButtonData(
		fmt.Sprintf("%d/%d", page+1, totalPages), actionNoop,
	))
	if page < totalPages-1 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("Suivant ▶️", nextData))
	}
	return row
}

// buildSurahListKeyboard builds one button per surah, two per row, and the
// pagination row.
func buildSurahListKeyboard(surahs []*entities.Surah, page, totalPages int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	var row []tgbotapi.InlineKeyboardButton
	for _, s := range surahs {
		label := fmt.Sprintf("%d. %s", s.Number, s.NamePhonetic)
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, buildReadCallback(s.Number, 0)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	if nav := buildNavRow(page, totalPages, buildSurahsCallback(page-1), buildSurahsCallback(page+1)); nav != nil {
		rows = append(rows, nav)
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildReadingKeyboard builds play and bookmark buttons for the verses of a
// page, the pagination row and a link back to the surah list.
func buildReadingKeyboard(
	sess *entities.ReadingSession,
	verses []entities.Verse,
	page, totalPages int,
) tgbotapi.InlineKeyboardMarkup {
	surah := sess.Surah.Number
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(verses)+2)

	for _, v := range verses {
		play := fmt.Sprintf("▶️ %s", v.Key())
		if sess.Playback.IsPlaying(v) {
			play = fmt.Sprintf("⏸ %s", v.Key())
		}

		bookmark := "🔖"
		if sess.BookmarkKey == v.Key() {
			bookmark = "✅ 🔖"
		}

		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(play, buildPlayCallback(surah, v.VerseNumber)),
			tgbotapi.NewInlineKeyboardButtonData(bookmark, buildBookmarkCallback(surah, v.VerseNumber)),
		))
	}

	if nav := buildNavRow(page, totalPages, buildReadCallback(surah, page-1), buildReadCallback(surah, page+1)); nav != nil {
		rows = append(rows, nav)
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📜 Sourates", buildSurahsCallback((surah-1)/surahsPerPage)),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildPlayerKeyboard builds the controls of the player message. The play
// control is hidden while the audio of the current verse is unavailable.
func buildPlayerKeyboard(sess *entities.ReadingSession) *tgbotapi.InlineKeyboardMarkup {
	p := sess.Playback
	if p.Current == nil || sess.Surah == nil {
		return nil
	}

	surah := sess.Surah.Number
	var row []tgbotapi.InlineKeyboardButton
	switch {
	case p.AudioUnavailable:
	case p.Playing:
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("⏸ Pause", buildPlayerCallback(actionPause, surah)))
	default:
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("▶️ Reprendre", buildPlayerCallback(actionResume, surah)))
	}
	row = append(row, tgbotapi.NewInlineKeyboardButtonData("⏭ Suivant", buildPlayerCallback(actionNext, surah)))

	kb := tgbotapi.NewInlineKeyboardMarkup(row)
	return &kb
}

func buildRetryKeyboard(surah int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Réessayer", buildRetryCallback(surah)),
		),
	)
}

func buildResetKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Effacer", buildResetConfirmCallback()),
			tgbotapi.NewInlineKeyboardButtonData("Annuler", buildResetCancelCallback()),
		),
	)
}
