package telegram

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/quran-reader-bot/internal/domain/entities"
)

var errPageOutOfRange = errors.New("page out of range")

// renderSurahList renders a page of the surah list.
func renderSurahList(title string, surahs []*entities.Surah, page int) (string, tgbotapi.InlineKeyboardMarkup, bool) {
	totalPages := (len(surahs) + surahsPerPage - 1) / surahsPerPage
	if totalPages == 0 || page < 0 || page >= totalPages {
		return "", tgbotapi.InlineKeyboardMarkup{}, false
	}

	start := page * surahsPerPage
	end := min(start+surahsPerPage, len(surahs))
	pageSurahs := surahs[start:end]

	var sb strings.Builder
	sb.WriteString(bold(title))
	for _, s := range pageSurahs {
		sb.WriteString("\n")
		sb.WriteString(md(formatSurahLine(s)))
	}

	return sb.String(), buildSurahListKeyboard(pageSurahs, page, totalPages), true
}

// renderReadingPage renders a page of verses of the loaded surah.
func renderReadingPage(sess *entities.ReadingSession, page int) (string, tgbotapi.InlineKeyboardMarkup, bool) {
	if !sess.Loaded() {
		return "", tgbotapi.InlineKeyboardMarkup{}, false
	}

	pages := paginateVerses(sess.Verses)
	if len(pages) == 0 || page < 0 || page >= len(pages) {
		return "", tgbotapi.InlineKeyboardMarkup{}, false
	}

	verses := pages[page]

	var sb strings.Builder
	sb.WriteString(formatSurahHeader(sess.Surah, page, len(pages)))
	for _, v := range verses {
		sb.WriteString("\n\n")
		sb.WriteString(formatVerse(v, sess.BookmarkKey == v.Key()))
	}

	return sb.String(), buildReadingKeyboard(sess, verses, page, len(pages)), true
}

// paginateVerses groups verses into pages of at most versesPerPage verses.
// A page is closed earlier when its text would grow past maxPageTextRunes,
// so long verses get pages of their own.
func paginateVerses(verses []entities.Verse) [][]entities.Verse {
	var (
		pages [][]entities.Verse
		cur   []entities.Verse
		size  int
	)

	for _, v := range verses {
		n := utf8.RuneCountInString(formatVerse(v, true)) + 2
		if len(cur) > 0 && (len(cur) == versesPerPage || size+n > maxPageTextRunes) {
			pages = append(pages, cur)
			cur, size = nil, 0
		}
		cur = append(cur, v)
		size += n
	}
	if len(cur) > 0 {
		pages = append(pages, cur)
	}

	return pages
}

// pageOfVerse returns the page holding the verse, or 0.
func pageOfVerse(verses []entities.Verse, verseNumber int) int {
	for i, page := range paginateVerses(verses) {
		if entities.IndexOfVerse(page, verseNumber) >= 0 {
			return i
		}
	}
	return 0
}

// renderSearchResults renders search results on a single page.
func renderSearchResults(term string, surahs []*entities.Surah) (string, tgbotapi.InlineKeyboardMarkup) {
	var sb strings.Builder
	sb.WriteString(bold(fmt.Sprintf(titleSearchResults, term)))
	for _, s := range surahs {
		sb.WriteString("\n")
		sb.WriteString(md(formatSurahLine(s)))
	}

	return sb.String(), buildSurahListKeyboard(surahs, 0, 1)
}
