package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/aliskhannn/quran-reader-bot/internal/domain/entities"
	"github.com/aliskhannn/quran-reader-bot/internal/infra/quranapi"
	"github.com/aliskhannn/quran-reader-bot/internal/repository"
)

// ErrPartialChapter is returned when a page after the first one cannot be fetched.
var ErrPartialChapter = errors.New("chapter loaded partially")

// VerseLoader fetches and normalizes all verses of a surah.
type VerseLoader struct {
	source       VerseSource
	cache        VerseCache
	audioBaseURL string
	logger       *zap.Logger
}

// NewVerseLoader creates a new VerseLoader. cache may be nil.
func NewVerseLoader(source VerseSource, cache VerseCache, audioBaseURL string, logger *zap.Logger) *VerseLoader {
	return &VerseLoader{
		source:       source,
		cache:        cache,
		audioBaseURL: audioBaseURL,
		logger:       logger,
	}
}

// LoadChapter returns the verses of the surah ascending by verse number,
// without duplicates. Pages are requested one after another.
func (l *VerseLoader) LoadChapter(ctx context.Context, number int) ([]entities.Verse, error) {
	if !entities.ValidSurahNumber(number) {
		return nil, fmt.Errorf("surah %d: %w", number, repository.ErrInvalidSurahNumber)
	}

	if l.cache != nil {
		if verses, ok := l.cache.Get(number); ok {
			return verses, nil
		}
	}

	first, err := l.source.VersesByChapter(ctx, number, 1)
	if err != nil {
		return nil, fmt.Errorf("load surah %d: %w", number, err)
	}

	raw := append([]quranapi.Verse(nil), first.Verses...)
	for page := 2; page <= first.Pagination.TotalPages; page++ {
		resp, err := l.source.VersesByChapter(ctx, number, page)
		if err != nil {
			return nil, fmt.Errorf("%w: surah %d page %d/%d: %w",
				ErrPartialChapter, number, page, first.Pagination.TotalPages, err)
		}
		raw = append(raw, resp.Verses...)
	}

	verses := l.normalize(number, raw)

	l.logger.Debug("surah loaded",
		zap.Int("surah", number),
		zap.Int("verses", len(verses)),
		zap.Int("pages", max(first.Pagination.TotalPages, 1)),
	)

	if l.cache != nil && len(verses) > 0 {
		l.cache.Store(number, verses)
	}

	return verses, nil
}

func (l *VerseLoader) normalize(surahNumber int, raw []quranapi.Verse) []entities.Verse {
	verses := make([]entities.Verse, 0, len(raw))
	for _, rv := range raw {
		v, ok := l.toVerse(rv)
		if !ok {
			l.logger.Warn("skipping verse with malformed key", zap.String("verse_key", rv.VerseKey))
			continue
		}
		if v.SurahNumber != surahNumber {
			continue
		}
		verses = append(verses, v)
	}

	sort.SliceStable(verses, func(i, j int) bool {
		return verses[i].VerseNumber < verses[j].VerseNumber
	})

	out := verses[:0]
	for i, v := range verses {
		if i > 0 && v.VerseNumber == verses[i-1].VerseNumber {
			continue
		}
		out = append(out, v)
	}

	return out
}

func (l *VerseLoader) toVerse(rv quranapi.Verse) (entities.Verse, bool) {
	surah, verse, err := entities.ParseVerseKey(rv.VerseKey)
	if err != nil {
		return entities.Verse{}, false
	}

	v := entities.Verse{
		ID:           rv.ID,
		SurahNumber:  surah,
		VerseNumber:  verse,
		TextArabic:   rv.TextUthmani,
		TextPhonetic: transliteration(rv.Words),
	}
	if len(rv.Translations) > 0 {
		// footnote markers are dropped with their number, not only their tags
		v.TextFrench = quranapi.StripTags(rv.Translations[0].Text)
	}
	if rv.Audio != nil && rv.Audio.URL != "" {
		v.AudioURL = l.audioURL(rv.Audio.URL)
	}

	return v, true
}

func (l *VerseLoader) audioURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if strings.HasPrefix(path, "//") {
		return "https:" + path
	}
	return strings.TrimRight(l.audioBaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func transliteration(words []quranapi.Word) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		if w.Transliteration == nil || w.Transliteration.Text == nil {
			continue
		}
		if text := strings.TrimSpace(*w.Transliteration.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
