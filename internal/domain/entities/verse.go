package entities

import (
	"fmt"
	"strconv"
	"strings"
)

// Verse is a single ayah, normalized from the verse content API.
// Verses are immutable once fetched.
type Verse struct {
	ID           int    // upstream verse id
	SurahNumber  int    // surah part of the verse key
	VerseNumber  int    // verse part of the verse key
	TextArabic   string // uthmani script
	TextPhonetic string // transliteration joined word by word
	TextFrench   string // translation with HTML stripped
	AudioURL     string // absolute recitation URL, empty when unavailable
}

// Key returns the "surah:verse" key of the verse.
func (v Verse) Key() string {
	return VerseKey(v.SurahNumber, v.VerseNumber)
}

// HasAudio reports whether the verse has a recitation to play.
func (v Verse) HasAudio() bool {
	return v.AudioURL != ""
}

// VerseKey formats a "surah:verse" key.
func VerseKey(surah, verse int) string {
	return fmt.Sprintf("%d:%d", surah, verse)
}

// ParseVerseKey splits a "surah:verse" key.
func ParseVerseKey(key string) (surah, verse int, err error) {
	s, v, ok := strings.Cut(key, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid verse key %q", key)
	}

	surah, err = strconv.Atoi(s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid surah in verse key %q: %w", key, err)
	}
	verse, err = strconv.Atoi(v)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid verse in verse key %q: %w", key, err)
	}
	if surah <= 0 || verse <= 0 {
		return 0, 0, fmt.Errorf("invalid verse key %q", key)
	}

	return surah, verse, nil
}

// IndexOfVerse returns the position of the verse with the given number, or -1.
func IndexOfVerse(verses []Verse, verseNumber int) int {
	for i, v := range verses {
		if v.VerseNumber == verseNumber {
			return i
		}
	}
	return -1
}
