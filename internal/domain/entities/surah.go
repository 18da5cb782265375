// Package entities contains domain entities used across the application.
package entities

// RevelationType tells where a surah was revealed.
type RevelationType string

const (
	RevelationMeccan  RevelationType = "meccan"
	RevelationMedinan RevelationType = "medinan"
)

const (
	FirstSurah = 1
	LastSurah  = 114
)

// Surah is a chapter of the Quran with its names and verse count.
type Surah struct {
	Number         int            `json:"number"`          // number of the surah (from 1 to 114)
	NameArabic     string         `json:"name_arabic"`     // Arabic name
	NamePhonetic   string         `json:"name_phonetic"`   // Latin transliteration of the name
	NameFrench     string         `json:"name_french"`     // French translation of the name
	VersesCount    int            `json:"verses_count"`    // number of verses
	RevelationType RevelationType `json:"revelation_type"` // meccan or medinan
}

// ValidSurahNumber reports whether n is a surah number.
func ValidSurahNumber(n int) bool {
	return n >= FirstSurah && n <= LastSurah
}

// IsMeccan reports whether the surah was revealed in Mecca.
func (s Surah) IsMeccan() bool {
	return s.RevelationType == RevelationMeccan
}
