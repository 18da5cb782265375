package entities

import (
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("user not found")

// User represents bot user.
type User struct {
	ID           int64 // Telegram user ID
	ChatID       int64
	FirstName    string
	Username     string
	LanguageCode string
	Welcomed     bool      // welcome message already shown
	LastRead     *LastRead // nil until the first bookmark
	CreatedAt    time.Time
}

// LastRead points to the most recently bookmarked verse.
type LastRead struct {
	SurahNumber       int
	VerseNumber       int
	SurahNamePhonetic string
	UpdatedAt         time.Time
}

// Key returns the "surah:verse" key of the bookmark.
func (lr LastRead) Key() string {
	return VerseKey(lr.SurahNumber, lr.VerseNumber)
}

func NewUser(id, chatID int64, firstName, username, languageCode string) *User {
	return &User{
		ID:           id,
		ChatID:       chatID,
		FirstName:    firstName,
		Username:     username,
		LanguageCode: languageCode,
		CreatedAt:    time.Now(),
	}
}

// BookmarkKey returns the key of the last read verse, or "" when there is none.
func (u *User) BookmarkKey() string {
	if u == nil || u.LastRead == nil {
		return ""
	}
	return u.LastRead.Key()
}
