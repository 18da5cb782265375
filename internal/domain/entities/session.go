package entities

import "time"

// ReadingSession is the per-chat reading state: the loaded surah and its
// verses, the playback state over them and the highlighted bookmark.
type ReadingSession struct {
	ID          int64
	Surah       *Surah  // nil until a load completes
	Verses      []Verse // ascending by verse number
	LoadToken   string  // token of the latest requested load
	Loading     int     // surah number being loaded, 0 when idle
	Playback    Playback
	BookmarkKey string // "surah:verse" of the user's last_read, "" when none
	UpdatedAt   time.Time
}

// NewReadingSession creates an empty session.
func NewReadingSession(id int64) *ReadingSession {
	return &ReadingSession{
		ID:        id,
		UpdatedAt: time.Now(),
	}
}

// Loaded reports whether a surah is loaded.
func (s *ReadingSession) Loaded() bool {
	return s.Surah != nil
}

// Verse returns the loaded verse with the given number.
func (s *ReadingSession) Verse(number int) (Verse, bool) {
	idx := IndexOfVerse(s.Verses, number)
	if idx < 0 {
		return Verse{}, false
	}
	return s.Verses[idx], true
}

// Clone returns a copy that can be read without holding the storage lock.
// Verses are immutable so the slice is shared.
func (s *ReadingSession) Clone() *ReadingSession {
	c := *s
	if s.Surah != nil {
		surah := *s.Surah
		c.Surah = &surah
	}
	if s.Playback.Current != nil {
		cur := *s.Playback.Current
		c.Playback.Current = &cur
	}
	return &c
}
