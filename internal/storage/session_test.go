package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/quran-reader-bot/internal/domain/entities"
)

func fatiha() (*entities.Surah, []entities.Verse) {
	surah := &entities.Surah{Number: 1, NamePhonetic: "Al-Fatiha", VersesCount: 7}
	verses := make([]entities.Verse, 0, 7)
	for i := 1; i <= 7; i++ {
		verses = append(verses, entities.Verse{SurahNumber: 1, VerseNumber: i})
	}
	return surah, verses
}

func TestSessionStorage_CommitLoad(t *testing.T) {
	s := NewSessionStorage()
	surah, verses := fatiha()

	s.BeginLoad(42, 1, "t1")
	sess, ok := s.Get(42)
	require.True(t, ok)
	assert.Equal(t, 1, sess.Loading)
	assert.False(t, sess.Loaded())

	sess, err := s.CommitLoad(42, "t1", surah, verses, "1:3")
	require.NoError(t, err)
	assert.True(t, sess.Loaded())
	assert.Equal(t, 0, sess.Loading)
	assert.Len(t, sess.Verses, 7)
	assert.Equal(t, "1:3", sess.BookmarkKey)
}

func TestSessionStorage_CommitLoad_Stale(t *testing.T) {
	s := NewSessionStorage()
	surah, verses := fatiha()

	s.BeginLoad(42, 2, "older")
	s.BeginLoad(42, 1, "newer")

	sess, err := s.CommitLoad(42, "newer", surah, verses, "")
	require.NoError(t, err)
	assert.Equal(t, 1, sess.Surah.Number)

	_, err = s.CommitLoad(42, "older", &entities.Surah{Number: 2}, nil, "")
	assert.ErrorIs(t, err, ErrStaleLoad)

	sess, _ = s.Get(42)
	assert.Equal(t, 1, sess.Surah.Number)
}

func TestSessionStorage_CommitLoad_ResetsPlayback(t *testing.T) {
	s := NewSessionStorage()
	surah, verses := fatiha()

	s.BeginLoad(1, 1, "a")
	_, err := s.CommitLoad(1, "a", surah, verses, "")
	require.NoError(t, err)

	_, err = s.Update(1, func(sess *entities.ReadingSession) error {
		sess.Playback.Play(sess.Verses[0])
		return nil
	})
	require.NoError(t, err)

	s.BeginLoad(1, 1, "b")
	sess, err := s.CommitLoad(1, "b", surah, verses, "")
	require.NoError(t, err)
	assert.Nil(t, sess.Playback.Current)
	assert.False(t, sess.Playback.Playing)
}

func TestSessionStorage_GetReturnsSnapshot(t *testing.T) {
	s := NewSessionStorage()
	surah, verses := fatiha()
	s.BeginLoad(7, 1, "a")
	_, err := s.CommitLoad(7, "a", surah, verses, "")
	require.NoError(t, err)

	snap, _ := s.Get(7)
	snap.Playback.Playing = true
	snap.Surah.Number = 99

	again, _ := s.Get(7)
	assert.False(t, again.Playback.Playing)
	assert.Equal(t, 1, again.Surah.Number)
}

func TestSessionStorage_AbortLoad(t *testing.T) {
	s := NewSessionStorage()
	s.BeginLoad(3, 5, "a")
	s.BeginLoad(3, 6, "b")

	s.AbortLoad(3, "a")
	sess, _ := s.Get(3)
	assert.Equal(t, 6, sess.Loading)

	s.AbortLoad(3, "b")
	sess, _ = s.Get(3)
	assert.Equal(t, 0, sess.Loading)
}

func TestSessionStorage_PurgeIdle(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewSessionStorage()
	s.now = func() time.Time { return now }

	s.BeginLoad(1, 1, "a")
	now = now.Add(3 * time.Hour)
	s.BeginLoad(2, 1, "b")

	assert.Equal(t, 1, s.PurgeIdle(2*time.Hour))
	_, ok := s.Get(1)
	assert.False(t, ok)
	_, ok = s.Get(2)
	assert.True(t, ok)
	assert.Equal(t, 1, s.Len())

	s.Delete(2)
	assert.Equal(t, 0, s.Len())
}

func TestSessionStorage_UpdateExisting(t *testing.T) {
	s := NewSessionStorage()

	_, ok := s.UpdateExisting(9, func(sess *entities.ReadingSession) {
		t.Fatal("fn called for a missing session")
	})
	assert.False(t, ok)
	assert.Zero(t, s.Len())

	s.BeginLoad(9, 1, "t")
	sess, ok := s.UpdateExisting(9, func(sess *entities.ReadingSession) {
		sess.BookmarkKey = "1:4"
	})
	require.True(t, ok)
	assert.Equal(t, "1:4", sess.BookmarkKey)

	got, _ := s.Get(9)
	assert.Equal(t, "1:4", got.BookmarkKey)
}

func TestPlayerStorage_UpsertAndGetPrev(t *testing.T) {
	s := NewPlayerStorage()

	_, had := s.UpsertAndGetPrev(1, 100)
	assert.False(t, had)

	prev, had := s.UpsertAndGetPrev(1, 101)
	assert.True(t, had)
	assert.Equal(t, 100, prev.MessageID)

	cur, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, 101, cur.MessageID)

	s.Delete(1)
	_, ok = s.Get(1)
	assert.False(t, ok)
}
