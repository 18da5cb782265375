package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVerses(n int) []Verse {
	verses := make([]Verse, 0, n)
	for i := 1; i <= n; i++ {
		verses = append(verses, Verse{ID: i, SurahNumber: 1, VerseNumber: i, AudioURL: "https://cdn/a.mp3"})
	}
	return verses
}

func TestPlayback_PlaySetsCurrent(t *testing.T) {
	verses := testVerses(3)
	var p Playback

	start := p.Play(verses[1])

	assert.True(t, start)
	require.NotNil(t, p.Current)
	assert.Equal(t, 2, p.Current.VerseNumber)
	assert.True(t, p.Playing)
}

func TestPlayback_PlayCurrentPlayingPauses(t *testing.T) {
	verses := testVerses(3)
	var p Playback
	p.Play(verses[0])

	start := p.Play(verses[0])

	assert.False(t, start)
	assert.False(t, p.Playing)
	require.NotNil(t, p.Current)
	assert.Equal(t, 1, p.Current.VerseNumber)
}

func TestPlayback_PlayCurrentPausedResumes(t *testing.T) {
	verses := testVerses(3)
	var p Playback
	p.Play(verses[0])
	p.Pause()

	start := p.Play(verses[0])

	assert.True(t, start)
	assert.True(t, p.Playing)
}

func TestPlayback_PlayOtherVerseSwitches(t *testing.T) {
	verses := testVerses(3)
	var p Playback
	p.Play(verses[0])

	start := p.Play(verses[2])

	assert.True(t, start)
	assert.True(t, p.Playing)
	assert.Equal(t, 3, p.Current.VerseNumber)
}

func TestPlayback_PauseKeepsCurrent(t *testing.T) {
	verses := testVerses(2)
	var p Playback
	p.Play(verses[1])

	p.Pause()

	assert.False(t, p.Playing)
	require.NotNil(t, p.Current)
	assert.Equal(t, 2, p.Current.VerseNumber)
}

func TestPlayback_NextAdvances(t *testing.T) {
	verses := testVerses(3)
	var p Playback
	p.Play(verses[0])
	p.Pause()

	start := p.Next(verses)

	assert.True(t, start)
	assert.True(t, p.Playing)
	assert.Equal(t, 2, p.Current.VerseNumber)
}

func TestPlayback_NextAtLastVerseStops(t *testing.T) {
	verses := testVerses(3)
	var p Playback
	p.Play(verses[2])

	start := p.Next(verses)

	assert.False(t, start)
	assert.Nil(t, p.Current)
	assert.False(t, p.Playing)
}

func TestPlayback_NextWithoutCurrent(t *testing.T) {
	var p Playback

	assert.False(t, p.Next(testVerses(3)))
	assert.Nil(t, p.Current)
	assert.False(t, p.Playing)
}

func TestPlayback_NextCurrentNotInList(t *testing.T) {
	var p Playback
	p.Play(Verse{SurahNumber: 2, VerseNumber: 1})

	assert.False(t, p.Next(testVerses(3)))
	assert.Nil(t, p.Current)
}

func TestPlayback_FailStopsWithoutLooping(t *testing.T) {
	verses := testVerses(3)
	var p Playback
	p.Play(verses[0])

	p.Fail()

	assert.False(t, p.Playing)
	assert.True(t, p.AudioUnavailable)
	assert.False(t, p.Resume())
	assert.False(t, p.Playing)

	// choosing another verse clears the failure
	p.Play(verses[1])
	assert.False(t, p.AudioUnavailable)
	assert.True(t, p.Playing)
}

func TestPlayback_Resume(t *testing.T) {
	var p Playback
	assert.False(t, p.Resume())

	verses := testVerses(1)
	p.Play(verses[0])
	p.Pause()
	assert.True(t, p.Resume())
	assert.True(t, p.Playing)
}
