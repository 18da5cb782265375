package tui

import (
	"context"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliskhannn/quran-reader-bot/internal/domain/entities"
)

type report struct {
	sessionID int64
	verseKey  string
	ended     bool
}

func newReportingPlayer(t *testing.T, command string) (*ExternalPlayer, chan report) {
	t.Helper()

	reports := make(chan report, 4)
	p := NewExternalPlayer(command, zap.NewNop())
	p.SetHandlers(
		func(id int64, key string) { reports <- report{sessionID: id, verseKey: key, ended: true} },
		func(id int64, key string) { reports <- report{sessionID: id, verseKey: key} },
	)
	t.Cleanup(p.Close)
	return p, reports
}

func requireBinary(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available", name)
	}
}

var testVerse = entities.Verse{SurahNumber: 1, VerseNumber: 2, AudioURL: "https://verses.quran.com/Alafasy/mp3/001002.mp3"}

func TestNewExternalPlayer_ParsesCommand(t *testing.T) {
	p := NewExternalPlayer("  mpv --no-video   --really-quiet ", zap.NewNop())
	assert.Equal(t, "mpv", p.name)
	assert.Equal(t, []string{"--no-video", "--really-quiet"}, p.args)

	empty := NewExternalPlayer("", zap.NewNop())
	err := empty.Play(context.Background(), 1, nil, testVerse)
	assert.ErrorIs(t, err, ErrNoPlayerCommand)
}

func TestExternalPlayer_CleanExitReportsEnded(t *testing.T) {
	requireBinary(t, "true")
	p, reports := newReportingPlayer(t, "true")

	require.NoError(t, p.Play(context.Background(), 7, nil, testVerse))

	select {
	case r := <-reports:
		assert.Equal(t, report{sessionID: 7, verseKey: "1:2", ended: true}, r)
	case <-time.After(5 * time.Second):
		t.Fatal("no report")
	}
}

func TestExternalPlayer_ErrorExitReportsFailed(t *testing.T) {
	requireBinary(t, "false")
	p, reports := newReportingPlayer(t, "false")

	require.NoError(t, p.Play(context.Background(), 7, nil, testVerse))

	select {
	case r := <-reports:
		assert.Equal(t, report{sessionID: 7, verseKey: "1:2"}, r)
	case <-time.After(5 * time.Second):
		t.Fatal("no report")
	}
}

func TestExternalPlayer_MissingBinary(t *testing.T) {
	p, _ := newReportingPlayer(t, "definitely-not-an-audio-player-binary")

	err := p.Play(context.Background(), 7, nil, testVerse)
	assert.Error(t, err)
}

func TestExternalPlayer_StopIsNotReported(t *testing.T) {
	requireBinary(t, "sh")
	p, reports := newReportingPlayer(t, "sh")
	// the URL becomes $0 of the script
	p.args = []string{"-c", "sleep 30"}

	require.NoError(t, p.Play(context.Background(), 7, nil, testVerse))
	p.Stop(7)
	p.Close()

	select {
	case r := <-reports:
		t.Fatalf("unexpected report %+v", r)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestExternalPlayer_ConcurrentPlaysKeepOneProcess(t *testing.T) {
	requireBinary(t, "sh")
	p, reports := newReportingPlayer(t, "sh")
	p.args = []string{"-c", "sleep 30"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, p.Play(context.Background(), 7, nil, testVerse))
		}()
	}
	wg.Wait()

	p.mu.Lock()
	assert.Len(t, p.tracks, 1)
	p.mu.Unlock()

	// every replaced process was killed, so Close does not wait 30s
	done := make(chan struct{})
	go func() {
		p.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("a player process outlived Close")
	}

	select {
	case r := <-reports:
		t.Fatalf("unexpected report %+v", r)
	default:
	}
}
