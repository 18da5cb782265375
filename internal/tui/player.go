package tui

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/aliskhannn/quran-reader-bot/internal/domain/entities"
)

var ErrNoPlayerCommand = errors.New("no audio player command configured")

// track is a running player process. stopped is set when the process was
// killed on purpose, so its exit is not reported.
type track struct {
	cmd      *exec.Cmd
	verseKey string
	stopped  bool
}

// ExternalPlayer plays recitations by spawning an external command
// (mpv, ffplay...) with the audio URL as its last argument. A clean exit is
// reported as the end of the verse, any other exit as a failure.
type ExternalPlayer struct {
	name   string
	args   []string
	logger *zap.Logger

	mu      sync.Mutex
	tracks  map[int64]*track
	onEnded func(sessionID int64, verseKey string)
	onError func(sessionID int64, verseKey string)
	wg      sync.WaitGroup
}

// NewExternalPlayer parses command into a program and its arguments.
func NewExternalPlayer(command string, logger *zap.Logger) *ExternalPlayer {
	p := &ExternalPlayer{
		logger: logger,
		tracks: make(map[int64]*track),
	}

	fields := strings.Fields(command)
	if len(fields) > 0 {
		p.name = fields[0]
		p.args = fields[1:]
	}

	return p
}

// SetHandlers sets the callbacks for finished and failed verses
// (called once the playback service exists).
func (p *ExternalPlayer) SetHandlers(ended, failed func(sessionID int64, verseKey string)) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.onEnded = ended
	p.onError = failed
}

// Play stops whatever the session is playing and starts the verse. The old
// process is replaced under the lock, so a session never has two.
func (p *ExternalPlayer) Play(_ context.Context, sessionID int64, _ *entities.Surah, verse entities.Verse) error {
	if p.name == "" {
		return ErrNoPlayerCommand
	}

	args := append(append([]string{}, p.args...), verse.AudioURL)
	cmd := exec.Command(p.name, args...)
	t := &track{cmd: cmd, verseKey: verse.Key()}

	p.mu.Lock()
	p.stopLocked(sessionID)
	if err := cmd.Start(); err != nil {
		p.mu.Unlock()
		return err
	}
	p.tracks[sessionID] = t
	p.wg.Add(1)
	p.mu.Unlock()

	p.logger.Debug("player started",
		zap.Int64("session_id", sessionID),
		zap.String("verse_key", t.verseKey),
		zap.Int("pid", cmd.Process.Pid),
	)

	go p.wait(sessionID, t)

	return nil
}

func (p *ExternalPlayer) wait(sessionID int64, t *track) {
	defer p.wg.Done()

	err := t.cmd.Wait()

	p.mu.Lock()
	if p.tracks[sessionID] == t {
		delete(p.tracks, sessionID)
	}
	stopped := t.stopped
	ended, failed := p.onEnded, p.onError
	p.mu.Unlock()

	if stopped {
		return
	}

	if err != nil {
		p.logger.Warn("player exited with error",
			zap.Int64("session_id", sessionID),
			zap.String("verse_key", t.verseKey),
			zap.Error(err),
		)
		if failed != nil {
			failed(sessionID, t.verseKey)
		}
		return
	}

	if ended != nil {
		ended(sessionID, t.verseKey)
	}
}

// Stop kills the process playing for the session, if any.
func (p *ExternalPlayer) Stop(sessionID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked(sessionID)
}

func (p *ExternalPlayer) stopLocked(sessionID int64) {
	t, ok := p.tracks[sessionID]
	if !ok {
		return
	}
	t.stopped = true
	delete(p.tracks, sessionID)
	if t.cmd.Process != nil {
		_ = t.cmd.Process.Kill()
	}
}

// Close stops every session and waits for the processes to exit.
func (p *ExternalPlayer) Close() {
	p.mu.Lock()
	for id := range p.tracks {
		p.stopLocked(id)
	}
	p.mu.Unlock()

	p.wg.Wait()
}
