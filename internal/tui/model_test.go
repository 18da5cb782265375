package tui

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliskhannn/quran-reader-bot/internal/domain/entities"
	"github.com/aliskhannn/quran-reader-bot/internal/infra/sqlite"
	"github.com/aliskhannn/quran-reader-bot/internal/repository"
	"github.com/aliskhannn/quran-reader-bot/internal/service"
	"github.com/aliskhannn/quran-reader-bot/internal/storage"
)

type stubLoader struct {
	mu     sync.Mutex
	verses map[int][]entities.Verse
	errs   map[int]error
}

func (l *stubLoader) LoadChapter(_ context.Context, number int) ([]entities.Verse, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err, ok := l.errs[number]; ok {
		delete(l.errs, number)
		return nil, err
	}
	return l.verses[number], nil
}

type recordingSurface struct {
	mu     sync.Mutex
	played []string
}

func (s *recordingSurface) Play(_ context.Context, _ int64, _ *entities.Surah, v entities.Verse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.played = append(s.played, v.Key())
	return nil
}

func (s *recordingSurface) Stop(int64) {}

func makeVerses(surah, n int) []entities.Verse {
	verses := make([]entities.Verse, 0, n)
	for i := 1; i <= n; i++ {
		verses = append(verses, entities.Verse{
			SurahNumber:  surah,
			VerseNumber:  i,
			TextArabic:   "بِسْمِ",
			TextPhonetic: "bismi",
			TextFrench:   "Au nom",
			AudioURL:     "https://verses.quran.com/Alafasy/mp3/001001.mp3",
		})
	}
	return verses
}

type testEnv struct {
	deps     Deps
	loader   *stubLoader
	surface  *recordingSurface
	store    *sqlite.UserStore
	sessions *storage.SessionStorage
	playback *service.PlaybackService
}

func newTestEnv(t *testing.T, username string) *testEnv {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "reader.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	var user *entities.User
	if username != "" {
		user, err = store.FindOrCreateByUsername(context.Background(), username)
		require.NoError(t, err)
	}

	surahs := repository.NewSurahRepositoryFromSlice([]*entities.Surah{
		{Number: 1, NamePhonetic: "Al-Fatiha", NameFrench: "L'ouverture", NameArabic: "الفاتحة", VersesCount: 7, RevelationType: entities.RevelationMeccan},
		{Number: 2, NamePhonetic: "Al-Baqara", NameFrench: "La vache", NameArabic: "البقرة", VersesCount: 286, RevelationType: entities.RevelationMedinan},
		{Number: 112, NamePhonetic: "Al-Ikhlas", NameFrench: "Le monothéisme pur", NameArabic: "الإخلاص", VersesCount: 4, RevelationType: entities.RevelationMeccan},
	})
	loader := &stubLoader{
		verses: map[int][]entities.Verse{1: makeVerses(1, 7), 2: makeVerses(2, 3), 112: makeVerses(112, 4)},
		errs:   map[int]error{},
	}
	sessions := storage.NewSessionStorage()
	logger := zap.NewNop()

	surface := &recordingSurface{}
	playback := service.NewPlaybackService(sessions, logger)
	playback.SetSurface(surface)

	return &testEnv{
		deps: Deps{
			Surahs:   service.NewSurahService(surahs),
			Reading:  service.NewReadingService(surahs, loader, sessions, logger),
			Playback: playback,
			Progress: service.NewProgressService(store, sessions, logger),
			Users:    service.NewUserService(store),
			User:     user,
			Logger:   logger,
		},
		loader:   loader,
		surface:  surface,
		store:    store,
		sessions: sessions,
		playback: playback,
	}
}

// run executes cmd and feeds the resulting messages back into the model
// until nothing is left to do.
func run(m tea.Model, cmd tea.Cmd) tea.Model {
	if cmd == nil {
		return m
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			m = run(m, c)
		}
		return m
	}
	if msg == nil {
		return m
	}
	next, nextCmd := m.Update(msg)
	return run(next, nextCmd)
}

func press(m tea.Model, keys ...tea.KeyMsg) model {
	for _, k := range keys {
		next, cmd := m.Update(k)
		m = run(next, cmd)
	}
	return m.(model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func started(t *testing.T, env *testEnv) model {
	t.Helper()
	m := newModel(context.Background(), env.deps)
	return run(m, m.Init()).(model)
}

func TestModel_InitListsSurahs(t *testing.T) {
	m := started(t, newTestEnv(t, ""))

	require.Len(t, m.surahs, 3)
	assert.Equal(t, listMode, m.mode)
	assert.Equal(t, statusAnonymous, m.status)
	assert.Contains(t, m.View(), "Al-Baqara")
}

func TestModel_OpenFromList(t *testing.T) {
	m := started(t, newTestEnv(t, "amina"))

	m = press(m, runes("j"), runes("j"), enter)

	require.Equal(t, readingMode, m.mode)
	require.NotNil(t, m.session)
	assert.Equal(t, 112, m.session.Surah.Number)
	assert.Len(t, m.session.Verses, 4)
	assert.Zero(t, m.loading)
	assert.Contains(t, m.View(), "Al-Ikhlas")
}

func TestModel_LoadFailureAndRetry(t *testing.T) {
	env := newTestEnv(t, "")
	env.loader.errs[1] = service.ErrPartialChapter
	m := started(t, env)

	m = press(m, enter)
	assert.Equal(t, listMode, m.mode)
	assert.Equal(t, statusLoadFailed, m.status)
	assert.Equal(t, 1, m.failed)

	m = press(m, runes("r"))
	require.Equal(t, readingMode, m.mode)
	assert.Equal(t, 1, m.session.Surah.Number)
	assert.Empty(t, m.status)
}

func TestModel_IgnoresSupersededLoads(t *testing.T) {
	m := started(t, newTestEnv(t, ""))
	m.loading = 2

	next, _ := m.Update(openedMsg{number: 1, session: &entities.ReadingSession{Surah: &entities.Surah{Number: 1}}})
	m = next.(model)
	assert.Equal(t, listMode, m.mode)
	assert.Nil(t, m.session)

	next, _ = m.Update(openedMsg{number: 2, err: service.ErrStaleLoad})
	m = next.(model)
	assert.Equal(t, 2, m.loading)
	assert.Empty(t, m.status)
}

func TestModel_PlayNextAndEnded(t *testing.T) {
	env := newTestEnv(t, "")
	m := press(started(t, env), enter)
	require.Equal(t, readingMode, m.mode)

	m = press(m, runes("j"), tea.KeyMsg{Type: tea.KeySpace})
	require.NotNil(t, m.session.Playback.Current)
	assert.Equal(t, "1:2", m.session.Playback.Current.Key())
	assert.True(t, m.session.Playback.Playing)
	assert.Contains(t, m.View(), "Lecture 1:2")

	m = press(m, runes("n"))
	assert.Equal(t, "1:3", m.session.Playback.Current.Key())
	assert.Equal(t, 2, m.verseSelected)

	sess, err := env.playback.Ended(context.Background(), sessionID, "1:3")
	require.NoError(t, err)
	next, _ := m.Update(playbackMsg{session: sess})
	m = next.(model)
	assert.Equal(t, "1:4", m.session.Playback.Current.Key())
	assert.Equal(t, 3, m.verseSelected)

	assert.Equal(t, []string{"1:2", "1:3", "1:4"}, env.surface.played)

	m = press(m, runes("s"))
	assert.False(t, m.session.Playback.Playing)
	assert.Contains(t, m.View(), "En pause 1:4")
}

func TestModel_AudioFailureShown(t *testing.T) {
	env := newTestEnv(t, "")
	m := press(started(t, env), enter, runes("p"))
	require.True(t, m.session.Playback.Playing)

	next, _ := m.Update(playbackMsg{session: env.playback.Failed(sessionID, "1:1")})
	m = next.(model)
	assert.False(t, m.session.Playback.Playing)
	assert.True(t, m.session.Playback.AudioUnavailable)
	assert.Contains(t, m.View(), "Audio indisponible 1:1")
}

func TestModel_RecoversAfterSessionPurge(t *testing.T) {
	env := newTestEnv(t, "amina")
	m := press(started(t, env), enter, runes("j"))
	require.Equal(t, readingMode, m.mode)

	env.sessions.Delete(sessionID)

	m = press(m, runes("p"))
	require.NotNil(t, m.session.Playback.Current)
	assert.Equal(t, "1:2", m.session.Playback.Current.Key())
	assert.True(t, m.session.Playback.Playing)
	assert.Equal(t, []string{"1:2"}, env.surface.played)
	assert.Empty(t, m.status)

	env.sessions.Delete(sessionID)

	m = press(m, runes("b"))
	assert.Equal(t, "🔖 Verset 1:2 enregistré", m.status)
	u, err := env.store.GetByID(context.Background(), env.deps.User.ID)
	require.NoError(t, err)
	require.NotNil(t, u.LastRead)
	assert.Equal(t, 2, u.LastRead.VerseNumber)

	env.sessions.Delete(sessionID)

	// a reloaded surah has no current verse, so there is nothing to advance
	m = press(m, runes("n"))
	assert.Equal(t, readingMode, m.mode)
	assert.NotEqual(t, statusSurahNotLoaded, m.status)
	sess, ok := env.sessions.Get(sessionID)
	require.True(t, ok)
	assert.True(t, sess.Loaded())
	assert.Nil(t, sess.Playback.Current)
}

func TestModel_Bookmark(t *testing.T) {
	env := newTestEnv(t, "amina")
	m := press(started(t, env), enter, runes("j"), runes("j"), runes("b"))

	assert.Equal(t, "1:3", m.session.BookmarkKey)
	assert.Equal(t, "🔖 Verset 1:3 enregistré", m.status)

	u, err := env.store.GetByID(context.Background(), env.deps.User.ID)
	require.NoError(t, err)
	require.NotNil(t, u.LastRead)
	assert.Equal(t, 1, u.LastRead.SurahNumber)
	assert.Equal(t, 3, u.LastRead.VerseNumber)
	assert.Equal(t, "Al-Fatiha", u.LastRead.SurahNamePhonetic)
}

func TestModel_BookmarkAnonymous(t *testing.T) {
	m := press(started(t, newTestEnv(t, "")), enter, runes("b"))

	assert.Empty(t, m.session.BookmarkKey)
	assert.Equal(t, statusNotAuthenticated, m.status)
}

func TestModel_ContinueReading(t *testing.T) {
	env := newTestEnv(t, "amina")
	err := env.store.UpdateLastRead(context.Background(), env.deps.User.ID, entities.LastRead{
		SurahNumber:       112,
		VerseNumber:       3,
		SurahNamePhonetic: "Al-Ikhlas",
	})
	require.NoError(t, err)
	env.deps.User.LastRead = &entities.LastRead{SurahNumber: 112, VerseNumber: 3}

	m := press(started(t, env), runes("c"))

	require.Equal(t, readingMode, m.mode)
	assert.Equal(t, 112, m.session.Surah.Number)
	assert.Equal(t, 2, m.verseSelected)
	assert.Equal(t, "112:3", m.session.BookmarkKey)
}

func TestModel_ContinueWithoutBookmark(t *testing.T) {
	m := press(started(t, newTestEnv(t, "amina")), runes("c"))

	assert.Equal(t, listMode, m.mode)
	assert.Equal(t, statusNoLastRead, m.status)
}

func TestModel_Search(t *testing.T) {
	m := started(t, newTestEnv(t, ""))

	m = press(m, runes("/"), runes("vac"), runes("h"), tea.KeyMsg{Type: tea.KeyBackspace}, runes("he"), enter)
	assert.Equal(t, listMode, m.mode)
	assert.Equal(t, "vache", m.query)
	require.Len(t, m.surahs, 1)
	assert.Equal(t, 2, m.surahs[0].Number)

	m = press(m, esc)
	assert.Empty(t, m.query)
	assert.Len(t, m.surahs, 3)
}

func TestModel_SearchNoResults(t *testing.T) {
	m := press(started(t, newTestEnv(t, "")), runes("/"), runes("zzz"), enter)

	assert.Empty(t, m.surahs)
	assert.Equal(t, "Aucune sourate ne correspond à « zzz ».", m.status)
}

func TestModel_NavigateSurahs(t *testing.T) {
	m := press(started(t, newTestEnv(t, "")), enter, runes("l"))
	require.Equal(t, 2, m.session.Surah.Number)

	m = press(m, runes("h"), runes("h"))
	assert.Equal(t, 1, m.session.Surah.Number)
}

func TestModel_WelcomeShownOnce(t *testing.T) {
	env := newTestEnv(t, "amina")
	m := started(t, env)

	assert.True(t, m.welcome)
	assert.Contains(t, m.View(), "Bienvenue amina")

	m = press(m, runes("j"))
	assert.False(t, m.welcome)

	u, err := env.store.GetByID(context.Background(), env.deps.User.ID)
	require.NoError(t, err)
	assert.True(t, u.Welcomed)
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{service.ErrNotAuthenticated, statusNotAuthenticated},
		{service.ErrNoLastRead, statusNoLastRead},
		{service.ErrSurahNotLoaded, statusSurahNotLoaded},
		{service.ErrVerseNotLoaded, statusVerseNotLoaded},
		{repository.ErrSurahNotFound, statusInvalidSurah},
		{errors.New("boom"), "fallback"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, errorStatus(tt.err, "fallback"), tt.err.Error())
	}
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, []string{""}, wrapText("", 10))
	assert.Equal(t, []string{"au nom", "d'Allah"}, wrapText("au nom d'Allah", 8))
	assert.Equal(t, []string{"bismillahi"}, wrapText("bismillahi", 4))
}

func TestScrollFor(t *testing.T) {
	assert.Equal(t, 0, scrollFor(2, 0, 5))
	assert.Equal(t, 3, scrollFor(7, 0, 5))
	assert.Equal(t, 1, scrollFor(1, 4, 5))
}
