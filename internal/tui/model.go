// Package tui is the terminal reader: a bubbletea program over the same
// reading, playback and progress services as the bot.
package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/aliskhannn/quran-reader-bot/internal/domain/entities"
	"github.com/aliskhannn/quran-reader-bot/internal/repository"
	"github.com/aliskhannn/quran-reader-bot/internal/service"
)

// The terminal has a single reading session.
const sessionID int64 = 1

type SurahService interface {
	GetAll(ctx context.Context) ([]*entities.Surah, error)
	Search(ctx context.Context, term string) ([]*entities.Surah, error)
}

type ReadingService interface {
	Open(ctx context.Context, sessionID int64, surahNumber int, user *entities.User) (*entities.ReadingSession, error)
}

type PlaybackService interface {
	Play(ctx context.Context, sessionID int64, verseNumber int) (*entities.ReadingSession, error)
	Pause(sessionID int64) (*entities.ReadingSession, error)
	Next(ctx context.Context, sessionID int64) (*entities.ReadingSession, error)
	Ended(ctx context.Context, sessionID int64, verseKey string) (*entities.ReadingSession, error)
	Failed(sessionID int64, verseKey string) *entities.ReadingSession
}

type ProgressService interface {
	Bookmark(ctx context.Context, user *entities.User, sessionID int64, verseNumber int) (string, error)
	LastRead(ctx context.Context, userID int64) (*entities.LastRead, error)
}

type UserService interface {
	MarkWelcomed(ctx context.Context, userID int64) error
}

// Deps are the services the reader talks to. User is nil for an anonymous
// reader, which can read and listen but not bookmark.
type Deps struct {
	Surahs   SurahService
	Reading  ReadingService
	Playback PlaybackService
	Progress ProgressService
	Users    UserService
	User     *entities.User
	Logger   *zap.Logger
}

type mode int

const (
	listMode mode = iota
	searchMode
	readingMode
)

type (
	surahsMsg struct {
		surahs []*entities.Surah
		query  string
		err    error
	}
	openedMsg struct {
		number  int
		focus   int // verse to select, 0 for the first one
		session *entities.ReadingSession
		err     error
	}
	playbackMsg struct {
		session *entities.ReadingSession
		err     error
	}
	bookmarkMsg struct {
		key string
		err error
	}
)

type model struct {
	ctx  context.Context
	deps Deps
	user *entities.User

	mode         mode
	surahs       []*entities.Surah
	query        string // applied search, "" for the whole list
	input        string // search being typed
	selected     int
	scrollOffset int

	session       *entities.ReadingSession
	verseSelected int
	verseScroll   int
	loading       int // surah being loaded
	failed        int // surah whose last load failed
	status        string
	welcome       bool

	height int
	width  int

	titleStyle    lipgloss.Style
	verseNumStyle lipgloss.Style
	arabicStyle   lipgloss.Style
	textStyle     lipgloss.Style
	dimStyle      lipgloss.Style
	statusStyle   lipgloss.Style
	errorStyle    lipgloss.Style
}

func newModel(ctx context.Context, deps Deps) model {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	m := model{
		ctx:           ctx,
		deps:          deps,
		user:          deps.User,
		mode:          listMode,
		height:        24,
		width:         80,
		titleStyle:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2E8B57")),
		verseNumStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#DAA520")),
		arabicStyle:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")),
		textStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("#D0D0D0")),
		dimStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("#808080")),
		statusStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
		errorStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6347")),
	}

	if m.user == nil {
		m.status = statusAnonymous
	} else if !m.user.Welcomed {
		m.welcome = true
	}

	return m
}

func (m model) Init() tea.Cmd {
	return m.listCmd("")
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.width = msg.Width
		return m, nil

	case surahsMsg:
		if msg.err != nil {
			m.status = statusSurahsFailed
			return m, nil
		}
		m.surahs = msg.surahs
		m.query = msg.query
		m.selected = 0
		m.scrollOffset = 0
		if msg.query != "" && len(msg.surahs) == 0 {
			m.status = fmt.Sprintf(statusNoResults, msg.query)
		}
		return m, nil

	case openedMsg:
		next := m.handleOpened(msg)
		if next.session != m.session {
			// the new surah starts with fresh playback, silence the old verse
			return next, next.pauseCmd()
		}
		return next, nil

	case playbackMsg:
		return m.handlePlayback(msg), nil

	case bookmarkMsg:
		if msg.err != nil {
			m.status = errorStatus(msg.err, statusBookmarkFailed)
			return m, nil
		}
		if m.session != nil {
			m.session.BookmarkKey = msg.key
		}
		m.status = fmt.Sprintf(statusBookmarked, msg.key)
		return m, nil

	case tea.KeyMsg:
		var cmd tea.Cmd
		if m.welcome {
			m.welcome = false
			cmd = m.welcomedCmd()
		}
		next, keyCmd := m.handleKey(msg)
		return next, tea.Batch(cmd, keyCmd)
	}

	return m, nil
}

func (m model) handleOpened(msg openedMsg) model {
	if msg.number != m.loading {
		return m
	}

	if msg.err != nil {
		if errors.Is(msg.err, service.ErrStaleLoad) {
			return m
		}
		m.loading = 0
		m.failed = msg.number
		m.deps.Logger.Warn("failed to open surah", zap.Int("surah", msg.number), zap.Error(msg.err))
		m.status = errorStatus(msg.err, statusLoadFailed)
		return m
	}

	m.loading = 0
	m.failed = 0
	m.status = ""
	m.session = msg.session
	m.mode = readingMode
	m.verseSelected = 0
	m.verseScroll = 0
	if msg.focus > 0 {
		if idx := entities.IndexOfVerse(m.session.Verses, msg.focus); idx >= 0 {
			m.verseSelected = idx
		}
	}
	return m
}

func (m model) handlePlayback(msg playbackMsg) model {
	if msg.err != nil {
		m.status = errorStatus(msg.err, statusPlaybackFailed)
		return m
	}
	if msg.session == nil || m.session == nil || msg.session.Surah == nil ||
		msg.session.Surah.Number != m.session.Surah.Number {
		return m
	}

	m.session = msg.session
	if cur := m.session.Playback.Current; cur != nil && m.session.Playback.Playing {
		if idx := entities.IndexOfVerse(m.session.Verses, cur.VerseNumber); idx >= 0 {
			m.verseSelected = idx
		}
	}
	return m.syncScroll()
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if msg.Type == tea.KeyRunes && len(msg.Runes) == 0 {
		return m, nil
	}

	var (
		next tea.Model
		cmd  tea.Cmd
	)
	switch m.mode {
	case searchMode:
		next, cmd = m.handleSearchKey(msg)
	case readingMode:
		next, cmd = m.handleReadingKey(msg)
	default:
		next, cmd = m.handleListKey(msg)
	}

	if nm, ok := next.(model); ok {
		next = nm.syncScroll()
	}
	return next, cmd
}

// syncScroll moves the scroll offsets so that the selection stays visible.
func (m model) syncScroll() model {
	m.scrollOffset = scrollFor(m.selected, m.scrollOffset, m.visibleSurahs())
	if m.mode == readingMode && m.session != nil && len(m.session.Verses) > 0 {
		m.verseScroll = m.verseOffset(m.availableVerseHeight())
	}
	return m
}

func (m model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = listMode
		m.input = ""
	case tea.KeyEnter:
		m.mode = listMode
		query := m.input
		m.input = ""
		return m, m.listCmd(query)
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m, nil
}

func (m model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if m.query != "" {
			return m, m.listCmd("")
		}
		return m, tea.Quit
	case tea.KeyEnter:
		if m.selected < len(m.surahs) {
			return m.open(m.surahs[m.selected].Number, 0)
		}
	case tea.KeyUp:
		m.moveUp()
	case tea.KeyDown:
		m.moveDown(len(m.surahs))
	case tea.KeyRunes:
		switch msg.Runes[0] {
		case 'k':
			m.moveUp()
		case 'j':
			m.moveDown(len(m.surahs))
		case 'g':
			m.selected = 0
		case 'G':
			m.selected = max(0, len(m.surahs)-1)
		case '/':
			m.mode = searchMode
			m.input = ""
		case 'c':
			return m.continueReading()
		case 'r':
			if m.failed > 0 {
				return m.open(m.failed, 0)
			}
		case 'q':
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) handleReadingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	verses := m.session.Verses

	switch msg.Type {
	case tea.KeyEsc, tea.KeyBackspace:
		m.mode = listMode
		return m, m.pauseCmd()
	case tea.KeyUp:
		m.moveVerse(-1)
	case tea.KeyDown:
		m.moveVerse(1)
	case tea.KeyLeft:
		return m.openRelative(-1)
	case tea.KeyRight:
		return m.openRelative(1)
	case tea.KeySpace:
		return m, m.playCmd()
	case tea.KeyRunes:
		switch msg.Runes[0] {
		case 'k':
			m.moveVerse(-1)
		case 'j':
			m.moveVerse(1)
		case 'g':
			m.verseSelected = 0
		case 'G':
			m.verseSelected = max(0, len(verses)-1)
		case 'h':
			return m.openRelative(-1)
		case 'l':
			return m.openRelative(1)
		case 'p':
			return m, m.playCmd()
		case 's':
			return m, m.pauseCmd()
		case 'n':
			return m, m.nextCmd()
		case 'b':
			return m, m.bookmarkCmd()
		case 'c':
			return m.continueReading()
		case 'r':
			if m.failed > 0 {
				return m.open(m.failed, 0)
			}
		case 'q':
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *model) moveUp() {
	if m.selected > 0 {
		m.selected--
	}
}

func (m *model) moveDown(listLen int) {
	if m.selected < listLen-1 {
		m.selected++
	}
}

func (m *model) moveVerse(delta int) {
	n := len(m.session.Verses)
	m.verseSelected = min(max(0, m.verseSelected+delta), max(0, n-1))
}

// open starts loading a surah. A newer open supersedes an older one still
// in flight.
func (m model) open(number, focus int) (tea.Model, tea.Cmd) {
	m.loading = number
	m.status = fmt.Sprintf(statusLoading, number)
	return m, m.openCmd(number, focus)
}

func (m model) openRelative(delta int) (tea.Model, tea.Cmd) {
	current := m.loading
	if current == 0 && m.session != nil && m.session.Surah != nil {
		current = m.session.Surah.Number
	}
	next := current + delta
	if !entities.ValidSurahNumber(next) {
		return m, nil
	}
	return m.open(next, 0)
}

func (m model) continueReading() (tea.Model, tea.Cmd) {
	if m.user == nil {
		m.status = errorStatus(service.ErrNotAuthenticated, "")
		return m, nil
	}

	lr, err := m.deps.Progress.LastRead(m.ctx, m.user.ID)
	if err != nil {
		m.status = errorStatus(err, statusLoadFailed)
		return m, nil
	}
	return m.open(lr.SurahNumber, lr.VerseNumber)
}

func (m model) selectedVerse() (entities.Verse, bool) {
	if m.session == nil || m.verseSelected >= len(m.session.Verses) {
		return entities.Verse{}, false
	}
	return m.session.Verses[m.verseSelected], true
}

func (m model) listCmd(query string) tea.Cmd {
	ctx, surahs := m.ctx, m.deps.Surahs
	return func() tea.Msg {
		var (
			list []*entities.Surah
			err  error
		)
		if query == "" {
			list, err = surahs.GetAll(ctx)
		} else {
			list, err = surahs.Search(ctx, query)
		}
		return surahsMsg{surahs: list, query: query, err: err}
	}
}

func (m model) openCmd(number, focus int) tea.Cmd {
	ctx, reading, user := m.ctx, m.deps.Reading, m.user
	return func() tea.Msg {
		sess, err := reading.Open(ctx, sessionID, number, user)
		return openedMsg{number: number, focus: focus, session: sess, err: err}
	}
}

func (m model) playCmd() tea.Cmd {
	v, ok := m.selectedVerse()
	if !ok {
		return nil
	}
	ctx, playback, reopen := m.ctx, m.deps.Playback, m.reopenFunc()
	return func() tea.Msg {
		sess, err := playback.Play(ctx, sessionID, v.VerseNumber)
		if errors.Is(err, service.ErrSurahNotLoaded) && reopen(ctx) == nil {
			sess, err = playback.Play(ctx, sessionID, v.VerseNumber)
		}
		return playbackMsg{session: sess, err: err}
	}
}

func (m model) pauseCmd() tea.Cmd {
	playback := m.deps.Playback
	return func() tea.Msg {
		sess, err := playback.Pause(sessionID)
		return playbackMsg{session: sess, err: err}
	}
}

func (m model) nextCmd() tea.Cmd {
	ctx, playback, reopen := m.ctx, m.deps.Playback, m.reopenFunc()
	return func() tea.Msg {
		sess, err := playback.Next(ctx, sessionID)
		if errors.Is(err, service.ErrSurahNotLoaded) && reopen(ctx) == nil {
			sess, err = playback.Next(ctx, sessionID)
		}
		return playbackMsg{session: sess, err: err}
	}
}

func (m model) bookmarkCmd() tea.Cmd {
	v, ok := m.selectedVerse()
	if !ok {
		return nil
	}
	ctx, progress, user, reopen := m.ctx, m.deps.Progress, m.user, m.reopenFunc()
	return func() tea.Msg {
		key, err := progress.Bookmark(ctx, user, sessionID, v.VerseNumber)
		if errors.Is(err, service.ErrSurahNotLoaded) && reopen(ctx) == nil {
			key, err = progress.Bookmark(ctx, user, sessionID, v.VerseNumber)
		}
		return bookmarkMsg{key: key, err: err}
	}
}

// reopenFunc returns a function loading the surah on screen again, for when
// its session was dropped from storage. It does nothing while another surah
// is loading.
func (m model) reopenFunc() func(ctx context.Context) error {
	number := 0
	if m.loading == 0 && m.session != nil && m.session.Surah != nil {
		number = m.session.Surah.Number
	}
	reading, user, logger := m.deps.Reading, m.user, m.deps.Logger
	return func(ctx context.Context) error {
		if number == 0 {
			return service.ErrSurahNotLoaded
		}
		if _, err := reading.Open(ctx, sessionID, number, user); err != nil {
			logger.Warn("failed to reopen surah", zap.Int("surah", number), zap.Error(err))
			return err
		}
		return nil
	}
}

func (m model) welcomedCmd() tea.Cmd {
	if m.user == nil || m.deps.Users == nil {
		return nil
	}
	ctx, users, userID, logger := m.ctx, m.deps.Users, m.user.ID, m.deps.Logger
	return func() tea.Msg {
		if err := users.MarkWelcomed(ctx, userID); err != nil {
			logger.Warn("failed to mark user as welcomed", zap.Int64("user_id", userID), zap.Error(err))
		}
		return nil
	}
}

// errorStatus turns a service error into the status line text. Unknown
// errors get fallback.
func errorStatus(err error, fallback string) string {
	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		return statusNotAuthenticated
	case errors.Is(err, service.ErrNoLastRead):
		return statusNoLastRead
	case errors.Is(err, service.ErrSurahNotLoaded):
		return statusSurahNotLoaded
	case errors.Is(err, service.ErrVerseNotLoaded):
		return statusVerseNotLoaded
	case errors.Is(err, repository.ErrInvalidSurahNumber), errors.Is(err, repository.ErrSurahNotFound):
		return statusInvalidSurah
	default:
		return fallback
	}
}

// Run starts the reader and blocks until the user quits or ctx is cancelled.
// The player reports finished and failed verses back into the program.
func Run(ctx context.Context, deps Deps, player *ExternalPlayer) error {
	p := tea.NewProgram(newModel(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx))

	player.SetHandlers(
		func(id int64, key string) {
			sess, err := deps.Playback.Ended(ctx, id, key)
			p.Send(playbackMsg{session: sess, err: err})
		},
		func(id int64, key string) {
			p.Send(playbackMsg{session: deps.Playback.Failed(id, key)})
		},
	)
	defer player.Close()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
