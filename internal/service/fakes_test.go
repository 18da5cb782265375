package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/aliskhannn/quran-reader-bot/internal/domain/entities"
	"github.com/aliskhannn/quran-reader-bot/internal/infra/quranapi"
)

type fakeSource struct {
	mu      sync.Mutex
	perPage int
	pages   map[int][]quranapi.Verse // page -> verses
	errs    map[int]error            // page -> error
	calls   []int                    // requested pages in order
}

func newFakeSource(perPage int) *fakeSource {
	return &fakeSource{
		perPage: perPage,
		pages:   make(map[int][]quranapi.Verse),
		errs:    make(map[int]error),
	}
}

// withChapter splits the verses of a chapter into pages of perPage.
func (f *fakeSource) withChapter(surah, count int) *fakeSource {
	for i := 1; i <= count; i++ {
		page := (i-1)/f.perPage + 1
		f.pages[page] = append(f.pages[page], rawVerse(surah, i))
	}
	return f
}

func (f *fakeSource) VersesByChapter(_ context.Context, _ int, page int) (*quranapi.VersesResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, page)
	if err := f.errs[page]; err != nil {
		return nil, err
	}
	return &quranapi.VersesResponse{
		Verses:     f.pages[page],
		Pagination: quranapi.Pagination{PerPage: f.perPage, CurrentPage: page, TotalPages: len(f.pages)},
	}, nil
}

func (f *fakeSource) requested() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.calls...)
}

func rawVerse(surah, verse int) quranapi.Verse {
	translit := fmt.Sprintf("w%d", verse)
	return quranapi.Verse{
		ID:          surah*1000 + verse,
		VerseNumber: verse,
		VerseKey:    entities.VerseKey(surah, verse),
		TextUthmani: "نص",
		Words: []quranapi.Word{
			{Position: 1, CharTypeName: "word", Transliteration: &quranapi.Transliteration{Text: &translit}},
			{Position: 2, CharTypeName: "end", Transliteration: &quranapi.Transliteration{}},
		},
		Translations: []quranapi.Translation{{ResourceID: 31, Text: fmt.Sprintf("verset %d", verse)}},
		Audio:        &quranapi.Audio{URL: fmt.Sprintf("Alafasy/mp3/%03d%03d.mp3", surah, verse)},
	}
}

type fakeUsers struct {
	mu             sync.Mutex
	users          map[int64]*entities.User
	updateErr      error
	lastReadWrites int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[int64]*entities.User)}
}

func (f *fakeUsers) Save(_ context.Context, user *entities.User) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing, ok := f.users[user.ID]
	if ok {
		existing.ChatID = user.ChatID
		existing.FirstName = user.FirstName
		existing.Username = user.Username
		existing.LanguageCode = user.LanguageCode
		return false, nil
	}
	u := *user
	f.users[user.ID] = &u
	return true, nil
}

func (f *fakeUsers) GetByID(_ context.Context, userID int64) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[userID]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) UpdateLastRead(_ context.Context, userID int64, lastRead entities.LastRead) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastReadWrites++
	if f.updateErr != nil {
		return f.updateErr
	}
	u, ok := f.users[userID]
	if !ok {
		return entities.ErrUserNotFound
	}
	lr := lastRead
	u.LastRead = &lr
	return nil
}

func (f *fakeUsers) ClearLastRead(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[userID]
	if !ok {
		return entities.ErrUserNotFound
	}
	u.LastRead = nil
	return nil
}

func (f *fakeUsers) MarkWelcomed(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[userID]
	if !ok {
		return entities.ErrUserNotFound
	}
	u.Welcomed = true
	return nil
}

type fakeSurface struct {
	mu      sync.Mutex
	played  []string
	stopped int
	err     error
}

func (f *fakeSurface) Play(_ context.Context, _ int64, _ *entities.Surah, verse entities.Verse) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.played = append(f.played, verse.Key())
	return nil
}

func (f *fakeSurface) Stop(int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
}

// orderedSurface logs surface calls in order. Play of gateKey blocks until
// release is closed, after signalling entered.
type orderedSurface struct {
	mu      sync.Mutex
	log     []string
	gateKey string
	entered chan struct{}
	release chan struct{}
}

func newOrderedSurface(gateKey string) *orderedSurface {
	return &orderedSurface{
		gateKey: gateKey,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (f *orderedSurface) Play(_ context.Context, _ int64, _ *entities.Surah, verse entities.Verse) error {
	f.mu.Lock()
	f.log = append(f.log, "play "+verse.Key())
	f.mu.Unlock()

	if verse.Key() == f.gateKey {
		close(f.entered)
		<-f.release
	}
	return nil
}

func (f *orderedSurface) Stop(int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log = append(f.log, "stop")
}

func (f *orderedSurface) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.log...)
}

// gatedLoader blocks LoadChapter of a surah until its gate is closed.
type gatedLoader struct {
	gates map[int]chan struct{}
}

func (l *gatedLoader) LoadChapter(ctx context.Context, number int) ([]entities.Verse, error) {
	if gate, ok := l.gates[number]; ok {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	verses := make([]entities.Verse, 0, 3)
	for i := 1; i <= 3; i++ {
		verses = append(verses, entities.Verse{SurahNumber: number, VerseNumber: i})
	}
	return verses, nil
}

func testSurahs() []*entities.Surah {
	return []*entities.Surah{
		{Number: 1, NameArabic: "الفاتحة", NamePhonetic: "Al-Fatiha", NameFrench: "L'Ouverture", VersesCount: 7, RevelationType: entities.RevelationMeccan},
		{Number: 2, NameArabic: "البقرة", NamePhonetic: "Al-Baqara", NameFrench: "La Vache", VersesCount: 286, RevelationType: entities.RevelationMedinan},
		{Number: 112, NameArabic: "الإخلاص", NamePhonetic: "Al-Ikhlas", NameFrench: "Le Monothéisme pur", VersesCount: 4, RevelationType: entities.RevelationMeccan},
	}
}
