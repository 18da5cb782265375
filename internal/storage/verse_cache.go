package storage

import (
	"sync"
	"time"

	"github.com/aliskhannn/quran-reader-bot/internal/domain/entities"
)

type cachedSurah struct {
	verses    []entities.Verse
	expiresAt time.Time
}

// VerseCache keeps loaded surahs in memory for a fixed TTL.
type VerseCache struct {
	mu     sync.RWMutex
	ttl    time.Duration
	surahs map[int]cachedSurah
	now    func() time.Time
}

// NewVerseCache creates a new VerseCache. A non-positive ttl disables caching.
func NewVerseCache(ttl time.Duration) *VerseCache {
	return &VerseCache{
		ttl:    ttl,
		surahs: make(map[int]cachedSurah),
		now:    time.Now,
	}
}

// Get returns the cached verses of a surah if they have not expired.
func (c *VerseCache) Get(surahNumber int) ([]entities.Verse, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.surahs[surahNumber]
	if !ok || !c.now().Before(entry.expiresAt) {
		return nil, false
	}
	return entry.verses, true
}

// Store caches the verses of a surah.
func (c *VerseCache) Store(surahNumber int, verses []entities.Verse) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.surahs[surahNumber] = cachedSurah{
		verses:    verses,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Purge drops expired entries and returns how many were removed.
func (c *VerseCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for n, entry := range c.surahs {
		if !now.Before(entry.expiresAt) {
			delete(c.surahs, n)
			removed++
		}
	}
	return removed
}
