package shares

import (
	"strings"
	"sync"
	"time"

	"github.com/guttosm/stockpulse/internal/domain/models"
)

// DefaultCacheTTL is how long a live profile lookup stays valid.
const DefaultCacheTTL = time.Hour

// Cache keeps live profile lookups per symbol for a fixed time-to-live.
//
// Entries are immutable once written. An expired entry reads as a miss and is
// overwritten by the next Put.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	profile  models.Profile
	storedAt time.Time
}

// NewCache returns a cache with the given TTL and clock. A nil clock uses time.Now;
// a non-positive ttl uses DefaultCacheTTL.
func NewCache(ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{ttl: ttl, now: now, entries: make(map[string]cacheEntry)}
}

// Get returns the cached profile for symbol if it has not expired.
func (c *Cache) Get(symbol string) (models.Profile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[cacheKey(symbol)]
	if !ok {
		return models.Profile{}, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		delete(c.entries, cacheKey(symbol))
		return models.Profile{}, false
	}
	return e.profile, true
}

// Put stores a profile for symbol, stamped with the current clock.
func (c *Cache) Put(symbol string, p models.Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(symbol)] = cacheEntry{profile: p, storedAt: c.now()}
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func cacheKey(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
