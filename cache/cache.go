// Package cache keeps recent business profiles in memory so repeated
// lookups of the same business skip the fetch.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/use-agent/sitescan/models"
)

type entry struct {
	profile   *models.Profile
	createdAt time.Time
}

// Cache is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	ttl        time.Duration

	done chan struct{}
	once sync.Once
}

// New creates a Cache holding at most maxEntries profiles. Entries older
// than ttl are swept every sweep interval until Stop is called.
func New(maxEntries int, ttl, sweep time.Duration) *Cache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	if sweep <= 0 {
		sweep = 5 * time.Minute
	}
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		ttl:        ttl,
		done:       make(chan struct{}),
	}
	go c.cleanupLoop(sweep)
	return c
}

// Key identifies a business by website, category and name, ignoring case
// and surrounding space.
func Key(b models.Business) string {
	h := sha256.New()
	h.Write([]byte(normalize(b.Website)))
	h.Write([]byte("|"))
	h.Write([]byte(normalize(b.Category)))
	h.Write([]byte("|"))
	h.Write([]byte(normalize(b.Name)))
	return hex.EncodeToString(h.Sum(nil))
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Get returns the cached profile when it is younger than maxAge. A
// non-positive maxAge never hits.
func (c *Cache) Get(key string, maxAge time.Duration) (*models.Profile, bool) {
	if maxAge <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()
	if !ok || time.Since(e.createdAt) > maxAge {
		return nil, false
	}
	return e.profile, true
}

// Set stores a profile, evicting the oldest entry when full.
func (c *Cache) Set(key string, p *models.Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxEntries {
		var oldestKey string
		var oldest time.Time
		for k, e := range c.store {
			if oldestKey == "" || e.createdAt.Before(oldest) {
				oldestKey, oldest = k, e.createdAt
			}
		}
		delete(c.store, oldestKey)
	}
	c.store[key] = &entry{profile: p, createdAt: time.Now()}
}

// Len is the number of cached profiles.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Stop ends the background sweep. It is safe to call more than once.
func (c *Cache) Stop() {
	c.once.Do(func() { close(c.done) })
}

func (c *Cache) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case now := <-ticker.C:
			c.sweep(now)
		}
	}
}

func (c *Cache) sweep(now time.Time) {
	cutoff := now.Add(-c.ttl)
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.store {
		if e.createdAt.Before(cutoff) {
			delete(c.store, k)
		}
	}
}
