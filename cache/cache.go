package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"github.com/use-agent/webstruct/models"
)

// Entry is one cached extraction.
type Entry struct {
	Document   *models.StructuredDocument
	Markdown   string
	EngineUsed string
}

type entry struct {
	value     *Entry
	createdAt time.Time
}

// Cache is an in-memory cache of structured documents keyed by request.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	maxAge     time.Duration
	now        func() time.Time
	done       chan struct{}
	once       sync.Once
}

// New creates a Cache holding at most maxEntries. A background goroutine
// evicts entries older than one hour every 5 minutes.
func New(maxEntries int) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		maxAge:     time.Hour,
		now:        time.Now,
		done:       make(chan struct{}),
	}
	go c.cleanupLoop(5 * time.Minute)
	return c
}

// Key derives a cache key from the page URL, the fetch method and whether
// Markdown was requested.
func Key(url, method string, markdown bool) string {
	h := sha256.New()
	h.Write([]byte(url))
	h.Write([]byte("|"))
	h.Write([]byte(models.NormalizeMethod(method)))
	h.Write([]byte("|"))
	h.Write([]byte(strconv.FormatBool(markdown)))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the entry stored under key if it is younger than maxAgeMs.
// A non-positive maxAgeMs disables the lookup.
func (c *Cache) Get(key string, maxAgeMs int) (*Entry, bool) {
	if maxAgeMs <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if c.now().Sub(e.createdAt) > time.Duration(maxAgeMs)*time.Millisecond {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key. At capacity an arbitrary entry is evicted.
func (c *Cache) Set(key string, value *Entry) {
	if c.maxEntries <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = &entry{value: value, createdAt: c.now()}
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Stop terminates the cleanup goroutine.
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
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *Cache) evictExpired() {
	cutoff := c.now().Add(-c.maxAge)
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.store {
		if e.createdAt.Before(cutoff) {
			delete(c.store, k)
		}
	}
}
