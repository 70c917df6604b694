package engine

import (
	"strings"
	"sync"
	"time"
)

// domainEntry stores the preferred engine for a host with a TTL.
type domainEntry struct {
	engineName string
	expiresAt  time.Time
}

// DomainMemory remembers which engine last won the race for each host so
// the next request can skip the race. Entries expire after the TTL.
type DomainMemory struct {
	store sync.Map // host (string) -> *domainEntry
	ttl   time.Duration
	now   func() time.Time
	done  chan struct{}
	once  sync.Once
}

// NewDomainMemory creates a DomainMemory with the given TTL and starts a
// background goroutine that prunes expired entries every hour.
func NewDomainMemory(ttl time.Duration) *DomainMemory {
	dm := &DomainMemory{
		ttl:  ttl,
		now:  time.Now,
		done: make(chan struct{}),
	}
	go dm.cleanupLoop(time.Hour)
	return dm
}

// Get returns the remembered engine name for a host, or "" if absent or expired.
func (dm *DomainMemory) Get(host string) string {
	host = strings.ToLower(host)
	val, ok := dm.store.Load(host)
	if !ok {
		return ""
	}
	entry := val.(*domainEntry)
	if dm.now().After(entry.expiresAt) {
		dm.store.Delete(host)
		return ""
	}
	return entry.engineName
}

// Set records which engine succeeded for a host.
func (dm *DomainMemory) Set(host, engineName string) {
	dm.store.Store(strings.ToLower(host), &domainEntry{
		engineName: engineName,
		expiresAt:  dm.now().Add(dm.ttl),
	})
}

// Delete forgets a host, e.g. after the remembered engine failed.
func (dm *DomainMemory) Delete(host string) {
	dm.store.Delete(strings.ToLower(host))
}

// Len returns the number of stored entries, expired ones included.
func (dm *DomainMemory) Len() int {
	n := 0
	dm.store.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Stop terminates the background cleanup goroutine. It is safe to call
// more than once.
func (dm *DomainMemory) Stop() {
	dm.once.Do(func() { close(dm.done) })
}

func (dm *DomainMemory) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-dm.done:
			return
		case <-ticker.C:
			dm.prune()
		}
	}
}

func (dm *DomainMemory) prune() {
	now := dm.now()
	dm.store.Range(func(key, value any) bool {
		if now.After(value.(*domainEntry).expiresAt) {
			dm.store.Delete(key)
		}
		return true
	})
}
