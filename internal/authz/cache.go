package authz

import (
	"sync"
	"time"
)

// DefaultCacheTTL bounds how stale a cached snapshot may get before the next
// read forces a fresh resolution.
const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	info       RoleInfo
	capturedAt time.Time
}

// Cache memoizes resolved RoleInfo snapshots per user with lazy TTL expiry.
// Entries are replaced wholesale; a reader either sees a complete snapshot or
// a miss, never a partial one. There is no background eviction: an expired
// entry simply reads as a miss and is overwritten by the next Put.
type Cache struct {
	mu      sync.RWMutex
	entries map[int64]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewCache constructs a cache. ttl <= 0 falls back to DefaultCacheTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		entries: make(map[int64]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached snapshot for a user. Absent and expired entries are
// both reported as a miss; an expired entry is never handed out.
func (c *Cache) Get(userID int64) (RoleInfo, bool) {
	c.mu.RLock()
	entry, ok := c.entries[userID]
	c.mu.RUnlock()
	if !ok || c.now().Sub(entry.capturedAt) >= c.ttl {
		return RoleInfo{}, false
	}
	return entry.info, true
}

// Put stores a fresh snapshot for a user. Concurrent writers for the same key
// resolve last-write-wins; snapshots are idempotent so either winner is valid.
func (c *Cache) Put(userID int64, info RoleInfo) {
	entry := cacheEntry{info: info, capturedAt: c.now()}
	c.mu.Lock()
	c.entries[userID] = entry
	c.mu.Unlock()
}

// Invalidate drops the entry for one user. Subsequent reads miss immediately.
func (c *Cache) Invalidate(userID int64) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.mu.Unlock()
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[int64]cacheEntry)
	c.mu.Unlock()
}

// TTL returns the configured entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}
