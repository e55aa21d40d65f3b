package directory

import (
	"context"
	"sync"
	"time"

	"github.com/prepnest/prepnest/internal/domain/qna"
)

type cacheEntry struct {
	profile   qna.Profile
	expiresAt time.Time
}

// MemoryCache is the in-process ProfileCache used when Valkey is disabled.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[int64]cacheEntry
}

// NewMemoryCache constructs the cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[int64]cacheEntry)}
}

func (c *MemoryCache) Get(_ context.Context, userID int64) (qna.Profile, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[userID]
	c.mu.RUnlock()
	if !ok {
		return qna.Profile{}, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, userID)
		c.mu.Unlock()
		return qna.Profile{}, false, nil
	}
	return entry.profile, true, nil
}

func (c *MemoryCache) Set(_ context.Context, profile qna.Profile, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[profile.ID] = cacheEntry{profile: profile, expiresAt: time.Now().Add(ttl)}
	return nil
}

var _ ProfileCache = (*MemoryCache)(nil)
