package geocode

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
)

// cacheKey returns SHA-256 hex of the normalized address.
func cacheKey(address string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(address), " "))
	h := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", h)
}

// MemoryCache is a process-local Cache for runs without a backing store.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]Result
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]Result)}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) (*Result, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	return &r, true, nil
}

// Put implements Cache.
func (c *MemoryCache) Put(_ context.Context, key string, result *Result) error {
	if result == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = *result
	return nil
}
