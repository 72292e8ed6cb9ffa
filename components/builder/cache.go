package builder

import (
	"context"
	"sync"
)

// Cache keys, prefixed by project id.
const (
	cacheKeyDocument = "document"
	cacheKeyPreview  = "preview"
)

// CacheKey namespaces key under the project.
func CacheKey(projectID, key string) string {
	if projectID == "" {
		return "pagebuilder:" + key
	}
	return "pagebuilder:" + projectID + ":" + key
}

// InMemoryCache is a concurrency-safe CacheStore for tests and local runs.
type InMemoryCache struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewInMemoryCache creates an empty cache.
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{data: make(map[string][]byte)}
}

// Get returns a copy of the stored value.
func (c *InMemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

// Set overwrites key.
func (c *InMemoryCache) Set(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = stored
	return nil
}

// Delete removes key. Missing keys are ignored.
func (c *InMemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}
