// Package cache provides local in-memory caching for the dialogue pipeline.
package cache

import (
	"sync"
	"time"
)

// PromptCache stores structural prompt skeletons keyed by shape. Keys never
// contain user message content, so entries are safe to share across requests.
// Entries are immutable once written; eviction only removes. When full, the
// oldest insertion is evicted first.
type PromptCache struct {
	entries map[string]promptEntry
	order   []string
	maxSize int
	ttl     time.Duration
	mu      sync.Mutex
}

type promptEntry struct {
	skeleton  string
	expiresAt time.Time
}

// NewPromptCache creates a bounded prompt-skeleton cache.
func NewPromptCache(maxSize int, ttl time.Duration) *PromptCache {
	if maxSize <= 0 {
		maxSize = 64
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &PromptCache{
		entries: make(map[string]promptEntry),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// Get returns the cached skeleton for a shape key.
func (c *PromptCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if time.Now().After(entry.expiresAt) {
		c.remove(key)
		return "", false
	}
	return entry.skeleton, true
}

// GetOrBuild returns the cached skeleton, building and storing it on a miss.
func (c *PromptCache) GetOrBuild(key string, build func() string) string {
	if skeleton, ok := c.Get(key); ok {
		return skeleton
	}
	skeleton := build()
	c.Set(key, skeleton)
	return skeleton
}

// Set stores a skeleton, evicting the oldest insertion when full.
func (c *PromptCache) Set(key, skeleton string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = promptEntry{skeleton: skeleton, expiresAt: time.Now().Add(c.ttl)}
		return
	}

	for len(c.entries) >= c.maxSize && len(c.order) > 0 {
		c.remove(c.order[0])
	}

	c.entries[key] = promptEntry{skeleton: skeleton, expiresAt: time.Now().Add(c.ttl)}
	c.order = append(c.order, key)
}

// Size returns the current number of cached skeletons.
func (c *PromptCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// remove must be called with the lock held.
func (c *PromptCache) remove(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
