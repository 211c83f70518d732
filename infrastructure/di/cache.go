package di

import (
	"context"
	"strings"
	"sync"
	"time"
)

// InMemoryCache provides a simple in-memory cache implementation. Query
// results are cached under user-prefixed keys so a command can drop
// everything one user sees with DeletePrefix.
type InMemoryCache struct {
	mu    sync.RWMutex
	items map[string]cacheItem
	now   func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

type cacheItem struct {
	value     interface{}
	expiresAt time.Time
}

// NewInMemoryCache creates a cache that sweeps expired items every
// cleanupInterval until Close is called
func NewInMemoryCache(cleanupInterval time.Duration) *InMemoryCache {
	cache := &InMemoryCache{
		items:  make(map[string]cacheItem),
		now:    time.Now,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}

	go cache.cleanupExpired(cleanupInterval)

	return cache
}

// Get retrieves a value from cache
func (c *InMemoryCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists || c.now().After(item.expiresAt) {
		return nil, false
	}
	return item.value, true
}

// Set stores a value in cache with TTL in seconds
func (c *InMemoryCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = cacheItem{
		value:     value,
		expiresAt: c.now().Add(time.Duration(ttl) * time.Second),
	}
	return nil
}

// Delete removes a value from cache
func (c *InMemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

// DeletePrefix removes every key starting with prefix
func (c *InMemoryCache) DeletePrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
	return nil
}

// Len reports the number of stored items, expired ones included
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the cleanup goroutine
func (c *InMemoryCache) Close() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		<-c.done
	})
}

// cleanupExpired periodically removes expired items
func (c *InMemoryCache) cleanupExpired(interval time.Duration) {
	defer close(c.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *InMemoryCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
		}
	}
}
