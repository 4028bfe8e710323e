package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache implements in-memory caching bounded by item count
type MemoryCache struct {
	cache    *gocache.Cache
	maxItems int
}

// NewMemoryCache creates a new memory cache. maxItems <= 0 leaves it unbounded.
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration, maxItems int) *MemoryCache {
	return &MemoryCache{
		cache:    gocache.New(defaultTTL, cleanupInterval),
		maxItems: maxItems,
	}
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	if val, found := c.cache.Get(key); found {
		return val.([]byte), true
	}
	return nil, false
}

// Set stores a value in the cache with the given TTL (0 uses the default)
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	if c.maxItems > 0 {
		if _, exists := c.cache.Get(key); !exists {
			c.makeRoom()
		}
	}
	c.cache.Set(key, value, ttl)
	return nil
}

// makeRoom drops expired items, then the items closest to expiry, until one more fits
func (c *MemoryCache) makeRoom() {
	if c.cache.ItemCount() < c.maxItems {
		return
	}
	c.cache.DeleteExpired()

	for c.cache.ItemCount() >= c.maxItems {
		oldestKey := ""
		var oldest int64
		for k, item := range c.cache.Items() {
			if oldestKey == "" || item.Expiration < oldest {
				oldestKey, oldest = k, item.Expiration
			}
		}
		if oldestKey == "" {
			return
		}
		c.cache.Delete(oldestKey)
	}
}

// Len returns the number of cached items, including expired ones not yet cleaned up
func (c *MemoryCache) Len() int {
	return c.cache.ItemCount()
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(key string) error {
	c.cache.Delete(key)
	return nil
}

// Clear removes all values from the cache
func (c *MemoryCache) Clear() error {
	c.cache.Flush()
	return nil
}
