package data

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"time"

	"gridpulse/internal/model"
)

// cacheEntry is one cached raw feed.
type cacheEntry struct {
	records   []model.RawPriceRecord
	expiresAt time.Time
}

// FeedCache provides in-memory TTL caching for raw feed responses.
//
// Caching provider responses may violate the provider's terms of use, so the
// cache must be explicitly enabled via ENABLE_FEED_CACHE=true and is forced
// off when API_ENV=production. Intended for local development only.
type FeedCache struct {
	mu    sync.RWMutex
	store map[string]*cacheEntry
	ttl   time.Duration
}

var (
	globalCache *FeedCache
	cacheOnce   sync.Once
)

// GetCache returns the global cache instance if caching is enabled, nil
// otherwise.
func GetCache() *FeedCache {
	if os.Getenv("ENABLE_FEED_CACHE") != "true" {
		return nil
	}
	if os.Getenv("API_ENV") == "production" {
		return nil
	}

	cacheOnce.Do(func() {
		ttl := 1 * time.Hour
		if ttlStr := os.Getenv("FEED_CACHE_TTL"); ttlStr != "" {
			if parsed, err := time.ParseDuration(ttlStr); err == nil {
				ttl = parsed
			}
		}

		globalCache = &FeedCache{
			store: make(map[string]*cacheEntry),
			ttl:   ttl,
		}
		go globalCache.cleanup()
	})

	return globalCache
}

// Get retrieves a cached feed if present and not expired.
func (c *FeedCache) Get(key string) ([]model.RawPriceRecord, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.store[key]
	if !exists || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.records, true
}

// Set stores a feed in the cache.
func (c *FeedCache) Set(key string, records []model.RawPriceRecord) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[key] = &cacheEntry{
		records:   records,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Clear removes all entries.
func (c *FeedCache) Clear() {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store = make(map[string]*cacheEntry)
}

func (c *FeedCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		now := time.Now()
		for key, entry := range c.store {
			if now.After(entry.expiresAt) {
				delete(c.store, key)
			}
		}
		c.mu.Unlock()
	}
}

func cacheKey(params QueryParams) string {
	keyStr := fmt.Sprintf("%s:%s:%s:%s",
		params.DatasetID,
		params.LocationID,
		params.Date.Format("2006-01-02"),
		params.Timezone,
	)
	hash := sha256.Sum256([]byte(keyStr))
	return hex.EncodeToString(hash[:])
}
