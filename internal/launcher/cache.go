package launcher

import (
	"crypto/md5"
	"fmt"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/chess10kp/lanzador/internal/apps"
)

// SearchCacheEntry represents a cached search result
type SearchCacheEntry struct {
	Results  []*LauncherItem
	Query    string
	AppsHash string
}

// SearchCache provides LRU caching for app search results. The app snapshot
// never changes within a process, so entries only expire by eviction or a
// hash mismatch.
type SearchCache struct {
	cache   *lru.Cache[string, *SearchCacheEntry]
	maxSize int
	hits    int64
	misses  int64
	mu      sync.RWMutex
}

// CacheStats holds cache statistics
type CacheStats struct {
	Size    int     `json:"size"`
	MaxSize int     `json:"max_size"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// NewSearchCache creates a new search cache with the specified maximum size
func NewSearchCache(maxSize int) (*SearchCache, error) {
	if maxSize <= 0 {
		maxSize = 100
	}

	cache, err := lru.New[string, *SearchCacheEntry](maxSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}

	return &SearchCache{
		cache:   cache,
		maxSize: maxSize,
	}, nil
}

// Get retrieves cached results for a query and apps hash
func (c *SearchCache) Get(query, appsHash string) ([]*LauncherItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	key := c.makeKey(query, appsHash)
	if entry, found := c.cache.Get(key); found {
		if entry.AppsHash == appsHash {
			atomic.AddInt64(&c.hits, 1)
			return entry.Results, true
		}
		c.cache.Remove(key)
	}

	atomic.AddInt64(&c.misses, 1)
	return nil, false
}

// Put stores search results in the cache
func (c *SearchCache) Put(query, appsHash string, results []*LauncherItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Add(c.makeKey(query, appsHash), &SearchCacheEntry{
		Results:  results,
		Query:    query,
		AppsHash: appsHash,
	})
}

// GetStats returns current cache statistics
func (c *SearchCache) GetStats() *CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)
	hitRate := float64(0)
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return &CacheStats{
		Size:    c.cache.Len(),
		MaxSize: c.maxSize,
		Hits:    hits,
		Misses:  misses,
		HitRate: hitRate,
	}
}

func (c *SearchCache) makeKey(query, appsHash string) string {
	return fmt.Sprintf("%s:%s", appsHash, query)
}

// ComputeAppsHash generates a hash for the apps list for cache invalidation
func ComputeAppsHash(list []apps.App) string {
	if len(list) == 0 {
		return ""
	}

	h := md5.New()
	for _, app := range list {
		fmt.Fprintf(h, "%s\x00%s\x00%s\n", app.File, app.Name, app.Exec)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
