package query

import (
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Stats counts cache lookups. Misses are computations, hits are lookups
// answered from memory.
type Stats struct {
	Hits   uint64
	Misses uint64
	Size   int
}

// Cache memoizes query results for the lifetime of an Engine. Values are
// shared between callers and must not be modified. Concurrent lookups of the
// same key compute the value once.
type Cache struct {
	mu      sync.Mutex
	entries map[string]any
	hits    uint64
	misses  uint64
	group   singleflight.Group
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: map[string]any{}}
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Size: len(c.entries)}
}

func (c *Cache) lookup(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return v, ok
}

func (c *Cache) store(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.misses++
	c.entries[key] = v
}

// memo returns the cached value for key, computing it with fn on a miss.
// Errors are returned to every waiting caller but never cached. A nil cache
// always computes.
func memo[T any](c *Cache, key string, fn func() (T, error)) (T, error) {
	if c == nil {
		return fn()
	}
	if v, ok := c.lookup(key); ok {
		return v.(T), nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		v, err := fn()
		if err != nil {
			return nil, err
		}
		c.store(key, v)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// cached is memo for computations that cannot fail.
func cached[T any](c *Cache, key string, fn func() T) T {
	v, _ := memo(c, key, func() (T, error) { return fn(), nil })
	return v
}

func cacheKey(op string, args ...string) string {
	return op + "\x00" + strings.Join(args, "\x00")
}
