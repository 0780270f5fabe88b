// Package cache provides the bounded LRU result cache shared by every query
// operation. Values are fully computed results; a hit bypasses both engines.
package cache

import (
	"encoding/json"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache stores computed query results keyed by operation and parameters.
type Cache interface {
	// Get returns the cached result for key, if present.
	Get(key string) (any, bool)

	// Add stores a result under key, evicting the least recently used entry
	// when the cache is full.
	Add(key string, value any)

	// Len reports the current number of cached entries.
	Len() int

	// Purge drops every entry.
	Purge()
}

type lruCache struct {
	entries *lru.Cache[string, any]
}

// New builds a cache holding at most capacity results. A capacity of zero or
// less disables caching entirely: Get always misses and Add is a no-op.
func New(capacity int) (Cache, error) {
	if capacity <= 0 {
		return noopCache{}, nil
	}
	entries, err := lru.New[string, any](capacity)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &lruCache{entries: entries}, nil
}

func (c *lruCache) Get(key string) (any, bool) { return c.entries.Get(key) }
func (c *lruCache) Add(key string, value any)  { c.entries.Add(key, value) }
func (c *lruCache) Len() int                   { return c.entries.Len() }
func (c *lruCache) Purge()                     { c.entries.Purge() }

// noopCache is the disabled cache.
type noopCache struct{}

func (noopCache) Get(string) (any, bool) { return nil, false }
func (noopCache) Add(string, any)        {}
func (noopCache) Len() int               { return 0 }
func (noopCache) Purge()                 {}

// Key derives the cache key for an operation and its normalized parameters.
// Params must marshal deterministically; all query parameter structs do
// (fixed field order, no maps).
func Key(op string, params any) string {
	if params == nil {
		return op
	}
	raw, err := json.Marshal(params)
	if err != nil {
		// Parameter structs are plain data; marshal cannot fail for them.
		// Fall back to an uncacheable unique-ish key rather than panic.
		return op + ":" + fmt.Sprintf("%+v", params)
	}
	return op + ":" + string(raw)
}
