package ingest

import "sync"

// Source produces a Dataset for a data root and quarter pattern.
type Source interface {
	Scan(root, quarter string) (*Dataset, error)
}

type cacheKey struct {
	root    string
	quarter string
}

// Cache memoizes scans by (root, quarter). The data directory is treated as
// read-only for the lifetime of the cache. Failed scans are not cached.
type Cache struct {
	src     Source
	mu      sync.Mutex
	entries map[cacheKey]*Dataset
}

// NewCache wraps src.
func NewCache(src Source) *Cache {
	return &Cache{src: src, entries: make(map[cacheKey]*Dataset)}
}

// Scan returns the cached Dataset or loads it from the underlying source.
func (c *Cache) Scan(root, quarter string) (*Dataset, error) {
	key := cacheKey{root: root, quarter: quarter}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ds, ok := c.entries[key]; ok {
		return ds, nil
	}
	ds, err := c.src.Scan(root, quarter)
	if err != nil {
		return nil, err
	}
	c.entries[key] = ds
	return ds, nil
}

// Invalidate drops every cached Dataset.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]*Dataset)
}
