package cache

import "sync"

// AssetCache caches asset-existence lookups keyed by package path.
// Remote hosts pay a round trip per probe, and body resolution probes
// the same hair and clothing paths across many sequences in a run.
type AssetCache struct {
	mu     sync.RWMutex
	assets map[string]bool
}

// NewAssetCache creates an empty AssetCache.
func NewAssetCache() *AssetCache {
	return &AssetCache{
		assets: make(map[string]bool),
	}
}

// Get retrieves a cached existence result by package path.
func (c *AssetCache) Get(path string) (exists, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	exists, ok = c.assets[path]
	return exists, ok
}

// Set stores an existence result by package path.
func (c *AssetCache) Set(path string, exists bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.assets[path] = exists
}

// Delete removes a cached path, forcing the next probe through.
func (c *AssetCache) Delete(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.assets, path)
}

// Reset clears the cache.
func (c *AssetCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.assets = make(map[string]bool)
}

// Len reports the number of cached paths.
func (c *AssetCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.assets)
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Set(v int) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

func (c *SafeCounter) Inc() {
	c.mu.Lock()
	c.v++
	c.mu.Unlock()
}
