package tui

import (
	"os"
	"sync"
)

// assetCache remembers which image files exist so the frame loop does not
// stat the same paths every tick.
type assetCache struct {
	mu    sync.Mutex
	found map[string]bool
}

func newAssetCache() *assetCache {
	return &assetCache{found: make(map[string]bool)}
}

func (c *assetCache) Exists(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ok, seen := c.found[path]; seen {
		return ok
	}
	_, err := os.Stat(path)
	c.found[path] = err == nil
	return err == nil
}
