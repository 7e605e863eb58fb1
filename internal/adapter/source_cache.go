// Package adapter contains the infrastructure adapters for the runic CLI:
// the source cache, the filesystem resolver, the subprocess engine and the
// file-change notifier. It intentionally hides direct os access so the
// domain layer can be tested without touching the disk.
package adapter

import (
	"sync"

	m "runic.dev/pkg/runic/internal/model"
)

// MemorySourceCache is the process-lifetime source cache. Entries are only
// ever added, never removed; re-inserting under the same specifier replaces
// the previous record.
type MemorySourceCache struct {
	mu    sync.RWMutex
	files map[m.Specifier]m.VirtualFile
}

// NewMemorySourceCache constructs an empty cache.
func NewMemorySourceCache() *MemorySourceCache {
	return &MemorySourceCache{files: make(map[m.Specifier]m.VirtualFile)}
}

// Insert upserts a virtual file keyed by its specifier.
func (c *MemorySourceCache) Insert(file m.VirtualFile) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.files[file.Specifier] = file
}

// Lookup returns the cached record for a specifier, if any.
func (c *MemorySourceCache) Lookup(specifier m.Specifier) (m.VirtualFile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	file, ok := c.files[specifier]

	return file, ok
}

// Len reports the number of cached records.
func (c *MemorySourceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.files)
}
