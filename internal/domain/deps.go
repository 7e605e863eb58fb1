package domain

import (
	"sort"
	"sync"
)

// DepTracker records the local files an execution attempt touches so watch
// mode can follow dependencies discovered at runtime. The supervisor resets
// it before every rebuild; the engine appends to it while running.
type DepTracker struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

// NewDepTracker constructs an empty tracker.
func NewDepTracker() *DepTracker {
	return &DepTracker{paths: make(map[string]struct{})}
}

// Add records paths touched by the current attempt.
func (t *DepTracker) Add(paths ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, path := range paths {
		if path == "" {
			continue
		}

		t.paths[path] = struct{}{}
	}
}

// Reset clears the tracked set. Called before each rebuild so no attempt
// inherits the previous attempt's dependency state.
func (t *DepTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	clear(t.paths)
}

// Paths returns the tracked set in stable order.
func (t *DepTracker) Paths() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	paths := make([]string, 0, len(t.paths))
	for path := range t.paths {
		paths = append(paths, path)
	}

	sort.Strings(paths)

	return paths
}
