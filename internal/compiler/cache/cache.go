// Package cache provides the shared memo table for model compilation. It is
// keyed by (message identity, output name, rule-variant) and holds either a
// completed definition or an in-progress sentinel that breaks infinite
// recursion on cyclic schemas.
package cache

import (
	"sync"

	"github.com/protomodel-lang/protomodel/internal/compiler/model"
)

// Key identifies one compilation result.
type Key struct {
	FullName   string // schema identity of the message
	OutputName string // requested output name
	SkipRules  bool   // rule-variant flag
}

type entry struct {
	def        *model.Definition
	inProgress bool
}

// Cache is the compilation memo table. A caller may supply one cache to
// share resolved nested definitions across multiple root messages; the
// mutex makes sharing safe when roots are compiled concurrently.
type Cache struct {
	entries map[Key]*entry
	mu      sync.RWMutex
}

// New creates an empty compilation cache.
func New() *Cache {
	return &Cache{
		entries: make(map[Key]*entry),
	}
}

// Get retrieves a completed definition. inProgress is true when the key is
// currently under resolution, which callers must surface as a cyclic
// reference rather than waiting.
func (c *Cache) Get(key Key) (def *model.Definition, inProgress bool, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[key]
	if !exists {
		return nil, false, false
	}
	return e.def, e.inProgress, true
}

// Lookup returns the completed definition cached under key, if any.
func (c *Cache) Lookup(key Key) (*model.Definition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[key]
	if !exists || e.inProgress {
		return nil, false
	}
	return e.def, true
}

// Begin inserts the in-progress sentinel under key, guaranteeing at most
// one concurrent resolution per key. Returns false when the key already
// holds a sentinel or a completed definition.
func (c *Cache) Begin(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		return false
	}
	c.entries[key] = &entry{inProgress: true}
	return true
}

// Complete replaces the sentinel with the finished definition.
func (c *Cache) Complete(key Key, def *model.Definition) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &entry{def: def}
}

// Abort removes the sentinel after a failed resolution so a later retry can
// proceed. A completed definition under the key is left untouched.
func (c *Cache) Abort(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, exists := c.entries[key]; exists && e.inProgress {
		delete(c.entries, key)
	}
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[Key]*entry)
}

// Size returns the number of entries, sentinels included.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Definitions returns all completed definitions keyed by cache key.
func (c *Cache) Definitions() map[Key]*model.Definition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[Key]*model.Definition, len(c.entries))
	for key, e := range c.entries {
		if !e.inProgress {
			result[key] = e.def
		}
	}
	return result
}
