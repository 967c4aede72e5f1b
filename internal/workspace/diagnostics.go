package workspace

import (
	"slices"
	"sync"

	"github.com/huangsam/csmstyle/internal/contract"
	"github.com/huangsam/csmstyle/schema"
)

// Collection holds the published diagnostics of every document.
type Collection struct {
	mu    sync.RWMutex
	diags map[string][]schema.Diagnostic
}

var _ contract.DiagnosticsSink = &Collection{} // Compile-time check

// NewCollection creates an empty diagnostics collection.
func NewCollection() *Collection {
	return &Collection{diags: make(map[string][]schema.Diagnostic)}
}

// Set replaces the diagnostics of a document.
func (c *Collection) Set(path string, diags []schema.Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diags[path] = slices.Clone(diags)
}

// Delete drops the diagnostics of a document.
func (c *Collection) Delete(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.diags, path)
}

// Get returns the diagnostics of a document.
func (c *Collection) Get(path string) ([]schema.Diagnostic, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	diags, ok := c.diags[path]
	return slices.Clone(diags), ok
}

// Paths lists documents with published diagnostics, sorted.
func (c *Collection) Paths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	paths := make([]string, 0, len(c.diags))
	for path := range c.diags {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	return paths
}

// Total counts every published diagnostic.
func (c *Collection) Total() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := 0
	for _, diags := range c.diags {
		total += len(diags)
	}
	return total
}
