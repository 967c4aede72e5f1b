package core

import (
	"slices"
	"sync"

	"github.com/huangsam/csmstyle/internal/contract"
	"github.com/huangsam/csmstyle/schema"
)

// HighlightReconciler keeps line highlights in step with check results.
// Ranges for documents without a visible view are held back until one
// becomes visible. Only the latest ranges per document are kept.
type HighlightReconciler struct {
	mu      sync.Mutex
	views   contract.ViewProvider
	pending map[string][]schema.Range
}

// NewHighlightReconciler creates a reconciler over the given views.
func NewHighlightReconciler(views contract.ViewProvider) *HighlightReconciler {
	return &HighlightReconciler{
		views:   views,
		pending: make(map[string][]schema.Range),
	}
}

// Apply shows ranges on the document's visible view, replacing what was
// there. Without a visible view the ranges are stored as pending.
func (h *HighlightReconciler) Apply(path string, ranges []schema.Range) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if view, ok := h.views.VisibleView(path); ok {
		delete(h.pending, path)
		view.ClearHighlights()
		view.SetHighlights(slices.Clone(ranges))
		return
	}
	h.pending[path] = slices.Clone(ranges)
}

// Clear removes highlights from the document's visible view, if any, and
// always drops its pending ranges.
func (h *HighlightReconciler) Clear(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.pending, path)
	if view, ok := h.views.VisibleView(path); ok {
		view.ClearHighlights()
	}
}

// OnVisibleViewsChanged flushes pending ranges onto views that just became visible.
func (h *HighlightReconciler) OnVisibleViewsChanged(views []contract.View) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, view := range views {
		ranges, ok := h.pending[view.Path()]
		if !ok {
			continue
		}
		view.ClearHighlights()
		view.SetHighlights(ranges)
		delete(h.pending, view.Path())
	}
}

// Pending returns the held-back ranges for a document.
func (h *HighlightReconciler) Pending(path string) ([]schema.Range, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ranges, ok := h.pending[path]
	return slices.Clone(ranges), ok
}

// PendingCount returns how many documents have held-back ranges.
func (h *HighlightReconciler) PendingCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pending)
}

// Dispose drops every pending entry.
func (h *HighlightReconciler) Dispose() {
	h.mu.Lock()
	defer h.mu.Unlock()
	clear(h.pending)
}
