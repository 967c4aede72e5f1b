package workspace

import (
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	"github.com/huangsam/csmstyle/internal/contract"
	"github.com/huangsam/csmstyle/schema"
)

// View is a visible editor showing a document, holding its line highlights.
type View struct {
	mu     sync.Mutex
	path   string
	ranges []schema.Range
}

var _ contract.View = &View{} // Compile-time check

// Path returns the path of the shown document.
func (v *View) Path() string { return v.path }

// SetHighlights adds ranges to the view.
func (v *View) SetHighlights(ranges []schema.Range) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ranges = append(v.ranges, ranges...)
}

// ClearHighlights removes every range from the view.
func (v *View) ClearHighlights() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ranges = nil
}

// Highlights returns a copy of the current ranges.
func (v *View) Highlights() []schema.Range {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.ranges)
}

// emitter fans an event out to its subscribers in subscription order.
type emitter[T any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(T)
}

func (e *emitter[T]) subscribe(fn func(T)) contract.Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fns == nil {
		e.fns = make(map[int]func(T))
	}
	id := e.next
	e.next++
	e.fns[id] = fn
	return contract.SubscriptionFunc(func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.fns, id)
	})
}

func (e *emitter[T]) emit(value T) {
	e.mu.Lock()
	ids := make([]int, 0, len(e.fns))
	for id := range e.fns {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(T), len(ids))
	for i, id := range ids {
		fns[i] = e.fns[id]
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn(value)
	}
}

func (e *emitter[T]) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.fns)
}

// Workspace tracks open documents and visible views and raises events when
// they change. Handlers run on the goroutine that caused the event.
type Workspace struct {
	mu      sync.RWMutex
	docs    map[string]*Document
	order   []string
	visible map[string]*View

	opened  emitter[contract.Document]
	saved   emitter[contract.Document]
	closed  emitter[contract.Document]
	visibly emitter[[]contract.View]
}

var _ contract.Workspace = &Workspace{} // Compile-time check

// New creates an empty workspace.
func New() *Workspace {
	return &Workspace{
		docs:    make(map[string]*Document),
		visible: make(map[string]*View),
	}
}

// normalize turns a path into the key documents are stored under.
func normalize(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Open loads a file from disk and opens it. Opening an open file returns the
// existing document without raising an event.
func (w *Workspace) Open(path string) (*Document, error) {
	key := normalize(path)
	w.mu.RLock()
	doc, ok := w.docs[key]
	w.mu.RUnlock()
	if ok {
		return doc, nil
	}

	doc, err := LoadDocument(key)
	if err != nil {
		return nil, err
	}
	return w.OpenDocument(doc), nil
}

// OpenDocument adds an in-memory document and raises the open event.
func (w *Workspace) OpenDocument(doc *Document) *Document {
	w.mu.Lock()
	if existing, ok := w.docs[doc.Path()]; ok {
		w.mu.Unlock()
		return existing
	}
	w.docs[doc.Path()] = doc
	w.order = append(w.order, doc.Path())
	w.mu.Unlock()

	w.opened.emit(doc)
	return doc
}

// Save reloads an open document from disk and raises the save event.
func (w *Workspace) Save(path string) error {
	doc, ok := w.document(path)
	if !ok {
		return fmt.Errorf("document %q is not open", path)
	}
	if err := doc.Reload(); err != nil {
		return err
	}
	w.saved.emit(doc)
	return nil
}

// Close closes a document, hiding its view first.
func (w *Workspace) Close(path string) {
	key := normalize(path)
	w.mu.Lock()
	doc, ok := w.docs[key]
	if !ok {
		w.mu.Unlock()
		return
	}
	delete(w.docs, key)
	w.order = slices.DeleteFunc(w.order, func(p string) bool { return p == key })
	_, wasVisible := w.visible[key]
	delete(w.visible, key)
	views := w.visibleLocked()
	w.mu.Unlock()

	if wasVisible {
		w.visibly.emit(views)
	}
	w.closed.emit(doc)
}

// Show makes open documents visible and raises the visibility event with
// every visible view. Unknown paths are ignored.
func (w *Workspace) Show(paths ...string) {
	w.mu.Lock()
	changed := false
	for _, path := range paths {
		key := normalize(path)
		if _, ok := w.docs[key]; !ok {
			continue
		}
		if _, ok := w.visible[key]; ok {
			continue
		}
		w.visible[key] = &View{path: key}
		changed = true
	}
	views := w.visibleLocked()
	w.mu.Unlock()

	if changed {
		w.visibly.emit(views)
	}
}

// Hide removes documents' views. Their highlights are discarded.
func (w *Workspace) Hide(paths ...string) {
	w.mu.Lock()
	changed := false
	for _, path := range paths {
		key := normalize(path)
		if _, ok := w.visible[key]; ok {
			delete(w.visible, key)
			changed = true
		}
	}
	views := w.visibleLocked()
	w.mu.Unlock()

	if changed {
		w.visibly.emit(views)
	}
}

func (w *Workspace) visibleLocked() []contract.View {
	views := make([]contract.View, 0, len(w.visible))
	for _, path := range w.order {
		if view, ok := w.visible[path]; ok {
			views = append(views, view)
		}
	}
	return views
}

func (w *Workspace) document(path string) (*Document, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	doc, ok := w.docs[normalize(path)]
	return doc, ok
}

// OpenDocuments lists open documents in the order they were opened.
func (w *Workspace) OpenDocuments() []contract.Document {
	w.mu.RLock()
	defer w.mu.RUnlock()
	docs := make([]contract.Document, len(w.order))
	for i, path := range w.order {
		docs[i] = w.docs[path]
	}
	return docs
}

// FindDocument resolves an open document by path.
func (w *Workspace) FindDocument(path string) (contract.Document, bool) {
	doc, ok := w.document(path)
	if !ok {
		return nil, false
	}
	return doc, true
}

// VisibleViews lists visible views in document open order.
func (w *Workspace) VisibleViews() []contract.View {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.visibleLocked()
}

// VisibleView returns the visible view of a document.
func (w *Workspace) VisibleView(path string) (contract.View, bool) {
	view, ok := w.View(path)
	if !ok {
		return nil, false
	}
	return view, true
}

// View returns the concrete visible view of a document.
func (w *Workspace) View(path string) (*View, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	view, ok := w.visible[normalize(path)]
	return view, ok
}

// OnDidOpen subscribes to document open events.
func (w *Workspace) OnDidOpen(fn func(contract.Document)) contract.Subscription {
	return w.opened.subscribe(fn)
}

// OnDidSave subscribes to document save events.
func (w *Workspace) OnDidSave(fn func(contract.Document)) contract.Subscription {
	return w.saved.subscribe(fn)
}

// OnDidClose subscribes to document close events.
func (w *Workspace) OnDidClose(fn func(contract.Document)) contract.Subscription {
	return w.closed.subscribe(fn)
}

// OnDidChangeVisibleViews subscribes to visibility changes.
func (w *Workspace) OnDidChangeVisibleViews(fn func([]contract.View)) contract.Subscription {
	return w.visibly.subscribe(fn)
}

// SubscriberCount returns the number of live event subscriptions.
func (w *Workspace) SubscriberCount() int {
	return w.opened.count() + w.saved.count() + w.closed.count() + w.visibly.count()
}
