// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/csmstyle/schema"
)

// ToolInvocation is one external tool run against one document.
type ToolInvocation struct {
	Name    string
	Command string
	Args    []string
	Dir     string // working directory, the checked document's folder
}

// ToolRunner executes style-checking tools.
// This allows the check logic to be tested without any real linters installed.
type ToolRunner interface {
	// Run executes the tool and returns its standard output. When the tool
	// fails, the output it produced before failing is still returned along
	// with the error.
	Run(ctx context.Context, inv ToolInvocation) ([]byte, error)

	// Available reports whether the command can be found.
	Available(command string) bool
}

// StoreManager defines the interface for managing persistence stores.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetStateStore() StateStore
	GetHistoryStore() HistoryStore
}

// StateStore defines the interface for durable key/value workspace state.
type StateStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.StoreStatus, error)
	Close() error
}

// HistoryStore defines the interface for recording completed checks.
type HistoryStore interface {
	// RecordCheck stores a completed check and returns its unique ID
	RecordCheck(run schema.CheckRun) (int64, error)

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllCheckRuns returns every recorded check in insertion order
	GetAllCheckRuns() ([]schema.CheckRunRecord, error)

	// Close closes the underlying connection
	Close() error
}

// Document is an open text document.
type Document interface {
	Path() string
	LanguageID() string
	LineCount() int
	// LineText returns the current text of a zero-based line.
	LineText(line int) (string, bool)
}

// DocumentProvider resolves open documents.
type DocumentProvider interface {
	OpenDocuments() []Document
	FindDocument(path string) (Document, bool)
}

// View is a visible editor for a document.
type View interface {
	Path() string
	SetHighlights(ranges []schema.Range)
	ClearHighlights()
}

// ViewProvider resolves visible views.
type ViewProvider interface {
	VisibleViews() []View
	VisibleView(path string) (View, bool)
}

// DiagnosticsSink receives published diagnostics. Set fully replaces any prior list.
type DiagnosticsSink interface {
	Set(path string, diags []schema.Diagnostic)
	Delete(path string)
}

// Subscription is a handle to an event registration.
type Subscription interface {
	Unsubscribe()
}

// SubscriptionFunc adapts a function to the Subscription interface.
type SubscriptionFunc func()

// Unsubscribe implements the Subscription interface.
func (f SubscriptionFunc) Unsubscribe() { f() }

// Workspace is the editor model driving a session.
type Workspace interface {
	DocumentProvider
	ViewProvider
	OnDidOpen(fn func(Document)) Subscription
	OnDidSave(fn func(Document)) Subscription
	OnDidClose(fn func(Document)) Subscription
	OnDidChangeVisibleViews(fn func([]View)) Subscription
}

// PickItem is one entry offered by a multi-select prompt.
type PickItem struct {
	Label       string
	Description string
	Detail      string
	Value       string
}

// Prompter is the user-facing message and selection surface.
type Prompter interface {
	Info(msg string)
	Confirm(ctx context.Context, msg string) (bool, error)
	PickMany(ctx context.Context, title string, items []PickItem) ([]PickItem, error)
}

// Clock returns the current time. It is swapped out in tests.
type Clock func() time.Time
