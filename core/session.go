package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/huangsam/csmstyle/internal/contract"
	"github.com/huangsam/csmstyle/schema"
)

// SessionOptions holds everything a Session is assembled from.
type SessionOptions struct {
	Workspace    contract.Workspace
	Sink         contract.DiagnosticsSink
	Prompter     contract.Prompter
	Checker      *Checker
	Suppressions *SuppressionStore
	Workers      int
	Logger       hclog.Logger
}

// Session ties the core components to a workspace for its lifetime. Every
// event registration is held as a subscription and released by Close.
type Session struct {
	workspace    contract.Workspace
	suppressions *SuppressionStore
	highlights   *HighlightReconciler
	publisher    *Publisher
	commands     *Commands
	logger       hclog.Logger

	mu     sync.Mutex
	subs   []contract.Subscription
	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// NewSession assembles a session. Call Start to begin handling events.
func NewSession(opts SessionOptions) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	highlights := NewHighlightReconciler(opts.Workspace)
	publisher := NewPublisher(opts.Checker, opts.Sink, highlights, opts.Workers, logger)
	return &Session{
		workspace:    opts.Workspace,
		suppressions: opts.Suppressions,
		highlights:   highlights,
		publisher:    publisher,
		commands:     NewCommands(opts.Suppressions, publisher, opts.Workspace, opts.Prompter, logger),
		logger:       logger,
	}
}

// Start loads the suppression set, subscribes to workspace events and
// checks every open document. ctx bounds all checks made by the session.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("session already closed")
	}
	if s.ctx != nil {
		s.mu.Unlock()
		return fmt.Errorf("session already started")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)

	// Events must never see the set before it is loaded
	loaded := s.suppressions.Load()
	s.subs = append(s.subs,
		s.workspace.OnDidOpen(s.handleDocument),
		s.workspace.OnDidSave(s.handleDocument),
		s.workspace.OnDidClose(func(doc contract.Document) {
			s.publisher.Retract(doc.Path())
		}),
		s.workspace.OnDidChangeVisibleViews(s.highlights.OnVisibleViewsChanged),
	)
	s.mu.Unlock()

	s.logger.Info("session started", "ignored", loaded)
	s.publisher.Sweep(s.ctx, s.workspace.OpenDocuments(), false)
	return nil
}

// handleDocument rechecks a document after it was opened or saved.
func (s *Session) handleDocument(doc contract.Document) {
	if s.ctx.Err() != nil {
		return
	}
	s.publisher.Recheck(s.ctx, doc)
}

// Check rechecks an open document by path.
func (s *Session) Check(ctx context.Context, path string) (*schema.CheckResult, error) {
	doc, ok := s.workspace.FindDocument(path)
	if !ok {
		return nil, fmt.Errorf("document %q is not open", path)
	}
	result := s.publisher.Recheck(ctx, doc)
	if result == nil {
		return nil, fmt.Errorf("document %q is not %s", path, s.publisher.Checker().Language())
	}
	return result, nil
}

// Commands returns the command surface bound to this session.
func (s *Session) Commands() *Commands {
	return s.commands
}

// CommandsWith returns a command surface that shares the session's state but
// talks to a different prompter, such as one scripted per request.
func (s *Session) CommandsWith(prompter contract.Prompter) *Commands {
	return NewCommands(s.suppressions, s.publisher, s.workspace, prompter, s.logger)
}

// Suppressions returns the session's suppression set.
func (s *Session) Suppressions() *SuppressionStore {
	return s.suppressions
}

// Highlights returns the session's highlight reconciler.
func (s *Session) Highlights() *HighlightReconciler {
	return s.highlights
}

// Close releases every subscription and cancels in-flight checks. It is safe
// to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, sub := range s.subs {
		sub.Unsubscribe()
	}
	s.subs = nil
	if s.cancel != nil {
		s.cancel()
	}
	s.highlights.Dispose()
}
