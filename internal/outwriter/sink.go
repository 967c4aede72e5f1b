package outwriter

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/huangsam/csmstyle/internal/contract"
	"github.com/huangsam/csmstyle/schema"
)

// TerminalSink renders every published diagnostics list as it arrives and
// forwards it to an inner sink.
type TerminalSink struct {
	mu    sync.Mutex
	inner contract.DiagnosticsSink
	docs  contract.DocumentProvider
	w     io.Writer
	cfg   *contract.Config
	now   contract.Clock
}

var _ contract.DiagnosticsSink = &TerminalSink{} // Compile-time check

// NewTerminalSink creates a sink that prints to w. inner may be nil.
func NewTerminalSink(inner contract.DiagnosticsSink, docs contract.DocumentProvider, w io.Writer, cfg *contract.Config) *TerminalSink {
	return &TerminalSink{inner: inner, docs: docs, w: w, cfg: cfg, now: time.Now}
}

// Set prints the document's diagnostics, then forwards them.
func (s *TerminalSink) Set(path string, diags []schema.Diagnostic) {
	if s.inner != nil {
		s.inner.Set(path, diags)
	}
	doc, ok := s.docs.FindDocument(path)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	shown := path
	if s.cfg.WorkspaceRoot != "" {
		shown = contract.RelativePath(s.cfg.WorkspaceRoot, path)
	}
	stamp := s.now().Format("15:04:05")
	if len(diags) == 0 {
		_, _ = fmt.Fprintf(s.w, "[%s] %s: clean\n", stamp, shown)
		return
	}
	_, _ = fmt.Fprintf(s.w, "[%s] %s: %s\n", stamp, shown, Pluralize(len(diags), "finding"))
	_ = WriteDocumentDiagnostics(s.w, doc, diags, s.cfg)
}

// Delete forwards the removal.
func (s *TerminalSink) Delete(path string) {
	if s.inner != nil {
		s.inner.Delete(path)
	}
}
