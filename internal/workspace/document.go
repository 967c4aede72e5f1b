// Package workspace is the in-process editor model: open documents, visible
// views, published diagnostics and the events that tie them together.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/huangsam/csmstyle/internal/contract"
	"github.com/huangsam/csmstyle/schema"
)

// PlainTextLanguage is the language id of files with no known extension.
const PlainTextLanguage = "plaintext"

// languageByExt maps file extensions to language ids.
var languageByExt = map[string]string{
	".py":  schema.CheckedLanguage,
	".pyi": schema.CheckedLanguage,
	".pyw": schema.CheckedLanguage,
}

// LanguageForPath infers a language id from a file extension.
func LanguageForPath(path string) string {
	if lang, ok := languageByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return PlainTextLanguage
}

// Document is an open text file held in memory.
type Document struct {
	mu         sync.RWMutex
	path       string
	languageID string
	lines      []string
}

var _ contract.Document = &Document{} // Compile-time check

// NewDocument creates a document from text already in memory.
func NewDocument(path, languageID, text string) *Document {
	if languageID == "" {
		languageID = LanguageForPath(path)
	}
	return &Document{path: path, languageID: languageID, lines: splitLines(text)}
}

// LoadDocument reads a document from disk.
func LoadDocument(path string) (*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", abs, err)
	}
	return NewDocument(abs, "", string(data)), nil
}

// splitLines breaks text into lines without their terminators.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// Path returns the absolute file path.
func (d *Document) Path() string { return d.path }

// LanguageID returns the language id.
func (d *Document) LanguageID() string { return d.languageID }

// LineCount returns the number of lines.
func (d *Document) LineCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.lines)
}

// LineText returns the text of a zero-based line.
func (d *Document) LineText(line int) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if line < 0 || line >= len(d.lines) {
		return "", false
	}
	return d.lines[line], true
}

// SetText replaces the whole content.
func (d *Document) SetText(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lines = splitLines(text)
}

// Reload re-reads the content from disk.
func (d *Document) Reload() error {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return fmt.Errorf("failed to reload %s: %w", d.path, err)
	}
	d.SetText(string(data))
	return nil
}
