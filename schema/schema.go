// Package schema has the data types shared across csmstyle.
package schema

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Position is a zero-based line and character offset in a document.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a span between two positions in a document.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// FullLineRange returns a range covering the whole text of a line.
func FullLineRange(line, length int) Range {
	return Range{
		Start: Position{Line: line, Character: 0},
		End:   Position{Line: line, Character: length},
	}
}

// Finding is one accepted line of tool output.
type Finding struct {
	Path         string `json:"path"`          // checked document path
	ReportedPath string `json:"reported_path"` // path prefix as printed by the tool
	Line         int    `json:"line"`          // zero-based
	Column       int    `json:"column"`        // as reported, not part of identity
	Message      string `json:"message"`
	Tool         string `json:"tool,omitempty"`
}

// Diagnostic is a finding as published to the editor.
type Diagnostic struct {
	Range    Range    `json:"range"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Source   string   `json:"source"`
	Code     string   `json:"code,omitempty"`
}

// OriginalMessage strips any explanation text appended to the tool message.
func (d Diagnostic) OriginalMessage() string {
	msg, _, _ := strings.Cut(d.Message, ExplanationSeparator)
	return msg
}

// CheckResult is the outcome of one orchestrated check of a document.
// HighlightRanges is parallel to Diagnostics.
type CheckResult struct {
	Path            string       `json:"path"`
	Diagnostics     []Diagnostic `json:"diagnostics"`
	HighlightRanges []Range      `json:"highlight_ranges"`
	Suppressed      int          `json:"suppressed"`
	FailedTools     []string     `json:"failed_tools,omitempty"`
}

// ViolationEntry is a decoded suppression key.
type ViolationEntry struct {
	Key     string `json:"key"`
	Path    string `json:"path"`
	Line    int    `json:"line"` // zero-based
	Message string `json:"message"`
}

// Label returns the short "file:line" label shown in pickers, with a one-based line.
func (v ViolationEntry) Label() string {
	return fmt.Sprintf("%s:%d", filepath.Base(v.Path), v.Line+1)
}

// CodeAction is a quick fix offered for a diagnostic.
type CodeAction struct {
	Title      string     `json:"title"`
	Command    CommandID  `json:"command"`
	Path       string     `json:"path"`
	Line       int        `json:"line"`
	Message    string     `json:"message"`
	Diagnostic Diagnostic `json:"diagnostic"`
}

// Arguments returns the positional arguments for the action's command.
func (a CodeAction) Arguments() []any {
	return []any{a.Path, a.Line, a.Message}
}

// ToolSpec describes one external style-checking tool.
// Args may reference {file} and {config_dir}.
type ToolSpec struct {
	Name    string   `mapstructure:"name" json:"name"`
	Command string   `mapstructure:"command" json:"command"`
	Args    []string `mapstructure:"args" json:"args"`
}

// RuleExplanation is the long-form description of a tool rule code.
type RuleExplanation struct {
	Code        string `yaml:"code" json:"code"`
	Description string `yaml:"description" json:"description"`
	Rationale   string `yaml:"rationale" json:"rationale"`
	CSMRelation string `yaml:"csmRelation" json:"csmRelation"`
}
