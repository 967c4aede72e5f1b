package core

import (
	"strings"

	"github.com/huangsam/csmstyle/schema"
)

// CodeActions offers an ignore quick fix for each of our diagnostics.
// Diagnostics from other sources are skipped.
func CodeActions(path string, diagnostics []schema.Diagnostic) []schema.CodeAction {
	var actions []schema.CodeAction
	for _, diag := range diagnostics {
		if diag.Source != schema.SourceTag {
			continue
		}
		original := diag.OriginalMessage()
		title, _, _ := strings.Cut(original, "\n")
		actions = append(actions, schema.CodeAction{
			Title:      "Ignore: " + title,
			Command:    schema.IgnoreViolationCommand,
			Path:       path,
			Line:       diag.Range.Start.Line,
			Message:    original,
			Diagnostic: diag,
		})
	}
	return actions
}
