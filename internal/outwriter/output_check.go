package outwriter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/huangsam/csmstyle/internal/contract"
	"github.com/huangsam/csmstyle/schema"
)

// DocumentResult pairs a check result with the document it was produced for.
type DocumentResult struct {
	Document contract.Document
	Result   *schema.CheckResult
}

// checkSummary is the JSON envelope for a batch of check results.
type checkSummary struct {
	Files       int                   `json:"files"`
	Findings    int                   `json:"findings"`
	Suppressed  int                   `json:"suppressed"`
	DurationMs  int64                 `json:"duration_ms"`
	Results     []*schema.CheckResult `json:"results"`
	FailedTools []string              `json:"failed_tools,omitempty"`
}

// WriteCheckResults outputs check results, dispatching based on the output format configured.
func WriteCheckResults(results []DocumentResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summarize(results, duration))
		}, "Wrote JSON")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCheckText(w, results, cfg, duration)
		}, "Wrote diagnostics")
	}
}

// summarize totals a batch of results.
func summarize(results []DocumentResult, duration time.Duration) checkSummary {
	summary := checkSummary{
		Files:      len(results),
		DurationMs: duration.Milliseconds(),
		Results:    make([]*schema.CheckResult, 0, len(results)),
	}
	seen := make(map[string]struct{})
	for _, r := range results {
		summary.Findings += len(r.Result.Diagnostics)
		summary.Suppressed += r.Result.Suppressed
		summary.Results = append(summary.Results, r.Result)
		for _, name := range r.Result.FailedTools {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			summary.FailedTools = append(summary.FailedTools, name)
		}
	}
	return summary
}

// writeCheckText prints each document's diagnostics followed by a summary line.
func writeCheckText(w io.Writer, results []DocumentResult, cfg *contract.Config, duration time.Duration) error {
	for _, r := range results {
		if err := WriteDocumentDiagnostics(w, r.Document, r.Result.Diagnostics, cfg); err != nil {
			return err
		}
	}
	summary := summarize(results, duration)
	if len(summary.FailedTools) > 0 {
		_, _ = contract.WarningColor.Fprintf(w, "⚠ Tools produced no output: %s\n", strings.Join(summary.FailedTools, ", "))
	}
	_, err := fmt.Fprintf(w, "Checked %s in %s: %s, %d ignored\n",
		Pluralize(summary.Files, "file"),
		duration.Round(time.Millisecond),
		Pluralize(summary.Findings, "finding"),
		summary.Suppressed)
	return err
}

// WriteDocumentDiagnostics prints the diagnostics of one document, each
// followed by its highlighted source line and any explanation.
func WriteDocumentDiagnostics(w io.Writer, doc contract.Document, diags []schema.Diagnostic, cfg *contract.Config) error {
	path := doc.Path()
	if cfg != nil && cfg.WorkspaceRoot != "" {
		path = contract.RelativePath(cfg.WorkspaceRoot, path)
	}
	for _, diag := range diags {
		line := diag.Range.Start.Line
		location := contract.LocationColor.Sprintf("%s:%d:%d", path, line+1, diag.Range.Start.Character+1)
		source := diag.Source
		if diag.Code != "" {
			source += " " + diag.Code
		}
		if _, err := fmt.Fprintf(w, "%s: %s %s %s\n",
			location,
			contract.ErrorColor.Sprint(string(diag.Severity)),
			diag.OriginalMessage(),
			contract.SourceColor.Sprintf("[%s]", source)); err != nil {
			return err
		}
		if text, ok := doc.LineText(line); ok {
			_, _ = fmt.Fprintf(w, "%6d | %s\n", line+1, contract.HighlightColor.Sprint(text))
		}
		if _, explanation, ok := strings.Cut(diag.Message, schema.ExplanationSeparator); ok {
			for _, row := range strings.Split(explanation, "\n") {
				if row == "" {
					continue
				}
				_, _ = fmt.Fprintf(w, "       %s\n", row)
			}
		}
	}
	return nil
}

// CountFindings totals the diagnostics of a batch.
func CountFindings(results []DocumentResult) int {
	total := 0
	for _, r := range results {
		total += len(r.Result.Diagnostics)
	}
	return total
}
