package outwriter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/csmstyle/internal/contract"
	"github.com/huangsam/csmstyle/internal/workspace"
	"github.com/huangsam/csmstyle/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	contract.SetColorEnabled(false)
}

func sampleResult(t *testing.T) DocumentResult {
	t.Helper()
	doc := workspace.NewDocument("/w/pkg/a.py", "", "import os\nx=1\n")
	diag := schema.Diagnostic{
		Range:    schema.FullLineRange(1, 3),
		Message:  "E225 missing whitespace around operator" + schema.ExplanationSeparator + "Operators need spaces.",
		Severity: schema.SeverityError,
		Source:   schema.SourceTag,
		Code:     "E225",
	}
	return DocumentResult{
		Document: doc,
		Result: &schema.CheckResult{
			Path:            doc.Path(),
			Diagnostics:     []schema.Diagnostic{diag},
			HighlightRanges: []schema.Range{diag.Range},
			Suppressed:      2,
			FailedTools:     []string{"pylint"},
		},
	}
}

func TestWriteDocumentDiagnostics(t *testing.T) {
	r := sampleResult(t)
	var buf bytes.Buffer
	cfg := &contract.Config{WorkspaceRoot: "/w"}

	require.NoError(t, WriteDocumentDiagnostics(&buf, r.Document, r.Result.Diagnostics, cfg))
	expected := "pkg/a.py:2:1: error E225 missing whitespace around operator [CSM Style E225]\n" +
		"     2 | x=1\n" +
		"       Operators need spaces.\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriteCheckText(t *testing.T) {
	r := sampleResult(t)
	var buf bytes.Buffer
	cfg := &contract.Config{WorkspaceRoot: "/w"}

	require.NoError(t, writeCheckText(&buf, []DocumentResult{r}, cfg, 1500*time.Millisecond))
	out := buf.String()
	assert.Contains(t, out, "pkg/a.py:2:1")
	assert.Contains(t, out, "Tools produced no output: pylint")
	assert.Contains(t, out, "Checked 1 file in 1.5s: 1 finding, 2 ignored\n")
}

func TestWriteCheckResults_JSON(t *testing.T) {
	r := sampleResult(t)
	outFile := filepath.Join(t.TempDir(), "out.json")
	cfg := &contract.Config{Output: schema.JSONOut, OutputFile: outFile}

	require.NoError(t, WriteCheckResults([]DocumentResult{r, r}, cfg, time.Second))

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var summary checkSummary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, 2, summary.Files)
	assert.Equal(t, 2, summary.Findings)
	assert.Equal(t, 4, summary.Suppressed)
	assert.Equal(t, int64(1000), summary.DurationMs)
	assert.Equal(t, []string{"pylint"}, summary.FailedTools, "failed tools are deduplicated")
	assert.Equal(t, 2, CountFindings([]DocumentResult{r, r}))
}

func TestWriteIgnored(t *testing.T) {
	entries := []schema.ViolationEntry{
		{Key: "/w/a.py:0:E501 line too long", Path: "/w/a.py", Line: 0, Message: "E501 line too long"},
		{Key: "/w/b.py:9:W291 trailing whitespace", Path: "/w/b.py", Line: 9, Message: "W291 trailing whitespace"},
	}

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := &contract.Config{WorkspaceRoot: "/w", Width: 120}
		require.NoError(t, writeIgnoredTable(&buf, entries, cfg))
		out := buf.String()
		assert.Contains(t, out, "a.py")
		assert.Contains(t, out, "10")
		assert.Contains(t, out, "W291 trailing whitespace")
		assert.Contains(t, out, "Showing 2 ignored violations")
	})

	t.Run("empty table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeIgnoredTable(&buf, nil, &contract.Config{}))
		assert.Equal(t, "No ignored violations\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		outFile := filepath.Join(t.TempDir(), "ignored.json")
		cfg := &contract.Config{Output: schema.JSONOut, OutputFile: outFile}
		require.NoError(t, NewOutWriter().WriteIgnored(nil, cfg))
		data, err := os.ReadFile(outFile)
		require.NoError(t, err)
		assert.Equal(t, "[]\n", string(data))
	})
}

func TestMaxMessageWidth(t *testing.T) {
	tests := []struct {
		width    int
		expected int
	}{
		{width: 40, expected: 20},
		{width: 120, expected: 52},
		{width: 400, expected: 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, MaxMessageWidth(&contract.Config{Width: tt.width}), "width %d", tt.width)
	}
}

func TestTerminalSink(t *testing.T) {
	ws := workspace.New()
	doc := ws.OpenDocument(workspace.NewDocument("/w/a.py", "", "x=1"))
	inner := workspace.NewCollection()
	var buf bytes.Buffer
	sink := NewTerminalSink(inner, ws, &buf, &contract.Config{WorkspaceRoot: "/w"})
	sink.now = func() time.Time { return time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC) }

	diags := []schema.Diagnostic{{
		Range:    schema.FullLineRange(0, 3),
		Message:  "E225 missing whitespace around operator",
		Severity: schema.SeverityError,
		Source:   schema.SourceTag,
	}}
	sink.Set(doc.Path(), diags)
	sink.Set(doc.Path(), nil)
	sink.Set("/w/closed.py", diags)

	out := buf.String()
	assert.Contains(t, out, "[15:04:05] a.py: 1 finding\n")
	assert.Contains(t, out, "     1 | x=1\n")
	assert.Contains(t, out, "[15:04:05] a.py: clean\n")
	assert.NotContains(t, out, "closed.py")

	got, ok := inner.Get("/w/closed.py")
	require.True(t, ok, "unknown documents are still forwarded")
	assert.Len(t, got, 1)

	sink.Delete(doc.Path())
	_, ok = inner.Get(doc.Path())
	assert.False(t, ok)
}
