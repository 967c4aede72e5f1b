package core

import (
	"bytes"
	"context"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/go-hclog"
	"github.com/huangsam/csmstyle/internal/contract"
	"github.com/huangsam/csmstyle/schema"
	"golang.org/x/sync/errgroup"
)

// CheckerOptions configures a Checker.
type CheckerOptions struct {
	Runner       contract.ToolRunner
	Tools        []schema.ToolSpec
	ConfigDir    string
	Language     string        // defaults to python
	Timeout      time.Duration // per tool, 0 disables
	Suppressions *SuppressionStore
	Explainer    *RuleExplainer        // optional
	History      contract.HistoryStore // optional
	Logger       hclog.Logger
}

// Checker runs every configured tool against a document and turns their
// output into diagnostics and highlight ranges.
//
// Overlapping checks of the same document are not sequenced: whichever
// finishes last is what callers publish.
type Checker struct {
	runner       contract.ToolRunner
	tools        []schema.ToolSpec
	configDir    string
	language     string
	timeout      time.Duration
	suppressions *SuppressionStore
	explainer    *RuleExplainer
	history      contract.HistoryStore
	logger       hclog.Logger
	now          contract.Clock
}

// toolOutput is what one tool produced during a check.
type toolOutput struct {
	stdout []byte
	failed bool
}

// NewChecker creates a Checker from its options.
func NewChecker(opts CheckerOptions) *Checker {
	if opts.Language == "" {
		opts.Language = schema.CheckedLanguage
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if opts.Suppressions == nil {
		opts.Suppressions = NewSuppressionStore(nil, "", opts.Logger)
	}
	return &Checker{
		runner:       opts.Runner,
		tools:        opts.Tools,
		configDir:    opts.ConfigDir,
		language:     opts.Language,
		timeout:      opts.Timeout,
		suppressions: opts.Suppressions,
		explainer:    opts.Explainer,
		history:      opts.History,
		logger:       opts.Logger,
		now:          time.Now,
	}
}

// Language returns the language id this checker accepts.
func (c *Checker) Language() string {
	return c.language
}

// MissingTools lists configured tools whose command cannot be found.
func (c *Checker) MissingTools() []string {
	var missing []string
	for _, tool := range c.tools {
		if !c.runner.Available(tool.Command) {
			missing = append(missing, tool.Name)
		}
	}
	return missing
}

// CheckDocument runs all tools concurrently against doc and returns the merged
// result. It returns nil when doc is not in the checked language. Tool failures
// never fail the check; they only reduce the findings.
func (c *Checker) CheckDocument(ctx context.Context, doc contract.Document) *schema.CheckResult {
	if doc.LanguageID() != c.language {
		return nil
	}
	start := c.now()
	path := doc.Path()

	outputs := make([]toolOutput, len(c.tools))
	var g errgroup.Group
	for i, tool := range c.tools {
		g.Go(func() error {
			outputs[i] = c.runTool(ctx, tool, path)
			return nil // tool errors are non-fatal
		})
	}
	_ = g.Wait()

	result := &schema.CheckResult{
		Path:            path,
		Diagnostics:     []schema.Diagnostic{},
		HighlightRanges: []schema.Range{},
	}
	for i, out := range outputs {
		if out.failed {
			result.FailedTools = append(result.FailedTools, c.tools[i].Name)
		}
		for _, finding := range ParseOutput(out.stdout) {
			if c.suppressions.Contains(path, finding.Line, finding.Message) {
				result.Suppressed++
				continue
			}
			text, ok := doc.LineText(finding.Line)
			if !ok {
				c.logger.Debug("dropping finding past end of document",
					"tool", c.tools[i].Name, "path", path, "line", finding.Line+1)
				continue
			}
			rng := schema.FullLineRange(finding.Line, utf8.RuneCountInString(text))
			result.Diagnostics = append(result.Diagnostics, c.explainer.NewDiagnostic(rng, finding.Message))
			result.HighlightRanges = append(result.HighlightRanges, rng)
		}
	}

	c.record(result, start)
	return result
}

// runTool runs one tool with the per-tool timeout. A tool that errors without
// printing anything counts as failed.
func (c *Checker) runTool(ctx context.Context, tool schema.ToolSpec, path string) toolOutput {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	inv := contract.ToolInvocation{
		Name:    tool.Name,
		Command: tool.Command,
		Args:    contract.ExpandToolArgs(tool.Args, path, c.configDir),
		Dir:     filepath.Dir(path),
	}
	out, err := c.runner.Run(ctx, inv)
	if err != nil {
		c.logger.Debug("tool returned an error", "tool", tool.Name, "path", path, "error", err)
		return toolOutput{stdout: out, failed: len(bytes.TrimSpace(out)) == 0}
	}
	return toolOutput{stdout: out}
}

// record stores a summary of the check in history, if configured.
func (c *Checker) record(result *schema.CheckResult, start time.Time) {
	if c.history == nil {
		return
	}
	names := make([]string, len(c.tools))
	for i, tool := range c.tools {
		names[i] = tool.Name
	}
	run := schema.CheckRun{
		Path:        result.Path,
		StartTime:   start,
		EndTime:     c.now(),
		Tools:       names,
		FailedTools: result.FailedTools,
		Findings:    len(result.Diagnostics),
		Suppressed:  result.Suppressed,
	}
	if _, err := c.history.RecordCheck(run); err != nil {
		c.logger.Warn("failed to record check history", "path", result.Path, "error", err)
	}
}
