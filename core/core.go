// Package core has the checking, suppression and command logic for csmstyle.
package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/semgroup"
	"github.com/hashicorp/go-hclog"
	"github.com/huangsam/csmstyle/internal/contract"
	"github.com/huangsam/csmstyle/internal/outwriter"
	"github.com/huangsam/csmstyle/internal/parquet"
	"github.com/huangsam/csmstyle/internal/prompt"
	"github.com/huangsam/csmstyle/internal/workspace"
)

// ExecutorFunc defines the function signature for the command entry points.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// ErrFindingsRemain is returned by ExecuteCheck when any unsuppressed finding is left.
var ErrFindingsRemain = errors.New("unsuppressed style findings remain")

// newToolRunner creates the runner for external tools. Tests replace it.
var newToolRunner = func() contract.ToolRunner {
	return contract.NewLocalToolRunner()
}

// skippedDirs are never descended into when discovering files.
var skippedDirs = map[string]struct{}{
	"__pycache__":   {},
	"node_modules":  {},
	"site-packages": {},
	"venv":          {},
}

// SessionFor assembles a session over ws for cfg, backed by the stores in mgr.
// mgr may be nil, in which case suppressions live in memory and no history is kept.
func SessionFor(cfg *contract.Config, mgr contract.StoreManager, ws contract.Workspace, sink contract.DiagnosticsSink, prompter contract.Prompter) *Session {
	logger := contract.NewLogger("csmstyle")
	suppressions, checker := checkerFor(cfg, mgr, logger)
	return NewSession(SessionOptions{
		Workspace:    ws,
		Sink:         sink,
		Prompter:     prompter,
		Checker:      checker,
		Suppressions: suppressions,
		Workers:      cfg.Workers,
		Logger:       logger,
	})
}

// suppressionsFor creates the workspace's suppression store over the state store in mgr.
func suppressionsFor(cfg *contract.Config, mgr contract.StoreManager, logger hclog.Logger) *SuppressionStore {
	var state contract.StateStore
	if mgr != nil {
		state = mgr.GetStateStore()
	}
	return NewSuppressionStore(state, cfg.WorkspaceRoot, logger.Named("suppress"))
}

// checkerFor builds the suppression store and checker shared by the checking entry points.
func checkerFor(cfg *contract.Config, mgr contract.StoreManager, logger hclog.Logger) (*SuppressionStore, *Checker) {
	var history contract.HistoryStore
	if mgr != nil {
		history = mgr.GetHistoryStore()
	}
	suppressions := suppressionsFor(cfg, mgr, logger)

	var explainer *RuleExplainer
	if cfg.Explanations != "" {
		loaded, err := LoadRuleExplanations(cfg.Explanations)
		if err != nil {
			logger.Warn("continuing without rule explanations", "error", err)
		} else {
			explainer = loaded
			logger.Debug("rule explanations loaded", "rules", len(loaded.Codes()))
		}
	}

	checker := NewChecker(CheckerOptions{
		Runner:       newToolRunner(),
		Tools:        cfg.Tools,
		ConfigDir:    cfg.ConfigDir,
		Language:     cfg.Language,
		Timeout:      cfg.ToolTimeout,
		Suppressions: suppressions,
		Explainer:    explainer,
		History:      history,
		Logger:       logger.Named("check"),
	})
	if missing := checker.MissingTools(); len(missing) > 0 {
		logger.Warn("some tools are not installed and will produce no findings", "tools", strings.Join(missing, ", "))
	}
	return suppressions, checker
}

// ExecuteCheck checks the configured files once and prints the results.
// It returns ErrFindingsRemain when anything is left to fix.
func ExecuteCheck(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	files, err := resolveFiles(cfg)
	if err != nil {
		return err
	}

	logger := contract.NewLogger("csmstyle")
	suppressions, checker := checkerFor(cfg, mgr, logger)
	suppressions.Load()

	docs := make([]*workspace.Document, 0, len(files))
	for _, file := range files {
		doc, err := workspace.LoadDocument(file)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", file, err)
		}
		docs = append(docs, doc)
	}

	results := make([]outwriter.DocumentResult, len(docs))
	sg := semgroup.NewGroup(ctx, int64(cfg.Workers))
	for i, doc := range docs {
		sg.Go(func() error {
			results[i] = outwriter.DocumentResult{Document: doc, Result: checker.CheckDocument(ctx, doc)}
			return nil
		})
	}
	if err := sg.Wait(); err != nil {
		return fmt.Errorf("check interrupted: %w", err)
	}

	checked := results[:0]
	for _, r := range results {
		if r.Result != nil {
			checked = append(checked, r)
		}
	}
	if err := outwriter.NewOutWriter().WriteCheck(checked, cfg, time.Since(start)); err != nil {
		return err
	}
	if outwriter.CountFindings(checked) > 0 {
		return ErrFindingsRemain
	}
	return nil
}

// ExecuteWatch opens and shows the configured files, then rechecks each one
// whenever it is written until ctx is cancelled.
func ExecuteWatch(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	files, err := resolveFiles(cfg)
	if err != nil {
		return err
	}

	ws := workspace.New()
	sink := outwriter.NewTerminalSink(workspace.NewCollection(), ws, os.Stdout, cfg)
	session := SessionFor(cfg, mgr, ws, sink, prompt.ForTerminal(cfg.Yes))
	defer session.Close()

	for _, file := range files {
		if _, err := ws.Open(file); err != nil {
			return fmt.Errorf("failed to open %s: %w", file, err)
		}
	}
	ws.Show(files...)

	watcher, err := workspace.NewWatcher(ws, cfg.Debounce, contract.NewLogger("csmstyle.watch"))
	if err != nil {
		return err
	}
	if err := session.Start(ctx); err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	fmt.Printf("Watching %s for changes. Press Ctrl+C to stop.\n", outwriter.Pluralize(len(files), "file"))
	<-ctx.Done()
	return nil
}

// ExecuteIgnoreAdd ignores one violation. line is one-based, as printed by check.
func ExecuteIgnoreAdd(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, path string, line int, message string) error {
	if line < 1 {
		return fmt.Errorf("line must be at least 1 (received %d)", line)
	}
	if strings.TrimSpace(message) == "" {
		return errors.New("message cannot be empty")
	}
	return withCommands(ctx, cfg, mgr, func(c *Commands) error {
		return c.IgnoreViolation(ctx, resolvePath(cfg, path), line-1, message)
	})
}

// ExecuteIgnoreList prints every ignored violation in the workspace.
func ExecuteIgnoreList(_ context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	suppressions := suppressionsFor(cfg, mgr, contract.NewLogger("csmstyle"))
	suppressions.Load()
	return outwriter.NewOutWriter().WriteIgnored(suppressions.Entries(), cfg)
}

// ExecuteIgnoreManage lets the user pick ignored violations to restore.
func ExecuteIgnoreManage(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	return withCommands(ctx, cfg, mgr, func(c *Commands) error {
		return c.ManageIgnored(ctx)
	})
}

// ExecuteIgnoreClear restores every ignored violation after confirmation.
func ExecuteIgnoreClear(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	return withCommands(ctx, cfg, mgr, func(c *Commands) error {
		return c.ClearAllIgnored(ctx)
	})
}

// ExecuteIgnoreExport writes every ignored violation to a Parquet file.
func ExecuteIgnoreExport(_ context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	if cfg.OutputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	suppressions := suppressionsFor(cfg, mgr, contract.NewLogger("csmstyle"))
	suppressions.Load()
	entries := suppressions.Entries()
	if len(entries) == 0 {
		return errors.New("no ignored violations found to export")
	}
	if err := parquet.WriteIgnoredViolationsParquet(parquet.ConvertViolationEntries(entries), cfg.OutputFile); err != nil {
		return fmt.Errorf("failed to write ignored violations: %w", err)
	}
	fmt.Printf("Exported %s to: %s\n", outwriter.Pluralize(len(entries), "ignored violation"), cfg.OutputFile)
	return nil
}

// withCommands runs fn against the commands of a started session with no
// open documents.
func withCommands(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, fn func(*Commands) error) error {
	ws := workspace.New()
	session := SessionFor(cfg, mgr, ws, workspace.NewCollection(), prompt.ForTerminal(cfg.Yes))
	defer session.Close()
	if err := session.Start(ctx); err != nil {
		return err
	}
	return fn(session.Commands())
}

// resolvePath makes path absolute against the workspace root.
func resolvePath(cfg *contract.Config, path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.WorkspaceRoot, path)
	}
	return filepath.Clean(path)
}

// resolveFiles returns the configured files, or every file of the checked
// language under the workspace root when none were given.
func resolveFiles(cfg *contract.Config) ([]string, error) {
	if len(cfg.Files) > 0 {
		return cfg.Files, nil
	}
	var files []string
	err := filepath.WalkDir(cfg.WorkspaceRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			_, skip := skippedDirs[d.Name()]
			if path != cfg.WorkspaceRoot && (skip || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if workspace.LanguageForPath(path) == cfg.Language {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan workspace: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files found under %s", cfg.Language, cfg.WorkspaceRoot)
	}
	return files, nil
}

// NewMCPWorkspace returns the workspace and diagnostics collection an MCP
// session is built over, with the session itself.
func NewMCPWorkspace(cfg *contract.Config, mgr contract.StoreManager) (*workspace.Workspace, *workspace.Collection, *Session) {
	ws := workspace.New()
	diags := workspace.NewCollection()
	session := SessionFor(cfg, mgr, ws, diags, prompt.NewAuto(os.Stderr, false))
	return ws, diags, session
}
