package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/huangsam/csmstyle/core"
	"github.com/huangsam/csmstyle/internal/contract"
	"github.com/huangsam/csmstyle/internal/prompt"
	"github.com/huangsam/csmstyle/internal/workspace"
	"github.com/huangsam/csmstyle/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	session *core.Session
	ws      *workspace.Workspace
	diags   *workspace.Collection
}

// checkFileResult is the payload returned by check_file.
type checkFileResult struct {
	Path        string              `json:"path"`
	Diagnostics []schema.Diagnostic `json:"diagnostics"`
	Actions     []schema.CodeAction `json:"actions"`
}

// commandResult is the payload returned by the suppression commands.
type commandResult struct {
	Messages []string `json:"messages"`
	Ignored  int      `json:"ignored"`
}

// resolvePath makes a tool path argument absolute against the workspace root.
func (h *toolHandler) resolvePath(p string) string {
	if !filepath.IsAbs(p) {
		p = filepath.Join(h.baseCfg.WorkspaceRoot, p)
	}
	return filepath.Clean(p)
}

// jsonResult marshals v as an indented text result.
func jsonResult(v any) *mcp.CallToolResult {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(jsonData))
}

// commandOutcome reports what a scripted command told the user.
func (h *toolHandler) commandOutcome(p *prompt.Scripted) *mcp.CallToolResult {
	messages := p.Messages()
	if messages == nil {
		messages = []string{}
	}
	return jsonResult(commandResult{Messages: messages, Ignored: h.session.Suppressions().Len()})
}

func (h *toolHandler) handleCheckFile(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := request.GetString("path", "")
	if raw == "" {
		return mcp.NewToolResultError("path is required"), nil
	}
	path := h.resolvePath(raw)
	if lang := workspace.LanguageForPath(path); lang != schema.CheckedLanguage {
		return mcp.NewToolResultError(fmt.Sprintf("%s is not a %s file", raw, schema.CheckedLanguage)), nil
	}

	// Opening raises the check; an already open file is re-read and rechecked
	if _, ok := h.ws.FindDocument(path); ok {
		if err := h.ws.Save(path); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("check failed: %v", err)), nil
		}
	} else if _, err := h.ws.Open(path); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("check failed: %v", err)), nil
	}

	diags, ok := h.diags.Get(path)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no diagnostics were published for %s", raw)), nil
	}
	actions := core.CodeActions(path, diags)
	if actions == nil {
		actions = []schema.CodeAction{}
	}
	return jsonResult(checkFileResult{Path: path, Diagnostics: diags, Actions: actions}), nil
}

func (h *toolHandler) handleIgnoreViolation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := request.GetString("path", "")
	line := request.GetInt("line", 0)
	message := request.GetString("message", "")
	if raw == "" || strings.TrimSpace(message) == "" {
		return mcp.NewToolResultError("path and message are required"), nil
	}
	if line < 1 {
		return mcp.NewToolResultError("line must be at least 1"), nil
	}

	p := prompt.NewScripted(false, nil)
	if err := h.session.CommandsWith(p).IgnoreViolation(ctx, h.resolvePath(raw), line-1, message); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return h.commandOutcome(p), nil
}

func (h *toolHandler) handleListIgnored(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries := h.session.Suppressions().Entries()
	return jsonResult(entries), nil
}

func (h *toolHandler) handleRestoreIgnored(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keys := request.GetStringSlice("keys", nil)
	if len(keys) == 0 {
		return mcp.NewToolResultError("keys must list at least one ignored violation"), nil
	}

	p := prompt.NewScripted(false, prompt.SelectValues(keys...))
	if err := h.session.CommandsWith(p).ManageIgnored(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return h.commandOutcome(p), nil
}

func (h *toolHandler) handleClearIgnored(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !request.GetBool("confirm", false) {
		return mcp.NewToolResultError("confirm must be true to clear ignored violations"), nil
	}

	p := prompt.NewScripted(true, nil)
	if err := h.session.CommandsWith(p).ClearAllIgnored(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return h.commandOutcome(p), nil
}

func (h *toolHandler) handleCodeActions(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := request.GetString("path", "")
	if raw == "" {
		return mcp.NewToolResultError("path is required"), nil
	}
	path := h.resolvePath(raw)
	diags, ok := h.diags.Get(path)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("%s has not been checked", raw)), nil
	}
	actions := core.CodeActions(path, diags)
	if actions == nil {
		actions = []schema.CodeAction{}
	}
	return jsonResult(actions), nil
}
