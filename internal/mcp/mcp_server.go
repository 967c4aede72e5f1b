// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/csmstyle/core"
	"github.com/huangsam/csmstyle/internal/contract"
	"github.com/huangsam/csmstyle/internal/workspace"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the CSM Style MCP server without starting it.
// The session must be built over ws with diags as its sink.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, session *core.Session, ws *workspace.Workspace, diags *workspace.Collection) *server.MCPServer {
	s := server.NewMCPServer(
		"CSM Style Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		session: session,
		ws:      ws,
		diags:   diags,
	}

	// --- 1. Tool: check_file ---
	s.AddTool(mcp.NewTool("check_file",
		mcp.WithDescription("Run the configured style tools against a Python file and return its diagnostics."),
		mcp.WithString("path", mcp.Description("Path to the file, absolute or relative to the workspace."), mcp.Required()),
	), h.handleCheckFile)

	// --- 2. Tool: ignore_violation ---
	s.AddTool(mcp.NewTool("ignore_violation",
		mcp.WithDescription("Ignore one style violation so it is no longer reported."),
		mcp.WithString("path", mcp.Description("Path to the file containing the violation."), mcp.Required()),
		mcp.WithNumber("line", mcp.Description("One-based line number of the violation."), mcp.Required()),
		mcp.WithString("message", mcp.Description("Violation message exactly as reported, without any explanation."), mcp.Required()),
	), h.handleIgnoreViolation)

	// --- 3. Tool: list_ignored ---
	s.AddTool(mcp.NewTool("list_ignored",
		mcp.WithDescription("List every ignored violation in the workspace."),
	), h.handleListIgnored)

	// --- 4. Tool: restore_ignored ---
	s.AddTool(mcp.NewTool("restore_ignored",
		mcp.WithDescription("Restore ignored violations so they are reported again."),
		mcp.WithArray("keys", mcp.Description("Keys of the ignored violations to restore, as returned by list_ignored."), mcp.WithStringItems(), mcp.Required()),
	), h.handleRestoreIgnored)

	// --- 5. Tool: clear_ignored ---
	s.AddTool(mcp.NewTool("clear_ignored",
		mcp.WithDescription("Restore every ignored violation in the workspace."),
		mcp.WithBoolean("confirm", mcp.Description("Must be true to clear."), mcp.Required()),
	), h.handleClearIgnored)

	// --- 6. Tool: code_actions ---
	s.AddTool(mcp.NewTool("code_actions",
		mcp.WithDescription("List the ignore quick fixes available for a checked file."),
		mcp.WithString("path", mcp.Description("Path to a file previously passed to check_file."), mcp.Required()),
	), h.handleCodeActions)

	return s
}

// StartMCPServer starts the CSM Style MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, session *core.Session, ws *workspace.Workspace, diags *workspace.Collection) error {
	s := NewMCPServer(baseCfg, session, ws, diags)
	return server.ServeStdio(s)
}
