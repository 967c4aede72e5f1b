package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/csmstyle/core"
	"github.com/huangsam/csmstyle/internal/contract"
	mcp_internal "github.com/huangsam/csmstyle/internal/mcp"
	"github.com/huangsam/csmstyle/internal/prompt"
	"github.com/huangsam/csmstyle/internal/workspace"
	"github.com/huangsam/csmstyle/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const finding = "E225 missing whitespace around operator"

type fixture struct {
	dir    string
	path   string
	server *server.MCPServer
	diags  *workspace.Collection
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "a.py")
	require.NoError(t, os.WriteFile(path, []byte("x=1\nimport os\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("# notes\n"), 0o644))

	runner := &contract.MockToolRunner{}
	runner.On("Run", mock.Anything, mock.Anything).Return([]byte("a.py:1:2: "+finding+"\n"), nil)

	suppressions := core.NewSuppressionStore(nil, dir, nil)
	checker := core.NewChecker(core.CheckerOptions{
		Runner:       runner,
		Tools:        []schema.ToolSpec{{Name: "pycodestyle", Command: "pycodestyle", Args: []string{"{file}"}}},
		Suppressions: suppressions,
	})
	ws := workspace.New()
	diags := workspace.NewCollection()
	session := core.NewSession(core.SessionOptions{
		Workspace:    ws,
		Sink:         diags,
		Prompter:     prompt.NewScripted(false, nil),
		Checker:      checker,
		Suppressions: suppressions,
		Workers:      2,
	})
	require.NoError(t, session.Start(context.Background()))
	t.Cleanup(session.Close)

	return &fixture{
		dir:    dir,
		path:   path,
		server: mcp_internal.NewMCPServer(&contract.Config{WorkspaceRoot: dir}, session, ws, diags),
		diags:  diags,
	}
}

func (f *fixture) call(t *testing.T, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := f.server.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)
	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	return res
}

func text(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

type outcome struct {
	Messages []string `json:"messages"`
	Ignored  int      `json:"ignored"`
}

func decodeOutcome(t *testing.T, res *mcp.CallToolResult) outcome {
	t.Helper()
	require.False(t, res.IsError, text(res))
	var o outcome
	require.NoError(t, json.Unmarshal([]byte(text(res)), &o))
	return o
}

func TestMCPServer_SuppressionFlow(t *testing.T) {
	f := newFixture(t)

	res := f.call(t, "check_file", map[string]any{"path": "a.py"})
	require.False(t, res.IsError, text(res))
	var checked struct {
		Path        string              `json:"path"`
		Diagnostics []schema.Diagnostic `json:"diagnostics"`
		Actions     []schema.CodeAction `json:"actions"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(res)), &checked))
	assert.Equal(t, f.path, checked.Path)
	require.Len(t, checked.Diagnostics, 1)
	assert.Equal(t, schema.FullLineRange(0, 3), checked.Diagnostics[0].Range)
	require.Len(t, checked.Actions, 1)
	assert.Equal(t, "Ignore: "+finding, checked.Actions[0].Title)

	o := decodeOutcome(t, f.call(t, "ignore_violation", map[string]any{
		"path": "a.py", "line": 1.0, "message": finding,
	}))
	assert.Equal(t, []string{core.MsgViolationIgnored}, o.Messages)
	assert.Equal(t, 1, o.Ignored)
	published, _ := f.diags.Get(f.path)
	assert.Empty(t, published, "ignoring rechecks the open file")

	res = f.call(t, "list_ignored", nil)
	require.False(t, res.IsError)
	var entries []schema.ViolationEntry
	require.NoError(t, json.Unmarshal([]byte(text(res)), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, core.ViolationKey(f.path, 0, finding), entries[0].Key)

	o = decodeOutcome(t, f.call(t, "restore_ignored", map[string]any{"keys": []any{entries[0].Key}}))
	assert.Equal(t, []string{"Restored 1 ignored violation(s)"}, o.Messages)
	assert.Zero(t, o.Ignored)
	published, _ = f.diags.Get(f.path)
	assert.Len(t, published, 1, "restoring rechecks the file")

	res = f.call(t, "code_actions", map[string]any{"path": f.path})
	require.False(t, res.IsError)
	assert.Contains(t, text(res), "Ignore: "+finding)
}

func TestMCPServer_IgnoreKeepsMessage(t *testing.T) {
	f := newFixture(t)

	decodeOutcome(t, f.call(t, "ignore_violation", map[string]any{
		"path": "a.py", "line": 2.0, "message": "  " + finding,
	}))

	res := f.call(t, "list_ignored", nil)
	require.False(t, res.IsError)
	var entries []schema.ViolationEntry
	require.NoError(t, json.Unmarshal([]byte(text(res)), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, core.ViolationKey(f.path, 1, "  "+finding), entries[0].Key)
}

func TestMCPServer_ClearIgnored(t *testing.T) {
	f := newFixture(t)
	f.call(t, "check_file", map[string]any{"path": f.path})

	o := decodeOutcome(t, f.call(t, "clear_ignored", map[string]any{"confirm": true}))
	assert.Equal(t, []string{core.MsgNoIgnoredToClear}, o.Messages)

	decodeOutcome(t, f.call(t, "ignore_violation", map[string]any{
		"path": f.path, "line": 1.0, "message": finding,
	}))

	res := f.call(t, "clear_ignored", map[string]any{"confirm": false})
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), "confirm must be true")

	o = decodeOutcome(t, f.call(t, "clear_ignored", map[string]any{"confirm": true}))
	assert.Equal(t, []string{core.MsgAllIgnoredCleared}, o.Messages)
	assert.Zero(t, o.Ignored)
	published, _ := f.diags.Get(f.path)
	assert.Len(t, published, 1)
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		tool     string
		args     map[string]any
		contains string
	}{
		{"check_file missing path", "check_file", map[string]any{}, "path is required"},
		{"check_file not python", "check_file", map[string]any{"path": "notes.md"}, "is not a python file"},
		{"check_file missing file", "check_file", map[string]any{"path": "missing.py"}, "check failed"},
		{"ignore_violation bad line", "ignore_violation", map[string]any{"path": "a.py", "line": 0.0, "message": finding}, "line must be at least 1"},
		{"ignore_violation missing message", "ignore_violation", map[string]any{"path": "a.py", "line": 1.0}, "path and message are required"},
		{"ignore_violation blank message", "ignore_violation", map[string]any{"path": "a.py", "line": 1.0, "message": "   "}, "path and message are required"},
		{"restore_ignored no keys", "restore_ignored", map[string]any{"keys": []any{}}, "at least one"},
		{"code_actions unchecked", "code_actions", map[string]any{"path": "a.py"}, "has not been checked"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.call(t, tt.tool, tt.args)
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, text(res), tt.contains)
		})
	}
}
