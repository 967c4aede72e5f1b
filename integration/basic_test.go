//go:build basic

package integration

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCSMStyleWithSQLite runs the ignore flow against SQLite files in the workspace.
func TestCSMStyleWithSQLite(t *testing.T) {
	dir := newWorkspace(t)
	env := []string{
		"CSMSTYLE_STATE_BACKEND=sqlite",
		"CSMSTYLE_STATE_DB_CONNECT=" + filepath.Join(dir, "state.db"),
		"CSMSTYLE_HISTORY_BACKEND=sqlite",
		"CSMSTYLE_HISTORY_DB_CONNECT=" + filepath.Join(dir, "history.db"),
	}

	runIgnoreFlow(t, dir, env)

	output := requireSuccess(t, dir, env, "state", "status")
	assert.Contains(t, output, "State Backend: sqlite")
	requireSuccess(t, dir, env, "state", "clear")
	assert.NoFileExists(t, filepath.Join(dir, "state.db"))
}

// TestCSMStyleRejectsSharedSQLiteFile checks that state and history cannot share one file.
func TestCSMStyleRejectsSharedSQLiteFile(t *testing.T) {
	dir := newWorkspace(t)
	shared := filepath.Join(dir, "shared.db")
	env := []string{
		"CSMSTYLE_STATE_DB_CONNECT=" + shared,
		"CSMSTYLE_HISTORY_BACKEND=sqlite",
		"CSMSTYLE_HISTORY_DB_CONNECT=" + shared,
	}

	output, code := runCommand(t, dir, env, "check", "a.py")
	assert.NotZero(t, code)
	assert.Contains(t, output, "different SQLite database files")
}

// TestCSMStyleVersion checks the version command runs without any setup.
func TestCSMStyleVersion(t *testing.T) {
	output := requireSuccess(t, t.TempDir(), nil, "version")
	assert.Contains(t, output, "csmstyle CLI")
}
