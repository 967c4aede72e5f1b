package contract

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v, s)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v, s)
	}
	_, err := ParseBoolString("sometimes")
	assert.Error(t, err)
}

func TestTruncatePath(t *testing.T) {
	assert.Equal(t, "short.py", TruncatePath("short.py", 20))
	assert.Equal(t, "...c/d.py", TruncatePath("a/b/c/d.py", 9))
	assert.Equal(t, "a/b/c/d.py", TruncatePath("a/b/c/d.py", 3), "tiny widths leave the path alone")
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "E501 line...", TruncateText("E501 line too long", 12))
	assert.Equal(t, "ok", TruncateText("ok", 12))
}

func TestRelativePath(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "ws")
	assert.Equal(t, filepath.Join("pkg", "a.py"), RelativePath(root, filepath.Join(root, "pkg", "a.py")))
	outside := filepath.Join(string(filepath.Separator), "elsewhere", "b.py")
	assert.Equal(t, outside, RelativePath(root, outside))
}

func TestDBFilePaths(t *testing.T) {
	assert.True(t, strings.HasSuffix(GetStateDBFilePath(), ".csmstyle_state.db"))
	assert.True(t, strings.HasSuffix(GetHistoryDBFilePath(), ".csmstyle_history.db"))
	assert.NotEqual(t, GetStateDBFilePath(), GetHistoryDBFilePath())
}

func TestSelectOutputFile(t *testing.T) {
	f, err := SelectOutputFile("")
	require.NoError(t, err)
	assert.Equal(t, os.Stdout, f)

	path := filepath.Join(t.TempDir(), "out.json")
	f, err = SelectOutputFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestLocalToolRunner(t *testing.T) {
	runner := NewLocalToolRunner()
	if !runner.Available("sh") {
		t.Skip("sh is not available")
	}
	dir := t.TempDir()

	t.Run("runs in directory", func(t *testing.T) {
		out, err := runner.Run(context.Background(), ToolInvocation{Name: "pwd", Command: "sh", Args: []string{"-c", "pwd"}, Dir: dir})
		require.NoError(t, err)
		resolved, _ := filepath.EvalSymlinks(dir)
		got, _ := filepath.EvalSymlinks(strings.TrimSpace(string(out)))
		assert.Equal(t, resolved, got)
	})

	t.Run("keeps stdout on failure", func(t *testing.T) {
		out, err := runner.Run(context.Background(), ToolInvocation{
			Name:    "lint",
			Command: "sh",
			Args:    []string{"-c", "echo 'a.py:1:1: E1 bad'; echo oops >&2; exit 1"},
			Dir:     dir,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exited with code 1")
		assert.Contains(t, err.Error(), "oops")
		assert.Equal(t, "a.py:1:1: E1 bad\n", string(out))
	})

	t.Run("missing binary", func(t *testing.T) {
		out, err := runner.Run(context.Background(), ToolInvocation{Name: "ghost", Command: "csmstyle-no-such-tool", Dir: dir})
		require.Error(t, err)
		assert.Empty(t, out)
		assert.Contains(t, err.Error(), "failed to start")
		assert.False(t, runner.Available("csmstyle-no-such-tool"))
	})
}
