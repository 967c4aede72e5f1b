package iocache

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/huangsam/csmstyle/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStateStore(t *testing.T) *StateStoreImpl {
	t.Helper()
	store, err := NewStateStore(stateTable, schema.SQLiteBackend, filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*StateStoreImpl)
}

func TestStateStore_SQLite(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		store := newTestStateStore(t)
		_, _, _, err := store.Get("absent")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("set then get", func(t *testing.T) {
		store := newTestStateStore(t)
		require.NoError(t, store.Set("ignoredViolations:abc", []byte(`["a.py:1:msg"]`), 1, 1700000000))

		value, version, ts, err := store.Get("ignoredViolations:abc")
		require.NoError(t, err)
		assert.Equal(t, `["a.py:1:msg"]`, string(value))
		assert.Equal(t, 1, version)
		assert.Equal(t, int64(1700000000), ts)
	})

	t.Run("set replaces", func(t *testing.T) {
		store := newTestStateStore(t)
		require.NoError(t, store.Set("k", []byte("first"), 1, 100))
		require.NoError(t, store.Set("k", []byte("second"), 2, 200))

		value, version, ts, err := store.Get("k")
		require.NoError(t, err)
		assert.Equal(t, "second", string(value))
		assert.Equal(t, 2, version)
		assert.Equal(t, int64(200), ts)
	})

	t.Run("survives reopen", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "state.db")
		store, err := NewStateStore(stateTable, schema.SQLiteBackend, dbPath)
		require.NoError(t, err)
		require.NoError(t, store.Set("k", []byte("kept"), 1, 1))
		require.NoError(t, store.Close())

		reopened, err := NewStateStore(stateTable, schema.SQLiteBackend, dbPath)
		require.NoError(t, err)
		defer func() { _ = reopened.Close() }()
		value, _, _, err := reopened.Get("k")
		require.NoError(t, err)
		assert.Equal(t, "kept", string(value))
	})
}

func TestStateStore_Status(t *testing.T) {
	store := newTestStateStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Zero(t, status.TotalEntries)

	require.NoError(t, store.Set("a", []byte("1"), 1, 100))
	require.NoError(t, store.Set("b", []byte("2"), 1, 300))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalEntries)
	assert.Equal(t, int64(300), status.LastEntryTime.Unix())
	assert.Equal(t, int64(100), status.OldestEntryTime.Unix())
	assert.Greater(t, status.TableSizeBytes, int64(0))
}

func TestStateStore_NoneBackend(t *testing.T) {
	store, err := NewStateStore("test_table", schema.NoneBackend, "")
	require.NoError(t, err)

	_, _, _, err = store.Get("k")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.NoError(t, store.Set("k", []byte("v"), 1, 1), "Set is a no-op")
	_, _, _, err = store.Get("k")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestStateStore_InvalidInputs(t *testing.T) {
	_, err := NewStateStore("bad-name;", schema.SQLiteBackend, filepath.Join(t.TempDir(), "x.db"))
	assert.Error(t, err)

	_, err = NewStateStore(stateTable, schema.DatabaseBackend("redis"), "")
	assert.ErrorContains(t, err, "unsupported backend")
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name      string
		tableName string
		wantErr   bool
	}{
		{"valid simple name", "csmstyle_state", false},
		{"valid name with numbers", "runs_2", false},
		{"leading underscore", "_private", false},
		{"empty", "", true},
		{"leading digit", "1table", true},
		{"sql injection", "t; DROP TABLE x", true},
		{"hyphen", "my-table", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.tableName)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`runs`", quoteTableName("runs", schema.MySQLBackend))
	assert.Equal(t, `"runs"`, quoteTableName("runs", schema.PostgreSQLBackend))
	assert.Equal(t, `"runs"`, quoteTableName("runs", schema.SQLiteBackend))
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "$2", placeholder(schema.PostgreSQLBackend, 2))
	assert.Equal(t, "?", placeholder(schema.MySQLBackend, 2))
	assert.Equal(t, "?", placeholder(schema.SQLiteBackend, 1))
}
