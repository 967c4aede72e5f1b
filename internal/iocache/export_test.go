package iocache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/csmstyle/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteHistoryExport(t *testing.T) {
	t.Run("requires output file", func(t *testing.T) {
		err := ExecuteHistoryExport(&MockHistoryStore{}, "")
		assert.ErrorContains(t, err, "--output-file is required")
	})

	t.Run("history disabled", func(t *testing.T) {
		err := ExecuteHistoryExport(nil, "out.parquet")
		assert.ErrorContains(t, err, "history is disabled")
	})

	t.Run("no runs", func(t *testing.T) {
		store := &MockHistoryStore{}
		store.On("GetStatus").Return(schema.HistoryStatus{Backend: "sqlite", Connected: true}, nil)

		err := ExecuteHistoryExport(store, filepath.Join(t.TempDir(), "out.parquet"))
		assert.ErrorContains(t, err, "no check history")
		store.AssertExpectations(t)
	})

	t.Run("status failure", func(t *testing.T) {
		store := &MockHistoryStore{}
		store.On("GetStatus").Return(schema.HistoryStatus{}, errors.New("boom"))

		err := ExecuteHistoryExport(store, filepath.Join(t.TempDir(), "out.parquet"))
		assert.ErrorContains(t, err, "boom")
	})

	t.Run("writes parquet", func(t *testing.T) {
		store := newTestHistoryStore(t)
		start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		_, err := store.RecordCheck(schema.CheckRun{
			Path: "/w/a.py", StartTime: start, EndTime: start.Add(time.Second), Tools: []string{"ruff"}, Findings: 1,
		})
		require.NoError(t, err)

		out := filepath.Join(t.TempDir(), "history.parquet")
		require.NoError(t, ExecuteHistoryExport(store, out))

		info, err := os.Stat(out)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	})
}
