package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/csmstyle/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleCheckRuns returns check runs covering both set and null optional fields.
func sampleCheckRuns() []CheckRun {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(850 * time.Millisecond)
	duration := int32(850)
	failed := "ruff"
	return []CheckRun{
		{
			RunID:         1,
			FilePath:      "/work/app/main.py",
			StartTime:     start,
			EndTime:       &end,
			RunDurationMs: &duration,
			Tools:         "pycodestyle,pylint,ruff",
			FailedTools:   &failed,
			Findings:      4,
			Suppressed:    1,
		},
		{
			RunID:     2,
			FilePath:  "/work/app/util.py",
			StartTime: start.Add(time.Minute),
			Tools:     "pylint",
		},
	}
}

func TestCheckRunStructTags(t *testing.T) {
	schema := parquet.SchemaOf(new(CheckRun))
	require.NotNil(t, schema)

	for _, colName := range []string{
		"run_id", "file_path", "start_time", "end_time", "run_duration_ms",
		"tools", "failed_tools", "findings", "suppressed",
	} {
		col, ok := schema.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func TestIgnoredViolationStructTags(t *testing.T) {
	schema := parquet.SchemaOf(new(IgnoredViolation))
	require.NotNil(t, schema)

	for _, colName := range []string{"violation_key", "file_path", "line", "message"} {
		_, ok := schema.Lookup(colName)
		assert.True(t, ok, "Column %s should exist in schema", colName)
	}
}

func TestWriteCheckRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "check_runs.parquet")
	data := sampleCheckRuns()

	require.NoError(t, WriteCheckRunsParquet(data, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[CheckRun](file)
	defer reader.Close()

	readData := make([]CheckRun, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, len(data), n)

	assert.Equal(t, data[0].FilePath, readData[0].FilePath)
	assert.Equal(t, data[0].Findings, readData[0].Findings)
	require.NotNil(t, readData[0].EndTime)
	assert.WithinDuration(t, *data[0].EndTime, *readData[0].EndTime, time.Nanosecond)
	require.NotNil(t, readData[0].FailedTools)
	assert.Equal(t, "ruff", *readData[0].FailedTools)

	assert.Nil(t, readData[1].EndTime, "EndTime should stay null")
	assert.Nil(t, readData[1].RunDurationMs, "RunDurationMs should stay null")
	assert.Nil(t, readData[1].FailedTools, "FailedTools should stay null")
}

func TestWriteIgnoredViolationsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "ignored.parquet")
	data := ConvertViolationEntries([]schema.ViolationEntry{
		{Key: "/w/a.py:2:E501 line too long", Path: "/w/a.py", Line: 2, Message: "E501 line too long"},
	})

	require.NoError(t, WriteIgnoredViolationsParquet(data, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer file.Close()

	rows, err := parquet.Read[IgnoredViolation](file, mustSize(t, file))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int32(3), rows[0].Line, "line is exported one-based")
	assert.Equal(t, "E501 line too long", rows[0].Message)
}

func TestWriteParquet_EmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteCheckRunsParquet([]CheckRun{}, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), "Parquet footer should still be written")
}

func TestWriteParquet_BadPath(t *testing.T) {
	err := WriteCheckRunsParquet(sampleCheckRuns(), filepath.Join(t.TempDir(), "missing", "out.parquet"))
	assert.Error(t, err)
}

func TestConvertCheckRunRecords(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	duration := int32(12)
	records := []schema.CheckRunRecord{
		{RunID: 7, FilePath: "/w/a.py", StartTime: start, DurationMs: &duration, Tools: "ruff", Findings: 2, Suppressed: 1},
	}

	runs := ConvertCheckRunRecords(records)
	require.Len(t, runs, 1)
	assert.Equal(t, int64(7), runs[0].RunID)
	assert.Equal(t, &duration, runs[0].RunDurationMs)
	assert.Equal(t, int32(2), runs[0].Findings)
	assert.Empty(t, ConvertCheckRunRecords(nil))
}

func mustSize(t *testing.T, file *os.File) int64 {
	t.Helper()
	info, err := file.Stat()
	require.NoError(t, err)
	return info.Size()
}
