// Package parquet provides data structures and functions for exporting check
// history and ignored violations to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/csmstyle/schema"
	"github.com/parquet-go/parquet-go"
)

// CheckRun represents one recorded check of a document.
// This struct maps to the csmstyle_check_runs database table.
type CheckRun struct {
	// RunID is the unique identifier for this check run
	RunID int64 `parquet:"run_id,snappy"`

	// FilePath is the absolute path of the checked document
	FilePath string `parquet:"file_path,snappy"`

	// StartTime is when the tools were launched
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when all tools had finished (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the wall time of the check in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// Tools is the comma-separated list of tools that ran
	Tools string `parquet:"tools,snappy"`

	// FailedTools lists tools that produced no usable output (nullable)
	FailedTools *string `parquet:"failed_tools,optional,snappy"`

	// Findings is the number of published diagnostics
	Findings int32 `parquet:"findings,snappy"`

	// Suppressed is the number of findings dropped as ignored
	Suppressed int32 `parquet:"suppressed,snappy"`
}

// IgnoredViolation is one entry of a workspace suppression set.
type IgnoredViolation struct {
	Key      string `parquet:"violation_key,snappy"`
	FilePath string `parquet:"file_path,snappy"`
	Line     int32  `parquet:"line,snappy"` // one-based
	Message  string `parquet:"message,snappy"`
}

// write streams rows of any struct type into a new Parquet file.
func write[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the struct tags of T
	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteCheckRunsParquet writes check runs to a Parquet file.
func WriteCheckRunsParquet(data []CheckRun, outputPath string) error {
	return write(data, outputPath)
}

// WriteIgnoredViolationsParquet writes ignored violations to a Parquet file.
func WriteIgnoredViolationsParquet(data []IgnoredViolation, outputPath string) error {
	return write(data, outputPath)
}

// ConvertCheckRunRecords converts schema.CheckRunRecord to CheckRun for Parquet export.
func ConvertCheckRunRecords(records []schema.CheckRunRecord) []CheckRun {
	result := make([]CheckRun, len(records))
	for i, r := range records {
		result[i] = CheckRun{
			RunID:         r.RunID,
			FilePath:      r.FilePath,
			StartTime:     r.StartTime,
			EndTime:       r.EndTime,
			RunDurationMs: r.DurationMs,
			Tools:         r.Tools,
			FailedTools:   r.FailedTools,
			Findings:      r.Findings,
			Suppressed:    r.Suppressed,
		}
	}
	return result
}

// ConvertViolationEntries converts decoded suppression keys for Parquet export.
func ConvertViolationEntries(entries []schema.ViolationEntry) []IgnoredViolation {
	result := make([]IgnoredViolation, len(entries))
	for i, e := range entries {
		result[i] = IgnoredViolation{
			Key:      e.Key,
			FilePath: e.Path,
			Line:     int32(e.Line + 1),
			Message:  e.Message,
		}
	}
	return result
}
