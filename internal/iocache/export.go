package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/csmstyle/internal/contract"
	"github.com/huangsam/csmstyle/internal/parquet"
)

// ExecuteHistoryExport writes every recorded check run to a Parquet file.
func ExecuteHistoryExport(store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("check history is disabled. Set --history-backend to enable it")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no check history found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total check runs: %d\n", status.TotalRuns)

	records, err := store.GetAllCheckRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve check runs: %w", err)
	}

	runs := parquet.ConvertCheckRunRecords(records)
	if err := parquet.WriteCheckRunsParquet(runs, outputFile); err != nil {
		return fmt.Errorf("failed to write check runs: %w", err)
	}
	fmt.Printf("Exported %d check runs to: %s\n", len(runs), outputFile)
	return nil
}
