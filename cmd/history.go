package cmd

import (
	"errors"
	"fmt"

	"github.com/huangsam/csmstyle/internal/contract"
	"github.com/huangsam/csmstyle/internal/iocache"
	"github.com/huangsam/csmstyle/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historySetup loads minimal configuration needed for history operations.
// openStore is false for clear and migrate, which work on the database directly.
func historySetup(openStore bool) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, connStr, err := backendFromConfig("history-backend", "history-db-connect")
	if err != nil {
		return err
	}

	if openStore {
		// No state store for history commands
		if err := iocache.InitStores("", "", backend, connStr); err != nil {
			return fmt.Errorf("failed to initialize history: %w", err)
		}
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// historyStore returns the open history store, or an error when history is disabled.
func historyStore() (contract.HistoryStore, error) {
	store := iocache.Manager.GetHistoryStore()
	if store == nil {
		return nil, errors.New("check history is disabled. Set --history-backend to enable it")
	}
	return store, nil
}

// historyCmd focused on check history management.
//
// Note: History subcommands use minimal initialization (historySetup) instead of
// the full sharedSetup used by checking commands.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the history of check runs",
	Long: `Manage the record of every check run, kept when --history-backend is set.

Each run stores the file, timing, tools, failed tools, findings and ignored findings.

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show history statistics
  export  - Export runs to Parquet for analytics
  clear   - Remove all history
  migrate - Run database schema migrations

Examples:
  # Record history while watching
  csmstyle watch --history-backend sqlite

  # Export for analysis in pandas/DuckDB
  csmstyle history export --history-backend sqlite --output-file runs.parquet`,
}

// historyClearCmd clears the check history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded check runs",
	Long: `Delete every recorded check run.

WARNING: This action cannot be undone. Consider exporting data first.`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return historySetup(false)
	},
	Run: func(_ *cobra.Command, _ []string) {
		dbFilePath := cfg.HistoryDBConnect
		if cfg.HistoryBackend != schema.SQLiteBackend || dbFilePath == "" {
			dbFilePath = contract.GetHistoryDBFilePath()
		}
		if err := iocache.ClearHistory(cfg.HistoryBackend, dbFilePath, cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display check history statistics and connection details",
	Long: `Show detailed information about the check history.

Displays:
- Backend type and connection status
- Total number of runs stored
- Last and oldest run timestamps
- Total findings across all runs
- Table sizes`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return historySetup(true)
	},
	Run: func(_ *cobra.Command, _ []string) {
		store, err := historyStore()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(status)
	},
}

// historyExportCmd exports the check history to Parquet.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export check runs to Parquet for BI tools and analytics",
	Long: `Export every recorded check run to Parquet.

Requires: --output-file parameter

Examples:
  csmstyle history export --output-file runs.parquet
  duckdb -c "SELECT file_path, avg(findings) FROM read_parquet('runs.parquet') GROUP BY 1"`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return historySetup(true)
	},
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteHistoryExport(iocache.Manager.GetHistoryStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the check history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  csmstyle history migrate --history-backend sqlite

  # Rollback to the initial state
  csmstyle history migrate --history-backend sqlite --target-version 0`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return historySetup(false)
	},
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
