package cmd

import (
	"fmt"

	"github.com/huangsam/csmstyle/internal/contract"
	"github.com/huangsam/csmstyle/internal/iocache"
	"github.com/huangsam/csmstyle/schema"
	"github.com/spf13/cobra"
)

// stateSetup loads minimal configuration needed for state store operations.
// openStore is false for clear, which must not hold the SQLite file open.
func stateSetup(openStore bool) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, connStr, err := backendFromConfig("state-backend", "state-db-connect")
	if err != nil {
		return err
	}

	if openStore {
		// No history tracking for state commands
		if err := iocache.InitStores(backend, connStr, "", ""); err != nil {
			return fmt.Errorf("failed to initialize state store: %w", err)
		}
	}

	cfg.StateBackend = backend
	cfg.StateDBConnect = connStr
	return nil
}

// stateCmd focused on state store management.
//
// Note: State subcommands use minimal initialization (stateSetup) instead of
// the full sharedSetup used by checking commands. This avoids workspace
// validation and tool config processing for simple store operations.
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Manage the store that holds ignored violations",
	Long: `Manage the state store where ignored violations are kept.

Every workspace keeps its ignored violations under its own key, so one store can
serve many workspaces. A MySQL or PostgreSQL backend lets a team share them.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (in-memory)

Subcommands:
  status - Show store statistics and connection info
  clear  - Remove the ignored violations of every workspace

Examples:
  # Check store status
  csmstyle state status

  # Use a shared PostgreSQL store
  CSMSTYLE_STATE_BACKEND=postgresql CSMSTYLE_STATE_DB_CONNECT="host=db dbname=csm" csmstyle state status`,
}

// stateClearCmd clears the state store.
var stateClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored ignored violations",
	Long: `Delete the ignored violations of every workspace from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the state table

To clear only the current workspace, use 'csmstyle ignore clear' instead.`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return stateSetup(false)
	},
	Run: func(_ *cobra.Command, _ []string) {
		dbFilePath := cfg.StateDBConnect
		if cfg.StateBackend != schema.SQLiteBackend || dbFilePath == "" {
			dbFilePath = contract.GetStateDBFilePath()
		}
		if err := iocache.ClearState(cfg.StateBackend, dbFilePath, cfg.StateDBConnect); err != nil {
			contract.LogFatal("Failed to clear state", err)
		}
		fmt.Println("State cleared successfully.")
	},
}

// stateStatusCmd shows state store status.
var stateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display state store statistics and connection details",
	Long: `Show detailed information about the state store.

Displays:
- Backend type and connection status
- Number of workspaces with ignored violations
- Last and oldest update timestamps
- Table size`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return stateSetup(true)
	},
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetStateStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get state status", err)
		}
		iocache.PrintStateStatus(status)
	},
}
