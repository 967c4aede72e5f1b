package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/huangsam/csmstyle/core"
	"github.com/huangsam/csmstyle/internal/contract"
	"github.com/spf13/cobra"
)

// ignoreCmd focused on ignored violation management.
var ignoreCmd = &cobra.Command{
	Use:   "ignore",
	Short: "Manage ignored style violations",
	Long: `Manage the style violations that are no longer reported.

An ignored violation is identified by its file, line and exact message. Ignored
violations belong to the workspace and are stored in the state backend.

Subcommands:
  add    - Ignore one violation
  list   - Show every ignored violation
  manage - Pick ignored violations to report again
  clear  - Report every ignored violation again
  export - Export ignored violations to Parquet`,
}

// ignoreAddCmd ignores one violation.
var ignoreAddCmd = &cobra.Command{
	Use:   "add <file> <line> <message...>",
	Short: "Ignore one style violation",
	Long: `Ignore a violation using the file, one-based line and message printed by check.

The message must match the tool output exactly, without any rule explanation.

Examples:
  csmstyle ignore add app/main.py 12 "E501 line too long (90 > 79 characters)"`,
	Args:    cobra.MinimumNArgs(3),
	PreRunE: sharedSetupNoFiles,
	Run: func(_ *cobra.Command, args []string) {
		line, err := strconv.Atoi(args[1])
		if err != nil {
			contract.LogFatal("Failed to ignore violation", fmt.Errorf("invalid line %q: %w", args[1], err))
		}
		message := strings.Join(args[2:], " ")
		if err := core.ExecuteIgnoreAdd(rootCtx, cfg, storeManager, args[0], line, message); err != nil {
			contract.LogFatal("Failed to ignore violation", err)
		}
	},
}

// ignoreListCmd lists ignored violations.
var ignoreListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every ignored violation in the workspace",
	Long: `Print a table of ignored violations, or a JSON list with --output json.

Examples:
  csmstyle ignore list
  csmstyle ignore list --output json --output-file ignored.json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupNoFiles,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteIgnoreList(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Failed to list ignored violations", err)
		}
	},
}

// ignoreManageCmd restores selected ignored violations.
var ignoreManageCmd = &cobra.Command{
	Use:   "manage",
	Short: "Pick ignored violations to report again",
	Long: `Show a multi-select of ignored violations. The selected ones are reported again.

Requires an interactive terminal.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupNoFiles,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteIgnoreManage(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Failed to manage ignored violations", err)
		}
	},
}

// ignoreClearCmd restores every ignored violation.
var ignoreClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Report every ignored violation again",
	Long: `Remove every ignored violation of the workspace after confirmation.

Examples:
  # Ask first
  csmstyle ignore clear

  # Skip the confirmation in scripts
  csmstyle ignore clear --yes`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupNoFiles,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteIgnoreClear(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Failed to clear ignored violations", err)
		}
	},
}

// ignoreExportCmd exports ignored violations to Parquet.
var ignoreExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export ignored violations to Parquet",
	Long: `Write every ignored violation of the workspace to a Parquet file.

Requires: --output-file parameter

Examples:
  csmstyle ignore export --output-file ignored.parquet
  duckdb -c "SELECT file_path, count(*) FROM read_parquet('ignored.parquet') GROUP BY 1"`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupNoFiles,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteIgnoreExport(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Failed to export ignored violations", err)
		}
	},
}
