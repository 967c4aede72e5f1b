// Package cmd defines the command-line interface for csmstyle.
package cmd

import (
	"github.com/huangsam/csmstyle/internal/contract"
	"github.com/huangsam/csmstyle/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(ignoreCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(historyCmd)

	// Add the ignore subcommands to the parent ignore command
	ignoreCmd.AddCommand(ignoreAddCmd)
	ignoreCmd.AddCommand(ignoreListCmd)
	ignoreCmd.AddCommand(ignoreManageCmd)
	ignoreCmd.AddCommand(ignoreClearCmd)
	ignoreCmd.AddCommand(ignoreExportCmd)

	// Add the state subcommands to the parent state command
	stateCmd.AddCommand(stateClearCmd)
	stateCmd.AddCommand(stateStatusCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("workspace", ".", "Workspace root that relative paths and ignored violations belong to")
	rootCmd.PersistentFlags().String("language", contract.DefaultLanguage, "Language id of the files to check")
	rootCmd.PersistentFlags().String("config-dir", "", "Directory holding the tool configs (default <workspace>/.csmstyle)")
	rootCmd.PersistentFlags().String("tool-timeout", contract.DefaultToolTimeout, "Time limit for each tool run (0 disables)")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of documents checked concurrently")
	rootCmd.PersistentFlags().String("explanations", "", "Path to a YAML or JSON file of rule explanations")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: trace or debug or info or warn or error")
	rootCmd.PersistentFlags().String("state-backend", string(schema.SQLiteBackend), "Ignored violations backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("state-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("history-backend", "", "Check history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for check history (must differ from state-db-connect)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of watchCmd to Viper
	watchCmd.Flags().String("debounce", contract.DefaultDebounce, "Quiet period after a write before the file is rechecked")
	if err := viper.BindPFlags(watchCmd.Flags()); err != nil {
		contract.LogFatal("Error binding watch flags", err)
	}

	// Bind all persistent flags of ignoreCmd to Viper
	ignoreCmd.PersistentFlags().BoolP("yes", "y", false, "Answer yes to confirmations and never prompt")
	if err := viper.BindPFlags(ignoreCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding ignore flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
