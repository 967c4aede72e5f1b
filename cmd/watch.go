package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/csmstyle/core"
	"github.com/spf13/cobra"
)

// watchCmd keeps files open and rechecks them as they are saved.
var watchCmd = &cobra.Command{
	Use:   "watch [files...]",
	Short: "Recheck files every time they are saved",
	Long: `Open the given Python files, check them, and recheck each one whenever it is written.

Bursts of writes within the debounce window trigger a single recheck. Findings are printed
with their source lines highlighted. Press Ctrl+C to stop.

Examples:
  # Watch every Python file in the workspace
  csmstyle watch

  # Watch one file with a longer debounce
  csmstyle watch app/main.py --debounce 1s`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return core.ExecuteWatch(ctx, cfg, storeManager)
	},
}
