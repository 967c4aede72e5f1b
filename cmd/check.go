package cmd

import (
	"errors"
	"os"

	"github.com/huangsam/csmstyle/core"
	"github.com/huangsam/csmstyle/internal/contract"
	"github.com/huangsam/csmstyle/internal/iocache"
	"github.com/spf13/cobra"
)

// checkCmd focused on CI/CD style enforcement.
var checkCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Check files once and fail when style findings remain",
	Long: `Run every configured tool against the given Python files and print the merged findings.

Without arguments, every Python file under the workspace is checked. Hidden directories,
virtualenvs and __pycache__ are skipped.

Ignored violations are not reported. The command exits with status 1 when any finding
remains, which makes it suitable as a pre-commit hook or CI gate.

Examples:
  # Check the whole workspace
  csmstyle check

  # Check two files and print JSON
  csmstyle check app/main.py app/util.py --output json

  # Explain each rule next to its finding
  csmstyle check --explanations .csmstyle/rules.yaml`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		err := core.ExecuteCheck(rootCtx, cfg, storeManager)
		if errors.Is(err, core.ErrFindingsRemain) {
			iocache.CloseStores()
			os.Exit(1)
		}
		if err != nil {
			contract.LogFatal("Style check failed", err)
		}
	},
}
