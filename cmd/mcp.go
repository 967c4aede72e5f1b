package cmd

import (
	"github.com/huangsam/csmstyle/core"
	"github.com/huangsam/csmstyle/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the CSM Style MCP server",
	Long: `Launch an MCP server on stdio that lets editors and AI agents check files,
ignore violations and manage ignored violations through standard tools.`,
	Args: cobra.NoArgs,
	// Logs go to stderr; stdout carries the protocol.
	PreRunE: sharedSetupNoFiles,
	RunE: func(_ *cobra.Command, _ []string) error {
		ws, diags, session := core.NewMCPWorkspace(cfg, storeManager)
		defer session.Close()
		if err := session.Start(rootCtx); err != nil {
			return err
		}
		return mcp.StartMCPServer(rootCtx, cfg, session, ws, diags)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
