package cmd

import (
	"github.com/huangsam/livemeasure/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:     "mcp",
	Short:   "Start the Livemeasure MCP server",
	Long:    `Launch an MCP server over stdio that allows AI agents to compute measures, list metrics and check quality gates via standard tools.`,
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}
