package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stgm/chantier/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets MCP clients query chantier for project search, issue lists,
and issue histories. Configure with:

  {
    "mcpServers": {
      "chantier": { "command": "chantier", "args": ["mcp"] }
    }
  }

Available tools: chantier_search_projects, chantier_list_issues,
chantier_issue_history`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := getStore()
		if err != nil {
			return err
		}
		srv := mcp.NewServer(getClient(), s)
		return srv.ServeStdio(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
