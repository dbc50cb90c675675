package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	opsmcp "github.com/gorewood/opskit/internal/mcp"
	"github.com/gorewood/opskit/internal/resolve"
	"github.com/gorewood/opskit/internal/skills"
)

// newServeCmd creates the serve command for running as an MCP server.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as MCP server (stdio transport)",
		Long: `Run opskit as a Model Context Protocol (MCP) server over stdio so an agent
can check readiness and pick skills without shelling out.

Configure in your agent's MCP settings:
  {
    "mcpServers": {
      "opskit": {
        "command": "opskit",
        "args": ["serve"]
      }
    }
  }

Available tools: status, check, list_connections, list_skills, init_workspace`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := configDir()
			if err != nil {
				return err
			}
			root, err := workspaceRoot()
			if err != nil {
				return err
			}
			store, err := openStore()
			if err != nil {
				return err
			}
			server := opsmcp.NewServer(buildVersion(), &opsmcp.Deps{
				Store:     store,
				Env:       resolve.NewEnvironment(),
				Root:      root,
				Inspector: newInspector(dir),
				Skills:    skills.NewLoader(root, dir),
			})
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
