package main

import (
	"github.com/spf13/cobra"

	"github.com/gorewood/opskit/internal/connection"
	"github.com/gorewood/opskit/internal/output"
	"github.com/gorewood/opskit/internal/workspace"
)

// newInitWorkspaceCmd creates the init-workspace command.
func newInitWorkspaceCmd() *cobra.Command {
	var environmentURL string
	names := make(map[connection.Provider]*string)
	cmd := &cobra.Command{
		Use:   "init-workspace",
		Short: "Write ops/opskit.json for the current directory",
		Long: `Write ops/opskit.json in the current directory, replacing any existing
file. The environment URL is the Dataverse environment this workspace
targets. Connection names are optional and select a saved connection per
provider; names that do not exist yet are reported by status.

Example:
  opskit init-workspace --environment-url https://contoso.crm.dynamics.com --ado contoso`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conns := make(map[connection.Provider]string, len(names))
			for p, name := range names {
				conns[p] = *name
			}
			return runInitWorkspace(cmd, environmentURL, conns)
		},
	}
	cmd.Flags().StringVar(&environmentURL, "environment-url", "", "Dataverse environment URL (required)")
	_ = cmd.MarkFlagRequired("environment-url")
	for _, p := range connection.Providers() {
		names[p] = cmd.Flags().String(string(p), "", p.Label()+" connection name for this workspace")
	}
	return cmd
}

func runInitWorkspace(cmd *cobra.Command, environmentURL string, conns map[connection.Provider]string) error {
	printer := newPrinter(cmd)

	root, err := workspaceRoot()
	if err != nil {
		return fail(cmd, printer, err)
	}
	cfg, err := workspace.Init(root, environmentURL, conns)
	if err != nil {
		return fail(cmd, printer, output.WrapUserError(err))
	}

	if printer.IsJSON() {
		return printer.WriteJSON(map[string]any{
			"path":            workspace.Path(root),
			"environment_url": cfg.EnvironmentURL,
			"connections":     cfg.Connections,
		})
	}
	_ = printer.Success(map[string]any{"message": "Wrote " + workspace.Path(root)})

	if store, err := openStore(); err == nil {
		if saved, err := store.LoadConnections(); err == nil {
			for _, p := range connection.Providers() {
				name := cfg.ConnectionFor(p)
				if _, ok := saved.Get(p, name); name != "" && !ok {
					printer.Warn("%s connection '%s' is not saved yet", p.Label(), name)
					printer.Hint("run: opskit add-connection %s %s", p, name)
				}
			}
		}
	}
	return nil
}
