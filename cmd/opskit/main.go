// Package main provides the entry point for the opskit CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gorewood/opskit/internal/config"
	"github.com/gorewood/opskit/internal/envfile"
	"github.com/gorewood/opskit/internal/output"
)

// Build info set via ldflags at build time by goreleaser.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// isJSONMode reads the --json persistent flag from the command hierarchy.
func isJSONMode(cmd *cobra.Command) bool {
	flag := cmd.Flags().Lookup("json")
	if flag == nil {
		flag = cmd.Root().PersistentFlags().Lookup("json")
	}
	return flag != nil && flag.Value.String() == "true"
}

// colorMode reads the --color persistent flag.
func colorMode(cmd *cobra.Command) string {
	flag := cmd.Flags().Lookup("color")
	if flag == nil {
		flag = cmd.Root().PersistentFlags().Lookup("color")
	}
	if flag == nil {
		return output.ColorAuto
	}
	return flag.Value.String()
}

// useColor reports whether human output should be styled.
func useColor(cmd *cobra.Command) bool {
	return output.ResolveColorMode(colorMode(cmd), output.IsTTY(cmd.OutOrStdout()))
}

// newPrinter returns the printer every command writes through.
func newPrinter(cmd *cobra.Command) *output.Printer {
	return output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd)).WithStderr(cmd.ErrOrStderr())
}

// buildVersion returns the full version string including commit and date.
func buildVersion() string {
	if commit == "none" && date == "unknown" {
		return version
	}
	shortCommit := commit
	if len(commit) > 7 {
		shortCommit = commit[:7]
	}
	return fmt.Sprintf("%s (%s, %s)", version, shortCommit, date)
}

func main() {
	os.Exit(run())
}

func run() int {
	cmd := newRootCmd()
	err := fang.Execute(context.Background(), cmd, fang.WithVersion(buildVersion()))
	return output.GetExitCode(err)
}

// newRootCmd creates the root command for the opskit CLI.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "opskit",
		Short: "Connection setup and readiness checks for operations skills",
		Long: `opskit manages the credentials AI-assisted operations skills need to reach
Jira, Azure DevOps and Dataverse.

Connections are named credential records stored once per machine. A
workspace (a directory with ops/opskit.json) picks which connection each
provider uses and sets the Dataverse environment URL. Every lookup follows
one precedence: explicit flags, workspace connection, provider default,
then environment variables (Jira only).

All commands support --json for structured output.`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if isJSONMode(cmd) {
				err := output.NewUserError("no command specified. Run 'opskit --help' for usage")
				newPrinter(cmd).Error(err)
				return err
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if _, err := output.ParseColorMode(colorMode(cmd)); err != nil {
			newPrinter(cmd).Error(err)
			return err
		}
		if err := loadEnvFiles(); err != nil {
			warnEnvFiles(cmd, err)
		}
		return nil
	}

	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().String("color", output.ColorAuto, "Color output: auto, always or never")

	lipgloss.SetHasDarkBackground(true)

	addCommandGroups(cmd)
	addCommands(cmd)

	return cmd
}

// loadEnvFiles loads env files in priority order. Variables already in the
// environment always win; the first file to set a variable wins over later
// ones.
//
//  1. $CWD/.env.local
//  2. $CWD/.env
//  3. <config dir>/env
func loadEnvFiles() error {
	return envfile.LoadAll(".env.local", ".env", config.EnvFile())
}

// warnEnvFiles reports env files that could not be loaded. JSON mode keeps
// the warning on stderr so stdout stays a single document.
func warnEnvFiles(cmd *cobra.Command, err error) {
	printer := newPrinter(cmd)
	if printer.IsJSON() {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		return
	}
	printer.Warn("%v", err)
}

func addCommandGroups(cmd *cobra.Command) {
	cmd.AddGroup(&cobra.Group{ID: "connections", Title: "Connection Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "readiness", Title: "Readiness Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "workspace", Title: "Workspace Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "agent", Title: "Agent Commands:"})
}

func addCommands(cmd *cobra.Command) {
	addGroupedCommand(cmd, newAddConnectionCmd(), "connections")
	addGroupedCommand(cmd, newRemoveConnectionCmd(), "connections")
	addGroupedCommand(cmd, newSetDefaultCmd(), "connections")
	addGroupedCommand(cmd, newListConnectionsCmd(), "connections")

	addGroupedCommand(cmd, newStatusCmd(), "readiness")
	addGroupedCommand(cmd, newCheckCmd(), "readiness")
	addGroupedCommand(cmd, newResolveCmd(), "readiness")

	addGroupedCommand(cmd, newInitWorkspaceCmd(), "workspace")
	addGroupedCommand(cmd, newSetupCmd(), "workspace")

	addGroupedCommand(cmd, newSkillsCmd(), "agent")
	addGroupedCommand(cmd, newServeCmd(), "agent")
}

func addGroupedCommand(parent *cobra.Command, child *cobra.Command, groupID string) {
	child.GroupID = groupID
	parent.AddCommand(child)
}
