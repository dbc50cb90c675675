package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/gorewood/opskit/internal/output"
	"github.com/gorewood/opskit/internal/preflight"
	"github.com/gorewood/opskit/internal/setup"
	"github.com/gorewood/opskit/internal/skills"
)

// newRuntime returns the Python runtime manager. Tests replace it.
var newRuntime = preflight.NewRuntime

// integrationInfo describes an agent integration for setup --list.
type integrationInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Installed   bool   `json:"installed"`
	Scope       string `json:"scope,omitempty"`
	Location    string `json:"location,omitempty"`
}

// newSetupCmd creates the setup command and its agent subcommands.
func newSetupCmd() *cobra.Command {
	var listFlag bool
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create the Python runtime and install agent integrations",
		Long: `Create a Python virtual environment under the opskit configuration
directory and install the packages the vendor scripts need. If
requirements.txt exists in the configuration directory it is installed
instead of the default package list. Safe to run again.

Subcommands:
  claude    Install opskit skills (and the MCP server) into Claude Code

Examples:
  opskit setup                   # Create or update the Python runtime
  opskit setup --list            # Show agent integrations and their status
  opskit setup claude --project  # Install skills for this project`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if listFlag {
				return runSetupList(cmd)
			}
			return runSetupRuntime(cmd)
		},
	}
	cmd.Flags().BoolVar(&listFlag, "list", false, "List agent integrations and their status")
	cmd.AddCommand(newSetupClaudeCmd())
	return cmd
}

func runSetupRuntime(cmd *cobra.Command) error {
	printer := newPrinter(cmd)

	dir, err := configDir()
	if err != nil {
		return fail(cmd, printer, err)
	}

	// pip output would corrupt the JSON document on stdout.
	var progress io.Writer = cmd.ErrOrStderr()
	if printer.IsJSON() {
		progress = io.Discard
	}
	printer.Stderr("Setting up Python runtime in %s\n", dir)

	result, err := newRuntime(dir).Setup(cmd.Context(), progress)
	if err != nil {
		return fail(cmd, printer, output.NewSystemErrorWithCause("setup failed", err))
	}

	if printer.IsJSON() {
		return printer.WriteJSON(result)
	}
	msg := "Python runtime ready: " + result.Python
	if result.Created {
		msg = "Created Python runtime: " + result.Python
	}
	return printer.Success(map[string]any{"message": msg})
}

func runSetupList(cmd *cobra.Command) error {
	printer := newPrinter(cmd)

	var infos []integrationInfo
	for _, env := range setup.AllAgentEnvs() {
		info := integrationInfo{Name: env.Name(), Description: env.DisplayName() + " skills and MCP server"}
		if path, scope, installed := env.Detect(); installed {
			info.Installed = true
			info.Scope = scope
			info.Location = path
		}
		infos = append(infos, info)
	}

	if printer.IsJSON() {
		return printer.WriteJSON(map[string]any{"integrations": infos})
	}
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		state := "not installed"
		if info.Installed {
			state = "installed (" + info.Scope + ")"
		}
		rows = append(rows, []string{info.Name, state, info.Description})
	}
	printer.Table([]string{"NAME", "STATUS", "DESCRIPTION"}, rows)
	return nil
}

// newSetupClaudeCmd creates the claude subcommand for setup.
func newSetupClaudeCmd() *cobra.Command {
	var projectFlag, checkFlag, removeFlag bool
	cmd := &cobra.Command{
		Use:   "claude",
		Short: "Install opskit skills into Claude Code",
		Long: `Write every opskit skill to .claude/skills/<name>/SKILL.md so Claude Code can
use them. With --project the skills go under the current directory and the
opskit MCP server is registered in .mcp.json; otherwise they go under
~/.claude.

Skills you wrote yourself are never overwritten or removed.

Examples:
  opskit setup claude            # Install globally
  opskit setup claude --project  # Install for this project
  opskit setup claude --check    # Check if installed
  opskit setup claude --remove   # Uninstall`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSetupClaude(cmd, projectFlag, checkFlag, removeFlag)
		},
	}
	cmd.Flags().BoolVar(&projectFlag, "project", false, "Install for this project only")
	cmd.Flags().BoolVar(&checkFlag, "check", false, "Check installation status without changes")
	cmd.Flags().BoolVar(&removeFlag, "remove", false, "Remove the integration")
	return cmd
}

func runSetupClaude(cmd *cobra.Command, project, check, remove bool) error {
	printer := newPrinter(cmd)
	env := setup.GetAgentEnv("claude")

	if check {
		path, scope, installed, err := env.Check(project)
		if err != nil {
			return fail(cmd, printer, err)
		}
		if printer.IsJSON() {
			return printer.WriteJSON(map[string]any{"installed": installed, "scope": scope, "location": path})
		}
		printer.Mark(installed, env.DisplayName()+" ("+scope+")", path)
		return nil
	}

	if remove {
		removed, err := env.Remove(project)
		if err != nil {
			return fail(cmd, printer, err)
		}
		if printer.IsJSON() {
			return printer.WriteJSON(map[string]any{"removed": removed})
		}
		if len(removed) == 0 {
			printer.Println("No opskit skills installed.")
			return nil
		}
		return printer.Success(map[string]any{"message": "Removed opskit skills from " + env.DisplayName()})
	}

	dir, err := configDir()
	if err != nil {
		return fail(cmd, printer, err)
	}
	root, err := workspaceRoot()
	if err != nil {
		return fail(cmd, printer, err)
	}
	result, err := env.Install(project, skills.NewLoader(root, dir).List())
	if err != nil {
		return fail(cmd, printer, err)
	}

	if printer.IsJSON() {
		return printer.WriteJSON(result)
	}
	_ = printer.Success(map[string]any{"message": "Installed opskit skills for " + env.DisplayName()})
	printer.KeyValue("Skills", result.SkillsDir)
	for _, name := range result.Installed {
		printer.Mark(true, name, "")
	}
	for _, name := range result.Skipped {
		printer.Warn("skipped %s: an existing skill with that name is not managed by opskit", name)
	}
	if result.MCPConfig != "" {
		printer.KeyValue("MCP server", result.MCPConfig)
	}
	return nil
}
