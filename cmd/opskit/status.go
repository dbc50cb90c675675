package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gorewood/opskit/internal/output"
	"github.com/gorewood/opskit/internal/preflight"
	"github.com/gorewood/opskit/internal/resolve"
)

// newInspector probes machine prerequisites. Tests replace it.
var newInspector = func(configDir string) resolve.Inspector {
	return preflight.NewInspector(configDir)
}

// newStatusCmd creates the status command.
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether each provider is ready to use",
		Long: `Show whether Jira, Azure DevOps and Dataverse are Ready or Not Configured.

A provider is Ready when a complete credential resolves from its default
connection or, for Jira, the JIRA_SERVER / JIRA_EMAIL / JIRA_API_TOKEN
environment variables. Prerequisite checks (Azure CLI, login, Python
runtime) are shown for information and do not change readiness.

Examples:
  opskit status
  opskit status --json`,
		Args: cobra.NoArgs,
		RunE: runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	printer := newPrinter(cmd)

	dir, err := configDir()
	if err != nil {
		return fail(cmd, printer, err)
	}
	r, err := newResolver()
	if err != nil {
		return fail(cmd, printer, err)
	}
	report, err := r.Status(cmd.Context(), newInspector(dir))
	if err != nil {
		return fail(cmd, printer, err)
	}

	if printer.IsJSON() {
		return printer.WriteJSON(report)
	}
	printStatus(printer, report)
	return nil
}

// printStatus renders the report for people.
func printStatus(printer *output.Printer, report *resolve.Report) {
	printer.Section("Setup")
	if report.SetupComplete {
		printer.Mark(true, "Python runtime", "installed")
	} else {
		printer.Mark(false, "Python runtime", "run: opskit setup")
	}

	printer.Section("Connections")
	for i := range report.Providers {
		printProviderStatus(printer, &report.Providers[i])
	}

	if ws := report.Workspace; ws != nil {
		printer.Section("Workspace")
		printer.KeyValue("Environment URL", ws.EnvironmentURL)
		for i := range report.Providers {
			p := report.Providers[i].Provider
			if name := ws.Connections[p]; name != "" {
				printer.KeyValue(p.Label()+" connection", name)
			}
		}
	}
}

// printProviderStatus renders one provider: state line, source, hint,
// warnings and checks.
func printProviderStatus(printer *output.Printer, s *resolve.ProviderStatus) {
	line := fmt.Sprintf("%-14s %s", s.Label, printer.State(s.Ready, string(s.State)))
	switch {
	case s.Ready && s.Source == resolve.SourceEnvironment:
		line += printer.Dim("  from environment")
	case s.Ready:
		line += printer.Dim(fmt.Sprintf("  %s (%s)", s.Connection, s.Summary))
	}
	printer.Println(line)
	if !s.Ready && s.Hint != "" {
		printer.Println("    " + printer.Dim("→ "+s.Hint))
	}
	for _, w := range s.Warnings {
		printer.Warn("%s", w)
	}
	for _, c := range s.Checks {
		detail := c.Detail
		if !c.Passed && c.Hint != "" {
			detail = c.Hint
		}
		printer.Mark(c.Passed, c.Name, detail)
	}
}

// newCheckCmd creates the check command.
func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <provider>",
		Short: "Check one provider; exits 1 when it is not ready",
		Long: `Check whether one provider is ready, printing what is missing and how to
fix it. Exits 1 when the provider is not ready, so scripts and skills can
gate on it:

  opskit check jira && run-jira-report`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printer := newPrinter(cmd)

			p, err := parseProviderArg(args[0])
			if err != nil {
				return fail(cmd, printer, err)
			}
			dir, err := configDir()
			if err != nil {
				return fail(cmd, printer, err)
			}
			r, err := newResolver()
			if err != nil {
				return fail(cmd, printer, err)
			}
			report, err := r.Status(cmd.Context(), nil)
			if err != nil {
				return fail(cmd, printer, err)
			}
			status := report.Provider(p)
			status.Checks = newInspector(dir).Checks(cmd.Context(), p)

			if printer.IsJSON() {
				if err := printer.WriteJSON(status); err != nil {
					return err
				}
			} else {
				printProviderStatus(printer, status)
			}
			if !status.Ready {
				return output.NewUserErrorf("%s is not ready", p.Label())
			}
			return nil
		},
	}
}
