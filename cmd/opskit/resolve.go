package main

import (
	"github.com/spf13/cobra"

	"github.com/gorewood/opskit/internal/connection"
	"github.com/gorewood/opskit/internal/output"
	"github.com/gorewood/opskit/internal/resolve"
)

// newResolveCmd creates the resolve command.
func newResolveCmd() *cobra.Command {
	var connectionName string
	var showSecrets bool
	cmd := &cobra.Command{
		Use:   "resolve <provider>",
		Short: "Print the credential a skill would use",
		Long: `Print the credential that resolves for a provider in the current directory.

Precedence, highest first:
  1. field flags (--server, --email, ...), applied field by field
  2. the connection named by --connection, or by the workspace
  3. the provider's default connection
  4. environment variables (Jira only)

Secrets are masked unless --show-secrets is given.

Examples:
  opskit resolve jira
  opskit resolve ado --connection contoso --project Other
  opskit resolve jira --json --show-secrets`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, args, connectionName, showSecrets)
		},
	}
	cmd.Flags().StringVar(&connectionName, "connection", "", "Connection to use instead of the workspace's")
	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "Print API tokens unmasked")
	addFieldFlags(cmd)
	return cmd
}

func runResolve(cmd *cobra.Command, args []string, connectionName string, showSecrets bool) error {
	printer := newPrinter(cmd)

	p, err := parseProviderArg(args[0])
	if err != nil {
		return fail(cmd, printer, err)
	}
	r, err := newResolver()
	if err != nil {
		return fail(cmd, printer, err)
	}

	name := r.Workspace().ConnectionFor(p)
	if connectionName != "" {
		if err := requireConnection(p, connectionName); err != nil {
			return fail(cmd, printer, err)
		}
		name = connectionName
	}

	res, err := r.Resolve(p, changedFields(cmd), name)
	if err != nil {
		return fail(cmd, printer, output.WrapUserError(err))
	}

	fields := connection.Masked(res.Record)
	if showSecrets {
		fields = nonEmpty(res.Record.Fields())
	}

	if printer.IsJSON() {
		out := map[string]any{
			"provider": p,
			"source":   res.Source,
			"fields":   fields,
		}
		if res.Connection != "" {
			out["connection"] = res.Connection
		}
		if res.EnvironmentURL != "" {
			out["environment_url"] = res.EnvironmentURL
		}
		if len(res.Warnings) > 0 {
			out["warnings"] = res.Warnings
		}
		return printer.WriteJSON(out)
	}

	for _, w := range res.Warnings {
		printer.Warn("%s", w)
	}
	printer.KeyValue("Provider", p.Label())
	printer.KeyValue("Source", sourceLabel(res))
	if res.EnvironmentURL != "" {
		printer.KeyValue("Environment URL", res.EnvironmentURL)
	}
	for _, field := range connection.FieldNames(p) {
		if value, ok := fields[field]; ok {
			printer.Field(field, value, connection.IsSecretField(field) && !showSecrets)
		}
	}
	return nil
}

// requireConnection returns a NotFoundError if name is not saved for p.
func requireConnection(p connection.Provider, name string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	conns, err := store.LoadConnections()
	if err != nil {
		return err
	}
	if _, ok := conns.Get(p, name); !ok {
		return output.WrapUserError(&connection.NotFoundError{Provider: p, Name: name})
	}
	return nil
}

func sourceLabel(res *resolve.Resolution) string {
	if res.Connection != "" {
		return string(res.Source) + " (" + res.Connection + ")"
	}
	return string(res.Source)
}

func nonEmpty(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		if v != "" {
			out[k] = v
		}
	}
	return out
}
