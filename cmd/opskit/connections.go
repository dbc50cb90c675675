package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gorewood/opskit/internal/connection"
	"github.com/gorewood/opskit/internal/output"
	"github.com/gorewood/opskit/internal/wizard"
)

// newAddConnectionCmd creates the add-connection command.
func newAddConnectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-connection <provider> [name]",
		Short: "Save a named connection for jira, ado or dataverse",
		Long: `Save a named connection. The name defaults to "main". Saving a name that
already exists replaces it. The first connection saved for a provider
becomes its default.

Required fields:
  jira       --server --email --api-token
  ado        --organization --project   (--tenant-id optional)
  dataverse  --tenant-id

Run without field flags in a terminal to be prompted for each field.

Examples:
  opskit add-connection jira --server https://acme.atlassian.net --email me@acme.com --api-token $TOKEN
  opskit add-connection ado contoso --organization https://dev.azure.com/contoso --project Ops
  opskit add-connection dataverse`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runAddConnection,
	}
	addFieldFlags(cmd)
	return cmd
}

func runAddConnection(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	p, err := parseProviderArg(args[0])
	if err != nil {
		return fail(cmd, printer, err)
	}
	name := connection.DefaultName
	if len(args) > 1 {
		name = args[1]
	}

	rec, err := recordFromInput(cmd, p)
	if err != nil {
		return fail(cmd, printer, err)
	}

	store, err := openStore()
	if err != nil {
		return fail(cmd, printer, err)
	}
	result, err := store.AddConnection(name, rec)
	if err != nil {
		return fail(cmd, printer, err)
	}

	if printer.IsJSON() {
		return printer.WriteJSON(map[string]any{
			"provider": p,
			"name":     result.Name,
			"replaced": result.Replaced,
			"default":  result.MadeDefault,
			"fields":   connection.Masked(rec),
		})
	}

	verb := "Added"
	if result.Replaced {
		verb = "Updated"
	}
	msg := fmt.Sprintf("%s %s connection '%s'", verb, p.Label(), result.Name)
	if result.MadeDefault {
		msg += " (default)"
	}
	return printer.Success(map[string]any{"message": msg})
}

// recordFromInput builds the record from field flags, or from the
// interactive form when no flags were given and stdin is a terminal.
func recordFromInput(cmd *cobra.Command, p connection.Provider) (connection.Record, error) {
	fields := changedFields(cmd)
	if len(fields) == 0 && !isJSONMode(cmd) && output.IsTerminalInput(cmd.InOrStdin()) {
		rec, err := wizard.Run(p, cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return nil, output.WrapUserError(err)
		}
		return rec, nil
	}
	rec, err := connection.NewRecord(p, fields)
	if err != nil {
		return nil, output.WrapUserError(err)
	}
	return rec, nil
}

// newRemoveConnectionCmd creates the remove-connection command.
func newRemoveConnectionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-connection <provider> <name>",
		Short: "Delete a saved connection",
		Long: `Delete a saved connection. Removing the provider's default connection
leaves the provider without a default until set-default is run.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			printer := newPrinter(cmd)

			p, err := parseProviderArg(args[0])
			if err != nil {
				return fail(cmd, printer, err)
			}
			store, err := openStore()
			if err != nil {
				return fail(cmd, printer, err)
			}
			cleared, err := store.RemoveConnection(p, args[1])
			if err != nil {
				return fail(cmd, printer, err)
			}

			if printer.IsJSON() {
				return printer.WriteJSON(map[string]any{
					"provider":        p,
					"name":            args[1],
					"cleared_default": cleared,
				})
			}
			_ = printer.Success(map[string]any{
				"message": fmt.Sprintf("Removed %s connection '%s'", p.Label(), args[1]),
			})
			if cleared {
				printer.Warn("%s has no default connection", p.Label())
				printer.Hint("run: opskit set-default %s <name>", p)
			}
			return nil
		},
	}
}

// newSetDefaultCmd creates the set-default command.
func newSetDefaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-default <provider> <name>",
		Short: "Choose the connection used when a workspace names none",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			printer := newPrinter(cmd)

			p, err := parseProviderArg(args[0])
			if err != nil {
				return fail(cmd, printer, err)
			}
			store, err := openStore()
			if err != nil {
				return fail(cmd, printer, err)
			}
			if err := store.SetDefault(p, args[1]); err != nil {
				return fail(cmd, printer, err)
			}

			if printer.IsJSON() {
				return printer.WriteJSON(map[string]any{"provider": p, "default": args[1]})
			}
			return printer.Success(map[string]any{
				"message": fmt.Sprintf("%s default connection is now '%s'", p.Label(), args[1]),
			})
		},
	}
}

// connectionJSON is one connection in list-connections --json output.
type connectionJSON struct {
	Name    string            `json:"name"`
	Default bool              `json:"default"`
	Fields  map[string]string `json:"fields"`
}

// providerJSON groups connections in list-connections --json output.
type providerJSON struct {
	Provider    connection.Provider `json:"provider"`
	Default     string              `json:"default,omitempty"`
	Connections []connectionJSON    `json:"connections"`
}

// newListConnectionsCmd creates the list-connections command.
func newListConnectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-connections [provider]",
		Short: "Show saved connections with secrets masked",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runListConnections,
	}
}

func runListConnections(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	var only connection.Provider
	if len(args) == 1 {
		p, err := parseProviderArg(args[0])
		if err != nil {
			return fail(cmd, printer, err)
		}
		only = p
	}

	store, err := openStore()
	if err != nil {
		return fail(cmd, printer, err)
	}
	listings, err := store.List()
	if err != nil {
		return fail(cmd, printer, err)
	}

	groups := make([]providerJSON, 0, len(listings))
	for _, listing := range listings {
		if only != "" && listing.Provider != only {
			continue
		}
		group := providerJSON{Provider: listing.Provider, Default: listing.Default}
		for _, named := range listing.Connections {
			group.Connections = append(group.Connections, connectionJSON{
				Name:    named.Name,
				Default: named.Name == listing.Default,
				Fields:  connection.Masked(named.Record),
			})
		}
		groups = append(groups, group)
	}

	if printer.IsJSON() {
		return printer.WriteJSON(map[string]any{"providers": groups})
	}

	if len(groups) == 0 {
		printer.Println("No connections configured.")
		printer.Hint("run: opskit add-connection <jira|ado|dataverse>")
		return nil
	}
	for _, group := range groups {
		printer.Section(group.Provider.Label())
		for _, c := range group.Connections {
			line := "  " + c.Name
			if c.Default {
				line += printer.Dim(" (default)")
			}
			printer.Println(line)
			for _, field := range connection.FieldNames(group.Provider) {
				if value, ok := c.Fields[field]; ok {
					printer.Field(field, value, connection.IsSecretField(field))
				}
			}
		}
	}
	return nil
}
