package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/gorewood/opskit/internal/config"
	"github.com/gorewood/opskit/internal/connection"
	"github.com/gorewood/opskit/internal/output"
	"github.com/gorewood/opskit/internal/resolve"
	"github.com/gorewood/opskit/internal/workspace"
)

// configDir returns the configuration directory or a system error.
func configDir() (string, error) {
	dir := config.Dir()
	if dir == "" {
		return "", output.NewSystemError("cannot determine the opskit configuration directory; set " + config.EnvConfigHome)
	}
	return dir, nil
}

func openStore() (*connection.Store, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}
	return connection.NewStore(dir), nil
}

// workspaceRoot is the current directory; a workspace is any directory
// containing ops/opskit.json.
func workspaceRoot() (string, error) {
	root, err := os.Getwd()
	if err != nil {
		return "", output.NewSystemErrorWithCause("failed to get working directory", err)
	}
	return root, nil
}

// newResolver wires the store, environment and current workspace.
func newResolver() (*resolve.Resolver, error) {
	store, err := openStore()
	if err != nil {
		return nil, err
	}
	root, err := workspaceRoot()
	if err != nil {
		return nil, err
	}
	ws, err := workspace.Load(root)
	if err != nil {
		return nil, err
	}
	return resolve.New(store, resolve.NewEnvironment(), ws), nil
}

// parseProviderArg parses a provider argument as a user error.
func parseProviderArg(arg string) (connection.Provider, error) {
	p, err := connection.ParseProvider(arg)
	if err != nil {
		return "", output.WrapUserError(err)
	}
	return p, nil
}

// fail prints err with any remediation hint it carries and returns it.
func fail(cmd *cobra.Command, printer *output.Printer, err error) error {
	printer.Error(err)
	var unresolved *connection.UnresolvedError
	if errors.As(err, &unresolved) && unresolved.Hint != "" {
		printer.Hint("%s", unresolved.Hint)
	}
	var notFound *connection.NotFoundError
	if errors.As(err, &notFound) {
		printer.Hint("run: %s list-connections", cmd.Root().Name())
	}
	return err
}

// fieldFlags maps each field flag name to its record field.
var fieldFlags = []struct {
	flag  string
	field string
	usage string
}{
	{"server", connection.FieldServer, "Jira server URL"},
	{"email", connection.FieldEmail, "Jira account email"},
	{"api-token", connection.FieldAPIToken, "Jira API token"},
	{"organization", connection.FieldOrganization, "Azure DevOps organization URL"},
	{"project", connection.FieldProject, "Azure DevOps project name"},
	{"tenant-id", connection.FieldTenantID, "Azure tenant ID"},
}

// addFieldFlags registers --server, --email, --api-token, --organization,
// --project and --tenant-id.
func addFieldFlags(cmd *cobra.Command) {
	for _, f := range fieldFlags {
		cmd.Flags().String(f.flag, "", f.usage)
	}
}

// changedFields returns the field flags the user set, keyed by field name.
func changedFields(cmd *cobra.Command) map[string]string {
	fields := make(map[string]string)
	for _, f := range fieldFlags {
		if flag := cmd.Flags().Lookup(f.flag); flag != nil && flag.Changed {
			fields[f.field] = flag.Value.String()
		}
	}
	return fields
}
