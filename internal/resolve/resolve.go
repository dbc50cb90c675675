// Package resolve merges command-line overrides, the workspace file, the
// global default and environment variables into one credential per provider,
// and reports per-provider readiness.
package resolve

import (
	"fmt"
	"strings"

	"github.com/gorewood/opskit/internal/connection"
	"github.com/gorewood/opskit/internal/workspace"
)

// Source names the layer a resolved record came from.
type Source string

// Resolution layers, highest precedence first.
const (
	SourceOverride    Source = "override"
	SourceWorkspace   Source = "workspace"
	SourceDefault     Source = "default"
	SourceEnvironment Source = "environment"
)

// Resolution is a resolved credential. It is never persisted.
type Resolution struct {
	Provider       connection.Provider
	Record         connection.Record
	Source         Source
	Connection     string
	EnvironmentURL string
	Warnings       []string
}

// Resolver resolves credentials against a store, an optional workspace and
// the environment.
type Resolver struct {
	store     *connection.Store
	env       EnvSource
	workspace *workspace.Config
}

// New creates a Resolver. ws may be nil when the working directory is not a
// workspace; env may be nil to disable the environment layer.
func New(store *connection.Store, env EnvSource, ws *workspace.Config) *Resolver {
	return &Resolver{store: store, env: env, workspace: ws}
}

// Workspace returns the workspace config the resolver was created with.
func (r *Resolver) Workspace() *workspace.Config {
	return r.workspace
}

// candidate is one atomic layer's record.
type candidate struct {
	source Source
	name   string
	record connection.Record
}

// Resolve returns the credential for p.
//
// Layers, highest first: explicit per-field overrides, the connection named
// by workspaceConnection, the provider default from the global config, and
// environment variables. Each of the last three layers contributes a whole
// record; overrides are applied field by field on top of it. The first
// record that is complete after overrides wins. A workspace reference to a
// connection that does not exist is reported as a warning and also rules
// out the default, so only the environment can still satisfy it.
func (r *Resolver) Resolve(
	p connection.Provider, overrides map[string]string, workspaceConnection string,
) (*Resolution, error) {
	if !p.Valid() {
		_, err := connection.ParseProvider(string(p))
		return nil, err
	}
	if err := connection.CheckFields(p, overrides); err != nil {
		return nil, err
	}

	res := &Resolution{Provider: p}
	if p == connection.Dataverse && r.workspace != nil {
		res.EnvironmentURL = r.workspace.EnvironmentURL
	}

	if ov := connection.Apply(connection.Empty(p), overrides); !connection.IsZero(ov) && len(ov.Missing()) == 0 {
		res.Record = ov
		res.Source = SourceOverride
		return res, nil
	}

	candidates, warnings, err := r.candidates(p, workspaceConnection)
	if err != nil {
		return nil, err
	}
	res.Warnings = warnings

	var firstMissing []string
	for _, c := range candidates {
		merged := connection.Apply(c.record, overrides)
		missing := merged.Missing()
		if len(missing) == 0 {
			res.Record = merged
			res.Source = c.source
			res.Connection = c.name
			return res, nil
		}
		if firstMissing == nil {
			firstMissing = missing
		}
	}

	if firstMissing == nil {
		firstMissing = connection.Apply(connection.Empty(p), overrides).Missing()
	}
	return nil, &connection.UnresolvedError{
		Provider: p,
		Missing:  firstMissing,
		Hint:     remediation(p, warnings),
	}
}

// ResolveWorkspace resolves p using the connection the resolver's workspace
// names for it, if any.
func (r *Resolver) ResolveWorkspace(p connection.Provider, overrides map[string]string) (*Resolution, error) {
	return r.Resolve(p, overrides, r.workspace.ConnectionFor(p))
}

// candidates collects the workspace, default and environment records in
// precedence order. The default is never substituted for a missing
// workspace connection.
func (r *Resolver) candidates(p connection.Provider, workspaceConnection string) ([]candidate, []string, error) {
	conns, err := r.store.LoadConnections()
	if err != nil {
		return nil, nil, err
	}
	cfg, err := r.store.LoadGlobal()
	if err != nil {
		return nil, nil, err
	}

	var (
		out      []candidate
		warnings []string
		dangling bool
	)
	if workspaceConnection != "" {
		if rec, ok := conns.Get(p, workspaceConnection); ok {
			out = append(out, candidate{source: SourceWorkspace, name: workspaceConnection, record: rec})
		} else {
			dangling = true
			warnings = append(warnings, fmt.Sprintf(
				"workspace connection %q not found for %s", workspaceConnection, p))
		}
	}
	if def := cfg.Default(p); !dangling && def != "" && def != workspaceConnection {
		if rec, ok := conns.Get(p, def); ok {
			out = append(out, candidate{source: SourceDefault, name: def, record: rec})
		} else {
			warnings = append(warnings, fmt.Sprintf(
				"default connection %q not found for %s", def, p))
		}
	}
	if r.env != nil {
		if rec, ok := r.env.Lookup(p); ok {
			out = append(out, candidate{source: SourceEnvironment, record: rec})
		}
	}
	return out, warnings, nil
}

// remediation builds the hint attached to an UnresolvedError.
func remediation(p connection.Provider, warnings []string) string {
	lines := make([]string, 0, len(warnings)+3)
	lines = append(lines, warnings...)
	lines = append(lines, "Run: opskit add-connection "+string(p)+" <name>")
	if p == connection.Jira {
		lines = append(lines, fmt.Sprintf("Or set %s, %s and %s",
			JiraEnvVars[connection.FieldServer],
			JiraEnvVars[connection.FieldEmail],
			JiraEnvVars[connection.FieldAPIToken]))
	}
	return strings.Join(lines, "\n")
}
