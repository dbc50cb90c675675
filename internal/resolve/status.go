package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gorewood/opskit/internal/connection"
	"github.com/gorewood/opskit/internal/preflight"
)

// State is a provider's readiness.
type State string

// Provider states.
const (
	StateReady         State = "Ready"
	StateNotConfigured State = "Not Configured"
)

// Inspector reports machine-level prerequisites. *preflight.Inspector
// satisfies it.
type Inspector interface {
	SetupComplete() bool
	Checks(ctx context.Context, p connection.Provider) []preflight.Check
}

// ProviderStatus is one provider's line in the status report.
type ProviderStatus struct {
	Provider   connection.Provider `json:"provider"`
	Label      string              `json:"label"`
	State      State               `json:"state"`
	Ready      bool                `json:"ready"`
	Source     Source              `json:"source,omitempty"`
	Connection string              `json:"connection,omitempty"`
	Summary    string              `json:"summary,omitempty"`
	Missing    []string            `json:"missing,omitempty"`
	Hint       string              `json:"hint,omitempty"`
	Warnings   []string            `json:"warnings,omitempty"`
	Checks     []preflight.Check   `json:"checks,omitempty"`
}

// WorkspaceStatus describes the workspace in the working directory.
type WorkspaceStatus struct {
	EnvironmentURL string                         `json:"environment_url,omitempty"`
	Connections    map[connection.Provider]string `json:"connections,omitempty"`
	Dangling       []string                       `json:"dangling,omitempty"`
}

// Report is the full status output.
type Report struct {
	SetupComplete bool             `json:"setup_complete"`
	Providers     []ProviderStatus `json:"providers"`
	Workspace     *WorkspaceStatus `json:"workspace,omitempty"`
}

// Provider returns the status for p, or nil if the report lacks it.
func (r *Report) Provider(p connection.Provider) *ProviderStatus {
	for i := range r.Providers {
		if r.Providers[i].Provider == p {
			return &r.Providers[i]
		}
	}
	return nil
}

// Status reports readiness for every provider. A provider is Ready when
// resolution succeeds from its default connection (or the environment
// fallback). insp may be nil to skip prerequisite probes.
func (r *Resolver) Status(ctx context.Context, insp Inspector) (*Report, error) {
	report := &Report{}
	if insp != nil {
		report.SetupComplete = insp.SetupComplete()
	}

	conns, err := r.store.LoadConnections()
	if err != nil {
		return nil, err
	}
	cfg, err := r.store.LoadGlobal()
	if err != nil {
		return nil, err
	}

	if r.workspace != nil {
		report.Workspace = &WorkspaceStatus{
			EnvironmentURL: r.workspace.EnvironmentURL,
			Connections:    r.workspace.Connections,
		}
	}

	for _, p := range connection.Providers() {
		status, err := r.CheckProvider(p)
		if err != nil {
			return nil, err
		}
		if ref := r.workspace.ConnectionFor(p); ref != "" {
			if _, ok := conns.Get(p, ref); !ok {
				msg := fmt.Sprintf("workspace references %s connection %q, which does not exist", p, ref)
				status.Warnings = append(status.Warnings, msg)
				report.Workspace.Dangling = append(report.Workspace.Dangling, string(p))
			}
		}
		if !status.Ready {
			status.Hint = notReadyHint(p, conns, cfg, status.Missing)
		}
		if insp != nil {
			status.Checks = insp.Checks(ctx, p)
		}
		report.Providers = append(report.Providers, *status)
	}
	return report, nil
}

// CheckProvider resolves p from its default connection and environment
// fallback and reports the outcome. Remediation hints are left to Status.
func (r *Resolver) CheckProvider(p connection.Provider) (*ProviderStatus, error) {
	status := &ProviderStatus{Provider: p, Label: p.Label(), State: StateNotConfigured}

	res, err := r.Resolve(p, nil, "")
	var unresolved *connection.UnresolvedError
	switch {
	case err == nil:
		status.State = StateReady
		status.Ready = true
		status.Source = res.Source
		status.Connection = res.Connection
		status.Summary = summarize(res.Record)
		status.Warnings = res.Warnings
	case errors.As(err, &unresolved):
		status.Missing = unresolved.Missing
		status.Hint = unresolved.Hint
	default:
		return nil, err
	}
	return status, nil
}

// notReadyHint explains what is missing, from most to least fundamental.
func notReadyHint(p connection.Provider, conns *connection.Connections, cfg connection.GlobalConfig, missing []string) string {
	names := conns.Names(p)
	def := cfg.Default(p)

	var hint string
	switch {
	case len(names) == 0:
		hint = fmt.Sprintf("No %s connection added. Run: opskit add-connection %s <name>", p.Label(), p)
		if p == connection.Jira {
			hint += fmt.Sprintf("\nOr set %s, %s and %s",
				JiraEnvVars[connection.FieldServer],
				JiraEnvVars[connection.FieldEmail],
				JiraEnvVars[connection.FieldAPIToken])
		}
	case def == "":
		hint = fmt.Sprintf("No default %s connection set (available: %s). Run: opskit set-default %s <name>",
			p.Label(), strings.Join(names, ", "), p)
	default:
		if _, ok := conns.Get(p, def); !ok {
			hint = fmt.Sprintf("Default connection %q no longer exists. Run: opskit set-default %s <name>", def, p)
		} else {
			hint = fmt.Sprintf("Connection %q is missing %s. Run: opskit add-connection %s %s",
				def, strings.Join(missing, ", "), p, def)
		}
	}
	return hint
}

// summarize returns the non-secret identifying fields of a record.
func summarize(rec connection.Record) string {
	fields := rec.Fields()
	var parts []string
	for _, name := range connection.FieldNames(rec.Provider()) {
		if connection.IsSecretField(name) || fields[name] == "" {
			continue
		}
		parts = append(parts, fields[name])
		if len(parts) == 2 {
			break
		}
	}
	return strings.Join(parts, ", ")
}
