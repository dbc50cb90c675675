package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/opskit/internal/connection"
	"github.com/gorewood/opskit/internal/preflight"
	"github.com/gorewood/opskit/internal/resolve"
	"github.com/gorewood/opskit/internal/workspace"
)

// --- Shared types ---

// CheckOutput is one prerequisite probe.
type CheckOutput struct {
	Name   string `json:"name"             jsonschema:"what was checked"`
	Passed bool   `json:"passed"           jsonschema:"whether the check passed"`
	Detail string `json:"detail,omitempty" jsonschema:"probe result detail"`
	Hint   string `json:"hint,omitempty"   jsonschema:"how to fix a failed check"`
}

// ProviderOutput is one provider's readiness.
type ProviderOutput struct {
	Provider   string        `json:"provider"             jsonschema:"provider key: jira, ado or dataverse"`
	Label      string        `json:"label"                jsonschema:"display name"`
	State      string        `json:"state"                jsonschema:"Ready or Not Configured"`
	Ready      bool          `json:"ready"                jsonschema:"whether a complete credential resolves"`
	Source     string        `json:"source,omitempty"     jsonschema:"where the credential came from: default or environment"`
	Connection string        `json:"connection,omitempty" jsonschema:"name of the resolved connection"`
	Summary    string        `json:"summary,omitempty"    jsonschema:"non-secret description of the credential"`
	Missing    []string      `json:"missing,omitempty"    jsonschema:"required fields no source provided"`
	Hint       string        `json:"hint,omitempty"       jsonschema:"command that fixes the problem"`
	Warnings   []string      `json:"warnings,omitempty"   jsonschema:"non-fatal problems such as dangling workspace references"`
	Checks     []CheckOutput `json:"checks,omitempty"     jsonschema:"machine prerequisite checks (informational)"`
}

func toProviderOutput(s *resolve.ProviderStatus) ProviderOutput {
	return ProviderOutput{
		Provider:   string(s.Provider),
		Label:      s.Label,
		State:      string(s.State),
		Ready:      s.Ready,
		Source:     string(s.Source),
		Connection: s.Connection,
		Summary:    s.Summary,
		Missing:    s.Missing,
		Hint:       s.Hint,
		Warnings:   s.Warnings,
		Checks:     toCheckOutputs(s.Checks),
	}
}

func toCheckOutputs(checks []preflight.Check) []CheckOutput {
	if len(checks) == 0 {
		return nil
	}
	out := make([]CheckOutput, 0, len(checks))
	for _, c := range checks {
		out = append(out, CheckOutput{Name: c.Name, Passed: c.Passed, Detail: c.Detail, Hint: c.Hint})
	}
	return out
}

// --- Status tool ---

// StatusInput is the input for the status tool (no parameters).
type StatusInput struct{}

// StatusOutput is the output for the status tool.
type StatusOutput struct {
	SetupComplete  bool              `json:"setup_complete"            jsonschema:"whether the Python runtime for vendor wrappers is installed"`
	Providers      []ProviderOutput  `json:"providers"                 jsonschema:"readiness per provider"`
	EnvironmentURL string            `json:"environment_url,omitempty" jsonschema:"workspace environment URL, when run in a workspace"`
	Workspace      map[string]string `json:"workspace,omitempty"       jsonschema:"connection names the workspace selects per provider"`
}

func handleStatus(deps *Deps) mcp.ToolHandlerFor[StatusInput, StatusOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ StatusInput) (*mcp.CallToolResult, StatusOutput, error) {
		r, err := deps.resolver()
		if err != nil {
			return nil, StatusOutput{}, err
		}
		report, err := r.Status(ctx, deps.Inspector)
		if err != nil {
			return nil, StatusOutput{}, fmt.Errorf("building status: %w", err)
		}

		out := StatusOutput{
			SetupComplete: report.SetupComplete,
			Providers:     make([]ProviderOutput, 0, len(report.Providers)),
		}
		for i := range report.Providers {
			out.Providers = append(out.Providers, toProviderOutput(&report.Providers[i]))
		}
		if ws := report.Workspace; ws != nil {
			out.EnvironmentURL = ws.EnvironmentURL
			if len(ws.Connections) > 0 {
				out.Workspace = make(map[string]string, len(ws.Connections))
				for p, name := range ws.Connections {
					out.Workspace[string(p)] = name
				}
			}
		}
		return nil, out, nil
	}
}

// --- Check tool ---

// CheckInput is the input for the check tool.
type CheckInput struct {
	Provider string `json:"provider" jsonschema:"provider to check: jira, ado or dataverse"`
}

func handleCheck(deps *Deps) mcp.ToolHandlerFor[CheckInput, ProviderOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CheckInput) (*mcp.CallToolResult, ProviderOutput, error) {
		p, err := connection.ParseProvider(input.Provider)
		if err != nil {
			return nil, ProviderOutput{}, err
		}
		r, err := deps.resolver()
		if err != nil {
			return nil, ProviderOutput{}, err
		}
		report, err := r.Status(ctx, nil)
		if err != nil {
			return nil, ProviderOutput{}, fmt.Errorf("checking %s: %w", p, err)
		}
		status := report.Provider(p)
		if deps.Inspector != nil {
			status.Checks = deps.Inspector.Checks(ctx, p)
		}
		return nil, toProviderOutput(status), nil
	}
}

// --- List connections tool ---

// ListConnectionsInput is the input for the list_connections tool.
type ListConnectionsInput struct {
	Provider string `json:"provider,omitempty" jsonschema:"only list this provider (jira, ado or dataverse)"`
}

// ConnectionOutput is one saved connection with secrets masked.
type ConnectionOutput struct {
	Name    string            `json:"name"    jsonschema:"connection name"`
	Default bool              `json:"default" jsonschema:"whether this is the provider's default connection"`
	Fields  map[string]string `json:"fields"  jsonschema:"connection fields; api_token is masked"`
}

// ProviderConnections groups one provider's connections.
type ProviderConnections struct {
	Provider    string             `json:"provider"          jsonschema:"provider key"`
	Default     string             `json:"default,omitempty" jsonschema:"default connection name"`
	Connections []ConnectionOutput `json:"connections"       jsonschema:"saved connections sorted by name"`
}

// ListConnectionsOutput is the output for the list_connections tool.
type ListConnectionsOutput struct {
	Providers []ProviderConnections `json:"providers" jsonschema:"providers with at least one saved connection"`
}

func handleListConnections(deps *Deps) mcp.ToolHandlerFor[ListConnectionsInput, ListConnectionsOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input ListConnectionsInput) (*mcp.CallToolResult, ListConnectionsOutput, error) {
		var only connection.Provider
		if input.Provider != "" {
			p, err := connection.ParseProvider(input.Provider)
			if err != nil {
				return nil, ListConnectionsOutput{}, err
			}
			only = p
		}

		listings, err := deps.Store.List()
		if err != nil {
			return nil, ListConnectionsOutput{}, err
		}

		out := ListConnectionsOutput{Providers: []ProviderConnections{}}
		for _, listing := range listings {
			if only != "" && listing.Provider != only {
				continue
			}
			group := ProviderConnections{Provider: string(listing.Provider), Default: listing.Default}
			for _, named := range listing.Connections {
				group.Connections = append(group.Connections, ConnectionOutput{
					Name:    named.Name,
					Default: named.Name == listing.Default,
					Fields:  connection.Masked(named.Record),
				})
			}
			out.Providers = append(out.Providers, group)
		}
		return nil, out, nil
	}
}

// --- List skills tool ---

// ListSkillsInput is the input for the list_skills tool (no parameters).
type ListSkillsInput struct{}

// SkillOutput is one skill and its readiness.
type SkillOutput struct {
	Name        string   `json:"name"                jsonschema:"skill name"`
	Description string   `json:"description"         jsonschema:"what the skill does"`
	Providers   []string `json:"providers,omitempty" jsonschema:"providers the skill needs"`
	Source      string   `json:"source"              jsonschema:"project, global or built-in"`
	Ready       bool     `json:"ready"               jsonschema:"whether every needed provider is ready"`
	Blocking    []string `json:"blocking,omitempty"  jsonschema:"needed providers that are not ready"`
}

// ListSkillsOutput is the output for the list_skills tool.
type ListSkillsOutput struct {
	Skills []SkillOutput `json:"skills" jsonschema:"available skills sorted by name"`
}

func handleListSkills(deps *Deps) mcp.ToolHandlerFor[ListSkillsInput, ListSkillsOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ ListSkillsInput) (*mcp.CallToolResult, ListSkillsOutput, error) {
		r, err := deps.resolver()
		if err != nil {
			return nil, ListSkillsOutput{}, err
		}
		report, err := r.Status(ctx, nil)
		if err != nil {
			return nil, ListSkillsOutput{}, fmt.Errorf("checking providers: %w", err)
		}
		ready := func(p connection.Provider) bool {
			s := report.Provider(p)
			return s != nil && s.Ready
		}

		out := ListSkillsOutput{Skills: []SkillOutput{}}
		for _, skill := range deps.Skills.List() {
			item := SkillOutput{
				Name:        skill.Name,
				Description: skill.Description,
				Source:      skill.Source,
				Ready:       skill.Ready(ready),
			}
			for _, p := range skill.Providers {
				item.Providers = append(item.Providers, string(p))
			}
			for _, p := range skill.Blocking(ready) {
				item.Blocking = append(item.Blocking, string(p))
			}
			out.Skills = append(out.Skills, item)
		}
		return nil, out, nil
	}
}

// --- Init workspace tool ---

// InitWorkspaceInput is the input for the init_workspace tool.
type InitWorkspaceInput struct {
	EnvironmentURL string `json:"environment_url"     jsonschema:"Dataverse environment URL for this workspace"`
	Jira           string `json:"jira,omitempty"      jsonschema:"Jira connection name to use in this workspace"`
	ADO            string `json:"ado,omitempty"       jsonschema:"Azure DevOps connection name to use in this workspace"`
	Dataverse      string `json:"dataverse,omitempty" jsonschema:"Dataverse connection name to use in this workspace"`
}

// InitWorkspaceOutput is the output for the init_workspace tool.
type InitWorkspaceOutput struct {
	Path           string            `json:"path"                  jsonschema:"path of the written workspace file"`
	EnvironmentURL string            `json:"environment_url"       jsonschema:"environment URL as written"`
	Connections    map[string]string `json:"connections,omitempty" jsonschema:"connection names per provider"`
}

func handleInitWorkspace(deps *Deps) mcp.ToolHandlerFor[InitWorkspaceInput, InitWorkspaceOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input InitWorkspaceInput) (*mcp.CallToolResult, InitWorkspaceOutput, error) {
		if input.EnvironmentURL == "" {
			return nil, InitWorkspaceOutput{}, &connection.ValidationError{
				Field:  "environment_url",
				Reason: "an environment URL is required",
			}
		}
		cfg, err := workspace.Init(deps.Root, input.EnvironmentURL, map[connection.Provider]string{
			connection.Jira:      input.Jira,
			connection.ADO:       input.ADO,
			connection.Dataverse: input.Dataverse,
		})
		if err != nil {
			return nil, InitWorkspaceOutput{}, err
		}

		out := InitWorkspaceOutput{Path: workspace.Path(deps.Root), EnvironmentURL: cfg.EnvironmentURL}
		if len(cfg.Connections) > 0 {
			out.Connections = make(map[string]string, len(cfg.Connections))
			for p, name := range cfg.Connections {
				out.Connections[string(p)] = name
			}
		}
		return nil, out, nil
	}
}
