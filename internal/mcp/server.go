// Package mcp exposes opskit's connection and workspace state as Model
// Context Protocol tools so an agent can check readiness before it runs a
// skill.
package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/opskit/internal/connection"
	"github.com/gorewood/opskit/internal/resolve"
	"github.com/gorewood/opskit/internal/skills"
	"github.com/gorewood/opskit/internal/workspace"
)

// Deps are the stores the tools read and write. Inspector may be nil to
// skip prerequisite probes.
type Deps struct {
	Store     *connection.Store
	Env       resolve.EnvSource
	Root      string
	Inspector resolve.Inspector
	Skills    *skills.Loader
}

// resolver loads the workspace fresh on every call so init_workspace takes
// effect for later tools in the same session.
func (d *Deps) resolver() (*resolve.Resolver, error) {
	ws, err := workspace.Load(d.Root)
	if err != nil {
		return nil, err
	}
	return resolve.New(d.Store, d.Env, ws), nil
}

// NewServer creates an MCP server with every opskit tool registered.
func NewServer(version string, deps *Deps) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "opskit",
		Version: version,
	}, nil)
	registerTools(server, deps)
	return server
}

func boolPtr(b bool) *bool {
	return &b
}

func readOnlyAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(false),
	}
}

// writeAnnotations marks tools that replace local files.
func writeAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		DestructiveHint: boolPtr(true),
		IdempotentHint:  true,
		OpenWorldHint:   boolPtr(false),
	}
}

func registerTools(server *mcp.Server, deps *Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "status",
		Description: "Report whether Jira, Azure DevOps and Dataverse are Ready or Not Configured, with remediation hints and prerequisite checks.",
		Annotations: readOnlyAnnotations(),
	}, handleStatus(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check",
		Description: "Check a single provider (jira, ado or dataverse) and explain what is missing when it is not ready.",
		Annotations: readOnlyAnnotations(),
	}, handleCheck(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_connections",
		Description: "List saved connections per provider with the default marked. API tokens are masked.",
		Annotations: readOnlyAnnotations(),
	}, handleListConnections(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_skills",
		Description: "List available skills, the providers each needs, and whether those providers are ready.",
		Annotations: readOnlyAnnotations(),
	}, handleListSkills(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "init_workspace",
		Description: "Write ops/opskit.json in the current directory with the environment URL and optional per-provider connection names. Replaces any existing file.",
		Annotations: writeAnnotations(),
	}, handleInitWorkspace(deps))
}
