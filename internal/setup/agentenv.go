package setup

import (
	"slices"

	"github.com/gorewood/opskit/internal/skills"
)

// Scopes an integration can be installed at.
const (
	ScopeProject = "project"
	ScopeGlobal  = "global"
)

// InstallResult describes what Install changed.
type InstallResult struct {
	Scope     string   `json:"scope"`
	SkillsDir string   `json:"skills_dir"`
	Installed []string `json:"installed"`
	Skipped   []string `json:"skipped,omitempty"`
	MCPConfig string   `json:"mcp_config,omitempty"`
}

// AgentEnv is an agent coding environment opskit can install into.
type AgentEnv interface {
	// Name is the CLI identifier, e.g. "claude".
	Name() string
	DisplayName() string

	// Detect reports the first scope (project, then global) where opskit
	// skills are installed.
	Detect() (path, scope string, installed bool)

	// Install writes the skills and registers the MCP server where the
	// environment supports it. Unmanaged files with the same name are
	// left alone and reported as skipped.
	Install(project bool, list []*skills.Skill) (*InstallResult, error)

	// Remove deletes opskit-managed skills and the MCP registration and
	// returns the removed skill names.
	Remove(project bool) ([]string, error)

	// Check reports the location and install state for one scope.
	Check(project bool) (path, scope string, installed bool, err error)
}

var registry = map[string]AgentEnv{}

// RegisterAgentEnv adds env to the registry.
func RegisterAgentEnv(env AgentEnv) {
	registry[env.Name()] = env
}

// GetAgentEnv returns a registered environment by name, or nil.
func GetAgentEnv(name string) AgentEnv {
	return registry[name]
}

// AllAgentEnvs returns every registered environment in a stable order.
func AllAgentEnvs() []AgentEnv {
	order := []string{"claude"}
	var result []AgentEnv
	for _, name := range order {
		if env, ok := registry[name]; ok {
			result = append(result, env)
		}
	}
	var rest []string
	for name := range registry {
		if !slices.Contains(order, name) {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	for _, name := range rest {
		result = append(result, registry[name])
	}
	return result
}

// DetectedAgentEnvs returns the environments opskit is installed in.
func DetectedAgentEnvs() []AgentEnv {
	var detected []AgentEnv
	for _, env := range AllAgentEnvs() {
		if _, _, installed := env.Detect(); installed {
			detected = append(detected, env)
		}
	}
	return detected
}
