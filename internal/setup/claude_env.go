package setup

import (
	"path/filepath"

	"github.com/gorewood/opskit/internal/skills"
)

// ClaudeEnv implements AgentEnv for Claude Code.
type ClaudeEnv struct{}

func init() {
	RegisterAgentEnv(&ClaudeEnv{})
}

func (c *ClaudeEnv) Name() string { return "claude" }

func (c *ClaudeEnv) DisplayName() string { return "Claude Code" }

// mcpConfigPath is the project .mcp.json next to .claude. Global MCP
// servers live in Claude Code's own state file, which opskit does not edit.
func mcpConfigPath(claudeDir, scope string) string {
	if scope != ScopeProject {
		return ""
	}
	return filepath.Join(filepath.Dir(claudeDir), ".mcp.json")
}

// Detect checks the project scope first, then global.
func (c *ClaudeEnv) Detect() (path, scope string, installed bool) {
	for _, project := range []bool{true, false} {
		p, s, ok, err := c.Check(project)
		if err == nil && ok {
			return p, s, true
		}
	}
	return "", "", false
}

// Install writes the skills and, at project scope, registers the MCP server.
func (c *ClaudeEnv) Install(project bool, list []*skills.Skill) (*InstallResult, error) {
	dir, scope, err := ResolveClaudeDir(project)
	if err != nil {
		return nil, err
	}
	result := &InstallResult{Scope: scope, SkillsDir: filepath.Join(dir, "skills")}
	result.Installed, result.Skipped, err = InstallSkills(result.SkillsDir, list)
	if err != nil {
		return nil, err
	}
	if path := mcpConfigPath(dir, scope); path != "" {
		if err := RegisterMCPServer(path); err != nil {
			return nil, err
		}
		result.MCPConfig = path
	}
	return result, nil
}

// Remove deletes managed skills and the project MCP registration.
func (c *ClaudeEnv) Remove(project bool) ([]string, error) {
	dir, scope, err := ResolveClaudeDir(project)
	if err != nil {
		return nil, err
	}
	skillsDir := filepath.Join(dir, "skills")
	removed, err := RemoveSkills(skillsDir)
	if err != nil {
		return nil, err
	}
	removeEmptyDir(skillsDir)
	if path := mcpConfigPath(dir, scope); path != "" {
		if err := UnregisterMCPServer(path); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// Check reports whether any managed skill exists at the scope.
func (c *ClaudeEnv) Check(project bool) (path, scope string, installed bool, err error) {
	dir, scope, err := ResolveClaudeDir(project)
	if err != nil {
		return "", "", false, err
	}
	skillsDir := filepath.Join(dir, "skills")
	return skillsDir, scope, len(ManagedSkills(skillsDir)) > 0, nil
}
