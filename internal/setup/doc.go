// Package setup installs opskit into agent coding environments.
//
// An AgentEnv knows where an agent looks for skills and MCP servers. For
// Claude Code, Install writes each opskit skill to
// .claude/skills/<name>/SKILL.md and, at project scope, registers the
// opskit MCP server in .mcp.json:
//
//	env := setup.GetAgentEnv("claude")
//	result, err := env.Install(true, loader.List())
//	removed, err := env.Remove(true)
//
// Files opskit writes carry a marker line so Remove never deletes skills
// the user wrote by hand.
package setup
