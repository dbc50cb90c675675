package setup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gorewood/opskit/internal/jsonfile"
	"github.com/gorewood/opskit/internal/output"
	"github.com/gorewood/opskit/internal/skills"
)

// ManagedMarker is written into every skill file opskit installs.
const ManagedMarker = "<!-- managed by opskit -->"

// SkillFile is the file name Claude Code reads in each skill directory.
const SkillFile = "SKILL.md"

// MCPServerName is the key opskit registers under mcpServers.
const MCPServerName = "opskit"

// ResolveClaudeDir returns the .claude directory for the scope: the
// working directory's for project scope, the home directory's otherwise.
func ResolveClaudeDir(project bool) (dir, scope string, err error) {
	if project {
		cwd, err := os.Getwd()
		if err != nil {
			return "", "", output.NewSystemErrorWithCause("failed to get working directory", err)
		}
		return filepath.Join(cwd, ".claude"), ScopeProject, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", "", output.NewSystemErrorWithCause("failed to get home directory", err)
	}
	return filepath.Join(home, ".claude"), ScopeGlobal, nil
}

// RenderSkill returns the SKILL.md content for skill.
func RenderSkill(skill *skills.Skill) (string, error) {
	front, err := yaml.Marshal(struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	}{skill.Name, skill.Description})
	if err != nil {
		return "", fmt.Errorf("encoding frontmatter for %s: %w", skill.Name, err)
	}
	var b strings.Builder
	b.WriteString("---\n")
	b.Write(front)
	b.WriteString("---\n")
	b.WriteString(ManagedMarker)
	b.WriteString("\n")
	if len(skill.Providers) > 0 {
		checks := make([]string, len(skill.Providers))
		for i, p := range skill.Providers {
			checks[i] = "`opskit check " + string(p) + "`"
		}
		fmt.Fprintf(&b, "\nBefore starting, confirm the providers are ready: %s.\n", strings.Join(checks, ", "))
	}
	b.WriteString("\n")
	b.WriteString(strings.TrimLeft(skill.Content, "\n"))
	return b.String(), nil
}

// IsManaged reports whether the file at path was written by opskit.
func IsManaged(path string) bool {
	content, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return strings.Contains(string(content), ManagedMarker)
}

// InstallSkills writes each skill to skillsDir/<name>/SKILL.md. Existing
// managed files are overwritten; unmanaged ones are skipped.
func InstallSkills(skillsDir string, list []*skills.Skill) (installed, skipped []string, err error) {
	for _, skill := range list {
		path := filepath.Join(skillsDir, skill.Name, SkillFile)
		if _, statErr := os.Stat(path); statErr == nil && !IsManaged(path) {
			skipped = append(skipped, skill.Name)
			continue
		}
		content, err := RenderSkill(skill)
		if err != nil {
			return installed, skipped, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return installed, skipped, output.NewSystemErrorWithCause("failed to create skill directory", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return installed, skipped, output.NewSystemErrorWithCause("failed to write skill file", err)
		}
		installed = append(installed, skill.Name)
	}
	return installed, skipped, nil
}

// ManagedSkills lists the opskit-managed skills in skillsDir, sorted.
func ManagedSkills(skillsDir string) []string {
	entries, err := os.ReadDir(skillsDir)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() && IsManaged(filepath.Join(skillsDir, entry.Name(), SkillFile)) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names
}

// RemoveSkills deletes every opskit-managed skill directory in skillsDir.
func RemoveSkills(skillsDir string) ([]string, error) {
	names := ManagedSkills(skillsDir)
	for _, name := range names {
		if err := os.RemoveAll(filepath.Join(skillsDir, name)); err != nil {
			return nil, output.NewSystemErrorWithCause("failed to remove skill "+name, err)
		}
	}
	return names, nil
}

// mcpServerEntry is the mcpServers value that launches opskit over stdio.
func mcpServerEntry() map[string]any {
	return map[string]any{
		"command": "opskit",
		"args":    []any{"serve"},
	}
}

// RegisterMCPServer adds opskit to the mcpServers map in the JSON file at
// path, keeping every other key.
func RegisterMCPServer(path string) error {
	doc := map[string]any{}
	if _, err := jsonfile.Read(path, &doc); err != nil {
		return output.NewSystemErrorWithCause("failed to read MCP config", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	servers, _ := doc["mcpServers"].(map[string]any)
	if servers == nil {
		servers = map[string]any{}
	}
	servers[MCPServerName] = mcpServerEntry()
	doc["mcpServers"] = servers
	if err := jsonfile.Write(path, doc, 0o644); err != nil {
		return output.NewSystemErrorWithCause("failed to write MCP config", err)
	}
	return nil
}

// UnregisterMCPServer removes opskit from the JSON file at path. A missing
// file or entry is not an error.
func UnregisterMCPServer(path string) error {
	doc := map[string]any{}
	found, err := jsonfile.Read(path, &doc)
	if err != nil {
		return output.NewSystemErrorWithCause("failed to read MCP config", err)
	}
	servers, _ := doc["mcpServers"].(map[string]any)
	if !found || servers[MCPServerName] == nil {
		return nil
	}
	delete(servers, MCPServerName)
	if err := jsonfile.Write(path, doc, 0o644); err != nil {
		return output.NewSystemErrorWithCause("failed to write MCP config", err)
	}
	return nil
}

// IsMCPServerRegistered reports whether the JSON file at path registers opskit.
func IsMCPServerRegistered(path string) bool {
	doc := map[string]any{}
	if found, err := jsonfile.Read(path, &doc); err != nil || !found {
		return false
	}
	servers, _ := doc["mcpServers"].(map[string]any)
	return servers[MCPServerName] != nil
}

// removeEmptyDir removes dir if it exists and is empty.
func removeEmptyDir(dir string) {
	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		_ = os.Remove(dir)
	}
}
