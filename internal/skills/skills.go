// Package skills loads the skill definitions an agent follows. A skill is a
// markdown file with YAML frontmatter naming the providers it needs:
//
//	---
//	name: query-service-tickets
//	description: Search Jira tickets
//	providers: [jira]
//	---
//	Instructions...
//
// Skills are looked up in the workspace (ops/skills), then the global
// configuration directory (skills/), then the built-in set.
package skills

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gorewood/opskit/internal/connection"
)

// Skill sources.
const (
	SourceProject = "project"
	SourceGlobal  = "global"
	SourceBuiltin = "built-in"
)

// Skill is a parsed skill definition.
type Skill struct {
	Name        string                `yaml:"name"        json:"name"`
	Description string                `yaml:"description" json:"description"`
	Providers   []connection.Provider `yaml:"providers"   json:"providers,omitempty"`

	Content string `yaml:"-" json:"-"`
	Source  string `yaml:"-" json:"source"`
}

// Ready reports whether every provider the skill needs is ready.
func (s *Skill) Ready(ready func(connection.Provider) bool) bool {
	return len(s.Blocking(ready)) == 0
}

// Blocking returns the providers the skill needs that are not ready.
func (s *Skill) Blocking(ready func(connection.Provider) bool) []connection.Provider {
	var blocking []connection.Provider
	for _, p := range s.Providers {
		if !ready(p) {
			blocking = append(blocking, p)
		}
	}
	return blocking
}

// Loader finds skills in the project and global directories. Either
// directory may be empty to skip it.
type Loader struct {
	ProjectDir string
	GlobalDir  string
}

// NewLoader returns a Loader for a workspace root and configuration directory.
func NewLoader(workspaceRoot, configDir string) *Loader {
	l := &Loader{}
	if workspaceRoot != "" {
		l.ProjectDir = filepath.Join(workspaceRoot, "ops", "skills")
	}
	if configDir != "" {
		l.GlobalDir = filepath.Join(configDir, "skills")
	}
	return l
}

// Load finds a skill by name.
// Resolution order: project → global → built-in.
func (l *Loader) Load(name string) (*Skill, error) {
	if skill, err := loadFromDir(l.ProjectDir, name); err == nil {
		skill.Source = SourceProject
		return skill, nil
	}
	if skill, err := loadFromDir(l.GlobalDir, name); err == nil {
		skill.Source = SourceGlobal
		return skill, nil
	}
	if skill, err := loadBuiltin(name); err == nil {
		skill.Source = SourceBuiltin
		return skill, nil
	}
	return nil, fmt.Errorf("skill %q not found", name)
}

// List returns every available skill sorted by name. A project or global
// skill hides a built-in of the same name.
func (l *Loader) List() []*Skill {
	seen := make(map[string]bool)
	var skills []*Skill

	sources := []struct {
		name string
		dir  string
	}{
		{SourceProject, l.ProjectDir},
		{SourceGlobal, l.GlobalDir},
	}
	for _, src := range sources {
		found, err := listDir(src.dir, src.name)
		if err != nil {
			continue // directory might not exist
		}
		for _, skill := range found {
			if !seen[skill.Name] {
				seen[skill.Name] = true
				skills = append(skills, skill)
			}
		}
	}
	for _, skill := range listBuiltins() {
		if !seen[skill.Name] {
			seen[skill.Name] = true
			skills = append(skills, skill)
		}
	}

	sort.Slice(skills, func(i, j int) bool { return skills[i].Name < skills[j].Name })
	return skills
}

func loadFromDir(dir, name string) (*Skill, error) {
	if dir == "" {
		return nil, errors.New("no directory")
	}
	data, err := os.ReadFile(filepath.Join(dir, name+".md"))
	if err != nil {
		return nil, err
	}
	return parseSkill(name, string(data))
}

func listDir(dir, source string) ([]*Skill, error) {
	if dir == "" {
		return nil, errors.New("no directory")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var skills []*Skill
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		skill, err := loadFromDir(dir, strings.TrimSuffix(entry.Name(), ".md"))
		if err != nil {
			continue
		}
		skill.Source = source
		skills = append(skills, skill)
	}
	return skills, nil
}

// parseSkill parses a skill file. The file name is used when the
// frontmatter has no name.
func parseSkill(fileName, raw string) (*Skill, error) {
	frontmatter, content := splitFrontmatter(raw)

	var skill Skill
	if frontmatter != "" {
		if err := yaml.Unmarshal([]byte(frontmatter), &skill); err != nil {
			return nil, fmt.Errorf("invalid frontmatter: %w", err)
		}
	}
	if skill.Name == "" {
		skill.Name = fileName
	}
	for _, p := range skill.Providers {
		if !p.Valid() {
			return nil, fmt.Errorf("skill %s: unknown provider %q", skill.Name, p)
		}
	}
	skill.Content = strings.TrimSpace(content)
	return &skill, nil
}

// splitFrontmatter separates YAML frontmatter delimited by --- lines.
func splitFrontmatter(raw string) (frontmatter, content string) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "---") {
		return "", raw
	}
	before, after, ok := strings.Cut(raw[3:], "\n---")
	if !ok {
		return "", raw
	}
	return strings.TrimSpace(before), strings.TrimSpace(after)
}
