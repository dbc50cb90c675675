package skills

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed builtin/*.md
var builtinFS embed.FS

// loadBuiltin loads a built-in skill by name.
func loadBuiltin(name string) (*Skill, error) {
	path := "builtin/" + name + ".md"
	data, err := builtinFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading builtin skill %s: %w", path, err)
	}
	return parseSkill(name, string(data))
}

// listBuiltins returns every built-in skill.
func listBuiltins() []*Skill {
	dirEntries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil
	}

	var skills []*Skill
	for _, entry := range dirEntries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		skill, err := loadBuiltin(strings.TrimSuffix(entry.Name(), ".md"))
		if err != nil {
			continue
		}
		skill.Source = SourceBuiltin
		skills = append(skills, skill)
	}
	return skills
}
