package skills

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/gorewood/opskit/internal/connection"
)

func writeSkill(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".md"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestParseSkill(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		wantName      string
		wantProviders []connection.Provider
		wantContent   string
		wantErr       bool
	}{
		{
			name:          "full frontmatter",
			raw:           "---\nname: tickets\ndescription: Jira\nproviders: [jira, ado]\n---\nDo things.",
			wantName:      "tickets",
			wantProviders: []connection.Provider{connection.Jira, connection.ADO},
			wantContent:   "Do things.",
		},
		{
			name:        "no frontmatter uses file name",
			raw:         "Just instructions.",
			wantName:    "file",
			wantContent: "Just instructions.",
		},
		{
			name:    "unknown provider",
			raw:     "---\nproviders: [github]\n---\nx",
			wantErr: true,
		},
		{
			name:    "invalid yaml",
			raw:     "---\nproviders: [jira\n---\nx",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skill, err := parseSkill("file", tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("parseSkill() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSkill() error = %v", err)
			}
			if skill.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", skill.Name, tt.wantName)
			}
			if !reflect.DeepEqual(skill.Providers, tt.wantProviders) {
				t.Errorf("Providers = %v, want %v", skill.Providers, tt.wantProviders)
			}
			if skill.Content != tt.wantContent {
				t.Errorf("Content = %q, want %q", skill.Content, tt.wantContent)
			}
		})
	}
}

func TestBuiltinsParse(t *testing.T) {
	builtins := listBuiltins()
	if len(builtins) == 0 {
		t.Fatal("no built-in skills found")
	}
	for _, skill := range builtins {
		if skill.Description == "" {
			t.Errorf("built-in %q has no description", skill.Name)
		}
		if skill.Source != SourceBuiltin {
			t.Errorf("built-in %q Source = %q", skill.Name, skill.Source)
		}
	}
}

func TestLoader_ResolutionOrder(t *testing.T) {
	root := t.TempDir()
	configDir := t.TempDir()
	loader := NewLoader(root, configDir)

	writeSkill(t, filepath.Join(configDir, "skills"), "inspect-code",
		"---\nname: inspect-code\ndescription: global\nproviders: [ado]\n---\nglobal")
	writeSkill(t, filepath.Join(root, "ops", "skills"), "inspect-code",
		"---\nname: inspect-code\ndescription: project\nproviders: [ado]\n---\nproject")

	skill, err := loader.Load("inspect-code")
	if err != nil {
		t.Fatal(err)
	}
	if skill.Source != SourceProject || skill.Description != "project" {
		t.Errorf("Load() = %s/%q, want project override", skill.Source, skill.Description)
	}

	builtin, err := loader.Load("query-service-tickets")
	if err != nil {
		t.Fatal(err)
	}
	if builtin.Source != SourceBuiltin {
		t.Errorf("Source = %q, want built-in", builtin.Source)
	}

	if _, err := loader.Load("no-such-skill"); err == nil {
		t.Error("Load() expected error for unknown skill")
	}
}

func TestLoader_ListOverridesBuiltins(t *testing.T) {
	configDir := t.TempDir()
	writeSkill(t, filepath.Join(configDir, "skills"), "inspect-code",
		"---\nname: inspect-code\ndescription: mine\n---\n")
	writeSkill(t, filepath.Join(configDir, "skills"), "custom",
		"---\nname: custom\ndescription: custom skill\nproviders: [jira]\n---\n")

	skills := NewLoader("", configDir).List()

	count := 0
	var custom *Skill
	for _, skill := range skills {
		if skill.Name == "inspect-code" {
			count++
			if skill.Source != SourceGlobal {
				t.Errorf("inspect-code Source = %q, want global", skill.Source)
			}
		}
		if skill.Name == "custom" {
			custom = skill
		}
	}
	if count != 1 {
		t.Errorf("inspect-code listed %d times, want 1", count)
	}
	if custom == nil {
		t.Fatal("custom skill not listed")
	}
	for i := 1; i < len(skills); i++ {
		if skills[i-1].Name > skills[i].Name {
			t.Errorf("List() not sorted: %q before %q", skills[i-1].Name, skills[i].Name)
		}
	}
}

func TestSkill_Blocking(t *testing.T) {
	skill := &Skill{Providers: []connection.Provider{connection.Jira, connection.Dataverse}}
	ready := func(p connection.Provider) bool { return p == connection.Jira }

	if skill.Ready(ready) {
		t.Error("Ready() = true with dataverse not ready")
	}
	if got := skill.Blocking(ready); !reflect.DeepEqual(got, []connection.Provider{connection.Dataverse}) {
		t.Errorf("Blocking() = %v, want [dataverse]", got)
	}
	if !(&Skill{}).Ready(ready) {
		t.Error("a skill without providers is always ready")
	}
}
