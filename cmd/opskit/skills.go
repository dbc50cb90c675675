package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gorewood/opskit/internal/connection"
	"github.com/gorewood/opskit/internal/output"
	"github.com/gorewood/opskit/internal/skills"
)

// skillJSON is one skill in skills --json output.
type skillJSON struct {
	*skills.Skill
	Ready    bool                  `json:"ready"`
	Blocking []connection.Provider `json:"blocking,omitempty"`
}

// newSkillsCmd creates the skills command.
func newSkillsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "skills [name]",
		Short: "List skills and whether their providers are ready",
		Long: `List the skills available to the agent and whether the providers each
one needs are ready. With a name, print that skill's instructions.

Skills in ops/skills/ (workspace) and <config dir>/skills/ override the
built-in skills of the same name.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSkills,
	}
}

func runSkills(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	dir, err := configDir()
	if err != nil {
		return fail(cmd, printer, err)
	}
	root, err := workspaceRoot()
	if err != nil {
		return fail(cmd, printer, err)
	}
	loader := skills.NewLoader(root, dir)

	r, err := newResolver()
	if err != nil {
		return fail(cmd, printer, err)
	}
	report, err := r.Status(cmd.Context(), nil)
	if err != nil {
		return fail(cmd, printer, err)
	}
	ready := func(p connection.Provider) bool {
		s := report.Provider(p)
		return s != nil && s.Ready
	}

	if len(args) == 1 {
		skill, err := loader.Load(args[0])
		if err != nil {
			return fail(cmd, printer, output.WrapUserError(err))
		}
		if printer.IsJSON() {
			return printer.WriteJSON(map[string]any{
				"skill":   skillJSON{Skill: skill, Ready: skill.Ready(ready), Blocking: skill.Blocking(ready)},
				"content": skill.Content,
			})
		}
		for _, p := range skill.Blocking(ready) {
			printer.Warn("%s is not ready", p.Label())
			printer.Hint("run: opskit check %s", p)
		}
		printer.Print("%s", skill.Content)
		if !strings.HasSuffix(skill.Content, "\n") {
			printer.Println()
		}
		return nil
	}

	list := loader.List()
	if printer.IsJSON() {
		out := make([]skillJSON, 0, len(list))
		for _, skill := range list {
			out = append(out, skillJSON{Skill: skill, Ready: skill.Ready(ready), Blocking: skill.Blocking(ready)})
		}
		return printer.WriteJSON(map[string]any{"skills": out})
	}

	rows := make([][]string, 0, len(list))
	for _, skill := range list {
		state := "ready"
		if blocking := skill.Blocking(ready); len(blocking) > 0 {
			names := make([]string, len(blocking))
			for i, p := range blocking {
				names[i] = string(p)
			}
			state = fmt.Sprintf("needs %s", strings.Join(names, ", "))
		}
		rows = append(rows, []string{skill.Name, state, skill.Source, skill.Description})
	}
	printer.Table([]string{"NAME", "STATUS", "SOURCE", "DESCRIPTION"}, rows)
	return nil
}
