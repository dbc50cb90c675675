// Package wizard prompts for a connection's fields in the terminal when
// add-connection is run without field flags.
package wizard

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gorewood/opskit/internal/connection"
)

// ErrCancelled is returned when the operator aborts the form.
var ErrCancelled = errors.New("connection setup cancelled")

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

type fieldInfo struct {
	label       string
	placeholder string
}

var fieldInfos = map[string]fieldInfo{
	connection.FieldServer:       {"Server URL", "https://yourcompany.atlassian.net"},
	connection.FieldEmail:        {"Email", "you@company.com"},
	connection.FieldAPIToken:     {"API token", ""},
	connection.FieldOrganization: {"Organization URL", "https://dev.azure.com/yourorg"},
	connection.FieldProject:      {"Project name", ""},
	connection.FieldTenantID:     {"Tenant ID", ""},
}

// intro returns the text shown above the form.
func intro(p connection.Provider) string {
	switch p {
	case connection.Jira:
		return "Create an API token at: https://id.atlassian.com/manage-profile/security/api-tokens"
	case connection.ADO:
		return "Requires: az login (Azure CLI). Tenant ID is optional."
	case connection.Dataverse:
		return "Requires: az login (Azure CLI). Environment URL is set per workspace in ops/opskit.json."
	default:
		return ""
	}
}

// Model is the bubbletea model for the connection form.
type Model struct {
	provider  connection.Provider
	fields    []string
	inputs    []textinput.Model
	focus     int
	errMsg    string
	record    connection.Record
	cancelled bool
}

// New returns a form for p with the first field focused.
func New(p connection.Provider) Model {
	fields := connection.FieldNames(p)
	inputs := make([]textinput.Model, len(fields))
	for i, name := range fields {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.Placeholder = fieldInfos[name].placeholder
		ti.CharLimit = 512
		if connection.IsSecretField(name) {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		inputs[i] = ti
	}
	if len(inputs) > 0 {
		inputs[0].Focus()
	}
	return Model{provider: p, fields: fields, inputs: inputs}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyTab, tea.KeyDown:
			return m, m.setFocus(m.focus + 1)
		case tea.KeyShiftTab, tea.KeyUp:
			return m, m.setFocus(m.focus - 1)
		case tea.KeyEnter:
			if m.focus < len(m.inputs)-1 {
				return m, m.setFocus(m.focus + 1)
			}
			return m.submit()
		}
	}

	if len(m.inputs) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// submit validates the form and quits on success. On failure the first
// missing field is focused and the error shown.
func (m Model) submit() (tea.Model, tea.Cmd) {
	rec, err := connection.NewRecord(m.provider, m.Values())
	if err != nil {
		m.errMsg = err.Error()
		missing := connection.Apply(connection.Empty(m.provider), m.Values()).Missing()
		if len(missing) > 0 {
			for i, name := range m.fields {
				if name == missing[0] {
					return m, m.setFocus(i)
				}
			}
		}
		return m, nil
	}
	m.record = rec
	m.errMsg = ""
	return m, tea.Quit
}

// setFocus moves focus to index i, wrapping around.
func (m *Model) setFocus(i int) tea.Cmd {
	if len(m.inputs) == 0 {
		return nil
	}
	n := len(m.inputs)
	m.focus = ((i % n) + n) % n
	for j := range m.inputs {
		m.inputs[j].Blur()
	}
	return m.inputs[m.focus].Focus()
}

// Values returns the current field values keyed by field name.
func (m Model) Values() map[string]string {
	values := make(map[string]string, len(m.fields))
	for i, name := range m.fields {
		if v := strings.TrimSpace(m.inputs[i].Value()); v != "" {
			values[name] = v
		}
	}
	return values
}

// Record returns the submitted record, or nil if the form was not completed.
func (m Model) Record() connection.Record {
	return m.record
}

// Cancelled reports whether the operator aborted the form.
func (m Model) Cancelled() bool {
	return m.cancelled
}

// View implements tea.Model.
func (m Model) View() string {
	if m.record != nil || m.cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s Connection Setup", m.provider.Label())))
	b.WriteString("\n")
	if text := intro(m.provider); text != "" {
		b.WriteString(dimStyle.Render(text))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	required := make(map[string]bool)
	for _, name := range connection.RequiredFields(m.provider) {
		required[name] = true
	}
	for i, name := range m.fields {
		label := fieldInfos[name].label
		if !required[name] {
			label += " (optional)"
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString("\n")
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n\n")
	}
	if m.errMsg != "" {
		b.WriteString(errStyle.Render(m.errMsg))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("enter: next/save • tab: switch field • esc: cancel"))
	b.WriteString("\n")
	return b.String()
}

// Run shows the form on in/out and returns the completed record.
func Run(p connection.Provider, in io.Reader, out io.Writer) (connection.Record, error) {
	final, err := tea.NewProgram(New(p), tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return nil, fmt.Errorf("running connection form: %w", err)
	}
	m, ok := final.(Model)
	if !ok || m.Cancelled() || m.Record() == nil {
		return nil, ErrCancelled
	}
	return m.Record(), nil
}
