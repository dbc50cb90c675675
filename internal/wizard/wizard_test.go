package wizard

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gorewood/opskit/internal/connection"
)

// typeText sends each rune of s to the model.
func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	return m
}

func press(t *testing.T, m Model, key tea.KeyType) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: key})
	return next.(Model), cmd
}

func TestModel_DataverseSubmit(t *testing.T) {
	m := New(connection.Dataverse)
	m = typeText(t, m, "tenant-123")

	m, cmd := press(t, m, tea.KeyEnter)
	if cmd == nil {
		t.Fatal("submitting a complete form should quit")
	}
	want := connection.DataverseRecord{TenantID: "tenant-123"}
	if m.Record() != want {
		t.Errorf("Record() = %#v, want %#v", m.Record(), want)
	}
}

func TestModel_JiraFlow(t *testing.T) {
	m := New(connection.Jira)
	m = typeText(t, m, "https://x.atlassian.net/")
	m, _ = press(t, m, tea.KeyEnter)
	m = typeText(t, m, "a@b.com")
	m, _ = press(t, m, tea.KeyEnter)
	m = typeText(t, m, "tok")
	m, _ = press(t, m, tea.KeyEnter)

	want := connection.JiraRecord{Server: "https://x.atlassian.net", Email: "a@b.com", APIToken: "tok"}
	if m.Record() != want {
		t.Errorf("Record() = %#v, want %#v", m.Record(), want)
	}
}

func TestModel_IncompleteShowsErrorAndFocusesMissing(t *testing.T) {
	m := New(connection.Jira)
	m = typeText(t, m, "https://x.atlassian.net")
	m, _ = press(t, m, tea.KeyTab)
	m, _ = press(t, m, tea.KeyTab) // on api_token, the last field
	m = typeText(t, m, "tok")
	m, _ = press(t, m, tea.KeyEnter)

	if m.Record() != nil {
		t.Fatal("incomplete form must not produce a record")
	}
	if m.focus != 1 {
		t.Errorf("focus = %d, want 1 (email)", m.focus)
	}
	if !strings.Contains(m.View(), "email") {
		t.Errorf("View() should show the validation error:\n%s", m.View())
	}
}

func TestModel_EscCancels(t *testing.T) {
	m := New(connection.ADO)
	m, cmd := press(t, m, tea.KeyEsc)
	if !m.Cancelled() {
		t.Error("Cancelled() = false after esc")
	}
	if cmd == nil {
		t.Error("esc should quit the program")
	}
}

func TestModel_FocusWraps(t *testing.T) {
	m := New(connection.ADO)
	m, _ = press(t, m, tea.KeyShiftTab)
	if m.focus != 2 {
		t.Errorf("focus = %d, want 2 after wrapping backwards", m.focus)
	}
	m, _ = press(t, m, tea.KeyTab)
	if m.focus != 0 {
		t.Errorf("focus = %d, want 0 after wrapping forwards", m.focus)
	}
}

func TestModel_ViewMarksOptionalAndHidesToken(t *testing.T) {
	ado := New(connection.ADO).View()
	if !strings.Contains(ado, "Tenant ID (optional)") {
		t.Errorf("ADO view should mark tenant optional:\n%s", ado)
	}

	m := New(connection.Jira)
	m, _ = press(t, m, tea.KeyTab)
	m, _ = press(t, m, tea.KeyTab)
	m = typeText(t, m, "supersecret")
	if strings.Contains(m.View(), "supersecret") {
		t.Error("API token must be masked in the view")
	}
}
