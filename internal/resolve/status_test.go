package resolve

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/gorewood/opskit/internal/connection"
	"github.com/gorewood/opskit/internal/preflight"
	"github.com/gorewood/opskit/internal/workspace"
)

type fakeInspector struct {
	setup  bool
	checks map[connection.Provider][]preflight.Check
}

func (f *fakeInspector) SetupComplete() bool { return f.setup }

func (f *fakeInspector) Checks(_ context.Context, p connection.Provider) []preflight.Check {
	return f.checks[p]
}

// writeDoc replaces a store document with hand-written JSON.
func writeDoc(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func statusOf(t *testing.T, r *Resolver, p connection.Provider) *ProviderStatus {
	t.Helper()
	report, err := r.Status(context.Background(), nil)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	status := report.Provider(p)
	if status == nil {
		t.Fatalf("report has no %s entry", p)
	}
	return status
}

func TestStatus_AddThenRemoveJira(t *testing.T) {
	s := newTestStore(t)
	r := New(s, nil, nil)

	add(t, s, "main", connection.JiraRecord{
		Server: "https://x.atlassian.net", Email: "a@b.com", APIToken: "tok",
	})
	status := statusOf(t, r, connection.Jira)
	if status.State != StateReady || !status.Ready {
		t.Fatalf("State = %q, want Ready", status.State)
	}
	if status.Connection != "main" || status.Source != SourceDefault {
		t.Errorf("Connection = %q Source = %q, want main/default", status.Connection, status.Source)
	}
	if strings.Contains(status.Summary, "tok") {
		t.Errorf("Summary %q must not include the API token", status.Summary)
	}

	if _, err := s.RemoveConnection(connection.Jira, "main"); err != nil {
		t.Fatal(err)
	}
	status = statusOf(t, r, connection.Jira)
	if status.State != StateNotConfigured || status.Ready {
		t.Fatalf("State = %q, want Not Configured", status.State)
	}
	if !strings.Contains(status.Hint, "opskit add-connection jira") {
		t.Errorf("Hint = %q, want add-connection remediation", status.Hint)
	}
}

func TestStatus_Hints(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, s *connection.Store)
		provider connection.Provider
		wantHint string
	}{
		{
			name:     "nothing added",
			setup:    func(*testing.T, *connection.Store) {},
			provider: connection.ADO,
			wantHint: "opskit add-connection ado",
		},
		{
			name: "connections but no default",
			setup: func(t *testing.T, s *connection.Store) {
				add(t, s, "a", connection.DataverseRecord{TenantID: "t"})
				add(t, s, "b", connection.DataverseRecord{TenantID: "t"})
				if _, err := s.RemoveConnection(connection.Dataverse, "a"); err != nil {
					t.Fatal(err)
				}
			},
			provider: connection.Dataverse,
			wantHint: "opskit set-default dataverse",
		},
		{
			name: "default names a missing connection",
			setup: func(t *testing.T, s *connection.Store) {
				add(t, s, "real", mainJira)
				writeDoc(t, s.ConfigPath(), `{"jira":{"default":"ghost"}}`)
			},
			provider: connection.Jira,
			wantHint: `Default connection "ghost" no longer exists`,
		},
		{
			name: "default record is incomplete",
			setup: func(t *testing.T, s *connection.Store) {
				add(t, s, "main", mainJira)
				writeDoc(t, s.ConnectionsPath(),
					`{"jira":{"main":{"server":"https://x.atlassian.net","email":"a@b.com","api_token":""}}}`)
			},
			provider: connection.Jira,
			wantHint: `Connection "main" is missing api_token`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			tt.setup(t, s)

			status := statusOf(t, New(s, nil, nil), tt.provider)
			if status.Ready {
				t.Fatal("provider should not be ready")
			}
			if !strings.Contains(status.Hint, tt.wantHint) {
				t.Errorf("Hint = %q, want it to contain %q", status.Hint, tt.wantHint)
			}
		})
	}
}

func TestStatus_EnvironmentMakesJiraReady(t *testing.T) {
	s := newTestStore(t)
	env := mapEnv{connection.Jira: connection.JiraRecord{Server: "https://env", Email: "e@x", APIToken: "t"}}

	status := statusOf(t, New(s, env, nil), connection.Jira)
	if !status.Ready || status.Source != SourceEnvironment {
		t.Errorf("status = %+v, want Ready from environment", status)
	}
}

func TestStatus_ReportsDanglingWorkspaceReference(t *testing.T) {
	s := newTestStore(t)
	add(t, s, "main", connection.DataverseRecord{TenantID: "t"})
	ws := &workspace.Config{
		EnvironmentURL: "https://contoso.crm4.dynamics.com",
		Connections: map[connection.Provider]string{
			connection.Dataverse: "main",
			connection.Jira:      "customer",
		},
	}

	report, err := New(s, nil, ws).Status(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if report.Workspace == nil {
		t.Fatal("Workspace = nil, want workspace section")
	}
	if len(report.Workspace.Dangling) != 1 || report.Workspace.Dangling[0] != "jira" {
		t.Errorf("Dangling = %v, want [jira]", report.Workspace.Dangling)
	}
	jira := report.Provider(connection.Jira)
	if len(jira.Warnings) == 0 || !strings.Contains(jira.Warnings[0], "customer") {
		t.Errorf("jira Warnings = %v, want dangling reference", jira.Warnings)
	}
	if dv := report.Provider(connection.Dataverse); len(dv.Warnings) != 0 || !dv.Ready {
		t.Errorf("dataverse = %+v, want ready without warnings", dv)
	}
}

func TestStatus_InspectorDoesNotChangeReadiness(t *testing.T) {
	s := newTestStore(t)
	add(t, s, "main", connection.ADORecord{Organization: "https://dev.azure.com/o", Project: "p"})
	insp := &fakeInspector{
		setup: true,
		checks: map[connection.Provider][]preflight.Check{
			connection.ADO: {{Name: "Azure CLI login", Detail: "not logged in", Hint: "az login"}},
		},
	}

	report, err := New(s, nil, nil).Status(context.Background(), insp)
	if err != nil {
		t.Fatal(err)
	}
	if !report.SetupComplete {
		t.Error("SetupComplete = false, want true")
	}
	ado := report.Provider(connection.ADO)
	if !ado.Ready {
		t.Error("failed prerequisite checks must not make a configured provider Not Configured")
	}
	if len(ado.Checks) != 1 {
		t.Errorf("Checks = %v, want the inspector's checks", ado.Checks)
	}
	if len(report.Providers) != 3 {
		t.Errorf("len(Providers) = %d, want 3", len(report.Providers))
	}
}
