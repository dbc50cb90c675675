package resolve

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/gorewood/opskit/internal/connection"
	"github.com/gorewood/opskit/internal/workspace"
)

var (
	mainJira = connection.JiraRecord{Server: "https://x.atlassian.net", Email: "a@b.com", APIToken: "tok"}
	altJira  = connection.JiraRecord{Server: "https://alt.atlassian.net", Email: "c@d.com", APIToken: "alt"}
)

// mapEnv is an EnvSource backed by a fixed set of records.
type mapEnv map[connection.Provider]connection.Record

func (m mapEnv) Lookup(p connection.Provider) (connection.Record, bool) {
	rec, ok := m[p]
	return rec, ok
}

func newTestStore(t *testing.T) *connection.Store {
	t.Helper()
	return connection.NewStore(filepath.Join(t.TempDir(), "opskit"))
}

func add(t *testing.T, s *connection.Store, name string, rec connection.Record) {
	t.Helper()
	if _, err := s.AddConnection(name, rec); err != nil {
		t.Fatalf("AddConnection(%q) error = %v", name, err)
	}
}

func TestResolve_AddThenResolveReturnsRecord(t *testing.T) {
	records := []connection.Record{
		mainJira,
		connection.ADORecord{Organization: "https://dev.azure.com/org", Project: "Ops", TenantID: "tid"},
		connection.DataverseRecord{TenantID: "tid"},
	}

	for _, rec := range records {
		t.Run(string(rec.Provider()), func(t *testing.T) {
			s := newTestStore(t)
			add(t, s, "customer", rec)

			res, err := New(s, nil, nil).Resolve(rec.Provider(), nil, "customer")
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if res.Record != rec {
				t.Errorf("Record = %#v, want %#v", res.Record, rec)
			}
			if res.Source != SourceWorkspace || res.Connection != "customer" {
				t.Errorf("Source = %q Connection = %q, want workspace/customer", res.Source, res.Connection)
			}
		})
	}
}

func TestResolve_AfterRemoveIsUnresolved(t *testing.T) {
	s := newTestStore(t)
	add(t, s, "main", mainJira)
	if _, err := s.RemoveConnection(connection.Jira, "main"); err != nil {
		t.Fatal(err)
	}

	_, err := New(s, nil, nil).Resolve(connection.Jira, nil, "main")
	var unresolved *connection.UnresolvedError
	if !errors.As(err, &unresolved) {
		t.Fatalf("Resolve() error = %v, want UnresolvedError", err)
	}
	want := []string{"server", "email", "api_token"}
	if !reflect.DeepEqual(unresolved.Missing, want) {
		t.Errorf("Missing = %v, want %v", unresolved.Missing, want)
	}
	if !strings.Contains(unresolved.Hint, "opskit add-connection jira") {
		t.Errorf("Hint = %q, want add-connection remediation", unresolved.Hint)
	}
	if !strings.Contains(unresolved.Hint, `workspace connection "main" not found`) {
		t.Errorf("Hint = %q, want dangling reference noted", unresolved.Hint)
	}
}

func TestResolve_OverwriteLeavesOnlyNewRecord(t *testing.T) {
	s := newTestStore(t)
	add(t, s, "main", mainJira)
	add(t, s, "main", altJira)

	res, err := New(s, nil, nil).Resolve(connection.Jira, nil, "main")
	if err != nil {
		t.Fatal(err)
	}
	if res.Record != altJira {
		t.Errorf("Record = %#v, want %#v", res.Record, altJira)
	}
}

func TestResolve_OverrideBeatsWorkspace(t *testing.T) {
	s := newTestStore(t)
	add(t, s, "main", mainJira)

	res, err := New(s, nil, nil).Resolve(connection.Jira, map[string]string{"server": "B"}, "main")
	if err != nil {
		t.Fatal(err)
	}
	got := res.Record.(connection.JiraRecord)
	if got.Server != "B" {
		t.Errorf("Server = %q, want B", got.Server)
	}
	if got.Email != mainJira.Email || got.APIToken != mainJira.APIToken {
		t.Errorf("non-overridden fields should come from the workspace connection: %#v", got)
	}
	if res.Source != SourceWorkspace {
		t.Errorf("Source = %q, want workspace", res.Source)
	}
}

func TestResolve_CompleteOverridesNeedNoStore(t *testing.T) {
	s := newTestStore(t)

	res, err := New(s, nil, nil).Resolve(connection.Jira, mainJira.Fields(), "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Source != SourceOverride || res.Record != mainJira {
		t.Errorf("Resolve() = %+v, want override of %#v", res, mainJira)
	}
}

func TestResolve_Precedence(t *testing.T) {
	envRec := connection.JiraRecord{Server: "https://env", Email: "env@x", APIToken: "env"}

	tests := []struct {
		name       string
		setup      func(t *testing.T, s *connection.Store)
		wsName     string
		env        mapEnv
		wantSource Source
		wantRecord connection.Record
	}{
		{
			name: "workspace beats default",
			setup: func(t *testing.T, s *connection.Store) {
				add(t, s, "main", mainJira)
				add(t, s, "partner", altJira)
			},
			wsName:     "partner",
			env:        mapEnv{connection.Jira: envRec},
			wantSource: SourceWorkspace,
			wantRecord: altJira,
		},
		{
			name: "default beats environment",
			setup: func(t *testing.T, s *connection.Store) {
				add(t, s, "main", mainJira)
			},
			env:        mapEnv{connection.Jira: envRec},
			wantSource: SourceDefault,
			wantRecord: mainJira,
		},
		{
			name: "dangling workspace skips default for environment",
			setup: func(t *testing.T, s *connection.Store) {
				add(t, s, "main", mainJira)
			},
			wsName:     "ghost",
			env:        mapEnv{connection.Jira: envRec},
			wantSource: SourceEnvironment,
			wantRecord: envRec,
		},
		{
			name:       "environment when nothing stored",
			setup:      func(*testing.T, *connection.Store) {},
			env:        mapEnv{connection.Jira: envRec},
			wantSource: SourceEnvironment,
			wantRecord: envRec,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			tt.setup(t, s)

			res, err := New(s, tt.env, nil).Resolve(connection.Jira, nil, tt.wsName)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if res.Source != tt.wantSource {
				t.Errorf("Source = %q, want %q", res.Source, tt.wantSource)
			}
			if res.Record != tt.wantRecord {
				t.Errorf("Record = %#v, want %#v", res.Record, tt.wantRecord)
			}
		})
	}
}

func TestResolve_DanglingWorkspaceNeverUsesDefault(t *testing.T) {
	s := newTestStore(t)
	add(t, s, "customerA", mainJira)
	add(t, s, "customerB", altJira)
	if _, err := s.RemoveConnection(connection.Jira, "customerB"); err != nil {
		t.Fatal(err)
	}

	res, err := New(s, nil, nil).Resolve(connection.Jira, nil, "customerB")
	var unresolved *connection.UnresolvedError
	if !errors.As(err, &unresolved) {
		t.Fatalf("Resolve() = %+v, %v; want UnresolvedError", res, err)
	}
	if !strings.Contains(unresolved.Hint, `workspace connection "customerB" not found`) {
		t.Errorf("Hint = %q, want the missing workspace connection named", unresolved.Hint)
	}
	if strings.Contains(unresolved.Hint, "customerA") {
		t.Errorf("Hint = %q, should not mention the default connection", unresolved.Hint)
	}
}

func TestResolve_DanglingWorkspaceWarns(t *testing.T) {
	s := newTestStore(t)
	add(t, s, "main", mainJira)
	env := mapEnv{connection.Jira: altJira}

	res, err := New(s, env, nil).Resolve(connection.Jira, nil, "ghost")
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != SourceEnvironment {
		t.Errorf("Source = %q, want environment", res.Source)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "ghost") {
		t.Errorf("Warnings = %v, want one about ghost", res.Warnings)
	}
}

func TestResolve_LayersAreAtomic(t *testing.T) {
	s := newTestStore(t)
	// The environment alone supplies only a server; it must not be stitched
	// together with fields from another layer.
	env := mapEnv{connection.Jira: connection.JiraRecord{Server: "https://env"}}

	_, err := New(s, env, nil).Resolve(connection.Jira, map[string]string{"email": "a@b.com"}, "")
	var unresolved *connection.UnresolvedError
	if !errors.As(err, &unresolved) {
		t.Fatalf("Resolve() error = %v, want UnresolvedError", err)
	}
	if !reflect.DeepEqual(unresolved.Missing, []string{"api_token"}) {
		t.Errorf("Missing = %v, want [api_token]", unresolved.Missing)
	}
}

func TestResolve_NoEnvFallbackForAzureProviders(t *testing.T) {
	t.Setenv("JIRA_SERVER", "https://env")
	s := newTestStore(t)

	for _, p := range []connection.Provider{connection.ADO, connection.Dataverse} {
		_, err := New(s, NewEnvironment(), nil).Resolve(p, nil, "")
		var unresolved *connection.UnresolvedError
		if !errors.As(err, &unresolved) {
			t.Errorf("Resolve(%s) error = %v, want UnresolvedError", p, err)
		}
	}
}

func TestResolve_UnknownOverrideField(t *testing.T) {
	s := newTestStore(t)

	_, err := New(s, nil, nil).Resolve(connection.Dataverse, map[string]string{"server": "x"}, "")
	var verr *connection.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Resolve() error = %v, want ValidationError", err)
	}
}

func TestResolve_DataverseCarriesEnvironmentURL(t *testing.T) {
	s := newTestStore(t)
	add(t, s, "main", connection.DataverseRecord{TenantID: "tid"})
	ws := &workspace.Config{
		EnvironmentURL: "https://contoso.crm4.dynamics.com",
		Connections:    map[connection.Provider]string{connection.Dataverse: "main"},
	}

	res, err := New(s, nil, ws).ResolveWorkspace(connection.Dataverse, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.EnvironmentURL != ws.EnvironmentURL {
		t.Errorf("EnvironmentURL = %q, want %q", res.EnvironmentURL, ws.EnvironmentURL)
	}
	if res.Source != SourceWorkspace {
		t.Errorf("Source = %q, want workspace", res.Source)
	}
}

func TestEnvironment_Lookup(t *testing.T) {
	t.Setenv("JIRA_SERVER", "https://env.atlassian.net")
	t.Setenv("JIRA_EMAIL", "env@x.com")
	t.Setenv("JIRA_API_TOKEN", "envtok")

	rec, ok := NewEnvironment().Lookup(connection.Jira)
	if !ok {
		t.Fatal("Lookup(jira) ok = false")
	}
	want := connection.JiraRecord{Server: "https://env.atlassian.net", Email: "env@x.com", APIToken: "envtok"}
	if rec != want {
		t.Errorf("Lookup(jira) = %#v, want %#v", rec, want)
	}

	if _, ok := NewEnvironment().Lookup(connection.ADO); ok {
		t.Error("Lookup(ado) ok = true, want no environment fallback")
	}
}

func TestEnvironment_LookupEmpty(t *testing.T) {
	t.Setenv("JIRA_SERVER", "")
	t.Setenv("JIRA_EMAIL", "")
	t.Setenv("JIRA_API_TOKEN", "")

	if _, ok := NewEnvironment().Lookup(connection.Jira); ok {
		t.Error("Lookup(jira) ok = true with no variables set")
	}
}
