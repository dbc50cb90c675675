package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/gorewood/opskit/internal/config"
	"github.com/gorewood/opskit/internal/connection"
	"github.com/gorewood/opskit/internal/output"
	"github.com/gorewood/opskit/internal/preflight"
	"github.com/gorewood/opskit/internal/resolve"
)

// stubInspector reports no prerequisite problems.
type stubInspector struct{}

func (stubInspector) SetupComplete() bool { return false }

func (stubInspector) Checks(context.Context, connection.Provider) []preflight.Check { return nil }

// isolate points the config directory and working directory at temp dirs,
// clears the Jira environment fallback and stubs prerequisite probes. It
// returns the config dir and workspace root.
func isolate(t *testing.T) (string, string) {
	t.Helper()
	configDir := t.TempDir()
	root := t.TempDir()
	t.Setenv(config.EnvConfigHome, configDir)
	for _, name := range resolve.JiraEnvVars {
		t.Setenv(name, "")
	}
	t.Chdir(root)

	orig := newInspector
	newInspector = func(string) resolve.Inspector { return stubInspector{} }
	t.Cleanup(func() { newInspector = orig })
	return configDir, root
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// decode parses stdout as a JSON object.
func decode(t *testing.T, stdout string) map[string]any {
	t.Helper()
	var result map[string]any
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout)
	}
	return result
}

func TestRootCommand_Version(t *testing.T) {
	version = "1.2.3"
	t.Cleanup(func() { version = "dev" })

	stdout, _, err := execute(t, "--version")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(stdout, "1.2.3") || !strings.Contains(stdout, "opskit") {
		t.Errorf("--version output = %q", stdout)
	}
}

func TestRootCommand_Help(t *testing.T) {
	stdout, _, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for _, want := range []string{"opskit", "Usage:", "--json", "--color", "add-connection", "Readiness Commands:"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("--help output should contain %q", want)
		}
	}
}

func TestRootCommand_JSONWithoutSubcommand(t *testing.T) {
	isolate(t)
	stdout, _, err := execute(t, "--json")
	if err == nil {
		t.Fatal("expected an error without a subcommand")
	}
	result := decode(t, stdout)
	if result["error"] == nil {
		t.Errorf("JSON error missing: %v", result)
	}
}

func TestRootCommand_InvalidColor(t *testing.T) {
	isolate(t)
	_, stderr, err := execute(t, "--color", "rainbow", "status")
	if output.GetExitCode(err) != output.ExitUserError {
		t.Fatalf("exit code = %d, want %d (err %v)", output.GetExitCode(err), output.ExitUserError, err)
	}
	if !strings.Contains(stderr, "rainbow") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestBuildVersion(t *testing.T) {
	version, commit, date = "1.0.0", "abcdef123456", "2026-01-01"
	t.Cleanup(func() { version, commit, date = "dev", "none", "unknown" })

	if got := buildVersion(); got != "1.0.0 (abcdef1, 2026-01-01)" {
		t.Errorf("buildVersion() = %q", got)
	}
}

func TestLoadEnvFiles_JiraFallback(t *testing.T) {
	_, root := isolate(t)
	writeFile(t, root+"/.env.local", "JIRA_SERVER=https://env.atlassian.net\nJIRA_EMAIL=env@example.com\nJIRA_API_TOKEN=envtoken\n")

	stdout, _, err := execute(t, "--json", "check", "jira")
	if err != nil {
		t.Fatalf("check jira: %v\n%s", err, stdout)
	}
	result := decode(t, stdout)
	if result["ready"] != true || result["source"] != "environment" {
		t.Errorf("result = %v, want ready from environment", result)
	}
}

func TestLoadEnvFiles_MalformedFileDoesNotBlockOthers(t *testing.T) {
	configDir, root := isolate(t)
	writeFile(t, root+"/.env.local", "this-is not an env line\n")
	writeFile(t, configDir+"/env", "JIRA_SERVER=https://global.atlassian.net\nJIRA_EMAIL=env@example.com\nJIRA_API_TOKEN=envtoken\n")

	stdout, stderr, err := execute(t, "--json", "check", "jira")
	if err != nil {
		t.Fatalf("check jira: %v\n%s", err, stdout)
	}
	result := decode(t, stdout)
	if result["ready"] != true || result["source"] != "environment" {
		t.Errorf("result = %v, want ready from the config env file", result)
	}
	if !strings.Contains(stderr, ".env.local") {
		t.Errorf("stderr = %q, want a warning naming .env.local", stderr)
	}
}
