package preflight

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/gorewood/opskit/internal/connection"
)

// Check is the outcome of one prerequisite probe.
type Check struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
	Hint   string `json:"hint,omitempty"`
}

// Prober looks up and runs external tools.
type Prober interface {
	LookPath(file string) (string, error)
	Output(ctx context.Context, name string, args ...string) (string, error)
}

// ExecProber runs tools with os/exec, bounding each call by Timeout.
type ExecProber struct {
	Timeout time.Duration
}

// LookPath implements Prober.
func (ExecProber) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Output implements Prober. Returns trimmed stdout.
func (p ExecProber) Output(ctx context.Context, name string, args ...string) (string, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	out, err := exec.CommandContext(ctx, name, args...).Output()
	return strings.TrimSpace(string(out)), err
}

// Inspector combines the runtime environment with tool probes.
type Inspector struct {
	Runtime *Runtime
	Prober  Prober
}

// NewInspector returns an Inspector for the configuration directory root.
func NewInspector(root string) *Inspector {
	return &Inspector{
		Runtime: NewRuntime(root),
		Prober:  ExecProber{Timeout: 10 * time.Second},
	}
}

// SetupComplete reports whether "opskit setup" has been run.
func (i *Inspector) SetupComplete() bool {
	return i.Runtime.SetupComplete()
}

// Checks returns the prerequisite checks relevant to a provider.
// Jira talks plain HTTPS and has none.
func (i *Inspector) Checks(ctx context.Context, p connection.Provider) []Check {
	switch p {
	case connection.ADO:
		return []Check{i.checkAzureCLI(), i.checkDevOpsExtension(ctx), i.checkAzureLogin(ctx)}
	case connection.Dataverse:
		return []Check{i.checkRuntime(), i.checkAzureLogin(ctx)}
	default:
		return nil
	}
}

func (i *Inspector) azureCLI() bool {
	_, err := i.Prober.LookPath("az")
	return err == nil
}

func (i *Inspector) checkAzureCLI() Check {
	if i.azureCLI() {
		return Check{Name: "Azure CLI", Passed: true, Detail: "installed"}
	}
	return Check{
		Name:   "Azure CLI",
		Detail: "not found",
		Hint:   "Install Azure CLI: https://aka.ms/install-azure-cli",
	}
}

func (i *Inspector) checkDevOpsExtension(ctx context.Context) Check {
	check := Check{
		Name:   "azure-devops extension",
		Detail: "not installed",
		Hint:   "az extension add --name azure-devops",
	}
	if !i.azureCLI() {
		return check
	}
	if _, err := i.Prober.Output(ctx, "az", "extension", "show", "--name", "azure-devops", "-o", "json"); err == nil {
		return Check{Name: check.Name, Passed: true, Detail: "installed"}
	}
	return check
}

func (i *Inspector) checkAzureLogin(ctx context.Context) Check {
	check := Check{Name: "Azure CLI login", Detail: "not logged in", Hint: "az login"}
	if !i.azureCLI() {
		return check
	}
	user, err := i.Prober.Output(ctx, "az", "account", "show", "--query", "user.name", "-o", "tsv")
	if err != nil || user == "" {
		return check
	}
	return Check{Name: check.Name, Passed: true, Detail: user}
}

func (i *Inspector) checkRuntime() Check {
	if i.Runtime.SetupComplete() {
		return Check{Name: "Runtime environment", Passed: true, Detail: i.Runtime.VenvPython()}
	}
	return Check{Name: "Runtime environment", Detail: "not created", Hint: "opskit setup"}
}
