package preflight

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// DefaultPackages are installed when the configuration directory has no
// requirements.txt of its own.
var DefaultPackages = []string{"azure-identity", "PowerPlatform-Dataverse-Client"}

// Runner executes an external command, streaming its output.
type Runner func(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error

// execRun runs a command with os/exec.
func execRun(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Runtime is the Python virtual environment under the configuration
// directory that the Dataverse scripts run in.
type Runtime struct {
	Root   string
	Python string
	Run    Runner
}

// NewRuntime returns the runtime rooted at the configuration directory.
func NewRuntime(root string) *Runtime {
	python := "python3"
	if runtime.GOOS == "windows" {
		python = "python"
	}
	return &Runtime{Root: root, Python: python, Run: execRun}
}

// VenvDir returns the virtual environment directory.
func (rt *Runtime) VenvDir() string {
	return filepath.Join(rt.Root, ".venv")
}

// VenvPython returns the interpreter inside the virtual environment.
func (rt *Runtime) VenvPython() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(rt.VenvDir(), "Scripts", "python.exe")
	}
	return filepath.Join(rt.VenvDir(), "bin", "python3")
}

// RequirementsPath returns the optional requirements file.
func (rt *Runtime) RequirementsPath() string {
	return filepath.Join(rt.Root, "requirements.txt")
}

// SetupComplete reports whether the virtual environment exists.
func (rt *Runtime) SetupComplete() bool {
	info, err := os.Stat(rt.VenvPython())
	return err == nil && !info.IsDir()
}

// SetupResult describes what Setup did.
type SetupResult struct {
	Python       string   `json:"python"`
	Created      bool     `json:"created"`
	Requirements string   `json:"requirements,omitempty"`
	Packages     []string `json:"packages,omitempty"`
}

// Setup creates the virtual environment if needed and installs the
// dependencies into it. Command output is written to w.
func (rt *Runtime) Setup(ctx context.Context, w io.Writer) (*SetupResult, error) {
	result := &SetupResult{Python: rt.VenvPython()}

	if !rt.SetupComplete() {
		if err := os.MkdirAll(rt.Root, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", rt.Root, err)
		}
		if err := rt.Run(ctx, w, w, rt.Python, "-m", "venv", rt.VenvDir()); err != nil {
			return nil, fmt.Errorf("create virtual environment: %w", err)
		}
		result.Created = true
	}

	args := []string{"-m", "pip", "install", "--quiet", "--upgrade"}
	if _, err := os.Stat(rt.RequirementsPath()); err == nil {
		result.Requirements = rt.RequirementsPath()
		args = append(args, "-r", result.Requirements)
	} else {
		result.Packages = DefaultPackages
		args = append(args, DefaultPackages...)
	}
	if err := rt.Run(ctx, w, w, rt.VenvPython(), args...); err != nil {
		return nil, fmt.Errorf("install dependencies: %w", err)
	}
	return result, nil
}
