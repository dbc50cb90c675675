// Package workspace reads and writes the per-project ops/opskit.json file
// that binds a customer environment URL to named connections.
package workspace

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gorewood/opskit/internal/connection"
	"github.com/gorewood/opskit/internal/jsonfile"
	"github.com/gorewood/opskit/internal/output"
)

// Location of the workspace file relative to the workspace root.
const (
	DirName  = "ops"
	FileName = "opskit.json"
)

// Config is the decoded ops/opskit.json document.
type Config struct {
	EnvironmentURL string                         `json:"environment_url"`
	Connections    map[connection.Provider]string `json:"connections,omitempty"`
}

// ConnectionFor returns the connection name the workspace uses for p, or "".
func (c *Config) ConnectionFor(p connection.Provider) string {
	if c == nil {
		return ""
	}
	return c.Connections[p]
}

// Path returns the workspace file path under root.
func Path(root string) string {
	return filepath.Join(root, DirName, FileName)
}

// Load reads the workspace file under root. Returns nil without error when
// root is not a workspace.
func Load(root string) (*Config, error) {
	cfg := &Config{}
	found, err := jsonfile.Read(Path(root), cfg)
	if err != nil {
		return nil, output.NewSystemErrorWithCause("failed to load workspace config", err)
	}
	if !found {
		return nil, nil
	}
	return cfg, nil
}

// Init writes a new workspace file under root, replacing any existing one.
// Connection names are stored as given; whether they exist in the
// connection store is reported by status, not checked here.
func Init(root, environmentURL string, connections map[connection.Provider]string) (*Config, error) {
	cfg := &Config{EnvironmentURL: strings.TrimSpace(environmentURL)}
	if cfg.EnvironmentURL == "" {
		return nil, &connection.ValidationError{Field: "environment_url", Reason: "is required"}
	}

	for p, name := range connections {
		if !p.Valid() {
			return nil, &connection.ValidationError{
				Field:  "connections",
				Reason: fmt.Sprintf("unknown provider %q", p),
			}
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if cfg.Connections == nil {
			cfg.Connections = make(map[connection.Provider]string)
		}
		cfg.Connections[p] = name
	}

	if err := jsonfile.Write(Path(root), cfg, 0o644); err != nil {
		return nil, output.NewSystemErrorWithCause("failed to write workspace config", err)
	}
	return cfg, nil
}
