package connection

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/gorewood/opskit/internal/jsonfile"
	"github.com/gorewood/opskit/internal/output"
)

// File names inside the configuration directory.
const (
	ConnectionsFile = "connections.json"
	ConfigFile      = "config.json"
)

// DefaultName is the connection name used when the caller gives none.
const DefaultName = "main"

// Connections is the decoded connections.json document.
type Connections struct {
	Jira      map[string]JiraRecord      `json:"jira,omitempty"`
	ADO       map[string]ADORecord       `json:"ado,omitempty"`
	Dataverse map[string]DataverseRecord `json:"dataverse,omitempty"`
}

// Get returns the named connection for a provider.
func (c *Connections) Get(p Provider, name string) (Record, bool) {
	switch p {
	case Jira:
		rec, ok := c.Jira[name]
		return rec, ok
	case ADO:
		rec, ok := c.ADO[name]
		return rec, ok
	case Dataverse:
		rec, ok := c.Dataverse[name]
		return rec, ok
	default:
		return nil, false
	}
}

// Names returns the sorted connection names for a provider.
func (c *Connections) Names(p Provider) []string {
	var names []string
	switch p {
	case Jira:
		for name := range c.Jira {
			names = append(names, name)
		}
	case ADO:
		for name := range c.ADO {
			names = append(names, name)
		}
	case Dataverse:
		for name := range c.Dataverse {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// put stores rec under name, replacing any existing record.
func (c *Connections) put(name string, rec Record) {
	switch r := rec.(type) {
	case JiraRecord:
		if c.Jira == nil {
			c.Jira = make(map[string]JiraRecord)
		}
		c.Jira[name] = r
	case ADORecord:
		if c.ADO == nil {
			c.ADO = make(map[string]ADORecord)
		}
		c.ADO[name] = r
	case DataverseRecord:
		if c.Dataverse == nil {
			c.Dataverse = make(map[string]DataverseRecord)
		}
		c.Dataverse[name] = r
	}
}

// remove deletes the named connection and reports whether it existed.
func (c *Connections) remove(p Provider, name string) bool {
	if _, ok := c.Get(p, name); !ok {
		return false
	}
	switch p {
	case Jira:
		delete(c.Jira, name)
	case ADO:
		delete(c.ADO, name)
	case Dataverse:
		delete(c.Dataverse, name)
	}
	return true
}

// ProviderSettings is the per-provider section of config.json.
type ProviderSettings struct {
	Default string `json:"default,omitempty"`
}

// GlobalConfig is the decoded config.json document.
type GlobalConfig map[Provider]ProviderSettings

// Default returns the default connection name for a provider, or "".
func (g GlobalConfig) Default(p Provider) string {
	return g[p].Default
}

// Store reads and writes connections.json and config.json in one directory.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir. Nothing is read or created until
// an operation needs it.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the configuration directory.
func (s *Store) Dir() string {
	return s.dir
}

// ConnectionsPath returns the path of connections.json.
func (s *Store) ConnectionsPath() string {
	return filepath.Join(s.dir, ConnectionsFile)
}

// ConfigPath returns the path of config.json.
func (s *Store) ConfigPath() string {
	return filepath.Join(s.dir, ConfigFile)
}

// LoadConnections reads connections.json. A missing file yields an empty set.
func (s *Store) LoadConnections() (*Connections, error) {
	conns := &Connections{}
	if _, err := jsonfile.Read(s.ConnectionsPath(), conns); err != nil {
		return nil, output.NewSystemErrorWithCause("failed to load connections", err)
	}
	return conns, nil
}

// LoadGlobal reads config.json. A missing file yields an empty config.
func (s *Store) LoadGlobal() (GlobalConfig, error) {
	cfg := GlobalConfig{}
	if _, err := jsonfile.Read(s.ConfigPath(), &cfg); err != nil {
		return nil, output.NewSystemErrorWithCause("failed to load global config", err)
	}
	if cfg == nil {
		cfg = GlobalConfig{}
	}
	return cfg, nil
}

func (s *Store) saveConnections(conns *Connections) error {
	if err := jsonfile.Write(s.ConnectionsPath(), conns, 0o600); err != nil {
		return output.NewSystemErrorWithCause("failed to save connections", err)
	}
	return nil
}

func (s *Store) saveGlobal(cfg GlobalConfig) error {
	for p, settings := range cfg {
		if settings.Default == "" {
			delete(cfg, p)
		}
	}
	if err := jsonfile.Write(s.ConfigPath(), cfg, 0o644); err != nil {
		return output.NewSystemErrorWithCause("failed to save global config", err)
	}
	return nil
}

// AddResult describes what AddConnection changed.
type AddResult struct {
	Name        string
	Replaced    bool
	MadeDefault bool
}

// AddConnection stores rec under name, silently replacing an existing
// connection of the same name. An empty name means DefaultName. The first
// connection added for a provider becomes its default.
func (s *Store) AddConnection(name string, rec Record) (*AddResult, error) {
	if err := Validate(rec); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}

	conns, err := s.LoadConnections()
	if err != nil {
		return nil, err
	}
	p := rec.Provider()
	_, replaced := conns.Get(p, name)
	conns.put(name, rec)
	if err := s.saveConnections(conns); err != nil {
		return nil, err
	}

	result := &AddResult{Name: name, Replaced: replaced}

	cfg, err := s.LoadGlobal()
	if err != nil {
		return nil, err
	}
	if cfg.Default(p) == "" {
		cfg[p] = ProviderSettings{Default: name}
		if err := s.saveGlobal(cfg); err != nil {
			return nil, err
		}
		result.MadeDefault = true
	}
	return result, nil
}

// RemoveConnection deletes a connection. If it was the provider's default,
// the default is cleared and true is returned.
func (s *Store) RemoveConnection(p Provider, name string) (bool, error) {
	if !p.Valid() {
		_, err := ParseProvider(string(p))
		return false, err
	}
	conns, err := s.LoadConnections()
	if err != nil {
		return false, err
	}
	if !conns.remove(p, name) {
		return false, &NotFoundError{Provider: p, Name: name}
	}
	if err := s.saveConnections(conns); err != nil {
		return false, err
	}

	cfg, err := s.LoadGlobal()
	if err != nil {
		return false, err
	}
	if cfg.Default(p) != name {
		return false, nil
	}
	delete(cfg, p)
	if err := s.saveGlobal(cfg); err != nil {
		return false, err
	}
	return true, nil
}

// SetDefault makes name the default connection for p. Fails with a
// NotFoundError, leaving config.json untouched, if name does not exist.
func (s *Store) SetDefault(p Provider, name string) error {
	if !p.Valid() {
		_, err := ParseProvider(string(p))
		return err
	}
	conns, err := s.LoadConnections()
	if err != nil {
		return err
	}
	if _, ok := conns.Get(p, name); !ok {
		return &NotFoundError{Provider: p, Name: name}
	}

	cfg, err := s.LoadGlobal()
	if err != nil {
		return err
	}
	cfg[p] = ProviderSettings{Default: name}
	return s.saveGlobal(cfg)
}

// Listing is one provider's connections for display.
type Listing struct {
	Provider    Provider
	Default     string
	Connections []NamedRecord
}

// NamedRecord pairs a connection name with its record.
type NamedRecord struct {
	Name   string
	Record Record
}

// List returns every provider that has at least one connection, in
// provider display order with names sorted.
func (s *Store) List() ([]Listing, error) {
	conns, err := s.LoadConnections()
	if err != nil {
		return nil, err
	}
	cfg, err := s.LoadGlobal()
	if err != nil {
		return nil, err
	}

	var listings []Listing
	for _, p := range Providers() {
		names := conns.Names(p)
		if len(names) == 0 {
			continue
		}
		listing := Listing{Provider: p, Default: cfg.Default(p)}
		for _, name := range names {
			rec, _ := conns.Get(p, name)
			listing.Connections = append(listing.Connections, NamedRecord{Name: name, Record: rec})
		}
		listings = append(listings, listing)
	}
	return listings, nil
}
