package resolve

import (
	"github.com/spf13/viper"

	"github.com/gorewood/opskit/internal/connection"
)

// EnvSource supplies the lowest-precedence layer: a whole record built from
// environment variables.
type EnvSource interface {
	Lookup(p connection.Provider) (connection.Record, bool)
}

// JiraEnvVars are the variables read for the Jira fallback, keyed by field.
var JiraEnvVars = map[string]string{
	connection.FieldServer:   "JIRA_SERVER",
	connection.FieldEmail:    "JIRA_EMAIL",
	connection.FieldAPIToken: "JIRA_API_TOKEN",
}

// Environment reads JIRA_SERVER, JIRA_EMAIL and JIRA_API_TOKEN. Azure DevOps
// and Dataverse authenticate through the Azure CLI and have no variables.
type Environment struct {
	jira *viper.Viper
}

// NewEnvironment returns an EnvSource backed by the process environment.
// Values are read at lookup time, so .env files loaded later still apply.
func NewEnvironment() *Environment {
	v := viper.New()
	v.SetEnvPrefix("JIRA")
	v.AutomaticEnv()
	return &Environment{jira: v}
}

// Lookup implements EnvSource. The record may be incomplete; the resolver
// decides whether it is usable.
func (e *Environment) Lookup(p connection.Provider) (connection.Record, bool) {
	if p != connection.Jira {
		return nil, false
	}
	rec := connection.JiraRecord{
		Server:   e.jira.GetString(connection.FieldServer),
		Email:    e.jira.GetString(connection.FieldEmail),
		APIToken: e.jira.GetString(connection.FieldAPIToken),
	}
	if connection.IsZero(rec) {
		return nil, false
	}
	return rec, true
}
