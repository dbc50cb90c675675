package connection

import (
	"fmt"
	"strings"
)

// Provider identifies an external system opskit holds connections for.
type Provider string

// Supported providers.
const (
	Jira      Provider = "jira"
	ADO       Provider = "ado"
	Dataverse Provider = "dataverse"
)

// Providers returns every supported provider in display order.
func Providers() []Provider {
	return []Provider{Jira, ADO, Dataverse}
}

// ParseProvider converts user input into a Provider.
// Returns a ValidationError for unrecognized names.
func ParseProvider(name string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(name)))
	if !p.Valid() {
		return "", &ValidationError{
			Field:  "provider",
			Reason: fmt.Sprintf("unknown provider %q (want jira, ado or dataverse)", name),
		}
	}
	return p, nil
}

// Valid reports whether p is a supported provider.
func (p Provider) Valid() bool {
	switch p {
	case Jira, ADO, Dataverse:
		return true
	default:
		return false
	}
}

// Label returns the human-readable provider name.
func (p Provider) Label() string {
	switch p {
	case Jira:
		return "Jira"
	case ADO:
		return "Azure DevOps"
	case Dataverse:
		return "Dataverse"
	default:
		return string(p)
	}
}
