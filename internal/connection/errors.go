package connection

import (
	"fmt"
	"strings"
)

// ValidationError reports bad or missing input to a mutating operation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a connection name that does not exist for a provider.
type NotFoundError struct {
	Provider Provider
	Name     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("connection %q not found for %s", e.Name, e.Provider)
}

// UnresolvedError reports that no configuration layer produced a complete
// credential for a provider. Hint tells the operator what to configure.
type UnresolvedError struct {
	Provider Provider
	Missing  []string
	Hint     string
}

func (e *UnresolvedError) Error() string {
	if len(e.Missing) == 0 {
		return fmt.Sprintf("%s is not configured", e.Provider)
	}
	return fmt.Sprintf("%s is not configured: missing %s", e.Provider, strings.Join(e.Missing, ", "))
}
