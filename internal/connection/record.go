package connection

import (
	"fmt"
	"sort"
	"strings"
)

// Field names as they appear in connections.json and as command-line flags
// (with underscores replaced by dashes).
const (
	FieldServer       = "server"
	FieldEmail        = "email"
	FieldAPIToken     = "api_token"
	FieldOrganization = "organization"
	FieldProject      = "project"
	FieldTenantID     = "tenant_id"
)

// Record is a connection for one provider. Implementations are
// JiraRecord, ADORecord and DataverseRecord.
type Record interface {
	// Provider returns the provider this record belongs to.
	Provider() Provider
	// Fields returns every field of the record keyed by its JSON name.
	Fields() map[string]string
	// Missing returns the required fields that are empty, in display order.
	Missing() []string
}

// JiraRecord holds Jira Cloud credentials (basic auth with an API token).
type JiraRecord struct {
	Server   string `json:"server"`
	Email    string `json:"email"`
	APIToken string `json:"api_token"`
}

// Provider implements Record.
func (JiraRecord) Provider() Provider { return Jira }

// Fields implements Record.
func (r JiraRecord) Fields() map[string]string {
	return map[string]string{
		FieldServer:   r.Server,
		FieldEmail:    r.Email,
		FieldAPIToken: r.APIToken,
	}
}

// Missing implements Record. All three fields are required.
func (r JiraRecord) Missing() []string {
	var missing []string
	if r.Server == "" {
		missing = append(missing, FieldServer)
	}
	if r.Email == "" {
		missing = append(missing, FieldEmail)
	}
	if r.APIToken == "" {
		missing = append(missing, FieldAPIToken)
	}
	return missing
}

// ADORecord identifies an Azure DevOps project. Authentication comes from
// an Azure CLI login, so no secret is stored.
type ADORecord struct {
	Organization string `json:"organization"`
	Project      string `json:"project"`
	TenantID     string `json:"tenant_id,omitempty"`
}

// Provider implements Record.
func (ADORecord) Provider() Provider { return ADO }

// Fields implements Record.
func (r ADORecord) Fields() map[string]string {
	return map[string]string{
		FieldOrganization: r.Organization,
		FieldProject:      r.Project,
		FieldTenantID:     r.TenantID,
	}
}

// Missing implements Record. The tenant is optional.
func (r ADORecord) Missing() []string {
	var missing []string
	if r.Organization == "" {
		missing = append(missing, FieldOrganization)
	}
	if r.Project == "" {
		missing = append(missing, FieldProject)
	}
	return missing
}

// DataverseRecord holds the Azure tenant used for Dataverse access.
// The environment URL is per workspace, not per connection.
type DataverseRecord struct {
	TenantID string `json:"tenant_id"`
}

// Provider implements Record.
func (DataverseRecord) Provider() Provider { return Dataverse }

// Fields implements Record.
func (r DataverseRecord) Fields() map[string]string {
	return map[string]string{FieldTenantID: r.TenantID}
}

// Missing implements Record.
func (r DataverseRecord) Missing() []string {
	if r.TenantID == "" {
		return []string{FieldTenantID}
	}
	return nil
}

// FieldNames returns the fields of a provider's record in display order.
func FieldNames(p Provider) []string {
	switch p {
	case Jira:
		return []string{FieldServer, FieldEmail, FieldAPIToken}
	case ADO:
		return []string{FieldOrganization, FieldProject, FieldTenantID}
	case Dataverse:
		return []string{FieldTenantID}
	default:
		return nil
	}
}

// RequiredFields returns the fields a provider's record cannot omit.
func RequiredFields(p Provider) []string {
	return Empty(p).Missing()
}

// Empty returns the zero record for a provider, or nil for an unknown one.
func Empty(p Provider) Record {
	switch p {
	case Jira:
		return JiraRecord{}
	case ADO:
		return ADORecord{}
	case Dataverse:
		return DataverseRecord{}
	default:
		return nil
	}
}

// IsZero reports whether every field of r is empty.
func IsZero(r Record) bool {
	for _, v := range r.Fields() {
		if v != "" {
			return false
		}
	}
	return true
}

// CheckFields returns a ValidationError if fields names a key the
// provider's record does not have.
func CheckFields(p Provider, fields map[string]string) error {
	if !p.Valid() {
		return &ValidationError{Field: "provider", Reason: fmt.Sprintf("unknown provider %q", p)}
	}
	known := make(map[string]bool)
	for _, name := range FieldNames(p) {
		known[name] = true
	}
	var unknown []string
	for name := range fields {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return &ValidationError{
			Field:  strings.Join(unknown, ", "),
			Reason: fmt.Sprintf("not a %s field (want %s)", p.Label(), strings.Join(FieldNames(p), ", ")),
		}
	}
	return nil
}

// NewRecord builds a validated record from user input. Values are trimmed
// and URL fields lose their trailing slash.
func NewRecord(p Provider, fields map[string]string) (Record, error) {
	if err := CheckFields(p, fields); err != nil {
		return nil, err
	}
	clean := make(map[string]string, len(fields))
	for name, value := range fields {
		value = strings.TrimSpace(value)
		if name == FieldServer || name == FieldOrganization {
			value = strings.TrimRight(value, "/")
		}
		clean[name] = value
	}
	rec := Apply(Empty(p), clean)
	if err := Validate(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Validate returns a ValidationError naming any required field r lacks.
func Validate(r Record) error {
	if r == nil {
		return &ValidationError{Field: "provider", Reason: "no connection record given"}
	}
	if !r.Provider().Valid() {
		return &ValidationError{Field: "provider", Reason: fmt.Sprintf("unknown provider %q", r.Provider())}
	}
	missing := r.Missing()
	if len(missing) == 0 {
		return nil
	}
	return &ValidationError{
		Field: missing[0],
		Reason: fmt.Sprintf("%s requires %s (missing %s)",
			r.Provider().Label(),
			strings.Join(RequiredFields(r.Provider()), ", "),
			strings.Join(missing, ", ")),
	}
}

// Apply returns a copy of r with every non-empty value in overrides set.
// Keys the provider does not know are ignored.
func Apply(r Record, overrides map[string]string) Record {
	pick := func(name, current string) string {
		if v := overrides[name]; v != "" {
			return v
		}
		return current
	}
	switch rec := r.(type) {
	case JiraRecord:
		rec.Server = pick(FieldServer, rec.Server)
		rec.Email = pick(FieldEmail, rec.Email)
		rec.APIToken = pick(FieldAPIToken, rec.APIToken)
		return rec
	case ADORecord:
		rec.Organization = pick(FieldOrganization, rec.Organization)
		rec.Project = pick(FieldProject, rec.Project)
		rec.TenantID = pick(FieldTenantID, rec.TenantID)
		return rec
	case DataverseRecord:
		rec.TenantID = pick(FieldTenantID, rec.TenantID)
		return rec
	default:
		return r
	}
}

// IsSecretField reports whether a field holds a credential that must be
// masked in listings.
func IsSecretField(name string) bool {
	return name == FieldAPIToken
}

// Mask hides all but the first four characters of a secret.
func Mask(value string) string {
	if runes := []rune(value); len(runes) > 4 {
		return string(runes[:4]) + "***"
	}
	return "***"
}

// Masked returns r's fields with secrets masked and empty values dropped.
func Masked(r Record) map[string]string {
	out := make(map[string]string)
	for name, value := range r.Fields() {
		if value == "" {
			continue
		}
		if IsSecretField(name) {
			value = Mask(value)
		}
		out[name] = value
	}
	return out
}
