// Package preflight inspects the machine-level prerequisites that the
// vendor-wrapper scripts rely on: the Python runtime environment created by
// "opskit setup" and the Azure CLI login used by Azure DevOps and Dataverse.
//
// None of these checks decide whether a provider is configured; they are
// reported next to the connection status so an operator can see everything
// that still needs doing.
package preflight
