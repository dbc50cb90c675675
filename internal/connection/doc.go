// Package connection manages named provider connections and the global
// default for each provider.
//
// Two JSON documents live in the opskit configuration directory:
//
//	connections.json  provider -> name -> record (holds API tokens, mode 0600)
//	config.json       provider -> {"default": name}
//
// A connection record is one of JiraRecord, ADORecord or DataverseRecord.
// Each variant validates its own required fields, so a record that reaches
// the store is always complete for its provider.
package connection
