// Package output renders opskit command results for people and for agents.
//
// Every command builds a Printer from its cobra writers:
//
//	p := output.NewPrinter(cmd.OutOrStdout(), jsonMode, color).WithStderr(cmd.ErrOrStderr())
//
// In JSON mode results are written as a single JSON document on stdout and
// errors as {"error": "...", "code": N}. In human mode results are styled
// with lipgloss when color is enabled, and errors, warnings and hints go to
// stderr.
//
// Errors that should set a particular process exit code are ExitErrors:
//
//	output.ExitUserError   // 1: bad input, unknown connection, provider not ready
//	output.ExitSystemError // 2: unreadable or unwritable files, failed subprocesses
package output
