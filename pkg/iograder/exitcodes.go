// Package iograder provides the public result record types and constants for
// tools consuming iograder output.
package iograder

// Exit codes returned by the iograder CLI.
// Grading outcomes (pass, fail, error) never change the exit code; they are
// carried by the result record instead.
const (
	// ExitSuccess indicates the CLI ran and emitted a result record.
	ExitSuccess = 0

	// ExitConfigError indicates invalid flags or an unreadable configuration file.
	ExitConfigError = 2
)
