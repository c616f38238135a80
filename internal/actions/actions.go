// Package actions writes outputs and workflow commands for GitHub Actions.
package actions

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// Runner talks to the Actions runner through environment files and
// workflow commands on stdout.
type Runner struct {
	stdout    io.Writer
	lookupEnv func(string) (string, bool)
}

// NewWithEnv creates a Runner writing workflow commands to stdout and reading
// the runner environment through lookupEnv.
func NewWithEnv(stdout io.Writer, lookupEnv func(string) (string, bool)) *Runner {
	return &Runner{stdout: stdout, lookupEnv: lookupEnv}
}

// SetOutput publishes a step output. When GITHUB_OUTPUT names a file the
// value is appended there; otherwise the legacy set-output command is printed.
func (r *Runner) SetOutput(name, value string) error {
	if path, ok := r.lookupEnv("GITHUB_OUTPUT"); ok && path != "" {
		return appendOutputFile(path, name, value)
	}
	_, err := fmt.Fprintf(r.stdout, "::set-output name=%s::%s\n", name, escapeData(value))
	return err
}

// Debug prints a debug message, shown only when step debugging is enabled.
func (r *Runner) Debug(message string) {
	fmt.Fprintf(r.stdout, "::debug::%s\n", escapeData(message))
}

// IsDebug reports whether the runner has step debugging enabled.
func (r *Runner) IsDebug() bool {
	v, _ := r.lookupEnv("RUNNER_DEBUG")
	return v == "1"
}

// appendOutputFile writes name<<DELIM / value / DELIM to the output file.
func appendOutputFile(path, name, value string) error {
	delim, err := newDelimiter(value)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s<<%s\n%s\n%s\n", name, delim, value, delim); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	return f.Close()
}

// newDelimiter returns a heredoc delimiter that does not occur in value.
func newDelimiter(value string) (string, error) {
	for i := 0; i < 8; i++ {
		buf := make([]byte, 16)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate delimiter: %w", err)
		}
		delim := "ghadelimiter_" + hex.EncodeToString(buf)
		if !strings.Contains(value, delim) {
			return delim, nil
		}
	}
	return "", fmt.Errorf("could not find a delimiter absent from the output value")
}

// escapeData escapes a workflow command value.
func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	return s
}
