// Package result builds and encodes result records.
package result

import (
	"fmt"
	"time"

	"github.com/AndreyAkinshin/iograder/internal/config"
	"github.com/AndreyAkinshin/iograder/pkg/iograder"
)

// Schema selects the record shape.
type Schema string

const (
	// SchemaScored carries max_score and per-test score; command failures
	// and timeouts are reported as "error".
	SchemaScored Schema = "scored"

	// SchemaLegacy omits scores and reports every non-pass outcome as "fail".
	SchemaLegacy Schema = "legacy"
)

// ParseSchema converts a string to a Schema.
func ParseSchema(s string) (Schema, bool) {
	switch Schema(s) {
	case SchemaScored, SchemaLegacy:
		return Schema(s), true
	}
	return "", false
}

// Builder assembles result records.
type Builder struct {
	Schema Schema
}

// NewBuilder creates a Builder for schema. An empty schema means SchemaScored.
func NewBuilder(schema Schema) *Builder {
	if schema == "" {
		schema = SchemaScored
	}
	return &Builder{Schema: schema}
}

// TestCode formats the test_code field: "<command> <stdin><input>".
func TestCode(command, input string) string {
	return fmt.Sprintf("%s <stdin>%s", command, input)
}

// Graded builds the record for a test that ran. A nil message is emitted as
// JSON null. Score is the max score on pass and zero otherwise.
func (b *Builder) Graded(cfg *config.TestConfig, status iograder.Status, message *string, duration time.Duration) iograder.Result {
	status = b.mapStatus(status)

	entry := iograder.TestEntry{
		Name:     cfg.TestName,
		Status:   status,
		Message:  message,
		TestCode: TestCode(cfg.Command, cfg.Input),
		Filename: "",
		LineNo:   0,
		Duration: duration.Milliseconds(),
	}

	res := iograder.Result{
		Version: iograder.Version,
		Status:  status,
	}
	if b.scored() {
		score := 0
		if status == iograder.StatusPass {
			score = cfg.MaxScore
		}
		entry.Score = intPtr(score)
		res.MaxScore = intPtr(cfg.MaxScore)
	}
	res.Tests = []iograder.TestEntry{entry}
	return res
}

// Errored builds the best-effort record for a run that could not be graded.
// cfg may be nil when inputs never resolved; echo then supplies whatever was
// read, with placeholders for the rest.
func (b *Builder) Errored(echo config.Echo, cfg *config.TestConfig, err error) iograder.Result {
	if cfg != nil {
		echo = config.EchoOf(cfg)
	}
	name := echo.TestName
	if name == "" {
		name = config.UnknownTestName
	}
	command := echo.Command
	if command == "" {
		command = config.UnknownCommand
	}

	status := b.mapStatus(iograder.StatusError)
	msg := "Unknown error"
	if err != nil {
		msg = err.Error()
	}

	entry := iograder.TestEntry{
		Name:     name,
		Status:   status,
		Message:  &msg,
		TestCode: TestCode(command, echo.Input),
		Filename: "",
		LineNo:   0,
		Duration: 0,
	}

	res := iograder.Result{
		Version: iograder.Version,
		Status:  status,
	}
	if b.scored() {
		entry.Score = intPtr(0)
		if cfg != nil {
			res.MaxScore = intPtr(cfg.MaxScore)
		}
	}
	res.Tests = []iograder.TestEntry{entry}
	return res
}

func (b *Builder) scored() bool {
	return b.Schema != SchemaLegacy
}

// mapStatus folds "error" into "fail" for the legacy schema.
func (b *Builder) mapStatus(s iograder.Status) iograder.Status {
	if b.Schema == SchemaLegacy && s == iograder.StatusError {
		return iograder.StatusFail
	}
	return s
}

func intPtr(n int) *int {
	return &n
}
