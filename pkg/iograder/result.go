package iograder

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Version is the result record format version.
const Version = 1

// Status is the outcome of a graded test.
type Status string

const (
	StatusPass  Status = "pass"
	StatusFail  Status = "fail"
	StatusError Status = "error"
)

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusPass, StatusFail, StatusError:
		return true
	}
	return false
}

// Result is the record emitted once per invocation.
type Result struct {
	Version int `json:"version"`

	Status Status `json:"status"`

	// MaxScore is set for scored records. The error path leaves it nil when
	// the configuration never resolved.
	MaxScore *int `json:"max_score,omitempty"`

	// Tests always holds exactly one entry.
	Tests []TestEntry `json:"tests"`
}

// TestEntry describes the single test inside a Result.
type TestEntry struct {
	Name    string  `json:"name"`
	Status  Status  `json:"status"`
	Message *string `json:"message"`

	// TestCode is "<command> <stdin><input>".
	TestCode string `json:"test_code"`

	Filename string `json:"filename"`
	LineNo   int    `json:"line_no"`

	// Duration is the wall-clock run time of the command in milliseconds.
	Duration int64 `json:"duration"`

	Score *int `json:"score,omitempty"`
}

// Entry returns the first test entry, or the zero value if there is none.
func (r *Result) Entry() TestEntry {
	if len(r.Tests) == 0 {
		return TestEntry{}
	}
	return r.Tests[0]
}

// Decode parses an emitted result value. Both raw JSON and base64-encoded
// JSON are accepted.
func Decode(value string) (*Result, error) {
	data := []byte(strings.TrimSpace(value))
	if len(data) == 0 {
		return nil, fmt.Errorf("empty result value")
	}

	if data[0] != '{' {
		decoded, err := base64.StdEncoding.DecodeString(string(data))
		if err != nil {
			return nil, fmt.Errorf("decode base64 result: %w", err)
		}
		data = decoded
	}

	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("parse result JSON: %w", err)
	}
	if res.Version != Version {
		return nil, fmt.Errorf("unsupported result version %d", res.Version)
	}
	return &res, nil
}
