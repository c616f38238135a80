// Package config resolves grading inputs into a validated TestConfig.
package config

import (
	"time"

	"github.com/AndreyAkinshin/iograder/internal/compare"
)

// Input names, as declared by the action.
const (
	InputTestName         = "test-name"
	InputSetupCommand     = "setup-command"
	InputCommand          = "command"
	InputInput            = "input"
	InputExpectedOutput   = "expected-output"
	InputComparisonMethod = "comparison-method"
	InputTimeout          = "timeout"
	InputMaxScore         = "max-score"
)

// InputNames returns every recognized input name.
func InputNames() []string {
	return []string{
		InputTestName,
		InputSetupCommand,
		InputCommand,
		InputInput,
		InputExpectedOutput,
		InputComparisonMethod,
		InputTimeout,
		InputMaxScore,
	}
}

// TestConfig is the validated description of one test. It is only ever
// produced by Resolver.Resolve and is not modified afterwards.
type TestConfig struct {
	TestName       string
	SetupCommand   string
	Command        string
	Input          string
	ExpectedOutput string
	Method         compare.Method
	Timeout        time.Duration
	MaxScore       int
}

// HasSetup reports whether a setup command should run before the test.
func (c *TestConfig) HasSetup() bool {
	return c.SetupCommand != ""
}

// Echo holds the inputs that were resolved before a failure, so that an
// error record can still name the test.
type Echo struct {
	TestName string
	Command  string
	Input    string
}

// EchoOf returns the Echo of a fully resolved config.
func EchoOf(c *TestConfig) Echo {
	return Echo{TestName: c.TestName, Command: c.Command, Input: c.Input}
}
