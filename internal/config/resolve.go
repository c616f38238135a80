package config

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/AndreyAkinshin/iograder/internal/compare"
	"github.com/AndreyAkinshin/iograder/internal/errors"
)

// Validation messages.
const (
	msgMissingInput  = "Input required and not supplied: %s"
	msgInvalidMethod = "Invalid comparison method: %s"
	msgInvalidInputs = "Required inputs are missing or invalid"
	msgInvalidScore  = "Invalid max score: %s"
)

// maxTimeoutMinutes keeps the converted timeout within time.Duration.
var maxTimeoutMinutes = float64(math.MaxInt64) / float64(time.Minute)

// Resolver reads and validates inputs from a Source.
type Resolver struct {
	src  Source
	echo Echo
}

// NewResolver creates a Resolver reading from src.
func NewResolver(src Source) *Resolver {
	return &Resolver{src: src}
}

// Echo returns the inputs resolved so far. After a failed Resolve it holds
// whatever was read before the failure.
func (r *Resolver) Echo() Echo {
	return r.echo
}

// Resolve builds a TestConfig. Any error is a validation error; no command
// may run when Resolve fails.
func (r *Resolver) Resolve() (*TestConfig, error) {
	testName, err := r.required(InputTestName)
	if err != nil {
		return nil, err
	}
	r.echo.TestName = testName

	setupCommand := r.optional(InputSetupCommand)

	command, err := r.required(InputCommand)
	if err != nil {
		return nil, err
	}
	r.echo.Command = command

	input := strings.TrimSpace(r.optional(InputInput))
	r.echo.Input = input

	expectedOutput, err := r.required(InputExpectedOutput)
	if err != nil {
		return nil, err
	}

	methodName, err := r.required(InputComparisonMethod)
	if err != nil {
		return nil, err
	}
	method, ok := compare.ParseMethod(methodName)
	if !ok {
		return nil, errors.Validationf(msgInvalidMethod, methodName)
	}

	timeout, err := parseTimeout(r.optional(InputTimeout))
	if err != nil {
		return nil, err
	}

	maxScore, err := parseMaxScore(r.optional(InputMaxScore))
	if err != nil {
		return nil, err
	}

	cfg := &TestConfig{
		TestName:       testName,
		SetupCommand:   setupCommand,
		Command:        command,
		Input:          input,
		ExpectedOutput: expectedOutput,
		Method:         method,
		Timeout:        timeout,
		MaxScore:       maxScore,
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (r *Resolver) required(name string) (string, error) {
	v := r.optional(name)
	if v == "" {
		return "", errors.Validationf(msgMissingInput, name)
	}
	return v, nil
}

func (r *Resolver) optional(name string) string {
	if r.src == nil {
		return ""
	}
	v, _ := r.src.Lookup(name)
	return v
}

// parseTimeout converts a number of minutes to a duration. Empty means the
// default; anything that is not a positive finite number is invalid.
func parseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultTimeout, nil
	}
	minutes, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(minutes) || minutes <= 0 || minutes > maxTimeoutMinutes {
		return 0, errors.Validation(msgInvalidInputs)
	}
	d := time.Duration(minutes * float64(time.Minute))
	if d <= 0 {
		return 0, errors.Validation(msgInvalidInputs)
	}
	return d, nil
}

func parseMaxScore(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultMaxScore, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.Validationf(msgInvalidScore, s)
	}
	return n, nil
}

// validate is the final consistency check on a built config.
func validate(cfg *TestConfig) error {
	if cfg.TestName == "" || cfg.Command == "" || cfg.ExpectedOutput == "" || !cfg.Method.IsValid() || cfg.Timeout <= 0 {
		return errors.Validation(msgInvalidInputs)
	}
	return nil
}
