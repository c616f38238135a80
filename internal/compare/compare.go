// Package compare judges command output against an expected value.
package compare

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/AndreyAkinshin/iograder/internal/errors"
)

// Method is an output comparison method.
type Method string

const (
	MethodExact    Method = "exact"
	MethodContains Method = "contains"
	MethodRegex    Method = "regex"
)

// Methods returns all supported comparison methods in documentation order.
func Methods() []Method {
	return []Method{MethodExact, MethodContains, MethodRegex}
}

// IsValid returns true if m is a supported comparison method.
func (m Method) IsValid() bool {
	switch m {
	case MethodExact, MethodContains, MethodRegex:
		return true
	}
	return false
}

// ParseMethod converts a string to a Method. Matching is case-sensitive.
func ParseMethod(s string) (Method, bool) {
	m := Method(s)
	if !m.IsValid() {
		return "", false
	}
	return m, true
}

// Compare reports whether actual satisfies expected under method.
//
// Regex patterns use ECMAScript syntax, so lookaround and backreferences
// are available. A malformed pattern is an error rather than a mismatch.
func Compare(actual, expected string, method Method) (bool, error) {
	switch method {
	case MethodExact:
		return strings.TrimSpace(actual) == expected, nil
	case MethodContains:
		return strings.Contains(actual, expected), nil
	case MethodRegex:
		re, err := regexp2.Compile(expected, regexp2.ECMAScript)
		if err != nil {
			return false, errors.Internalf("Invalid regular expression: %v", err)
		}
		ok, err := re.MatchString(actual)
		if err != nil {
			return false, errors.Internalf("Regular expression match failed: %v", err)
		}
		return ok, nil
	default:
		return false, errors.Validationf("Invalid comparison method: %s", method)
	}
}
