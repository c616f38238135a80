package config

import (
	"os"
	"strings"
)

// Source provides named input values.
type Source interface {
	// Lookup returns the value of the named input and whether it was set.
	Lookup(name string) (string, bool)
}

// EnvSource reads inputs the way GitHub Actions delivers them: input
// "test-name" arrives as INPUT_TEST-NAME. Values are trimmed.
type EnvSource struct {
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(key string) (string, bool)
}

// EnvKey returns the environment variable carrying the named input.
func EnvKey(name string) string {
	return "INPUT_" + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
}

// Lookup implements Source.
func (s EnvSource) Lookup(name string) (string, bool) {
	lookup := s.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, ok := lookup(EnvKey(name))
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// MapSource serves inputs from a map. Values are returned as stored.
type MapSource map[string]string

// Lookup implements Source.
func (m MapSource) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// Chain consults sources in order; the first non-empty value wins.
type Chain []Source

// Lookup implements Source. An input that is set but empty in every source
// is reported as set.
func (c Chain) Lookup(name string) (string, bool) {
	found := false
	for _, src := range c {
		if src == nil {
			continue
		}
		v, ok := src.Lookup(name)
		if !ok {
			continue
		}
		if v != "" {
			return v, true
		}
		found = true
	}
	return "", found
}
