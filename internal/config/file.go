package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileSource serves inputs from a YAML case file whose top-level keys are
// input names:
//
//	test-name: Hello
//	command: echo Hello, World!
//	expected-output: Hello, World!
//	comparison-method: exact
//	timeout: 0.5
type FileSource struct {
	values map[string]string
}

// LoadFile reads a YAML case file. Unknown keys are returned as warnings.
func LoadFile(path string) (*FileSource, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read case file: %w", err)
	}
	return ParseFile(data)
}

// ParseFile parses YAML case file content.
func ParseFile(data []byte) (*FileSource, []string, error) {
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("failed to parse case file: %w", err)
	}

	values := make(map[string]string, len(raw))
	for key, node := range raw {
		if node.Kind != yaml.ScalarNode {
			return nil, nil, fmt.Errorf("case file: input %q must be a scalar value", key)
		}
		if node.Tag == "!!null" {
			continue
		}
		values[key] = strings.TrimSpace(node.Value)
	}

	return &FileSource{values: values}, detectUnknownInputs(values), nil
}

// Lookup implements Source.
func (f *FileSource) Lookup(name string) (string, bool) {
	v, ok := f.values[name]
	return v, ok
}

// detectUnknownInputs reports keys that are not input names, sorted.
func detectUnknownInputs(values map[string]string) []string {
	known := make(map[string]bool)
	for _, name := range InputNames() {
		known[name] = true
	}

	var warnings []string
	for key := range values {
		if !known[key] {
			warnings = append(warnings, fmt.Sprintf("unknown input %q in case file (ignored)", key))
		}
	}
	sort.Strings(warnings)
	return warnings
}
