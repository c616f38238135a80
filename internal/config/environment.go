package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/joho/godotenv"
)

// Environment is the fixed environment given to setup and test commands.
// Host variables not listed in Passthrough never reach the command.
type Environment struct {
	// Passthrough lists host variables copied when set on the host.
	Passthrough []string

	// Set holds fixed values. They take precedence over passthrough values.
	Set map[string]string
}

// LoadEnvFile merges KEY=VALUE pairs from a dotenv file into Set.
func (e *Environment) LoadEnvFile(path string) error {
	vars, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("failed to read env file: %w", err)
	}
	if e.Set == nil {
		e.Set = make(map[string]string, len(vars))
	}
	for k, v := range vars {
		e.Set[k] = v
	}
	return nil
}

// Environ builds the sorted KEY=VALUE list for a command. lookup reads host
// variables and defaults to os.LookupEnv.
func (e Environment) Environ(lookup func(string) (string, bool)) []string {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	vars := make(map[string]string, len(e.Passthrough)+len(e.Set))
	for _, key := range e.Passthrough {
		if v, ok := lookup(key); ok {
			vars[key] = v
		}
	}
	for k, v := range e.Set {
		vars[k] = v
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+vars[k])
	}
	return env
}
