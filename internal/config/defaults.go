package config

import "time"

// Default input values.
const (
	DefaultTimeoutMinutes = 10.0
	DefaultTimeout        = time.Duration(DefaultTimeoutMinutes * float64(time.Minute))
	DefaultMaxScore       = 0
)

// Placeholders used in error records for inputs that never resolved.
const (
	UnknownTestName = "Unknown Test"
	UnknownCommand  = "Unknown Command"
)

// defaultPassthrough lists host variables copied into the command environment.
var defaultPassthrough = []string{"PATH", "HOME"}

// defaultSet lists variables forced to fixed values for every command.
var defaultSet = map[string]string{
	"FORCE_COLOR":     "true",
	"DOTNET_CLI_HOME": "/tmp",
	"DOTNET_NOLOGO":   "true",
}

// DefaultEnvironment returns the fixed environment applied to setup and test
// commands unless overridden.
func DefaultEnvironment() Environment {
	env := Environment{
		Passthrough: append([]string(nil), defaultPassthrough...),
		Set:         make(map[string]string, len(defaultSet)),
	}
	for k, v := range defaultSet {
		env.Set[k] = v
	}
	return env
}
