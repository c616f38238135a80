package cli

import (
	"github.com/AndreyAkinshin/iograder/internal/config"
	"github.com/AndreyAkinshin/iograder/internal/output"
)

func printUsage(w *output.Writer) {
	w.HelpTitle("iograder - grade a program by its standard output")

	w.HelpSection("Usage:")
	w.HelpUsage("iograder [flags]")

	w.HelpSection("Flags:")
	const width = 22
	w.HelpFlag("--config <file>", "YAML case file with input values", width)
	w.HelpFlag("--set <name>=<value>", "Set an input (repeatable, highest precedence)", width)
	w.HelpFlag("--env-file <file>", "Dotenv file added to the command environment", width)
	w.HelpFlag("--encoding <enc>", "Output encoding: base64 (default) or json", width)
	w.HelpFlag("--schema <schema>", "Record shape: scored (default) or legacy", width)
	w.HelpFlag("--output <name>", "Step output name (default: "+DefaultOutputName+")", width)
	w.HelpFlag("-q, --quiet", "Do not print the result summary", width)
	w.HelpFlag("-v, --verbose", "Enable debug logging", width)
	w.HelpFlag("-h, --help", "Show this help", width)
	w.HelpFlag("--version", "Show version", width)

	w.HelpSection("Inputs:")
	for _, name := range config.InputNames() {
		w.HelpEnvVar(config.EnvKey(name), name, width)
	}

	w.HelpSection("Environment:")
	w.HelpEnvVar("GITHUB_OUTPUT", "File receiving step outputs; stdout is used when unset", width)
	w.HelpEnvVar("RUNNER_DEBUG", "Set to 1 to enable debug logging", width)

	w.HelpSection("Examples:")
	w.HelpExample("iograder --config hello.yaml --encoding json", "Grade the case in hello.yaml and print raw JSON")
	w.HelpExample("iograder --set test-name=Echo --set command='echo hi' --set expected-output=hi --set comparison-method=exact", "")
}
