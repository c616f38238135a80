// Package cli provides command-line interface functionality for iograder.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lmittmann/tint"

	"github.com/AndreyAkinshin/iograder/internal/actions"
	"github.com/AndreyAkinshin/iograder/internal/config"
	"github.com/AndreyAkinshin/iograder/internal/errors"
	"github.com/AndreyAkinshin/iograder/internal/grader"
	"github.com/AndreyAkinshin/iograder/internal/output"
	"github.com/AndreyAkinshin/iograder/internal/result"
	"github.com/AndreyAkinshin/iograder/internal/schema"
)

// Version is set at build time.
var Version = "dev"

// DefaultOutputName is the step output that carries the record.
const DefaultOutputName = "result"

// Options holds parsed flags.
type Options struct {
	ConfigFile string
	Sets       config.MapSource
	EnvFile    string
	Encoding   result.Encoding
	Schema     result.Schema
	OutputName string
	Quiet      bool
	Verbose    bool
	Help       bool
	Version    bool
}

// host bundles the process streams and environment so tests can substitute
// them.
type host struct {
	stdout    io.Writer
	stderr    io.Writer
	color     bool
	lookupEnv func(string) (string, bool)
}

// Run executes the CLI with the given arguments and returns an exit code.
func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := host{
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		color:     isTerminal(os.Stderr),
		lookupEnv: os.LookupEnv,
	}
	return run(ctx, args, h)
}

func run(ctx context.Context, args []string, h host) int {
	w := output.NewWithWriters(h.stderr, h.stderr, h.color)

	opts, err := parseFlags(args)
	if err != nil {
		w.ErrorPrefix("%v", err)
		w.Errorln("Run 'iograder --help' for usage.")
		return errors.GetExitCode(err)
	}
	if opts.Help {
		printUsage(w)
		return errors.ExitSuccess
	}
	if opts.Version {
		fmt.Fprintf(h.stdout, "iograder %s\n", Version)
		return errors.ExitSuccess
	}
	w.SetQuiet(opts.Quiet)

	runner := actions.NewWithEnv(h.stdout, h.lookupEnv)
	logger := newLogger(h.stderr, !h.color, opts.Verbose, runner)

	src, err := buildSource(opts, h.lookupEnv, w)
	if err != nil {
		w.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}

	env := config.DefaultEnvironment()
	if opts.EnvFile != "" {
		if err := env.LoadEnvFile(opts.EnvFile); err != nil {
			w.ErrorPrefix("%v", err)
			return errors.ExitConfigError
		}
	}

	g := grader.New(grader.Options{
		Environment: &env,
		Builder:     result.NewBuilder(opts.Schema),
		Logger:      logger,
		LookupEnv:   h.lookupEnv,
	})
	res := g.Grade(ctx, src)

	data, err := result.Marshal(res)
	if err != nil {
		w.ErrorPrefix("failed to encode result: %v", err)
		return errors.ExitSuccess
	}
	if err := schema.ValidateResult(data); err != nil {
		logger.Warn("result record does not match schema", "error", err)
	}

	value, err := result.Encode(res, opts.Encoding)
	if err != nil {
		w.ErrorPrefix("failed to encode result: %v", err)
		return errors.ExitSuccess
	}
	if err := runner.SetOutput(opts.OutputName, value); err != nil {
		w.WarningSimple("could not set output %q: %v", opts.OutputName, err)
		fmt.Fprintln(h.stdout, value)
	}

	w.Result(res)
	return errors.ExitSuccess
}

// parseFlags manually parses flags from arguments. Both "--flag value" and
// "--flag=value" forms are accepted.
func parseFlags(args []string) (*Options, error) {
	opts := &Options{
		Sets:       config.MapSource{},
		Encoding:   result.EncodingBase64,
		Schema:     result.SchemaScored,
		OutputName: DefaultOutputName,
	}

	i := 0
	for i < len(args) {
		arg := args[i]

		name, value, hasValue := strings.Cut(arg, "=")
		if !strings.HasPrefix(arg, "--") {
			name, value, hasValue = arg, "", false
		}

		switch name {
		case "-h", "--help":
			opts.Help = true
			i++
			continue
		case "--version":
			opts.Version = true
			i++
			continue
		case "-q", "--quiet":
			opts.Quiet = true
			i++
			continue
		case "-v", "--verbose":
			opts.Verbose = true
			i++
			continue
		case "--config", "--set", "--env-file", "--encoding", "--schema", "--output":
		default:
			return nil, errors.Configf("unknown argument %q", arg)
		}

		if !hasValue {
			if i+1 >= len(args) {
				return nil, errors.Configf("%s requires a value", name)
			}
			value = args[i+1]
			i++
		}
		i++

		if err := applyValueFlag(opts, name, value); err != nil {
			return nil, err
		}
	}

	if opts.Quiet && opts.Verbose {
		return nil, errors.Config("--quiet and --verbose are mutually exclusive")
	}
	return opts, nil
}

func applyValueFlag(opts *Options, name, value string) error {
	switch name {
	case "--config":
		opts.ConfigFile = value
	case "--env-file":
		opts.EnvFile = value
	case "--set":
		key, v, ok := strings.Cut(value, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return errors.Configf("invalid --set value %q\n  expected: name=value\n  example: --set comparison-method=regex", value)
		}
		opts.Sets[key] = strings.TrimSpace(v)
	case "--encoding":
		enc, ok := result.ParseEncoding(value)
		if !ok {
			return errors.Configf("invalid --encoding value %q\n  valid values: json, base64", value)
		}
		opts.Encoding = enc
	case "--schema":
		s, ok := result.ParseSchema(value)
		if !ok {
			return errors.Configf("invalid --schema value %q\n  valid values: scored, legacy", value)
		}
		opts.Schema = s
	case "--output":
		if strings.TrimSpace(value) == "" {
			return errors.Config("--output requires a non-empty name")
		}
		opts.OutputName = value
	}
	return nil
}

// buildSource layers --set values over the case file over INPUT_* variables.
func buildSource(opts *Options, lookupEnv func(string) (string, bool), w *output.Writer) (config.Source, error) {
	chain := config.Chain{opts.Sets}

	if opts.ConfigFile != "" {
		file, warnings, err := config.LoadFile(opts.ConfigFile)
		if err != nil {
			return nil, errors.Config(err.Error())
		}
		for _, warning := range warnings {
			w.WarningSimple("%s", warning)
		}
		chain = append(chain, file)
	}

	return append(chain, config.EnvSource{LookupEnv: lookupEnv}), nil
}

// newLogger creates a tint-formatted slog logger writing to w. When the
// Actions runner has step debugging enabled, debug records are also sent as
// ::debug:: commands.
func newLogger(w io.Writer, noColor, verbose bool, runner *actions.Runner) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	var handler slog.Handler = tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    noColor,
	})
	if runner.IsDebug() {
		handler = actions.NewDebugHandler(runner, handler)
	}
	return slog.New(handler)
}

// isTerminal returns true if f is a terminal.
func isTerminal(f *os.File) bool {
	if fi, _ := f.Stat(); fi != nil {
		return (fi.Mode() & os.ModeCharDevice) != 0
	}
	return false
}
