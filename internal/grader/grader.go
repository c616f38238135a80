// Package grader runs one test case end to end and always yields a result
// record.
package grader

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AndreyAkinshin/iograder/internal/compare"
	"github.com/AndreyAkinshin/iograder/internal/config"
	"github.com/AndreyAkinshin/iograder/internal/errors"
	"github.com/AndreyAkinshin/iograder/internal/executor"
	"github.com/AndreyAkinshin/iograder/internal/result"
	"github.com/AndreyAkinshin/iograder/pkg/iograder"
)

// Runner executes shell commands.
type Runner interface {
	Run(ctx context.Context, c executor.Command) executor.Outcome
}

// Options configures a Grader. Zero values select defaults.
type Options struct {
	Runner      Runner
	Environment *config.Environment
	Builder     *result.Builder
	Logger      *slog.Logger

	// LookupEnv reads host variables for environment passthrough.
	LookupEnv func(string) (string, bool)

	// Dir is the working directory for setup and test commands.
	Dir string

	// Now is the clock used to time the test command.
	Now func() time.Time
}

// Grader sequences input resolution, setup, the test run, comparison and
// record construction.
type Grader struct {
	runner    Runner
	env       config.Environment
	builder   *result.Builder
	logger    *slog.Logger
	lookupEnv func(string) (string, bool)
	dir       string
	now       func() time.Time
}

// New creates a Grader.
func New(opts Options) *Grader {
	g := &Grader{
		runner:    opts.Runner,
		builder:   opts.Builder,
		logger:    opts.Logger,
		lookupEnv: opts.LookupEnv,
		dir:       opts.Dir,
		now:       opts.Now,
	}
	if g.runner == nil {
		g.runner = executor.New()
	}
	if opts.Environment != nil {
		g.env = *opts.Environment
	} else {
		g.env = config.DefaultEnvironment()
	}
	if g.builder == nil {
		g.builder = result.NewBuilder(result.SchemaScored)
	}
	if g.logger == nil {
		g.logger = slog.New(slog.DiscardHandler)
	}
	if g.now == nil {
		g.now = time.Now
	}
	return g
}

// Grade runs the test described by src. It never fails: validation errors,
// setup failures, bad patterns and panics all become error records.
func (g *Grader) Grade(ctx context.Context, src config.Source) (res iograder.Result) {
	resolver := config.NewResolver(src)
	var cfg *config.TestConfig

	defer func() {
		if r := recover(); r != nil {
			res = g.fail(resolver.Echo(), cfg, panicError(r))
		}
	}()

	g.enter(StateResolvingInputs)
	cfg, err := resolver.Resolve()
	if err != nil {
		return g.fail(resolver.Echo(), nil, err)
	}
	g.logger.Debug("inputs resolved",
		"test", cfg.TestName,
		"method", cfg.Method,
		"timeout", cfg.Timeout,
		"max_score", cfg.MaxScore,
		"setup", cfg.HasSetup(),
	)

	env := g.env.Environ(g.lookupEnv)

	if cfg.HasSetup() {
		g.enter(StateRunningSetup)
		out := g.runner.Run(ctx, executor.Command{
			Script:        cfg.SetupCommand,
			Timeout:       cfg.Timeout,
			Env:           env,
			Dir:           g.dir,
			DiscardOutput: true,
		})
		if err := out.Err(); err != nil {
			return g.fail(resolver.Echo(), cfg, errors.Setup(out.Message, err))
		}
	}

	g.enter(StateRunningTest)
	start := g.now()
	out := g.runner.Run(ctx, executor.Command{
		Script:  cfg.Command,
		Stdin:   cfg.Input,
		Timeout: cfg.Timeout,
		Env:     env,
		Dir:     g.dir,
	})
	duration := g.now().Sub(start)
	g.logger.Debug("test command finished", "status", out.Status, "exit_code", out.ExitCode, "duration", duration)

	if out.Status != executor.StatusSuccess {
		g.enter(StateBuildingResult)
		msg := out.Message
		res = g.builder.Graded(cfg, iograder.StatusError, &msg, duration)
		g.enter(StateDone)
		return res
	}

	g.enter(StateComparing)
	ok, err := compare.Compare(out.Stdout, cfg.ExpectedOutput, cfg.Method)
	if err != nil {
		return g.fail(resolver.Echo(), cfg, err)
	}

	g.enter(StateBuildingResult)
	if ok {
		res = g.builder.Graded(cfg, iograder.StatusPass, nil, duration)
	} else {
		msg := fmt.Sprintf("Output does not match expected. Got: %s", out.Stdout)
		res = g.builder.Graded(cfg, iograder.StatusFail, &msg, duration)
	}
	g.enter(StateDone)
	return res
}

// panicError converts a recovered value to an internal error, keeping the
// original error as the cause when there is one.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return errors.Wrap(err)
	}
	return errors.Internalf("%v", r)
}

// fail moves to StateError and builds the best-effort record.
func (g *Grader) fail(echo config.Echo, cfg *config.TestConfig, err error) iograder.Result {
	g.enter(StateError)
	g.logger.Debug("grading aborted", "kind", errors.KindOf(err), "error", err)
	return g.builder.Errored(echo, cfg, err)
}

func (g *Grader) enter(s State) {
	g.logger.Debug("state", "state", s)
}
