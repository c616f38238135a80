// Package executor runs shell commands with a timeout and a fixed environment.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	graderrors "github.com/AndreyAkinshin/iograder/internal/errors"
)

// TimeoutMessage is reported for commands killed at their deadline.
const TimeoutMessage = "Command was killed due to timeout"

// waitDelay bounds how long Wait keeps draining pipes after the process group
// was killed. Grandchildren that escaped the group could otherwise hold
// stdout open indefinitely.
const waitDelay = 2 * time.Second

// maxStderrBytes caps the stderr text included in failure messages.
const maxStderrBytes = 4096

// Status classifies an Outcome.
type Status int

const (
	StatusSuccess Status = iota
	StatusTimedOut
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusTimedOut:
		return "timed out"
	default:
		return "failed"
	}
}

// Command describes one shell invocation.
type Command struct {
	Script  string
	Stdin   string
	Timeout time.Duration

	// Env is the complete environment of the process. Nothing is inherited.
	Env []string

	// Dir is the working directory; empty means the current directory.
	Dir string

	// DiscardOutput sends stdout and stderr to the null device.
	DiscardOutput bool
}

// Outcome is the result of running a Command.
type Outcome struct {
	Status Status

	// Stdout is the trimmed standard output; set only on success.
	Stdout string

	// Message describes a timeout or failure.
	Message string

	// ExitCode is the process exit code, or -1 when the process never
	// exited on its own.
	ExitCode int

	Duration time.Duration
}

// Err converts a non-success outcome to an error.
func (o Outcome) Err() error {
	switch o.Status {
	case StatusSuccess:
		return nil
	case StatusTimedOut:
		return graderrors.Timeout(o.Message)
	default:
		return graderrors.Execution(o.Message, nil)
	}
}

// Shell runs commands through the platform shell.
type Shell struct {
	// Now is the clock used for durations. Defaults to time.Now.
	Now func() time.Time
}

// New creates a Shell using the wall clock.
func New() *Shell {
	return &Shell{Now: time.Now}
}

// Run executes c and classifies the result. It never returns an error;
// spawn failures are reported as StatusFailed.
func (s *Shell) Run(ctx context.Context, c Command) Outcome {
	now := s.Now
	if now == nil {
		now = time.Now
	}

	runCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := buildShellCommand(runCtx, c.Script)
	cmd.Dir = c.Dir
	cmd.Env = c.Env
	if cmd.Env == nil {
		cmd.Env = []string{}
	}
	cmd.Stdin = strings.NewReader(c.Stdin)
	cmd.WaitDelay = waitDelay
	configureProcessGroup(cmd)

	var stdout bytes.Buffer
	stderr := &limitedBuffer{limit: maxStderrBytes}
	if !c.DiscardOutput {
		cmd.Stdout = &stdout
		cmd.Stderr = stderr
	}

	start := now()
	err := cmd.Run()
	duration := now().Sub(start)

	if err == nil || exitedCleanly(cmd, err) {
		return Outcome{
			Status:   StatusSuccess,
			Stdout:   strings.TrimSpace(stdout.String()),
			Duration: duration,
		}
	}

	if runCtx.Err() == context.DeadlineExceeded {
		return Outcome{
			Status:   StatusTimedOut,
			Message:  TimeoutMessage,
			ExitCode: -1,
			Duration: duration,
		}
	}

	return Outcome{
		Status:   StatusFailed,
		Message:  failureMessage(c.Script, err, stderr.String()),
		ExitCode: exitCode(err),
		Duration: duration,
	}
}

// exitedCleanly reports whether the shell itself exited 0 even though Run
// failed. That happens when a background child keeps stdout open past
// waitDelay or the deadline fires after the exit. The leftover group is
// killed.
func exitedCleanly(cmd *exec.Cmd, err error) bool {
	if err == nil || cmd.ProcessState == nil || !cmd.ProcessState.Success() {
		return false
	}
	killProcessGroup(cmd)
	return true
}

// failureMessage formats a failed run as "Command failed: <script>" followed
// by the exit status and any captured stderr.
func failureMessage(script string, err error, stderrText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Command failed: %s (%v)", script, err)
	if s := strings.TrimSpace(stderrText); s != "" {
		b.WriteString("\n")
		b.WriteString(s)
	}
	return b.String()
}

func exitCode(err error) int {
	var ee *exec.ExitError
	if errors.As(err, &ee) && ee.ProcessState != nil {
		return ee.ExitCode()
	}
	return -1
}

// limitedBuffer keeps at most limit bytes and silently drops the rest.
type limitedBuffer struct {
	buf   bytes.Buffer
	limit int
}

var _ io.Writer = (*limitedBuffer)(nil)

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.limit - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	return b.buf.String()
}
