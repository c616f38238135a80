package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/AndreyAkinshin/iograder/internal/errors"
	"github.com/AndreyAkinshin/iograder/internal/result"
	"github.com/AndreyAkinshin/iograder/pkg/iograder"
)

// testHost returns a host reading vars instead of the process environment.
// PATH is passed through so shell commands resolve binaries.
func testHost(vars map[string]string) (host, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	env := map[string]string{"PATH": os.Getenv("PATH")}
	for k, v := range vars {
		env[k] = v
	}
	return host{
		stdout: stdout,
		stderr: stderr,
		lookupEnv: func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		},
	}, stdout, stderr
}

// setOutputValue extracts the value of a ::set-output command from stdout.
func setOutputValue(t *testing.T, stdout, name string) string {
	t.Helper()
	prefix := "::set-output name=" + name + "::"
	for _, line := range strings.Split(stdout, "\n") {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimPrefix(line, prefix)
		}
	}
	t.Fatalf("no set-output for %q in stdout:\n%s", name, stdout)
	return ""
}

func decodeStdout(t *testing.T, stdout string) *iograder.Result {
	t.Helper()
	res, err := iograder.Decode(setOutputValue(t, stdout, DefaultOutputName))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return res
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test uses POSIX shell commands")
	}
}

func TestParseFlags(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		args    []string
		check   func(t *testing.T, o *Options)
		wantErr bool
	}{
		{
			name: "defaults",
			args: nil,
			check: func(t *testing.T, o *Options) {
				if o.Encoding != result.EncodingBase64 || o.Schema != result.SchemaScored || o.OutputName != "result" {
					t.Errorf("defaults = %+v", o)
				}
			},
		},
		{
			name: "value forms",
			args: []string{"--config", "a.yaml", "--encoding=json", "--schema", "legacy", "--output=grade", "--env-file", ".env"},
			check: func(t *testing.T, o *Options) {
				if o.ConfigFile != "a.yaml" || o.Encoding != result.EncodingJSON || o.Schema != result.SchemaLegacy ||
					o.OutputName != "grade" || o.EnvFile != ".env" {
					t.Errorf("options = %+v", o)
				}
			},
		},
		{
			name: "repeated set",
			args: []string{"--set", "test-name=A", "--set=command=echo a=b", "--set", "input="},
			check: func(t *testing.T, o *Options) {
				if o.Sets["test-name"] != "A" || o.Sets["command"] != "echo a=b" {
					t.Errorf("Sets = %v", o.Sets)
				}
				if v, ok := o.Sets["input"]; !ok || v != "" {
					t.Errorf("Sets[input] = %q, %v", v, ok)
				}
			},
		},
		{
			name: "switches",
			args: []string{"-q", "--help", "--version"},
			check: func(t *testing.T, o *Options) {
				if !o.Quiet || !o.Help || !o.Version {
					t.Errorf("options = %+v", o)
				}
			},
		},
		{name: "unknown flag", args: []string{"--docker"}, wantErr: true},
		{name: "positional argument", args: []string{"grade"}, wantErr: true},
		{name: "missing value", args: []string{"--config"}, wantErr: true},
		{name: "bad set", args: []string{"--set", "novalue"}, wantErr: true},
		{name: "empty set key", args: []string{"--set", "=x"}, wantErr: true},
		{name: "bad encoding", args: []string{"--encoding", "yaml"}, wantErr: true},
		{name: "bad schema", args: []string{"--schema=v2"}, wantErr: true},
		{name: "empty output", args: []string{"--output="}, wantErr: true},
		{name: "quiet and verbose", args: []string{"-q", "-v"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts, err := parseFlags(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseFlags(%v) expected error", tt.args)
				}
				if got := errors.GetExitCode(err); got != errors.ExitConfigError {
					t.Errorf("GetExitCode() = %d, want %d", got, errors.ExitConfigError)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseFlags(%v) error = %v", tt.args, err)
			}
			tt.check(t, opts)
		})
	}
}

func TestRun_FlagErrorExitCode(t *testing.T) {
	t.Parallel()
	h, stdout, stderr := testHost(nil)

	code := run(context.Background(), []string{"--bogus"}, h)

	if code != errors.ExitConfigError {
		t.Errorf("run() = %d, want %d", code, errors.ExitConfigError)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want empty", stdout.String())
	}
	if !strings.Contains(stderr.String(), `unknown argument "--bogus"`) {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRun_HelpAndVersion(t *testing.T) {
	t.Parallel()

	h, _, stderr := testHost(nil)
	if code := run(context.Background(), []string{"--help"}, h); code != 0 {
		t.Errorf("run(--help) = %d, want 0", code)
	}
	if !strings.Contains(stderr.String(), "INPUT_COMPARISON-METHOD") {
		t.Errorf("help output missing input list:\n%s", stderr.String())
	}

	h, stdout, _ := testHost(nil)
	if code := run(context.Background(), []string{"--version"}, h); code != 0 {
		t.Errorf("run(--version) = %d, want 0", code)
	}
	if got := stdout.String(); got != "iograder "+Version+"\n" {
		t.Errorf("version output = %q", got)
	}
}

func TestRun_EnvInputsPass(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)
	h, stdout, stderr := testHost(map[string]string{
		"INPUT_TEST-NAME":         "Echo",
		"INPUT_COMMAND":           "echo Hello, World!",
		"INPUT_EXPECTED-OUTPUT":   "Hello, World!",
		"INPUT_COMPARISON-METHOD": "exact",
		"INPUT_MAX-SCORE":         "10",
	})

	if code := run(context.Background(), nil, h); code != 0 {
		t.Fatalf("run() = %d, want 0", code)
	}

	res := decodeStdout(t, stdout.String())
	entry := res.Entry()
	if res.Status != iograder.StatusPass || entry.Status != iograder.StatusPass {
		t.Errorf("status = %q/%q, want pass", res.Status, entry.Status)
	}
	if entry.Score == nil || *entry.Score != 10 {
		t.Errorf("Score = %v, want 10", entry.Score)
	}
	if entry.TestCode != "echo Hello, World! <stdin>" {
		t.Errorf("TestCode = %q", entry.TestCode)
	}
	if !strings.Contains(stderr.String(), "=== Echo ===") {
		t.Errorf("stderr missing summary:\n%s", stderr.String())
	}
}

func TestRun_FailStillExitsZero(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)
	h, stdout, _ := testHost(map[string]string{
		"INPUT_TEST-NAME":         "Mismatch",
		"INPUT_COMMAND":           "echo Hello",
		"INPUT_EXPECTED-OUTPUT":   "Goodbye",
		"INPUT_COMPARISON-METHOD": "exact",
	})

	if code := run(context.Background(), []string{"-q"}, h); code != 0 {
		t.Fatalf("run() = %d, want 0", code)
	}

	entry := decodeStdout(t, stdout.String()).Entry()
	if entry.Status != iograder.StatusFail {
		t.Errorf("Status = %q, want fail", entry.Status)
	}
	if entry.Message == nil || *entry.Message != "Output does not match expected. Got: Hello" {
		t.Errorf("Message = %v", entry.Message)
	}
}

func TestRun_MissingInputProducesErrorRecord(t *testing.T) {
	t.Parallel()
	h, stdout, _ := testHost(map[string]string{
		"INPUT_TEST-NAME": "Partial",
	})

	if code := run(context.Background(), []string{"--quiet"}, h); code != 0 {
		t.Fatalf("run() = %d, want 0", code)
	}

	res := decodeStdout(t, stdout.String())
	entry := res.Entry()
	if entry.Status != iograder.StatusError {
		t.Errorf("Status = %q, want error", entry.Status)
	}
	if entry.Name != "Partial" || entry.TestCode != "Unknown Command <stdin>" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Message == nil || *entry.Message != "Input required and not supplied: command" {
		t.Errorf("Message = %v", entry.Message)
	}
	if res.MaxScore != nil {
		t.Errorf("MaxScore = %d, want absent", *res.MaxScore)
	}
}

func TestRun_ConfigFileWithSetOverride(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)
	h, stdout, _ := testHost(map[string]string{
		"INPUT_TEST-NAME": "From Env",
	})

	args := []string{
		"--config", filepath.Join("testdata", "hello.yaml"),
		"--set", "comparison-method=contains",
		"--set", "expected-output=World",
		"--encoding", "json",
		"-q",
	}
	if code := run(context.Background(), args, h); code != 0 {
		t.Fatalf("run() = %d, want 0", code)
	}

	res := decodeStdout(t, stdout.String())
	entry := res.Entry()
	if entry.Name != "Hello" {
		t.Errorf("Name = %q, want value from case file", entry.Name)
	}
	if entry.Status != iograder.StatusPass {
		t.Errorf("Status = %q, want pass", entry.Status)
	}
	if res.MaxScore == nil || *res.MaxScore != 5 {
		t.Errorf("MaxScore = %v, want 5", res.MaxScore)
	}
}

func TestRun_ConfigFileWarnings(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)
	h, stdout, stderr := testHost(nil)

	if code := run(context.Background(), []string{"--config", filepath.Join("testdata", "typo.yaml"), "-q"}, h); code != 0 {
		t.Fatalf("run() = %d, want 0", code)
	}
	if !strings.Contains(stderr.String(), "commnd") {
		t.Errorf("stderr missing unknown key warning:\n%s", stderr.String())
	}
	if got := decodeStdout(t, stdout.String()).Status; got != iograder.StatusPass {
		t.Errorf("Status = %q, want pass", got)
	}
}

func TestRun_ConfigFileErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join("testdata", "nonexistent.yaml")},
		{"non-scalar", filepath.Join("testdata", "broken.yaml")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, stdout, _ := testHost(nil)
			if code := run(context.Background(), []string{"--config", tt.path}, h); code != errors.ExitConfigError {
				t.Errorf("run() = %d, want %d", code, errors.ExitConfigError)
			}
			if stdout.Len() != 0 {
				t.Errorf("stdout = %q, want no output", stdout.String())
			}
		})
	}
}

func TestRun_EnvFile(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)
	h, stdout, _ := testHost(map[string]string{
		"INPUT_TEST-NAME":         "Env",
		"INPUT_COMMAND":           "echo $GREETING $DOTNET_NOLOGO",
		"INPUT_EXPECTED-OUTPUT":   "from-env-file true",
		"INPUT_COMPARISON-METHOD": "exact",
	})

	if code := run(context.Background(), []string{"--env-file", filepath.Join("testdata", "extra.env"), "-q"}, h); code != 0 {
		t.Fatalf("run() = %d, want 0", code)
	}
	entry := decodeStdout(t, stdout.String()).Entry()
	if entry.Status != iograder.StatusPass {
		t.Errorf("Status = %q, want pass (message %v)", entry.Status, entry.Message)
	}
}

func TestRun_LegacySchema(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)
	h, stdout, _ := testHost(map[string]string{
		"INPUT_TEST-NAME":         "Legacy",
		"INPUT_COMMAND":           "exit 3",
		"INPUT_EXPECTED-OUTPUT":   "x",
		"INPUT_COMPARISON-METHOD": "exact",
	})

	if code := run(context.Background(), []string{"--schema", "legacy", "-q"}, h); code != 0 {
		t.Fatalf("run() = %d, want 0", code)
	}
	res := decodeStdout(t, stdout.String())
	if res.Status != iograder.StatusFail {
		t.Errorf("Status = %q, want fail", res.Status)
	}
	if res.MaxScore != nil || res.Entry().Score != nil {
		t.Errorf("legacy record carries scores: %+v", res)
	}
}

func TestRun_GitHubOutputFile(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)
	path := filepath.Join(t.TempDir(), "output")
	h, stdout, _ := testHost(map[string]string{
		"GITHUB_OUTPUT":           path,
		"INPUT_TEST-NAME":         "File",
		"INPUT_COMMAND":           "cat",
		"INPUT_INPUT":             "  abc  ",
		"INPUT_EXPECTED-OUTPUT":   "abc",
		"INPUT_COMPARISON-METHOD": "exact",
	})

	if code := run(context.Background(), []string{"--output", "grade", "-q"}, h); code != 0 {
		t.Fatalf("run() = %d, want 0", code)
	}
	if strings.Contains(stdout.String(), "::set-output") {
		t.Errorf("stdout = %q, want no set-output command", stdout.String())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "grade<<") {
		t.Fatalf("output file = %q", data)
	}
	if delim := strings.TrimPrefix(lines[0], "grade<<"); lines[2] != delim {
		t.Errorf("closing delimiter = %q, want %q", lines[2], delim)
	}

	res, err := iograder.Decode(lines[1])
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if entry := res.Entry(); entry.Status != iograder.StatusPass || entry.TestCode != "cat <stdin>abc" {
		t.Errorf("entry = %+v", entry)
	}
}

func TestRun_VerboseLogs(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)
	h, _, stderr := testHost(map[string]string{
		"INPUT_TEST-NAME":         "Verbose",
		"INPUT_COMMAND":           "echo 1",
		"INPUT_EXPECTED-OUTPUT":   "1",
		"INPUT_COMPARISON-METHOD": "exact",
	})

	if code := run(context.Background(), []string{"-v"}, h); code != 0 {
		t.Fatalf("run() = %d, want 0", code)
	}
	if !strings.Contains(stderr.String(), "inputs resolved") {
		t.Errorf("stderr missing debug log:\n%s", stderr.String())
	}
}

func TestRun_RunnerDebugEmitsWorkflowCommands(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)
	h, stdout, stderr := testHost(map[string]string{
		"RUNNER_DEBUG":            "1",
		"INPUT_TEST-NAME":         "Debug",
		"INPUT_COMMAND":           "echo 1",
		"INPUT_EXPECTED-OUTPUT":   "1",
		"INPUT_COMPARISON-METHOD": "exact",
	})

	if code := run(context.Background(), []string{"-q"}, h); code != 0 {
		t.Fatalf("run() = %d, want 0", code)
	}
	if !strings.Contains(stdout.String(), "::debug::inputs resolved test=Debug") {
		t.Errorf("stdout missing ::debug:: lines:\n%s", stdout.String())
	}
	if strings.Contains(stderr.String(), "inputs resolved") {
		t.Errorf("debug record leaked to stderr without --verbose:\n%s", stderr.String())
	}
	if got := decodeStdout(t, stdout.String()).Status; got != iograder.StatusPass {
		t.Errorf("Status = %q, want pass", got)
	}
}
