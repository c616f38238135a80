package executor

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// buildShellCommand creates a cross-platform shell command.
// On Windows, uses the full path to PowerShell; on Unix, uses sh -c.
func buildShellCommand(ctx context.Context, script string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return buildWindowsShellCommand(ctx, script)
	}
	return exec.CommandContext(ctx, "sh", "-c", script)
}

// buildWindowsShellCommand creates a PowerShell command using the full path,
// since PATH in the fixed environment may not include System32.
func buildWindowsShellCommand(ctx context.Context, script string) *exec.Cmd {
	systemRoot := os.Getenv("SYSTEMROOT")
	if systemRoot == "" {
		systemRoot = `C:\Windows`
	}
	powershellPath := filepath.Join(systemRoot, "System32", "WindowsPowerShell", "v1.0", "powershell.exe")
	return exec.CommandContext(ctx, powershellPath, "-NoProfile", "-NonInteractive", "-Command", script)
}
