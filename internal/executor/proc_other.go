//go:build !unix

package executor

import "os/exec"

// configureProcessGroup keeps the default cancellation, which kills only the
// shell process.
func configureProcessGroup(cmd *exec.Cmd) {}

func killProcessGroup(cmd *exec.Cmd) {}
