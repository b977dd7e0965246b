//go:build windows

package oracle

import "os/exec"

// configureProcessGroup is a no-op on Windows; exec.CommandContext kills
// the cmd.exe process on cancellation.
func configureProcessGroup(cmd *exec.Cmd) {}
