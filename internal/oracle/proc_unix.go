//go:build !windows

package oracle

import (
	"os/exec"
	"syscall"
)

// configureProcessGroup puts the shell and the oracle it spawns in their
// own process group so cancellation kills both.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
