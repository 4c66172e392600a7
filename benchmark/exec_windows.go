//go:build windows

package benchmark

import (
	"os"
	"os/exec"
)

func setProcessGroup(cmd *exec.Cmd) {}

// Windows has no process groups in the unix sense; only the direct child is
// terminated on cancellation.
func terminateProcessTree(p *os.Process) {
	if p != nil {
		_ = p.Kill()
	}
}

func killProcessTree(p *os.Process) {
	if p != nil {
		_ = p.Kill()
	}
}

func exitStatus(state *os.ProcessState) int {
	return state.ExitCode()
}

func peakRSS(state *os.ProcessState) int64 {
	return 0
}
