package benchmark

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// termGracePeriod is how long a cancelled command's process group gets to
// exit after SIGTERM before it is killed outright.
const termGracePeriod = 2 * time.Second

// timing carries the raw measurements of one spawn.
type timing struct {
	wall     time.Duration
	user     time.Duration
	system   time.Duration
	peakRSS  int64
	exitCode int
}

// runCommand spawns one command through the interpreter and waits for it,
// measuring wall clock and CPU times. A non-zero exit is not an error here;
// callers apply policy from timing.exitCode. The returned error is reserved
// for spawn failures and cancellation.
func runCommand(ctx context.Context, interp Interpreter, command string, env []string, showOutput bool) (timing, error) {
	argv := interp.argv(command)
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = env
	if showOutput {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}
	setProcessGroup(cmd)

	slog.Debug("spawning command", "argv", argv)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return timing{}, &SpawnError{Path: argv[0], Err: err}
	}

	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()

	var waitErr error
	select {
	case <-ctx.Done():
		terminateProcessTree(cmd.Process)
		select {
		case <-waitCh:
		case <-time.After(termGracePeriod):
			killProcessTree(cmd.Process)
			<-waitCh
		}
		return timing{}, ctx.Err()
	case waitErr = <-waitCh:
	}
	wall := time.Since(start)

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return timing{}, fmt.Errorf("waiting for %q: %w", command, waitErr)
		}
	}

	state := cmd.ProcessState
	t := timing{
		wall:     wall,
		user:     state.UserTime(),
		system:   state.SystemTime(),
		peakRSS:  peakRSS(state),
		exitCode: exitStatus(state),
	}
	slog.Debug("command finished",
		"command", command,
		"wall", t.wall,
		"user", t.user,
		"system", t.system,
		"exit", t.exitCode)
	return t, nil
}
