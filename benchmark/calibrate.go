package benchmark

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// defaultCalibrationRuns is how many empty commands are timed to estimate
// interpreter spawn overhead.
const defaultCalibrationRuns = 50

// spawnOverhead is the mean cost of launching the interpreter with an empty
// command. It is subtracted from every sample so results reflect the command
// rather than the shell.
type spawnOverhead struct {
	wall   time.Duration
	user   time.Duration
	system time.Duration
}

// measureSpawnOverhead times `runs` empty-command spawns through the
// interpreter and returns the mean overhead.
func measureSpawnOverhead(ctx context.Context, interp Interpreter, env []string, runs int, progress Progress) (spawnOverhead, error) {
	if runs <= 0 {
		runs = defaultCalibrationRuns
	}
	progress.Calibration(0, runs)

	var sum spawnOverhead
	for i := 0; i < runs; i++ {
		t, err := runCommand(ctx, interp, "", envFor(env), false)
		if err != nil {
			return spawnOverhead{}, err
		}
		if t.exitCode != 0 {
			return spawnOverhead{}, &SpawnError{
				Path: interp.Path,
				Err:  fmt.Errorf("empty command exited with code %d during calibration", t.exitCode),
			}
		}
		sum.wall += t.wall
		sum.user += t.user
		sum.system += t.system
		progress.Calibration(i+1, runs)
	}

	n := time.Duration(runs)
	overhead := spawnOverhead{wall: sum.wall / n, user: sum.user / n, system: sum.system / n}
	slog.Debug("interpreter spawn overhead measured",
		"interpreter", interp.String(),
		"runs", runs,
		"wall", overhead.wall,
		"user", overhead.user,
		"system", overhead.system)
	return overhead, nil
}

// subtract removes the spawn overhead from a raw measurement, never going
// below zero.
func (o spawnOverhead) subtract(t timing) timing {
	t.wall = clampDuration(t.wall - o.wall)
	t.user = clampDuration(t.user - o.user)
	t.system = clampDuration(t.system - o.system)
	return t
}

func clampDuration(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
