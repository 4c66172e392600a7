package benchmark

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requirePOSIXShell skips tests that drive real commands through /bin/sh.
func requirePOSIXShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

// quickOptions returns options tuned for tests: no calibration spawns and a
// fixed run count unless the test overrides it.
func quickOptions(t *testing.T, commands ...string) Options {
	t.Helper()
	templates := make([]CommandTemplate, len(commands))
	for i, c := range commands {
		templates[i] = CommandTemplate{Command: c}
	}
	return Options{
		Commands:        templates,
		Runs:            RunCounts{Exact: 3},
		SkipCalibration: true,
	}
}

func logLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

func hasWarning(res *Result, kind WarningKind) bool {
	for _, w := range res.Warnings {
		if w.Kind == kind {
			return true
		}
	}
	return false
}

func TestRun_ExactRunCount(t *testing.T) {
	requirePOSIXShell(t)

	report, err := Run(context.Background(), quickOptions(t, "true"))
	require.NoError(t, err)
	require.Len(t, report.Results, 1)

	res := report.Results[0]
	assert.False(t, res.Failed)
	require.Len(t, res.Samples, 3)
	for i, s := range res.Samples {
		assert.Equal(t, i+1, s.Run)
		assert.True(t, s.Success)
		assert.Equal(t, 0, s.ExitCode)
	}
	assert.Equal(t, 3, res.Stats.N)
	assert.NotEmpty(t, report.SessionID)
	assert.Equal(t, "/bin/sh -c", report.Interpreter)
	assert.Nil(t, report.Comparison, "a single unit has nothing to compare against")
	assert.NoError(t, report.CompareErr)
	assert.False(t, report.EndTime.Before(report.StartTime))
}

func TestRun_AdaptiveStopsAtMinimum(t *testing.T) {
	requirePOSIXShell(t)

	opts := quickOptions(t, "true")
	opts.Runs = RunCounts{}
	opts.TargetTime = time.Nanosecond

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Len(t, report.Results[0].Samples, 10, "default minimum governs when the budget is already spent")
}

func TestRun_AdaptiveHonorsCustomMinimum(t *testing.T) {
	requirePOSIXShell(t)

	opts := quickOptions(t, "true")
	opts.Runs = RunCounts{Min: 4}
	opts.TargetTime = time.Nanosecond

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Len(t, report.Results[0].Samples, 4)
}

func TestRun_AdaptiveStopsAtMaximum(t *testing.T) {
	requirePOSIXShell(t)

	opts := quickOptions(t, "true")
	opts.Runs = RunCounts{Max: 12}
	opts.TargetTime = time.Hour

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Len(t, report.Results[0].Samples, 12, "max caps the adaptive loop under an unreachable budget")
}

func TestRun_FastExecutionWarning(t *testing.T) {
	requirePOSIXShell(t)

	report, err := Run(context.Background(), quickOptions(t, "true"))
	require.NoError(t, err)
	assert.True(t, hasWarning(report.Results[0], WarnFastExecution), "true finishes well under the reliability floor")
}

func TestRun_CommandFailureAborts(t *testing.T) {
	requirePOSIXShell(t)

	report, err := Run(context.Background(), quickOptions(t, "exit 7"))
	require.Error(t, err)

	var execErr *ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, StageCommand, execErr.Stage)
	assert.Equal(t, 7, execErr.ExitCode)
	assert.Contains(t, err.Error(), "--ignore-failure", "the error should point at the escape hatch")

	require.Len(t, report.Results, 1)
	res := report.Results[0]
	assert.True(t, res.Failed)
	assert.Contains(t, res.FailureReason, "exit code 7")
	assert.Len(t, res.Samples, 1, "the session stops at the first failure")
}

func TestRun_IgnoreFailureRecordsAllRuns(t *testing.T) {
	requirePOSIXShell(t)

	opts := quickOptions(t, "exit 1")
	opts.IgnoreFailure = true

	report, err := Run(context.Background(), opts)
	require.NoError(t, err, "with -i a failing command is not a session error")

	res := report.Results[0]
	require.Len(t, res.Samples, 3)
	for _, s := range res.Samples {
		assert.False(t, s.Success)
		assert.Equal(t, 1, s.ExitCode)
	}
	assert.True(t, res.Failed)
	assert.Equal(t, "all 3 runs failed", res.FailureReason)
	assert.Equal(t, 0, res.Stats.N)
}

func TestRun_IgnoreFailureMixedRuns(t *testing.T) {
	requirePOSIXShell(t)

	marker := filepath.Join(t.TempDir(), "marker")
	cmd := fmt.Sprintf("if [ -e %s ]; then true; else touch %s; exit 1; fi", marker, marker)

	opts := quickOptions(t, cmd)
	opts.IgnoreFailure = true

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)

	res := report.Results[0]
	assert.False(t, res.Failed, "successes remain rankable")
	assert.Equal(t, 2, res.Stats.N, "statistics cover the successful runs only")
	assert.Len(t, res.Samples, 3)
	assert.True(t, hasWarning(res, WarnIgnoredFailures))
}

func TestRun_WarmupRunsNotRecorded(t *testing.T) {
	requirePOSIXShell(t)

	log := filepath.Join(t.TempDir(), "runs.log")
	opts := quickOptions(t, fmt.Sprintf("echo run >> %s", log))
	opts.Warmup = 2
	opts.Runs = RunCounts{Exact: 3}

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Len(t, logLines(t, log), 5, "warmup and timed runs both execute the command")
	assert.Len(t, report.Results[0].Samples, 3, "only timed runs produce samples")
}

func TestRun_HookLifecycle(t *testing.T) {
	requirePOSIXShell(t)

	log := filepath.Join(t.TempDir(), "lifecycle.log")
	appendTo := func(word string) string { return fmt.Sprintf("echo %s >> %s", word, log) }

	opts := Options{
		Commands: []CommandTemplate{{
			Command: appendTo("run"),
			Setup:   appendTo("setup"),
			Prepare: appendTo("prepare"),
			Cleanup: appendTo("cleanup"),
		}},
		Warmup:          1,
		Runs:            RunCounts{Exact: 2},
		SkipCalibration: true,
	}

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"setup",
		"prepare", "run", // warmup
		"prepare", "run",
		"prepare", "run",
		"cleanup",
	}, logLines(t, log), "prepare precedes every run, warmup included; cleanup exactly once")
}

func TestRun_SetupFailureAbortsBeforeAnyRun(t *testing.T) {
	requirePOSIXShell(t)

	dir := t.TempDir()
	runLog := filepath.Join(dir, "run.log")
	cleanupLog := filepath.Join(dir, "cleanup.log")

	opts := Options{
		Commands: []CommandTemplate{{
			Command: fmt.Sprintf("echo run >> %s", runLog),
			Setup:   "exit 3",
			Cleanup: fmt.Sprintf("echo cleanup >> %s", cleanupLog),
		}},
		Runs:            RunCounts{Exact: 2},
		SkipCalibration: true,
	}

	report, err := Run(context.Background(), opts)
	require.Error(t, err)

	var execErr *ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, StageSetup, execErr.Stage)
	assert.Equal(t, 3, execErr.ExitCode)

	assert.Empty(t, logLines(t, runLog), "the command never runs after a failed setup")
	assert.Len(t, logLines(t, cleanupLog), 1, "cleanup still runs after a failed setup")
	assert.Empty(t, report.Results[0].Samples)
}

func TestRun_WarmupFailureAborts(t *testing.T) {
	requirePOSIXShell(t)

	opts := quickOptions(t, "exit 2")
	opts.Warmup = 1

	_, err := Run(context.Background(), opts)
	require.Error(t, err)

	var execErr *ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, StageWarmup, execErr.Stage)
	assert.Equal(t, 2, execErr.ExitCode)
}

func TestRun_CleanupRunsOnceOnCommandFailure(t *testing.T) {
	requirePOSIXShell(t)

	cleanupLog := filepath.Join(t.TempDir(), "cleanup.log")
	opts := Options{
		Commands: []CommandTemplate{{
			Command: "exit 1",
			Cleanup: fmt.Sprintf("echo cleanup >> %s", cleanupLog),
		}},
		Runs:            RunCounts{Exact: 3},
		SkipCalibration: true,
	}

	_, err := Run(context.Background(), opts)
	require.Error(t, err)
	assert.Len(t, logLines(t, cleanupLog), 1)
}

func TestRun_CleanupFailureSurfaces(t *testing.T) {
	requirePOSIXShell(t)

	opts := Options{
		Commands: []CommandTemplate{{
			Command: "true",
			Cleanup: "exit 9",
		}},
		Runs:            RunCounts{Exact: 1},
		SkipCalibration: true,
	}

	report, err := Run(context.Background(), opts)
	require.Error(t, err)

	var execErr *ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, StageCleanup, execErr.Stage)
	assert.Len(t, report.Results[0].Samples, 1, "the timed runs themselves completed")
}

func TestRun_EnvOverlayVisibleToCommand(t *testing.T) {
	requirePOSIXShell(t)

	opts := quickOptions(t, `test "$VERNIER_TEST_VALUE" = x42`)
	opts.Runs = RunCounts{Exact: 1}
	opts.Env = EnvVars{{Key: "VERNIER_TEST_VALUE", Value: "x42"}}

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, report.Results[0].Samples[0].Success)
}

func TestRun_RandomizedOffsetInChildEnvironment(t *testing.T) {
	requirePOSIXShell(t)

	opts := quickOptions(t, fmt.Sprintf(`test -n "$%s"`, RandomizedOffsetVar))
	opts.Runs = RunCounts{Exact: 1}

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, report.Results[0].Samples[0].Success)
}

func TestRun_Cancellation(t *testing.T) {
	requirePOSIXShell(t)

	ctx, cancel := context.WithCancel(context.Background())
	timer := time.AfterFunc(150*time.Millisecond, cancel)
	defer timer.Stop()
	defer cancel()

	opts := quickOptions(t, "sleep 5")
	opts.Runs = RunCounts{Exact: 1}

	start := time.Now()
	report, err := Run(ctx, opts)
	elapsed := time.Since(start)

	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, elapsed, 4*time.Second, "cancellation must tear the command down, not wait it out")
	require.Len(t, report.Results, 1)
	assert.True(t, report.Results[0].Failed)
	assert.Equal(t, "interrupted", report.Results[0].FailureReason)
}

func TestRun_ComparisonRanksUnits(t *testing.T) {
	requirePOSIXShell(t)

	opts := quickOptions(t, "sleep 0.02", "sleep 0.1")
	opts.Runs = RunCounts{Exact: 2}

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	require.NotNil(t, report.Comparison)
	require.NoError(t, report.CompareErr)

	cmp := report.Comparison
	assert.Equal(t, "sleep 0.02", cmp.Fastest.Unit.Command)
	require.Len(t, cmp.Ranked, 2)
	assert.Equal(t, 1.0, cmp.Ranked[0].Factor)
	assert.Greater(t, cmp.Ranked[1].Factor, 1.5)
}

func TestRun_OnResultCalledPerUnitAndAtEnd(t *testing.T) {
	requirePOSIXShell(t)

	var lengths []int
	opts := quickOptions(t, "true", "true")
	opts.Runs = RunCounts{Exact: 1}
	opts.OnResult = func(r *Report) error {
		lengths = append(lengths, len(r.Results))
		return nil
	}

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 2}, lengths, "after each unit, then once more with the ranking")
}

func TestRun_OnResultErrorAbortsSession(t *testing.T) {
	requirePOSIXShell(t)

	flushErr := errors.New("disk full")
	opts := quickOptions(t, "true", "true")
	opts.Runs = RunCounts{Exact: 1}
	opts.OnResult = func(r *Report) error { return flushErr }

	report, err := Run(context.Background(), opts)
	require.ErrorIs(t, err, flushErr)
	assert.Len(t, report.Results, 1, "the second unit never starts")
}

func TestRun_CalibrationRuns(t *testing.T) {
	requirePOSIXShell(t)

	rec := &progressRecorder{}
	opts := quickOptions(t, "true")
	opts.Runs = RunCounts{Exact: 1}
	opts.SkipCalibration = false
	opts.CalibrationRuns = 5
	opts.Progress = rec

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 6, rec.calibration, "one initial announcement plus one per spawn")
	sample := report.Results[0].Samples[0]
	assert.GreaterOrEqual(t, sample.Wall, time.Duration(0), "overhead subtraction never goes negative")
}

func TestRun_InvalidOptions(t *testing.T) {
	opts := Options{Commands: []CommandTemplate{{Command: "true"}}, Runs: RunCounts{Exact: -1}}
	report, err := Run(context.Background(), opts)
	require.Error(t, err)
	assert.Nil(t, report)

	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestRun_UnknownInterpreter(t *testing.T) {
	opts := Options{
		Commands:        []CommandTemplate{{Command: "true"}},
		Shell:           "/nonexistent/shell-for-tests",
		SkipCalibration: true,
	}

	report, err := Run(context.Background(), opts)
	require.Error(t, err)
	assert.Nil(t, report)

	var spawnErr *SpawnError
	assert.ErrorAs(t, err, &spawnErr)
}

// progressRecorder counts Progress callbacks for assertions.
type progressRecorder struct {
	calibration int
	started     []string
	warmups     int
	projections []int
	samples     []int
	done        []*Result
}

func (p *progressRecorder) Calibration(done, total int) { p.calibration++ }
func (p *progressRecorder) UnitStarted(u Unit, index, total int) {
	p.started = append(p.started, u.Name)
}
func (p *progressRecorder) Warmup(done, total int) { p.warmups++ }
func (p *progressRecorder) Projection(total int)   { p.projections = append(p.projections, total) }
func (p *progressRecorder) Sample(done int, wall time.Duration) {
	p.samples = append(p.samples, done)
}
func (p *progressRecorder) UnitDone(r *Result) { p.done = append(p.done, r) }

func TestRun_ProgressEvents(t *testing.T) {
	requirePOSIXShell(t)

	rec := &progressRecorder{}
	opts := quickOptions(t, "true")
	opts.Warmup = 1
	opts.Runs = RunCounts{Exact: 2}
	opts.Progress = rec

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 0, rec.calibration, "calibration was skipped")
	assert.Equal(t, []string{"true"}, rec.started)
	assert.Equal(t, 1, rec.warmups)
	assert.Equal(t, []int{2}, rec.projections, "projection fires once, after the first timed run")
	assert.Equal(t, []int{1, 2}, rec.samples)
	require.Len(t, rec.done, 1)
	assert.False(t, rec.done[0].Failed)
}
