package benchmark

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

// Run executes a full benchmark session: expand units, calibrate interpreter
// overhead, then benchmark each unit in declaration order. The returned
// report contains whatever finished, even when err is non-nil; a ranking
// failure is stored in Report.CompareErr rather than returned.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	progress := opts.Progress
	if progress == nil {
		progress = NopProgress{}
	}

	units, err := ExpandUnits(opts.Commands, opts.Params)
	if err != nil {
		return nil, err
	}

	interp, err := ParseInterpreter(opts.Shell)
	if err != nil {
		return nil, err
	}
	if err := interp.lookup(); err != nil {
		return nil, err
	}

	baseEnv := append(os.Environ(), opts.Env.ToSlice()...)

	report := &Report{
		Name:          opts.Name,
		SessionID:     uuid.NewString(),
		Interpreter:   interp.String(),
		StartTime:     time.Now(),
		PreferredUnit: opts.PreferredUnit,
	}
	slog.Debug("session starting",
		"session", report.SessionID,
		"interpreter", report.Interpreter,
		"units", len(units))

	var overhead spawnOverhead
	if !opts.SkipCalibration {
		overhead, err = measureSpawnOverhead(ctx, interp, baseEnv, opts.CalibrationRuns, progress)
		if err != nil {
			return report, err
		}
	}

	plan := newRunPlan(opts.Runs, opts.TargetTime)

	flush := func() error {
		if opts.OnResult == nil {
			return nil
		}
		report.EndTime = time.Now()
		return opts.OnResult(report)
	}

	for i, u := range units {
		progress.UnitStarted(*u, i, len(units))
		res, uerr := runUnit(ctx, interp, u, plan, opts, overhead, baseEnv, progress)
		report.Results = append(report.Results, res)
		progress.UnitDone(res)
		if ferr := flush(); ferr != nil {
			return report, ferr
		}
		if uerr != nil {
			report.EndTime = time.Now()
			return report, uerr
		}
	}

	report.Comparison, report.CompareErr = Compare(report.Results)
	report.EndTime = time.Now()
	if ferr := flush(); ferr != nil {
		return report, ferr
	}
	return report, nil
}

// runUnit benchmarks one unit: setup, warmup, timed runs under the plan, and
// cleanup. Cleanup runs exactly once, also on failure and cancellation.
func runUnit(ctx context.Context, interp Interpreter, u *Unit, plan runPlan, opts Options, overhead spawnOverhead, baseEnv []string, progress Progress) (res *Result, err error) {
	res = &Result{Unit: *u, StartTime: time.Now()}
	defer func() {
		res.EndTime = time.Now()
		if err != nil {
			res.Failed = true
			if res.FailureReason == "" {
				res.FailureReason = failureReason(err)
			}
		}
	}()

	cleanedUp := false
	cleanup := func() error {
		if cleanedUp || u.Cleanup == "" {
			return nil
		}
		cleanedUp = true
		// Teardown still runs when the session is being cancelled.
		_, cerr := runHook(context.WithoutCancel(ctx), interp, StageCleanup, u.Cleanup, baseEnv, opts.ShowOutput)
		return cerr
	}
	defer func() {
		if cerr := cleanup(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if _, err = runHook(ctx, interp, StageSetup, u.Setup, baseEnv, opts.ShowOutput); err != nil {
		return res, err
	}

	for w := 0; w < opts.Warmup; w++ {
		if _, err = runHook(ctx, interp, StagePrepare, u.Prepare, baseEnv, opts.ShowOutput); err != nil {
			return res, err
		}
		var t timing
		t, err = runCommand(ctx, interp, u.Command, envFor(baseEnv), opts.ShowOutput)
		if err != nil {
			return res, err
		}
		if t.exitCode != 0 && !opts.IgnoreFailure {
			err = failurePolicyHint(&ExecError{Stage: StageWarmup, Command: u.Command, ExitCode: t.exitCode})
			return res, err
		}
		progress.Warmup(w+1, opts.Warmup)
	}

	// The budget accumulates raw wall time, prepare included, so that
	// near-zero corrected times cannot stall an adaptive session.
	var cumulative time.Duration
	for {
		prep, herr := runHook(ctx, interp, StagePrepare, u.Prepare, baseEnv, opts.ShowOutput)
		if herr != nil {
			err = herr
			return res, err
		}

		raw, rerr := runCommand(ctx, interp, u.Command, envFor(baseEnv), opts.ShowOutput)
		if rerr != nil {
			err = rerr
			return res, err
		}
		cumulative += prep.wall + raw.wall

		corrected := overhead.subtract(raw)
		sample := Sample{
			Run:      len(res.Samples) + 1,
			Wall:     corrected.wall,
			User:     corrected.user,
			System:   corrected.system,
			PeakRSS:  raw.peakRSS,
			ExitCode: raw.exitCode,
			Success:  raw.exitCode == 0,
		}
		res.Samples = append(res.Samples, sample)
		progress.Sample(sample.Run, sample.Wall)
		if sample.Run == 1 {
			progress.Projection(plan.projectTotal(prep.wall + raw.wall))
		}

		if !sample.Success && !opts.IgnoreFailure {
			err = failurePolicyHint(&ExecError{Stage: StageCommand, Command: u.Command, ExitCode: raw.exitCode})
			return res, err
		}

		if plan.finished(len(res.Samples), cumulative) {
			break
		}
	}

	finalizeResult(res, opts.IgnoreFailure)
	return res, nil
}

// finalizeResult computes statistics, flags outliers, and attaches
// measurement-quality warnings.
func finalizeResult(res *Result, ignoreFailure bool) {
	res.Stats = statisticsFor(res.Samples)
	res.Outliers = markOutliers(res.Samples)

	failed := 0
	fast := false
	for _, s := range res.Samples {
		if !s.Success {
			failed++
		} else if s.Wall < minExecutionTime {
			fast = true
		}
	}

	if res.Stats.N == 0 {
		res.Failed = true
		res.FailureReason = fmt.Sprintf("all %d runs failed", len(res.Samples))
		return
	}

	if fast {
		res.Warnings = append(res.Warnings, fastExecutionWarning())
	}
	if ignoreFailure && failed > 0 {
		res.Warnings = append(res.Warnings, ignoredFailuresWarning(failed, len(res.Samples)))
	}
	switch {
	case res.Samples[0].SlowOutlier:
		first := res.Samples[0].Wall
		rest := time.Duration(0)
		if res.Stats.N > 1 {
			restMean := (res.Stats.Mean*float64(res.Stats.N) - first.Seconds()) / float64(res.Stats.N-1)
			rest = time.Duration(restMean * float64(time.Second))
		}
		res.Warnings = append(res.Warnings, slowInitialRunWarning(first, rest))
	case res.Outliers.Any():
		res.Warnings = append(res.Warnings, outliersWarning(res.Outliers))
	}
}

// runHook executes a lifecycle command and turns a non-zero exit into a
// stage-tagged error. Empty commands are a no-op.
func runHook(ctx context.Context, interp Interpreter, stage Stage, command string, baseEnv []string, showOutput bool) (timing, error) {
	if command == "" {
		return timing{}, nil
	}
	t, err := runCommand(ctx, interp, command, envFor(baseEnv), showOutput)
	if err != nil {
		return timing{}, err
	}
	if t.exitCode != 0 {
		return timing{}, &ExecError{Stage: stage, Command: command, ExitCode: t.exitCode}
	}
	return t, nil
}

// envFor builds a child environment with a fresh randomized offset so no two
// spawns see an identical environment block.
func envFor(base []string) []string {
	env := make([]string, 0, len(base)+1)
	env = append(env, base...)
	return append(env, randomizedOffset())
}

func failurePolicyHint(err *ExecError) error {
	return fmt.Errorf("%w; use -i/--ignore-failure to keep going, or --show-output to see what went wrong", err)
}

func failureReason(err error) string {
	if errors.Is(err, context.Canceled) {
		return "interrupted"
	}
	var execErr *ExecError
	if errors.As(err, &execErr) {
		return execErr.Error()
	}
	return err.Error()
}
