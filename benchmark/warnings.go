package benchmark

import (
	"fmt"
	"time"
)

// Commands finishing faster than this are dominated by interpreter spawn
// overhead and produce unreliable numbers.
const minExecutionTime = 5 * time.Millisecond

// WarningKind identifies a class of measurement-quality warning.
type WarningKind string

const (
	WarnFastExecution   WarningKind = "fast-execution"
	WarnIgnoredFailures WarningKind = "ignored-failures"
	WarnSlowInitialRun  WarningKind = "slow-initial-run"
	WarnOutliers        WarningKind = "outliers"
)

// Warning annotates a unit's results with a measurement-quality concern.
// Warnings never abort a session.
type Warning struct {
	Kind    WarningKind
	Message string
}

func (w Warning) String() string { return w.Message }

func fastExecutionWarning() Warning {
	return Warning{
		Kind:    WarnFastExecution,
		Message: fmt.Sprintf("command took less than %s to complete; results may be inaccurate because of interpreter spawn overhead", minExecutionTime),
	}
}

func ignoredFailuresWarning(failed, total int) Warning {
	return Warning{
		Kind:    WarnIgnoredFailures,
		Message: fmt.Sprintf("ignoring non-zero exit codes: %d of %d runs failed", failed, total),
	}
}

func slowInitialRunWarning(first, rest time.Duration) Warning {
	return Warning{
		Kind:    WarnSlowInitialRun,
		Message: fmt.Sprintf("first run (%s) was significantly slower than the rest (%s); consider --warmup or --prepare to stabilize caches", formatSeconds(first), formatSeconds(rest)),
	}
}

func outliersWarning(counts OutlierCounts) Warning {
	detail := ""
	switch {
	case counts.Slow > 0 && counts.Fast > 0:
		detail = fmt.Sprintf("%d slow, %d fast", counts.Slow, counts.Fast)
	case counts.Slow > 0:
		detail = fmt.Sprintf("%d slow", counts.Slow)
	default:
		detail = fmt.Sprintf("%d fast", counts.Fast)
	}
	return Warning{
		Kind:    WarnOutliers,
		Message: fmt.Sprintf("statistical outliers detected (%s); consider re-running on a quiet system, or use --warmup or --prepare", detail),
	}
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.3f s", d.Seconds())
}
