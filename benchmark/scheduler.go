package benchmark

import "time"

const (
	// defaultMinRuns is the adaptive scheduler's lower bound on timed runs.
	defaultMinRuns = 10
	// defaultTargetTime is the cumulative measured time the adaptive
	// scheduler aims for before stopping.
	defaultTargetTime = 3 * time.Second
)

// runPlan decides how many timed runs a unit gets. An exact count is used
// verbatim; otherwise runs continue until the cumulative measured time
// reaches the target, never fewer than min and never more than max (when
// max is set).
type runPlan struct {
	exact  int
	min    int
	max    int
	target time.Duration
}

func newRunPlan(rc RunCounts, target time.Duration) runPlan {
	p := runPlan{exact: rc.Exact, min: rc.Min, max: rc.Max, target: target}
	if p.min <= 0 {
		p.min = defaultMinRuns
	}
	if p.target <= 0 {
		p.target = defaultTargetTime
	}
	return p
}

// finished reports whether the scheduler should stop after `completed` runs
// with `cumulative` measured time spent so far.
func (p runPlan) finished(completed int, cumulative time.Duration) bool {
	if p.exact > 0 {
		return completed >= p.exact
	}
	if completed < p.min {
		return false
	}
	if p.max > 0 && completed >= p.max {
		return true
	}
	return cumulative >= p.target
}

// projectTotal estimates the total run count from the cost of the first run.
// Used only for progress display; the loop itself is governed by finished.
func (p runPlan) projectTotal(perRun time.Duration) int {
	if p.exact > 0 {
		return p.exact
	}
	n := p.min
	if perRun > 0 {
		if est := int(p.target/perRun) + 1; est > n {
			n = est
		}
	}
	if p.max > 0 && n > p.max {
		n = p.max
	}
	return n
}
