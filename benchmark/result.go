package benchmark

import "time"

// Sample records one timed execution of a unit's command.
type Sample struct {
	Run         int
	Wall        time.Duration
	User        time.Duration
	System      time.Duration
	PeakRSS     int64
	ExitCode    int
	Success     bool
	SlowOutlier bool
	FastOutlier bool
}

// Result collects everything measured for one unit.
type Result struct {
	Unit          Unit
	Samples       []Sample
	Stats         Statistics
	Outliers      OutlierCounts
	Warnings      []Warning
	Failed        bool
	FailureReason string
	StartTime     time.Time
	EndTime       time.Time
}

// WallTimes returns every sample's wall time in seconds, failures included.
func (r *Result) WallTimes() []float64 {
	times := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		times[i] = s.Wall.Seconds()
	}
	return times
}

// ExitCodes returns every sample's exit code, aligned with WallTimes.
func (r *Result) ExitCodes() []int {
	codes := make([]int, len(r.Samples))
	for i, s := range r.Samples {
		codes[i] = s.ExitCode
	}
	return codes
}

// MaxPeakRSS returns the largest resident set size seen across samples, in
// bytes, or zero when the platform does not report it.
func (r *Result) MaxPeakRSS() int64 {
	var max int64
	for _, s := range r.Samples {
		if s.PeakRSS > max {
			max = s.PeakRSS
		}
	}
	return max
}

// Report is the full outcome of a session: one Result per unit, in execution
// order, plus the ranking when at least two units completed.
type Report struct {
	Name          string
	SessionID     string
	Interpreter   string
	StartTime     time.Time
	EndTime       time.Time
	Results       []*Result
	Comparison    *Comparison
	CompareErr    error
	PreferredUnit *TimeUnit
}

// DisplayUnit resolves the unit used to render times: the explicit preference
// when set, otherwise picked from the first completed unit's mean.
func (r *Report) DisplayUnit() TimeUnit {
	if r.PreferredUnit != nil {
		return *r.PreferredUnit
	}
	for _, res := range r.Results {
		if !res.Failed && res.Stats.N > 0 {
			return PickTimeUnit(res.Stats.Mean)
		}
	}
	return UnitSecond
}

// Progress receives live updates while a session runs. Implementations drive
// terminal output; the engine itself never prints.
type Progress interface {
	// Calibration reports interpreter spawn-overhead measurement progress.
	Calibration(done, total int)
	// UnitStarted announces the next unit, index counting from zero.
	UnitStarted(u Unit, index, total int)
	// Warmup reports warmup-run progress for the current unit.
	Warmup(done, total int)
	// Projection estimates the total run count after the first timed run.
	// With adaptive counts the estimate may shrink or grow as runs finish.
	Projection(total int)
	// Sample reports one finished timed run and its wall time.
	Sample(done int, wall time.Duration)
	// UnitDone delivers the unit's finished result.
	UnitDone(r *Result)
}

// NopProgress discards all updates.
type NopProgress struct{}

func (NopProgress) Calibration(done, total int)          {}
func (NopProgress) UnitStarted(u Unit, index, total int) {}
func (NopProgress) Warmup(done, total int)               {}
func (NopProgress) Projection(total int)                 {}
func (NopProgress) Sample(done int, wall time.Duration)  {}
func (NopProgress) UnitDone(r *Result)                   {}
