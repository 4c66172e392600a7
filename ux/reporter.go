package ux

import (
	"fmt"
	"io"
	"time"

	"github.com/attunehq/vernier/benchmark"
)

// Reporter renders session progress and per-unit results. It implements
// benchmark.Progress. Everything goes to one writer (normally stderr) so
// stdout stays clean for pipes.
type Reporter struct {
	w      io.Writer
	style  Style
	styles styleSet
	unit   *benchmark.TimeUnit

	bar       *bar
	walls     []time.Duration
	projected int
}

// NewReporter builds a reporter for an already-resolved style. unit forces
// the display unit; nil picks one per result.
func NewReporter(w io.Writer, style Style, unit *benchmark.TimeUnit) *Reporter {
	return &Reporter{w: w, style: style, styles: stylesFor(style), unit: unit}
}

func (r *Reporter) Calibration(done, total int) {
	if done == 0 {
		if r.style.bars() {
			r.bar = newBar(r.w, total, "Measuring shell spawn time")
		} else {
			fmt.Fprintln(r.w, "Measuring shell spawn time")
		}
		return
	}
	r.bar.set(done)
	if done == total {
		r.bar.finish()
		r.bar = nil
	}
}

func (r *Reporter) UnitStarted(u benchmark.Unit, index, total int) {
	r.bar.finish()
	r.bar = nil
	r.walls = r.walls[:0]
	r.projected = 0
	fmt.Fprintf(r.w, "Benchmark %d/%d: %s\n", index+1, total, r.styles.Command.Render(u.Name))
}

func (r *Reporter) Warmup(done, total int) {
	if !r.style.bars() {
		return
	}
	if r.bar == nil {
		r.bar = newBar(r.w, total, "Performing warmup runs")
	}
	r.bar.set(done)
	if done == total {
		r.bar.finish()
		r.bar = nil
	}
}

func (r *Reporter) Projection(total int) {
	if !r.style.bars() {
		return
	}
	r.projected = total
	r.bar = newBar(r.w, total, "Benchmarking")
	r.describeEstimate()
	r.bar.set(len(r.walls))
}

func (r *Reporter) Sample(done int, wall time.Duration) {
	r.walls = append(r.walls, wall)
	if r.bar == nil {
		return
	}
	r.describeEstimate()
	// Adaptive sessions may outrun the initial projection; keep the bar
	// from finishing before the unit does.
	if done >= r.projected {
		r.projected = done + 1
		r.bar.changeMax(r.projected)
	}
	r.bar.set(done)
}

func (r *Reporter) UnitDone(res *benchmark.Result) {
	r.bar.finish()
	r.bar = nil

	if res.Failed {
		fmt.Fprintf(r.w, "  %s %s\n\n", r.styles.Error.Render("Error:"), res.FailureReason)
		return
	}

	unit := r.unitFor(res)
	fmt.Fprintf(r.w, "  Time (mean ± σ):     %s ± %s    [User: %s, System: %s]\n",
		r.styles.Mean.Render(pad(unit.Format(res.Stats.Mean))),
		r.styles.Spread.Render(pad(unit.Format(res.Stats.StdDev))),
		unit.Format(res.Stats.MeanUser),
		unit.Format(res.Stats.MeanSystem))
	fmt.Fprintf(r.w, "  Range (min … max):   %s … %s    %s\n",
		r.styles.Extreme.Render(pad(unit.Format(res.Stats.Min))),
		r.styles.Extreme.Render(pad(unit.Format(res.Stats.Max))),
		r.styles.Muted.Render(fmt.Sprintf("%d runs", res.Stats.N)))
	for _, warn := range res.Warnings {
		fmt.Fprintf(r.w, "  %s %s\n", r.styles.Warning.Render("Warning:"), warn.Message)
	}
	fmt.Fprintln(r.w)
}

// Summary prints the final ranking, or the reason there is none.
func (r *Reporter) Summary(rep *benchmark.Report) {
	if rep.CompareErr != nil {
		fmt.Fprintf(r.w, "%s %v\n", r.styles.Warning.Render("Warning:"), rep.CompareErr)
		return
	}
	cmp := rep.Comparison
	if cmp == nil {
		return
	}
	fmt.Fprintln(r.w, "Summary")
	fmt.Fprintf(r.w, "  %s ran\n", r.styles.Command.Render(cmp.Fastest.Unit.Name))
	for _, rs := range cmp.Ranked[1:] {
		fmt.Fprintf(r.w, "    %s ± %s times faster than %s\n",
			r.styles.Mean.Render(fmt.Sprintf("%.2f", rs.Factor)),
			r.styles.Spread.Render(fmt.Sprintf("%.2f", rs.Uncertainty)),
			r.styles.Command.Render(rs.Result.Unit.Name))
	}
}

func (r *Reporter) describeEstimate() {
	if len(r.walls) == 0 {
		return
	}
	var sum time.Duration
	for _, w := range r.walls {
		sum += w
	}
	mean := (sum / time.Duration(len(r.walls))).Seconds()
	unit := r.unit
	if unit == nil {
		u := benchmark.PickTimeUnit(mean)
		unit = &u
	}
	r.bar.describe("Current estimate: " + r.styles.Mean.Render(unit.Format(mean)))
}

func (r *Reporter) unitFor(res *benchmark.Result) benchmark.TimeUnit {
	if r.unit != nil {
		return *r.unit
	}
	return benchmark.PickTimeUnit(res.Stats.Mean)
}

func pad(s string) string {
	return fmt.Sprintf("%8s", s)
}
