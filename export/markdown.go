package export

import (
	"fmt"
	"strings"

	"github.com/attunehq/vernier/benchmark"
)

// renderMarkdown produces the summary table in the session's display unit.
// The relative column fills in once the final ranking exists.
func renderMarkdown(rep *benchmark.Report) []byte {
	unit := rep.DisplayUnit()
	suffix := unit.Suffix()

	var b strings.Builder
	fmt.Fprintf(&b, "| Command | Mean [%s] | Min [%s] | Max [%s] | Relative |\n", suffix, suffix, suffix)
	b.WriteString("|:---|---:|---:|---:|---:|\n")

	rel := relativeFactors(rep)
	single := completedCount(rep) == 1
	for _, r := range rep.Results {
		if r.Failed || r.Stats.N == 0 {
			continue
		}
		fmt.Fprintf(&b, "| `%s` | %s ± %s | %s | %s | %s |\n",
			escapePipes(r.Unit.Name),
			unit.FormatValue(r.Stats.Mean),
			unit.FormatValue(r.Stats.StdDev),
			unit.FormatValue(r.Stats.Min),
			unit.FormatValue(r.Stats.Max),
			relativeCell(r, rel, single))
	}
	return []byte(b.String())
}

// escapePipes keeps literal | characters in commands from breaking table cells.
func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// relativeCell renders the relative-speed column: exactly 1.00 for the
// fastest (its uncertainty is zero), factor ± uncertainty for the rest. A
// lone completed unit is trivially the fastest. Empty until the ranking
// exists.
func relativeCell(r *benchmark.Result, rel map[*benchmark.Result]benchmark.RelativeSpeed, single bool) string {
	if rs, ok := rel[r]; ok {
		if rs.Uncertainty == 0 {
			return fmt.Sprintf("%.2f", rs.Factor)
		}
		return fmt.Sprintf("%.2f ± %.2f", rs.Factor, rs.Uncertainty)
	}
	if single {
		return "1.00"
	}
	return ""
}
