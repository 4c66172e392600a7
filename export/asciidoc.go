package export

import (
	"fmt"
	"strings"

	"github.com/attunehq/vernier/benchmark"
)

// renderAsciiDoc produces the same summary table as the Markdown exporter in
// AsciiDoc syntax.
func renderAsciiDoc(rep *benchmark.Report) []byte {
	unit := rep.DisplayUnit()
	suffix := unit.Suffix()

	var b strings.Builder
	b.WriteString("[cols=\"<,>,>,>,>\"]\n")
	b.WriteString("|===\n")
	fmt.Fprintf(&b, "| Command | Mean [%s] | Min [%s] | Max [%s] | Relative\n", suffix, suffix, suffix)

	rel := relativeFactors(rep)
	single := completedCount(rep) == 1
	for _, r := range rep.Results {
		if r.Failed || r.Stats.N == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n| `%s` | %s ± %s | %s | %s | %s\n",
			r.Unit.Name,
			unit.FormatValue(r.Stats.Mean),
			unit.FormatValue(r.Stats.StdDev),
			unit.FormatValue(r.Stats.Min),
			unit.FormatValue(r.Stats.Max),
			relativeCell(r, rel, single))
	}
	b.WriteString("|===\n")
	return []byte(b.String())
}
