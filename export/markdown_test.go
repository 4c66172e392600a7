package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attunehq/vernier/benchmark"
)

func TestRenderMarkdown_Table(t *testing.T) {
	out := string(renderMarkdown(sampleReport(t)))
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4, "header, separator, one row per completed unit")

	assert.Equal(t, "| Command | Mean [ms] | Min [ms] | Max [ms] | Relative |", lines[0])
	assert.Equal(t, "|:---|---:|---:|---:|---:|", lines[1])
	assert.Equal(t, "| `grep foo` | 110.0 ± 10.0 | 100.0 | 120.0 | 1.00 |", lines[2])
	assert.Equal(t, "| `grep --slow foo` | 220.0 ± 20.0 | 200.0 | 240.0 | 2.00 ± 0.10 |", lines[3])
}

func TestRenderMarkdown_EscapesPipes(t *testing.T) {
	rep := &benchmark.Report{Results: []*benchmark.Result{
		completedResult(t, "grep foo | wc -l", 0.5),
		completedResult(t, "cat file", 0.25),
	}}

	out := string(renderMarkdown(rep))
	assert.Contains(t, out, "| `grep foo \\| wc -l` |", "pipes in commands must not break table cells")
}

func TestRenderMarkdown_SingleUnitRelative(t *testing.T) {
	rep := &benchmark.Report{Results: []*benchmark.Result{completedResult(t, "true", 0.5)}}

	out := string(renderMarkdown(rep))
	assert.Contains(t, out, "| 1.00 |", "a lone completed unit is trivially the fastest")
}

func TestRenderMarkdown_NoRelativeBeforeRanking(t *testing.T) {
	// Two completed units but no comparison yet: the mid-session flushes.
	rep := &benchmark.Report{Results: []*benchmark.Result{
		completedResult(t, "a", 0.5),
		completedResult(t, "b", 0.25),
	}}

	out := string(renderMarkdown(rep))
	for _, line := range strings.Split(strings.TrimSpace(out), "\n")[2:] {
		assert.True(t, strings.HasSuffix(line, "|  |"), "relative stays empty until the ranking exists: %s", line)
	}
}

func TestRenderMarkdown_SecondsUnit(t *testing.T) {
	rep := &benchmark.Report{Results: []*benchmark.Result{completedResult(t, "slow", 2.0, 2.2)}}

	out := string(renderMarkdown(rep))
	assert.Contains(t, out, "Mean [s]")
	assert.Contains(t, out, "2.100 ±")
}

func TestRenderMarkdown_PreferredUnitWins(t *testing.T) {
	unit := benchmark.UnitMillisecond
	rep := &benchmark.Report{
		Results:       []*benchmark.Result{completedResult(t, "slow", 2.0)},
		PreferredUnit: &unit,
	}

	out := string(renderMarkdown(rep))
	assert.Contains(t, out, "Mean [ms]")
	assert.Contains(t, out, "2000.0")
}

func TestRenderAsciiDoc_Table(t *testing.T) {
	out := string(renderAsciiDoc(sampleReport(t)))

	assert.True(t, strings.HasPrefix(out, "[cols=\"<,>,>,>,>\"]\n|===\n"), "table opens with the cols line")
	assert.True(t, strings.HasSuffix(out, "|===\n"), "table is fenced")
	assert.Contains(t, out, "| Command | Mean [ms] | Min [ms] | Max [ms] | Relative")
	assert.Contains(t, out, "| `grep foo` | 110.0 ± 10.0 | 100.0 | 120.0 | 1.00")
	assert.Contains(t, out, "| `grep --slow foo` | 220.0 ± 20.0 | 200.0 | 240.0 | 2.00 ± 0.10")
	assert.NotContains(t, out, "broken", "failed units are dropped from tables")
}

func TestRenderAsciiDoc_SingleUnitRelative(t *testing.T) {
	rep := &benchmark.Report{Results: []*benchmark.Result{completedResult(t, "true", 0.5)}}

	out := string(renderAsciiDoc(rep))
	assert.Contains(t, out, "| 1.00\n")
}

func TestDisplayUnit_FirstCompletedDrives(t *testing.T) {
	failed := &benchmark.Result{Unit: benchmark.Unit{Name: "x"}, Failed: true}
	slow := completedResult(t, "slow", 2.0)

	rep := &benchmark.Report{Results: []*benchmark.Result{failed, slow}}
	assert.Equal(t, benchmark.UnitSecond, rep.DisplayUnit(), "failed units do not pick the display unit")

	rep.Results = []*benchmark.Result{completedResult(t, "fast", 0.2), slow}
	assert.Equal(t, benchmark.UnitMillisecond, rep.DisplayUnit())

	empty := &benchmark.Report{StartTime: time.Now()}
	assert.Equal(t, benchmark.UnitSecond, empty.DisplayUnit(), "no data defaults to seconds")
}
