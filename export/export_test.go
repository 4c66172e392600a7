package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attunehq/vernier/benchmark"
)

// completedResult builds a finished unit from raw wall times in seconds.
func completedResult(t *testing.T, name string, walls ...float64) *benchmark.Result {
	t.Helper()
	res := &benchmark.Result{Unit: benchmark.Unit{Command: name, Name: name}}
	for i, w := range walls {
		res.Samples = append(res.Samples, benchmark.Sample{
			Run:     i + 1,
			Wall:    time.Duration(w * float64(time.Second)),
			User:    time.Duration(w * 0.6 * float64(time.Second)),
			System:  time.Duration(w * 0.2 * float64(time.Second)),
			Success: true,
		})
	}
	res.Stats = benchmark.CalculateStatistics(walls)
	return res
}

// sampleReport builds a two-unit report with a ranking, plus one failed unit.
func sampleReport(t *testing.T) *benchmark.Report {
	t.Helper()
	fast := completedResult(t, "grep foo", 0.10, 0.11, 0.12)
	slow := completedResult(t, "grep --slow foo", 0.20, 0.22, 0.24)
	slow.Unit.Params = map[string]string{"n": "100"}
	slow.Unit.ParamOrder = []string{"n"}

	failed := &benchmark.Result{
		Unit:          benchmark.Unit{Command: "broken", Name: "broken"},
		Samples:       []benchmark.Sample{{Run: 1, Wall: time.Millisecond, ExitCode: 3}},
		Failed:        true,
		FailureReason: "all 1 runs failed",
	}

	return &benchmark.Report{
		Name:        "search",
		SessionID:   "11111111-2222-3333-4444-555555555555",
		Interpreter: "/bin/sh -c",
		StartTime:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		EndTime:     time.Date(2025, 6, 1, 12, 5, 0, 0, time.UTC),
		Results:     []*benchmark.Result{fast, slow, failed},
		Comparison: &benchmark.Comparison{
			Fastest: fast,
			Ranked: []benchmark.RelativeSpeed{
				{Result: fast, Factor: 1.0, Uncertainty: 0},
				{Result: slow, Factor: 2.0, Uncertainty: 0.1},
			},
		},
	}
}

func TestManager_AddIgnoresEmptyPaths(t *testing.T) {
	m := NewManager(Metadata{Tool: "vernier"})
	assert.True(t, m.Empty())

	m.Add(JSON, "")
	assert.True(t, m.Empty(), "empty paths come straight from unset flags")

	m.Add(JSON, filepath.Join(t.TempDir(), "out.json"))
	assert.False(t, m.Empty())
}

func TestManager_ValidateCreatesTargets(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "nested", "deeper", "out.json")
	csvPath := filepath.Join(dir, "out.csv")

	m := NewManager(Metadata{Tool: "vernier"})
	m.Add(JSON, jsonPath)
	m.Add(CSV, csvPath)

	require.NoError(t, m.Validate())
	assert.FileExists(t, jsonPath, "validation creates files, directories included")
	assert.FileExists(t, csvPath)
}

func TestManager_ValidateRejectsBadPath(t *testing.T) {
	dir := t.TempDir()
	obstacle := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(obstacle, []byte("x"), 0o644))

	m := NewManager(Metadata{Tool: "vernier"})
	m.Add(JSON, filepath.Join(obstacle, "out.json"))

	err := m.Validate()
	require.Error(t, err)

	var cfgErr *benchmark.ConfigError
	assert.ErrorAs(t, err, &cfgErr, "unwritable targets must fail before anything runs")
}

func TestManager_FlushRewritesWholeFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	m := NewManager(Metadata{Tool: "vernier", Version: "1.0.0"})
	m.Add(JSON, path)
	require.NoError(t, m.Validate())

	rep := sampleReport(t)
	partial := &benchmark.Report{
		SessionID:   rep.SessionID,
		Interpreter: rep.Interpreter,
		Results:     rep.Results[:1],
	}
	require.NoError(t, m.Flush(partial))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, m.Flush(rep))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.NotEqual(t, string(first), string(second), "each flush replaces the document")
	assert.True(t, len(second) > len(first))
}

func TestParameterNames_SortedUnion(t *testing.T) {
	a := completedResult(t, "a", 0.1)
	a.Unit.Params = map[string]string{"zeta": "1", "alpha": "2"}
	b := completedResult(t, "b", 0.1)
	b.Unit.Params = map[string]string{"mid": "3", "alpha": "4"}

	rep := &benchmark.Report{Results: []*benchmark.Result{a, b}}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, parameterNames(rep))
}
