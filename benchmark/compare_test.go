package benchmark

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rankableResult builds a completed unit result with the given wall-time
// mean and standard deviation, both in seconds.
func rankableResult(t *testing.T, name string, mean, stddev float64) *Result {
	t.Helper()
	return &Result{
		Unit:  Unit{Command: name, Name: name},
		Stats: Statistics{N: 10, Mean: mean, StdDev: stddev},
	}
}

func TestCompare_TwoCommands(t *testing.T) {
	fast := rankableResult(t, "fast", 0.005, 0.0005)
	slow := rankableResult(t, "slow", 0.010, 0.0010)

	cmp, err := Compare([]*Result{slow, fast})
	require.NoError(t, err)
	require.NotNil(t, cmp)

	assert.Same(t, fast, cmp.Fastest)
	require.Len(t, cmp.Ranked, 2)

	assert.Same(t, fast, cmp.Ranked[0].Result)
	assert.Equal(t, 1.0, cmp.Ranked[0].Factor, "baseline factor is exactly 1.00")
	assert.Equal(t, 0.0, cmp.Ranked[0].Uncertainty)

	assert.Same(t, slow, cmp.Ranked[1].Result)
	assert.InDelta(t, 2.0, cmp.Ranked[1].Factor, 1e-9)
	// factor * sqrt((sd_s/m_s)^2 + (sd_f/m_f)^2) with both CVs at 10%.
	want := 2.0 * math.Sqrt(0.01+0.01)
	assert.InDelta(t, want, cmp.Ranked[1].Uncertainty, 1e-9)
}

func TestCompare_RankedByMeanAscending(t *testing.T) {
	a := rankableResult(t, "a", 0.3, 0)
	b := rankableResult(t, "b", 0.1, 0)
	c := rankableResult(t, "c", 0.2, 0)

	cmp, err := Compare([]*Result{a, b, c})
	require.NoError(t, err)
	require.NotNil(t, cmp)

	var order []string
	for _, rs := range cmp.Ranked {
		order = append(order, rs.Result.Unit.Name)
	}
	assert.Equal(t, []string{"b", "c", "a"}, order)
}

func TestCompare_FailedUnitsExcluded(t *testing.T) {
	ok := rankableResult(t, "ok", 0.1, 0)
	failed := rankableResult(t, "failed", 0.001, 0)
	failed.Failed = true

	cmp, err := Compare([]*Result{ok, failed})
	require.NoError(t, err)
	assert.Nil(t, cmp, "one rankable unit is not a comparison")
}

func TestCompare_FewerThanTwoResults(t *testing.T) {
	cmp, err := Compare(nil)
	require.NoError(t, err)
	assert.Nil(t, cmp)

	cmp, err = Compare([]*Result{rankableResult(t, "solo", 0.1, 0)})
	require.NoError(t, err)
	assert.Nil(t, cmp)
}

func TestCompare_DegenerateBaseline(t *testing.T) {
	zero := rankableResult(t, "instant", 0, 0)
	other := rankableResult(t, "other", 0.1, 0)

	cmp, err := Compare([]*Result{zero, other})
	assert.Nil(t, cmp)
	require.Error(t, err)

	var degErr *DegenerateError
	require.ErrorAs(t, err, &degErr)
	assert.Equal(t, "instant", degErr.Command)
}

func TestCompare_TiesKeepInputOrder(t *testing.T) {
	first := rankableResult(t, "first", 0.1, 0)
	second := rankableResult(t, "second", 0.1, 0)

	cmp, err := Compare([]*Result{first, second})
	require.NoError(t, err)
	require.NotNil(t, cmp)
	assert.Same(t, first, cmp.Fastest, "stable sort keeps declaration order on ties")
}
