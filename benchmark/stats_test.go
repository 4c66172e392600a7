package benchmark

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateStatistics_KnownVector(t *testing.T) {
	stats := CalculateStatistics([]float64{1, 2, 3, 4, 5})

	assert.Equal(t, 5, stats.N)
	assert.InDelta(t, 3.0, stats.Mean, 1e-12)
	assert.InDelta(t, 3.0, stats.Median, 1e-12)
	assert.InDelta(t, math.Sqrt(2.5), stats.StdDev, 1e-12, "sample stddev uses n-1")
	assert.InDelta(t, 1.0, stats.Min, 1e-12)
	assert.InDelta(t, 5.0, stats.Max, 1e-12)
	assert.InDelta(t, 4.6, stats.P90, 1e-12, "linear interpolation between ranks 3.6")
	assert.InDelta(t, 4.8, stats.P95, 1e-12)
}

func TestCalculateStatistics_UnsortedInput(t *testing.T) {
	a := CalculateStatistics([]float64{5, 1, 4, 2, 3})
	b := CalculateStatistics([]float64{1, 2, 3, 4, 5})
	assert.Equal(t, b, a, "order of the input must not matter")
}

func TestCalculateStatistics_EvenCountMedian(t *testing.T) {
	stats := CalculateStatistics([]float64{1, 2, 3, 4})
	assert.InDelta(t, 2.5, stats.Median, 1e-12)
}

func TestCalculateStatistics_SingleSample(t *testing.T) {
	stats := CalculateStatistics([]float64{0.25})

	assert.Equal(t, 1, stats.N)
	assert.Equal(t, 0.25, stats.Mean)
	assert.Equal(t, 0.25, stats.Median)
	assert.Equal(t, 0.0, stats.StdDev, "a single sample has no spread")
	assert.Equal(t, 0.25, stats.Min)
	assert.Equal(t, 0.25, stats.Max)
	assert.Equal(t, 0.25, stats.P90)
	assert.Equal(t, 0.25, stats.P95)
}

func TestCalculateStatistics_Empty(t *testing.T) {
	assert.Equal(t, Statistics{}, CalculateStatistics(nil))
}

func TestCalculateStatistics_IdenticalValues(t *testing.T) {
	stats := CalculateStatistics([]float64{2, 2, 2, 2})
	assert.Equal(t, 2.0, stats.Mean)
	assert.Equal(t, 0.0, stats.StdDev)
	assert.Equal(t, 2.0, stats.P95)
}

func TestStatisticsFor_SkipsFailures(t *testing.T) {
	samples := []Sample{
		{Wall: 100 * time.Millisecond, User: 60 * time.Millisecond, System: 20 * time.Millisecond, Success: true},
		{Wall: 5 * time.Second, Success: false},
		{Wall: 200 * time.Millisecond, User: 120 * time.Millisecond, System: 40 * time.Millisecond, Success: true},
	}

	stats := statisticsFor(samples)

	assert.Equal(t, 2, stats.N, "failed runs carry no timing weight")
	assert.InDelta(t, 0.15, stats.Mean, 1e-9)
	assert.InDelta(t, 0.09, stats.MeanUser, 1e-9)
	assert.InDelta(t, 0.03, stats.MeanSystem, 1e-9)
}

func TestStatisticsFor_AllFailed(t *testing.T) {
	samples := []Sample{{Wall: time.Second}, {Wall: time.Second}}
	stats := statisticsFor(samples)
	assert.Equal(t, 0, stats.N)
}

func TestPercentile_Interpolation(t *testing.T) {
	sorted := []float64{10, 20, 30, 40}

	assert.InDelta(t, 10.0, percentile(sorted, 0), 1e-12)
	assert.InDelta(t, 25.0, percentile(sorted, 50), 1e-12)
	assert.InDelta(t, 40.0, percentile(sorted, 100), 1e-12)
	assert.InDelta(t, 37.0, percentile(sorted, 90), 1e-12)
}
