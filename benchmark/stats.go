package benchmark

import (
	"math"
	"sort"
)

// Statistics holds the calculated metrics for one unit. Durations are in
// seconds; Mean through P95 are over wall time, MeanUser and MeanSystem over
// the corresponding CPU times.
type Statistics struct {
	N          int
	Mean       float64
	Median     float64
	StdDev     float64
	Min        float64
	Max        float64
	P90        float64
	P95        float64
	MeanUser   float64
	MeanSystem float64
}

// CalculateStatistics computes the wall-time metrics from duration data.
func CalculateStatistics(durations []float64) Statistics {
	if len(durations) == 0 {
		return Statistics{}
	}

	stats := Statistics{
		N: len(durations),
	}

	// Sort durations for percentile calculations
	sorted := make([]float64, len(durations))
	copy(sorted, durations)
	sort.Float64s(sorted)

	// Calculate mean
	sum := 0.0
	for _, d := range durations {
		sum += d
	}
	stats.Mean = sum / float64(len(durations))

	// Calculate median
	stats.Median = percentile(sorted, 50)

	// Sample standard deviation (n-1 denominator)
	if len(durations) > 1 {
		variance := 0.0
		for _, d := range durations {
			diff := d - stats.Mean
			variance += diff * diff
		}
		variance /= float64(len(durations) - 1)
		stats.StdDev = math.Sqrt(variance)
	}

	// Min and Max
	stats.Min = sorted[0]
	stats.Max = sorted[len(sorted)-1]

	// Percentiles
	stats.P90 = percentile(sorted, 90)
	stats.P95 = percentile(sorted, 95)

	return stats
}

// statisticsFor reduces a unit's successful samples, wall time driving the
// main metrics and user/system times their means.
func statisticsFor(samples []Sample) Statistics {
	var wall []float64
	var userSum, systemSum float64
	for _, s := range samples {
		if !s.Success {
			continue
		}
		wall = append(wall, s.Wall.Seconds())
		userSum += s.User.Seconds()
		systemSum += s.System.Seconds()
	}
	stats := CalculateStatistics(wall)
	if stats.N > 0 {
		stats.MeanUser = userSum / float64(stats.N)
		stats.MeanSystem = systemSum / float64(stats.N)
	}
	return stats
}

// percentile calculates the specified percentile from sorted data
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}

	if len(sorted) == 1 {
		return sorted[0]
	}

	// Use linear interpolation between closest ranks
	rank := (p / 100.0) * float64(len(sorted)-1)
	lowerIndex := int(math.Floor(rank))
	upperIndex := int(math.Ceil(rank))

	if lowerIndex == upperIndex {
		return sorted[lowerIndex]
	}

	// Interpolate between the two values
	weight := rank - float64(lowerIndex)
	return sorted[lowerIndex]*(1-weight) + sorted[upperIndex]*weight
}
