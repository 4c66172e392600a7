package benchmark

import (
	"math"
	"sort"
)

// Modified z-score constants: 0.6745 scales the median absolute deviation to
// the standard normal, and scores beyond 3.5 in either direction mark a
// sample as an outlier.
const (
	madScale         = 0.6745
	outlierThreshold = 3.5
)

// OutlierCounts tallies flagged samples on each side of the median.
type OutlierCounts struct {
	Slow int
	Fast int
}

// Any reports whether at least one outlier was flagged.
func (c OutlierCounts) Any() bool {
	return c.Slow > 0 || c.Fast > 0
}

// markOutliers flags statistical outliers among the successful samples using
// the modified z-score over wall times. Flagged samples stay in the data set;
// detection only annotates them. Returns the per-direction counts.
func markOutliers(samples []Sample) OutlierCounts {
	var wall []float64
	for _, s := range samples {
		if s.Success {
			wall = append(wall, s.Wall.Seconds())
		}
	}
	if len(wall) < 2 {
		return OutlierCounts{}
	}

	median := medianOf(wall)

	deviations := make([]float64, len(wall))
	for i, w := range wall {
		deviations[i] = math.Abs(w - median)
	}
	mad := medianOf(deviations)
	if mad == 0 {
		// Identical (or near-identical) measurements; no spread to judge
		// against, so nothing is an outlier.
		return OutlierCounts{}
	}

	var counts OutlierCounts
	for i := range samples {
		if !samples[i].Success {
			continue
		}
		score := madScale * (samples[i].Wall.Seconds() - median) / mad
		switch {
		case score > outlierThreshold:
			samples[i].SlowOutlier = true
			counts.Slow++
		case score < -outlierThreshold:
			samples[i].FastOutlier = true
			counts.Fast++
		}
	}
	return counts
}

func medianOf(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return percentile(sorted, 50)
}
