package benchmark

import (
	"math"
	"sort"
)

// degenerateMean is the floor below which a mean wall time cannot anchor a
// relative-speed comparison.
const degenerateMean = 1e-9

// RelativeSpeed describes one unit's speed relative to the fastest unit.
type RelativeSpeed struct {
	Result      *Result
	Factor      float64
	Uncertainty float64
}

// Comparison ranks the completed units from fastest to slowest mean wall time.
type Comparison struct {
	Fastest *Result
	Ranked  []RelativeSpeed
}

// Compare ranks results by mean wall time and computes relative-speed factors
// against the fastest. Failed units are skipped; fewer than two rankable
// results yields a nil comparison. A fastest mean at or below one nanosecond
// cannot serve as a baseline and returns a DegenerateError.
func Compare(results []*Result) (*Comparison, error) {
	var ranked []*Result
	for _, r := range results {
		if r.Failed || r.Stats.N == 0 {
			continue
		}
		ranked = append(ranked, r)
	}
	if len(ranked) < 2 {
		return nil, nil
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Stats.Mean < ranked[j].Stats.Mean
	})

	fastest := ranked[0]
	if fastest.Stats.Mean < degenerateMean {
		return nil, &DegenerateError{Command: fastest.Unit.Name, Mean: fastest.Stats.Mean}
	}

	cmp := &Comparison{Fastest: fastest}
	fm, fs := fastest.Stats.Mean, fastest.Stats.StdDev
	for i, r := range ranked {
		rs := RelativeSpeed{Result: r}
		if i == 0 {
			// The baseline compares to itself: exactly 1.00 with no
			// propagated uncertainty.
			rs.Factor = 1.0
			rs.Uncertainty = 0
		} else {
			rs.Factor = r.Stats.Mean / fm
			rs.Uncertainty = rs.Factor * math.Sqrt(
				square(r.Stats.StdDev/r.Stats.Mean)+square(fs/fm))
		}
		cmp.Ranked = append(cmp.Ranked, rs)
	}
	return cmp, nil
}

func square(x float64) float64 { return x * x }
