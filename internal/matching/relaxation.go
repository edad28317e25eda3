package matching

import (
	"fmt"
	"math"
)

// minDiscrepancy is the magnitude below which a B-side discrepancy is
// treated as zero when forming the balance ratio.
const minDiscrepancy = 0.001

// Level is one relaxation setting. Epsilon is the minimum discrepancy a
// candidate needs to count as favouring a metric; Tolerance bounds the ratio
// of the two partners' discrepancy magnitudes to [1/Tolerance, Tolerance].
type Level struct {
	Name      string  `json:"name" yaml:"name"`
	Epsilon   float64 `json:"epsilon" yaml:"epsilon"`
	Tolerance float64 `json:"tolerance" yaml:"tolerance"`
}

func (l Level) Validate() error {
	if l.Epsilon < 0 || math.IsNaN(l.Epsilon) {
		return fmt.Errorf("%w: %q epsilon %f must be non-negative", ErrInvalidLevel, l.Name, l.Epsilon)
	}
	if l.Tolerance < 1 || math.IsNaN(l.Tolerance) {
		return fmt.Errorf("%w: %q tolerance %f must be at least 1", ErrInvalidLevel, l.Name, l.Tolerance)
	}
	return nil
}

// DefaultLevels returns the built-in escalation, strictest first.
func DefaultLevels() []Level {
	return []Level{
		{Name: "strict", Epsilon: 0.30, Tolerance: 1.5},
		{Name: "moderate", Epsilon: 0.20, Tolerance: 2.0},
		{Name: "relaxed", Epsilon: 0.10, Tolerance: 3.0},
		{Name: "loose", Epsilon: 0.05, Tolerance: 5.0},
	}
}

// Relaxation pairs candidates by rank discrepancy, ranksA[i]-ranksB[i],
// escalating through levels until n pairs are found or the levels run out.
//
// At each level, every unused candidate whose discrepancy exceeds Epsilon is
// an A candidate and every one below -Epsilon a B candidate. A candidates,
// in index order, take the first unused B candidate whose discrepancy
// magnitude is balanced with theirs. A level is never revisited once passed.
//
// This is a greedy first-match: an early match can consume the partner a
// later candidate needed, so the result is not a maximum matching and may
// hold fewer than n pairs.
func Relaxation(ranksA, ranksB []float64, n int, levels []Level) ([]Pair, error) {
	if err := checkLengths(ranksA, ranksB); err != nil {
		return nil, err
	}
	for _, l := range levels {
		if err := l.Validate(); err != nil {
			return nil, err
		}
	}
	if n <= 0 {
		return nil, nil
	}

	disc := make([]float64, len(ranksA))
	for i := range ranksA {
		disc[i] = ranksA[i] - ranksB[i]
	}

	used := make([]bool, len(disc))
	var out []Pair
	for li := range levels {
		level := levels[li]
		var favA, favB []int
		for i, d := range disc {
			if used[i] {
				continue
			}
			switch {
			case d > level.Epsilon:
				favA = append(favA, i)
			case d < -level.Epsilon:
				favB = append(favB, i)
			}
		}

		for _, a := range favA {
			for _, b := range favB {
				if used[b] || !balanced(disc[a], disc[b], level.Tolerance) {
					continue
				}
				used[a], used[b] = true, true
				lv := level
				out = append(out, Pair{First: a, Second: b, Level: &lv})
				break
			}
			if len(out) == n {
				return out, nil
			}
		}
	}
	return out, nil
}

func balanced(discA, discB, tolerance float64) bool {
	magB := math.Abs(discB)
	ratio := math.Inf(1)
	if magB >= minDiscrepancy {
		ratio = math.Abs(discA) / magB
	}
	return ratio >= 1/tolerance && ratio <= tolerance
}
