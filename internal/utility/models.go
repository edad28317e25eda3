package utility

import (
	"math"

	"github.com/ariel-research/budget-survey-sub001/internal/simplex"
)

// klEpsilon keeps the log argument finite when the candidate share is zero.
const klEpsilon = 1e-10

// --- Distance models ---

// L1 is the negated sum of absolute differences.
type L1 struct{}

func (L1) Name() string { return "l1" }
func (L1) Type() Kind   { return KindDistance }

func (L1) Calculate(reference, candidate simplex.Vector) float64 {
	var d float64
	for i := range reference {
		d += math.Abs(float64(reference[i] - candidate[i]))
	}
	return -d
}

// L2 is the negated Euclidean distance.
type L2 struct{}

func (L2) Name() string { return "l2" }
func (L2) Type() Kind   { return KindDistance }

func (L2) Calculate(reference, candidate simplex.Vector) float64 {
	var sq float64
	for i := range reference {
		diff := float64(reference[i] - candidate[i])
		sq += diff * diff
	}
	return -math.Sqrt(sq)
}

// --- Ratio models ---

// Leontief is the smallest candidate/reference ratio over categories the
// reference funds. An all-zero reference scores 0.
type Leontief struct{}

func (Leontief) Name() string { return "leontief" }
func (Leontief) Type() Kind   { return KindRatio }

func (Leontief) Calculate(reference, candidate simplex.Vector) float64 {
	lo, _, ok := ratioBounds(reference, candidate)
	if !ok {
		return 0
	}
	return lo
}

// AntiLeontief is the negated largest candidate/reference ratio: it prefers
// candidates that do not overshoot any funded category. An all-zero
// reference scores 0.
type AntiLeontief struct{}

func (AntiLeontief) Name() string { return "anti_leontief" }
func (AntiLeontief) Type() Kind   { return KindInverseRatio }

func (AntiLeontief) Calculate(reference, candidate simplex.Vector) float64 {
	_, hi, ok := ratioBounds(reference, candidate)
	if !ok {
		return 0
	}
	return -hi
}

// ratioBounds returns min and max of candidate[i]/reference[i] over
// reference[i] > 0, and false when no such index exists.
func ratioBounds(reference, candidate simplex.Vector) (lo, hi float64, ok bool) {
	for i, r := range reference {
		if r <= 0 {
			continue
		}
		q := float64(candidate[i]) / float64(r)
		if !ok {
			lo, hi, ok = q, q, true
			continue
		}
		lo = math.Min(lo, q)
		hi = math.Max(hi, q)
	}
	return lo, hi, ok
}

// --- Divergence models ---

// KL is the negated Kullback-Leibler divergence of the candidate's shares
// from the reference's shares.
type KL struct{}

func (KL) Name() string { return "kl" }
func (KL) Type() Kind   { return KindDivergence }

func (KL) Calculate(reference, candidate simplex.Vector) float64 {
	rs, cs := reference.Sum(), candidate.Sum()
	if rs == 0 || cs == 0 {
		return 0
	}
	var d float64
	for i := range reference {
		p := float64(reference[i]) / float64(rs)
		if p <= 0 {
			continue
		}
		q := float64(candidate[i]) / float64(cs)
		d += p * math.Log(p/(q+klEpsilon))
	}
	return -d
}
