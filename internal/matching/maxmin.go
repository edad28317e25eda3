package matching

import (
	"math"
	"sort"
)

// partner is one entry in a candidate's bounded list of best partners.
type partner struct {
	other  int32
	aFirst bool // the list owner is the metric-A side
	score  float64
}

// orderedPair is a qualifying pair in selection order form.
type orderedPair struct {
	lo, hi int
	aFirst bool // lo is the metric-A side
	score  float64
}

// before is the selection order: higher score first, then the
// lexicographically smaller (lo, hi) index tuple.
func (p orderedPair) before(q orderedPair) bool {
	if p.score != q.score {
		return p.score > q.score
	}
	if p.lo != q.lo {
		return p.lo < q.lo
	}
	return p.hi < q.hi
}

// MaxMin selects up to n disjoint pairs maximising min(gainA, gainB).
//
// For candidates i and j with i the metric-A side, gainA = ranksA[i]-ranksA[j]
// and gainB = ranksB[j]-ranksB[i]; a pair qualifies only when both gains are
// positive. Pairs are taken greedily in descending score order, skipping any
// pair with an already claimed index. Equal scores resolve to the
// lexicographically smaller index tuple, so output is deterministic.
//
// The result equals sorting every qualifying pair and running the greedy
// pass, but without materialising all pairs: a pair picked at greedy step t
// can be beaten on either endpoint only by pairs whose other endpoint was
// claimed earlier, so keeping each candidate's best 2n-1 partners suffices.
// Fewer than n pairs, or none, are returned when the metrics agree too much.
func MaxMin(ranksA, ranksB []float64, n int) ([]Pair, error) {
	if err := checkLengths(ranksA, ranksB); err != nil {
		return nil, err
	}
	size := len(ranksA)
	if n <= 0 || size < 2 {
		return nil, nil
	}

	keep := 2*n - 1
	if keep > size-1 {
		keep = size - 1
	}
	lists := make([][]partner, size)
	thresholds := make([]float64, size)
	for i := range thresholds {
		thresholds[i] = math.Inf(-1)
	}

	offer := func(owner, other int, aFirst bool, score float64) {
		if score < thresholds[owner] {
			return
		}
		cand := partner{other: int32(other), aFirst: aFirst, score: score}
		l := lists[owner]
		if len(l) == keep && !partnerBefore(owner, cand, l[keep-1]) {
			return
		}
		pos := sort.Search(len(l), func(k int) bool {
			return partnerBefore(owner, cand, l[k])
		})
		if pos >= keep {
			return
		}
		if len(l) < keep {
			l = append(l, partner{})
		}
		copy(l[pos+1:], l[pos:len(l)-1])
		l[pos] = cand
		lists[owner] = l
		if len(l) == keep {
			thresholds[owner] = l[len(l)-1].score
		}
	}

	for i := 0; i < size-1; i++ {
		ai, bi := ranksA[i], ranksB[i]
		for j := i + 1; j < size; j++ {
			gainA := ai - ranksA[j]
			gainB := ranksB[j] - bi
			switch {
			case gainA > 0 && gainB > 0:
				s := math.Min(gainA, gainB)
				offer(i, j, true, s)
				offer(j, i, false, s)
			case gainA < 0 && gainB < 0:
				s := math.Min(-gainA, -gainB)
				offer(i, j, false, s)
				offer(j, i, true, s)
			}
		}
	}

	var merged []orderedPair
	for owner, l := range lists {
		for _, p := range l {
			op := orderedPair{lo: owner, hi: int(p.other), aFirst: p.aFirst, score: p.score}
			if op.lo > op.hi {
				op.lo, op.hi = op.hi, op.lo
				op.aFirst = !op.aFirst
			}
			merged = append(merged, op)
		}
	}
	sort.Slice(merged, func(a, b int) bool { return merged[a].before(merged[b]) })

	used := make([]bool, size)
	var out []Pair
	for _, p := range merged {
		if len(out) == n {
			break
		}
		// a pair listed by both endpoints is skipped the second time
		if used[p.lo] || used[p.hi] {
			continue
		}
		used[p.lo], used[p.hi] = true, true
		first, second := p.lo, p.hi
		if !p.aFirst {
			first, second = second, first
		}
		out = append(out, Pair{First: first, Second: second, Score: p.score})
	}
	return out, nil
}

// partnerBefore orders two partners of the same owner by selection order.
func partnerBefore(owner int, p, q partner) bool {
	if p.score != q.score {
		return p.score > q.score
	}
	plo, phi := minmax(owner, int(p.other))
	qlo, qhi := minmax(owner, int(q.other))
	if plo != qlo {
		return plo < qlo
	}
	return phi < qhi
}

func minmax(a, b int) (int, int) {
	if a < b {
		return a, b
	}
	return b, a
}
