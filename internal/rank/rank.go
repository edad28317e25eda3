// Package rank turns raw metric scores into comparable rank positions.
//
// All functions rank ascending: the smallest value gets rank 1. Tied values
// share the mean of the ranks they occupy, so a three-way tie over ranks
// 2..4 gives each member 3.
package rank

import "sort"

// Ranks returns the 1-based, tie-averaged rank of every value.
func Ranks(values []float64) []float64 {
	n := len(values)
	out := make([]float64, n)
	if n == 0 {
		return out
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	for start := 0; start < n; {
		end := start + 1
		for end < n && values[order[end]] == values[order[start]] {
			end++
		}
		// positions start..end-1 hold ranks start+1..end
		avg := float64(start+1+end) / 2
		for k := start; k < end; k++ {
			out[order[k]] = avg
		}
		start = end
	}
	return out
}

// Ordinal maps ranks onto [0, 1] with (rank-1)/(n-1). The largest value
// maps to 1. With fewer than two values every entry is 1.
func Ordinal(values []float64) []float64 {
	r := Ranks(values)
	n := len(r)
	if n <= 1 {
		for i := range r {
			r[i] = 1
		}
		return r
	}
	for i := range r {
		r[i] = (r[i] - 1) / float64(n-1)
	}
	return r
}

// Direct maps ranks onto (0, 1] with rank/n. The largest value maps to 1.
func Direct(values []float64) []float64 {
	r := Ranks(values)
	n := float64(len(r))
	for i := range r {
		r[i] /= n
	}
	return r
}

// Inverted maps ranks onto (0, 1] with (n-rank+1)/n, for metrics where a
// lower raw value is better. The smallest value maps to 1.
func Inverted(values []float64) []float64 {
	r := Ranks(values)
	n := float64(len(r))
	for i := range r {
		r[i] = (n - r[i] + 1) / n
	}
	return r
}
