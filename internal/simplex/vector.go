package simplex

import (
	"strconv"
	"strings"
)

// Vector is a budget allocation: one non-negative integer per category,
// summing to a fixed total. Vectors handed out by a Cache are shared and
// must not be modified; use Clone to get a private copy.
type Vector []int

// Key returns a string usable as a map key. Equal vectors have equal keys.
func (v Vector) Key() string {
	var b strings.Builder
	for i, x := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(x))
	}
	return b.String()
}

func (v Vector) String() string {
	return "(" + v.Key() + ")"
}

// Sum returns the total allocation.
func (v Vector) Sum() int {
	s := 0
	for _, x := range v {
		s += x
	}
	return s
}

// Max returns the largest component, or 0 for an empty vector.
func (v Vector) Max() int {
	m := 0
	for i, x := range v {
		if i == 0 || x > m {
			m = x
		}
	}
	return m
}

// Min returns the smallest component, or 0 for an empty vector.
func (v Vector) Min() int {
	m := 0
	for i, x := range v {
		if i == 0 || x < m {
			m = x
		}
	}
	return m
}

// Equal reports whether v and w hold the same components.
func (v Vector) Equal(w Vector) bool {
	if len(v) != len(w) {
		return false
	}
	for i := range v {
		if v[i] != w[i] {
			return false
		}
	}
	return true
}

func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}
