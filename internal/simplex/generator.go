package simplex

import (
	"errors"
	"fmt"
	"iter"
)

var (
	ErrInvalidDimension = errors.New("dimension must be positive")
	ErrInvalidStep      = errors.New("step must be positive and divide total")
	ErrInvalidParams    = errors.New("total and floor must be non-negative")
)

// Params identifies one discrete simplex grid. A pool is a pure function of
// its Params, which makes Params a valid cache key.
type Params struct {
	Dimension int
	Total     int
	Step      int
	Floor     int
}

// DefaultParams returns the survey grid for the given dimension: totals of
// 100 in steps of 5, no floor.
func DefaultParams(dimension int) Params {
	return Params{Dimension: dimension, Total: 100, Step: 5}
}

// Validate checks the structural constraints. An infeasible floor is not an
// error; it produces an empty grid.
func (p Params) Validate() error {
	if p.Dimension <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidDimension, p.Dimension)
	}
	if p.Total < 0 || p.Floor < 0 {
		return fmt.Errorf("%w: total=%d floor=%d", ErrInvalidParams, p.Total, p.Floor)
	}
	if p.Step <= 0 || p.Total%p.Step != 0 {
		return fmt.Errorf("%w: total=%d step=%d", ErrInvalidStep, p.Total, p.Step)
	}
	return nil
}

// FloorSteps is the per-coordinate minimum expressed in steps, i.e.
// ceil(Floor/Step).
func (p Params) FloorSteps() int {
	return (p.Floor + p.Step - 1) / p.Step
}

// EffectiveFloor is the smallest value any generated coordinate can take.
func (p Params) EffectiveFloor() int {
	return p.FloorSteps() * p.Step
}

// spare returns the number of steps left to distribute once every coordinate
// holds its floor, and false when the floor is infeasible.
func (p Params) spare() (int, bool) {
	rest := p.Total/p.Step - p.Dimension*p.FloorSteps()
	return rest, rest >= 0
}

// Generate returns the lazy sequence of grid points for p, in lexicographic
// order. The sequence may be ranged over any number of times.
func Generate(p Params) (iter.Seq[Vector], error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	spare, ok := p.spare()
	if !ok {
		return func(func(Vector) bool) {}, nil
	}
	base := p.FloorSteps()

	return func(yield func(Vector) bool) {
		cur := make([]int, p.Dimension)
		// fill assigns coordinate pos and recurses; depth is bounded by Dimension.
		var fill func(pos, remaining int) bool
		fill = func(pos, remaining int) bool {
			if pos == p.Dimension-1 {
				cur[pos] = (base + remaining) * p.Step
				out := make(Vector, p.Dimension)
				copy(out, cur)
				return yield(out)
			}
			for k := 0; k <= remaining; k++ {
				cur[pos] = (base + k) * p.Step
				if !fill(pos+1, remaining-k) {
					return false
				}
			}
			return true
		}
		fill(0, spare)
	}, nil
}

// Collect materialises the grid for p.
func Collect(p Params) ([]Vector, error) {
	seq, err := Generate(p)
	if err != nil {
		return nil, err
	}
	out := make([]Vector, 0, Count(p))
	for v := range seq {
		out = append(out, v)
	}
	return out, nil
}

// Count returns how many vectors Generate yields for p, or 0 when p is
// invalid or infeasible.
func Count(p Params) int {
	if p.Validate() != nil {
		return 0
	}
	spare, ok := p.spare()
	if !ok {
		return 0
	}
	return binomial(spare+p.Dimension-1, p.Dimension-1)
}

func binomial(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	r := 1
	for i := 1; i <= k; i++ {
		r = r * (n - k + i) / i
	}
	return r
}
