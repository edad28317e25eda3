// Package matching selects trade-off pairs from rank-normalised candidate
// scores. Indices in every Pair refer to positions in the rank slices the
// caller passed in.
package matching

import (
	"errors"
	"fmt"
)

var (
	ErrRankLengthMismatch = errors.New("rank slices differ in length")
	ErrInvalidLevel       = errors.New("invalid relaxation level")
)

// Pair is one selected trade-off. First is the candidate favoured by metric
// A, Second the one favoured by metric B.
type Pair struct {
	First  int     `json:"first"`
	Second int     `json:"second"`
	Score  float64 `json:"score,omitempty"`
	Level  *Level  `json:"level,omitempty"`
}

func checkLengths(ranksA, ranksB []float64) error {
	if len(ranksA) != len(ranksB) {
		return fmt.Errorf("%w: %d vs %d", ErrRankLengthMismatch, len(ranksA), len(ranksB))
	}
	return nil
}
