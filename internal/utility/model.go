package utility

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ariel-research/budget-survey-sub001/internal/simplex"
)

var ErrUnknownModel = errors.New("unknown utility model")

// Kind says how a model's raw score relates to the quantity shown to a
// respondent.
type Kind string

const (
	KindDistance     Kind = "distance"      // score is a negated distance
	KindRatio        Kind = "ratio"         // score is the ratio itself
	KindInverseRatio Kind = "inverse_ratio" // score is a negated ratio
	KindDivergence   Kind = "divergence"    // score is a negated divergence
)

// Model scores a candidate allocation against a reference allocation.
// Higher scores are better. Implementations hold no state.
type Model interface {
	Name() string
	Type() Kind
	Calculate(reference, candidate simplex.Vector) float64
}

// Display converts a raw score into the value shown in labels: distances and
// divergences as positive magnitudes, Leontief ratios as-is.
func Display(m Model, score float64) float64 {
	if m.Type() == KindRatio {
		return score
	}
	if score == 0 {
		return 0
	}
	return -score
}

// Score evaluates m for every candidate in pool.
func Score(m Model, reference simplex.Vector, pool []simplex.Vector) []float64 {
	out := make([]float64, len(pool))
	for i, c := range pool {
		out[i] = m.Calculate(reference, c)
	}
	return out
}

// Registry maps identifiers to models.
type Registry struct {
	models map[string]Model
}

func NewRegistry(models ...Model) *Registry {
	r := &Registry{models: make(map[string]Model, len(models))}
	for _, m := range models {
		r.models[m.Name()] = m
	}
	return r
}

// DefaultRegistry holds every built-in model.
func DefaultRegistry() *Registry {
	return NewRegistry(L1{}, L2{}, Leontief{}, AntiLeontief{}, KL{})
}

func (r *Registry) Lookup(name string) (Model, error) {
	m, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
	return m, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.models))
	for n := range r.models {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

var titles = map[string]string{
	"l1":            "L1",
	"l2":            "L2",
	"leontief":      "Leontief",
	"anti_leontief": "Anti-Leontief",
	"kl":            "KL",
}

// Title returns the human-readable name used in respondent-facing labels.
func Title(m Model) string {
	if t, ok := titles[m.Name()]; ok {
		return t
	}
	return m.Name()
}
