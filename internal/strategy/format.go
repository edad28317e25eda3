package strategy

import (
	"fmt"
	"math"

	"github.com/ariel-research/budget-survey-sub001/internal/matching"
	"github.com/ariel-research/budget-survey-sub001/internal/simplex"
	"github.com/ariel-research/budget-survey-sub001/internal/utility"
)

// Side is one labelled option of a comparison.
type Side struct {
	Label  string         `json:"label"`
	Metric string         `json:"metric"`
	Vector simplex.Vector `json:"vector"`
	Score  float64        `json:"score"`
}

// Metadata carries the selection diagnostics a caller should persist with
// the pair.
type Metadata struct {
	Engine       Engine   `json:"engine"`
	Score        *float64 `json:"score,omitempty"`
	Level        string   `json:"level,omitempty"`
	Epsilon      *float64 `json:"epsilon,omitempty"`
	Tolerance    *float64 `json:"tolerance,omitempty"`
	Floor        int      `json:"floor"`
	FloorRelaxed bool     `json:"floor_relaxed"`
}

// ComparisonPair is a trade-off presented to a respondent. Options[0] is the
// side optimised for metric A, Options[1] the side optimised for metric B.
type ComparisonPair struct {
	Options  [2]Side  `json:"options"`
	Metadata Metadata `json:"metadata"`
}

// AsMap keys each vector by its label.
func (p ComparisonPair) AsMap() map[string]simplex.Vector {
	return map[string]simplex.Vector{
		p.Options[0].Label: p.Options[0].Vector,
		p.Options[1].Label: p.Options[1].Vector,
	}
}

func optimizedLabel(m utility.Model, x, y float64) string {
	best, worst := math.Max(x, y), math.Min(x, y)
	return fmt.Sprintf("%s Optimized Vector (best: %.2f, worst: %.2f)",
		utility.Title(m), utility.Display(m, best), utility.Display(m, worst))
}

// validPair reports whether two candidates can be shown side by side: they
// differ from each other and from the reference.
func validPair(reference, a, b simplex.Vector) bool {
	return !a.Equal(b) && !a.Equal(reference) && !b.Equal(reference)
}

func (s *Strategy) format(reference simplex.Vector, sc scored, pairs []matching.Pair, floor int) []ComparisonPair {
	out := make([]ComparisonPair, 0, len(pairs))
	for _, p := range pairs {
		first, second := p.First, p.Second
		// the metric A side is decided on raw scores, not ranks
		if sc.a[second] > sc.a[first] {
			first, second = second, first
		}
		va, vb := sc.pool[first], sc.pool[second]
		if !validPair(reference, va, vb) {
			s.logger.Error("dropping invalid pair",
				"strategy", s.cfg.Name,
				"first", va.String(),
				"second", vb.String(),
			)
			continue
		}

		meta := Metadata{
			Engine:       s.cfg.Engine,
			Floor:        floor,
			FloorRelaxed: floor < s.cfg.Floor,
		}
		if p.Level != nil {
			eps, tol := p.Level.Epsilon, p.Level.Tolerance
			meta.Level = p.Level.Name
			meta.Epsilon = &eps
			meta.Tolerance = &tol
		} else {
			score := p.Score
			meta.Score = &score
		}

		out = append(out, ComparisonPair{
			Options: [2]Side{
				{
					Label:  optimizedLabel(s.metricA, sc.a[first], sc.a[second]),
					Metric: s.metricA.Name(),
					Vector: va.Clone(),
					Score:  sc.a[first],
				},
				{
					Label:  optimizedLabel(s.metricB, sc.b[first], sc.b[second]),
					Metric: s.metricB.Name(),
					Vector: vb.Clone(),
					Score:  sc.b[second],
				},
			},
			Metadata: meta,
		})
	}
	return out
}
