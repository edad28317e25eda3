// Package strategy binds a candidate pool, two utility metrics and a pair
// matcher into a named, reusable configuration that turns a respondent's
// reference allocation into trade-off pairs.
package strategy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ariel-research/budget-survey-sub001/internal/matching"
	"github.com/ariel-research/budget-survey-sub001/internal/rank"
	"github.com/ariel-research/budget-survey-sub001/internal/simplex"
	"github.com/ariel-research/budget-survey-sub001/internal/utility"
)

// Result is the outcome of one GeneratePairs call.
type Result struct {
	Strategy  string           `json:"strategy"`
	Engine    Engine           `json:"engine"`
	Pairs     []ComparisonPair `json:"pairs"`
	Requested int              `json:"requested"`
	Degraded  bool             `json:"degraded"`
	Floor     int              `json:"floor"`
	Attempts  int              `json:"attempts"`
}

// Strategy is immutable after New and safe for concurrent use.
type Strategy struct {
	cfg     Config
	metricA utility.Model
	metricB utility.Model
	cache   *simplex.Cache
	levels  []matching.Level

	maxFloorRetries        int
	concentrationThreshold float64
	logger                 *slog.Logger
}

type Option func(*Strategy)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Strategy) { s.logger = logger }
}

// WithLevels overrides the relaxation levels, strictest first.
func WithLevels(levels []matching.Level) Option {
	return func(s *Strategy) { s.levels = append([]matching.Level(nil), levels...) }
}

// WithMaxFloorRetries bounds the number of pool attempts per call.
func WithMaxFloorRetries(n int) Option {
	return func(s *Strategy) { s.maxFloorRetries = n }
}

// WithConcentrationThreshold sets the share of the total above which a
// single reference component counts as concentrated.
func WithConcentrationThreshold(v float64) Option {
	return func(s *Strategy) { s.concentrationThreshold = v }
}

// New validates cfg and resolves its metrics. A nil cache gets a private one.
func New(cfg Config, models *utility.Registry, cache *simplex.Cache, opts ...Option) (*Strategy, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(models); err != nil {
		return nil, err
	}
	a, _ := models.Lookup(cfg.MetricA)
	b, _ := models.Lookup(cfg.MetricB)
	if cache == nil {
		cache = simplex.NewCache()
	}

	s := &Strategy{
		cfg:                    cfg,
		metricA:                a,
		metricB:                b,
		cache:                  cache,
		levels:                 matching.DefaultLevels(),
		maxFloorRetries:        DefaultMaxFloorRetries,
		concentrationThreshold: DefaultConcentrationThreshold,
		logger:                 slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.maxFloorRetries <= 0 {
		return nil, fmt.Errorf("%w: %s: max floor retries must be positive", ErrInvalidConfig, cfg.Name)
	}
	if !validConcentration(s.concentrationThreshold) {
		return nil, fmt.Errorf("%w: %s: concentration threshold %f outside (0, 1]", ErrInvalidConfig, cfg.Name, s.concentrationThreshold)
	}
	if cfg.Engine == EngineRelaxation {
		if len(s.levels) == 0 {
			return nil, fmt.Errorf("%w: %s: relaxation engine needs at least one level", ErrInvalidConfig, cfg.Name)
		}
		for _, l := range s.levels {
			if err := l.Validate(); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, cfg.Name, err)
			}
		}
	}
	return s, nil
}

func (s *Strategy) Name() string   { return s.cfg.Name }
func (s *Strategy) Config() Config { return s.cfg }

// GeneratePairs returns up to n trade-off pairs for reference.
//
// Input errors return a *ValidationError before any work is done. When the
// strategy cannot produce enough pairs even after relaxing its constraints it
// returns an *UnsuitableError. ctx is only checked between attempts.
func (s *Strategy) GeneratePairs(ctx context.Context, reference simplex.Vector, n, dimension int) (*Result, error) {
	if err := s.validate(reference, n, dimension); err != nil {
		return nil, err
	}

	floor := s.initialFloor(reference)
	if floor < s.cfg.Floor {
		s.logger.Info("lowered floor for reference",
			"strategy", s.cfg.Name,
			"configured_floor", s.cfg.Floor,
			"floor", floor,
		)
	}

	switch s.cfg.Engine {
	case EngineRelaxation:
		return s.runRelaxation(reference, n, floor)
	default:
		return s.runMaxMin(ctx, reference, n, floor)
	}
}

func (s *Strategy) validate(reference simplex.Vector, n, dimension int) error {
	if dimension <= 0 {
		return &ValidationError{Field: "dimension", Reason: fmt.Sprintf("must be positive, got %d", dimension)}
	}
	if s.cfg.Dimension != 0 && dimension != s.cfg.Dimension {
		return &ValidationError{Field: "dimension", Reason: fmt.Sprintf("strategy %s requires %d, got %d", s.cfg.Name, s.cfg.Dimension, dimension)}
	}
	if len(reference) != dimension {
		return &ValidationError{Field: "reference", Reason: fmt.Sprintf("length %d does not match dimension %d", len(reference), dimension)}
	}
	for i, x := range reference {
		if x < 0 || x > s.cfg.Total {
			return &ValidationError{Field: "reference", Reason: fmt.Sprintf("component %d is %d, outside [0, %d]", i, x, s.cfg.Total)}
		}
	}
	if sum := reference.Sum(); sum != s.cfg.Total {
		return &ValidationError{Field: "reference", Reason: fmt.Sprintf("sums to %d, must sum to %d", sum, s.cfg.Total)}
	}
	if n <= 0 {
		return &ValidationError{Field: "count", Reason: fmt.Sprintf("must be positive, got %d", n)}
	}
	return nil
}

// initialFloor lowers the configured floor when the reference itself could
// not satisfy it or is concentrated in one category.
func (s *Strategy) initialFloor(reference simplex.Vector) int {
	floor := s.cfg.Floor
	step := s.cfg.Step

	if m := reference.Min(); m < floor {
		floor = m / step * step
	}

	dim := len(reference)
	top := reference.Max()
	if float64(top) >= s.concentrationThreshold*float64(s.cfg.Total) {
		if dim == 1 {
			return 0
		}
		spread := (s.cfg.Total - top) / (dim - 1) / step * step
		if spread < floor {
			floor = spread
		}
	}
	return floor
}

func (s *Strategy) runMaxMin(ctx context.Context, reference simplex.Vector, n, floor int) (*Result, error) {
	var found int
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sc, err := s.score(reference, floor)
		if err != nil {
			return nil, err
		}
		var pairs []matching.Pair
		if len(sc.pool) >= 2 {
			pairs, err = matching.MaxMin(rank.Ordinal(sc.a), rank.Ordinal(sc.b), n)
			if err != nil {
				return nil, err
			}
		}
		found = len(pairs)

		if found >= n {
			return &Result{
				Strategy:  s.cfg.Name,
				Engine:    EngineMaxMin,
				Pairs:     s.format(reference, sc, pairs, floor),
				Requested: n,
				Floor:     floor,
				Attempts:  attempt,
			}, nil
		}

		next := floor - s.cfg.Step
		if next < 0 || attempt >= s.maxFloorRetries {
			s.logger.Warn("strategy exhausted floor relaxation",
				"strategy", s.cfg.Name,
				"requested", n,
				"found", found,
				"floor", floor,
				"attempts", attempt,
			)
			return nil, &UnsuitableError{Strategy: s.cfg.Name, Requested: n, Found: found, Floor: floor, Attempts: attempt}
		}
		s.logger.Info("too few pairs, lowering floor",
			"strategy", s.cfg.Name,
			"requested", n,
			"found", found,
			"floor", floor,
			"next_floor", next,
		)
		floor = next
	}
}

func (s *Strategy) runRelaxation(reference simplex.Vector, n, floor int) (*Result, error) {
	sc, err := s.score(reference, floor)
	if err != nil {
		return nil, err
	}

	var pairs []matching.Pair
	if len(sc.pool) >= 2 {
		// metric A is ranked as a cost: lower is better
		pairs, err = matching.Relaxation(rank.Inverted(negate(sc.a)), rank.Direct(sc.b), n, s.levels)
		if err != nil {
			return nil, err
		}
	}
	if len(pairs) == 0 {
		s.logger.Warn("no relaxation level produced a pair",
			"strategy", s.cfg.Name,
			"requested", n,
			"floor", floor,
		)
		return nil, &UnsuitableError{Strategy: s.cfg.Name, Requested: n, Floor: floor, Attempts: 1}
	}

	res := &Result{
		Strategy:  s.cfg.Name,
		Engine:    EngineRelaxation,
		Pairs:     s.format(reference, sc, pairs, floor),
		Requested: n,
		Floor:     floor,
		Attempts:  1,
	}
	if len(res.Pairs) < n {
		res.Degraded = true
		s.logger.Warn("returning fewer pairs than requested",
			"strategy", s.cfg.Name,
			"requested", n,
			"found", len(res.Pairs),
		)
	}
	return res, nil
}

// scored is one candidate pool with both metrics evaluated.
type scored struct {
	pool []simplex.Vector
	a, b []float64
}

// score builds the pool for floor, excluding the reference itself.
func (s *Strategy) score(reference simplex.Vector, floor int) (scored, error) {
	full, err := s.cache.Pool(simplex.Params{
		Dimension: len(reference),
		Total:     s.cfg.Total,
		Step:      s.cfg.Step,
		Floor:     floor,
	})
	if err != nil {
		return scored{}, fmt.Errorf("build candidate pool: %w", err)
	}

	pool := make([]simplex.Vector, 0, len(full))
	for _, v := range full {
		if !v.Equal(reference) {
			pool = append(pool, v)
		}
	}
	return scored{
		pool: pool,
		a:    utility.Score(s.metricA, reference, pool),
		b:    utility.Score(s.metricB, reference, pool),
	}, nil
}

func negate(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = -v
	}
	return out
}
