package strategy

import (
	"fmt"
	"math"

	"github.com/ariel-research/budget-survey-sub001/internal/utility"
)

// Engine selects the pair matcher a strategy runs.
type Engine string

const (
	EngineMaxMin     Engine = "maxmin"
	EngineRelaxation Engine = "relaxation"
)

const (
	DefaultTotal = 100
	DefaultStep  = 5

	DefaultMaxFloorRetries        = 5
	DefaultConcentrationThreshold = 0.7
)

// Config binds two metrics and a matcher into a named strategy.
// Dimension 0 accepts references of any length.
type Config struct {
	Name      string `json:"name" yaml:"name"`
	Engine    Engine `json:"engine" yaml:"engine"`
	MetricA   string `json:"metric_a" yaml:"metric_a"`
	MetricB   string `json:"metric_b" yaml:"metric_b"`
	Dimension int    `json:"dimension,omitempty" yaml:"dimension"`
	Floor     int    `json:"floor" yaml:"floor"`
	Step      int    `json:"step" yaml:"step"`
	Total     int    `json:"total" yaml:"total"`
}

func (c Config) withDefaults() Config {
	if c.Engine == "" {
		c.Engine = EngineMaxMin
	}
	if c.Step == 0 {
		c.Step = DefaultStep
	}
	if c.Total == 0 {
		c.Total = DefaultTotal
	}
	// the pool never holds a component between grid points, so the floor is
	// kept on the grid
	if c.Step > 0 && c.Floor > 0 {
		c.Floor = (c.Floor + c.Step - 1) / c.Step * c.Step
	}
	return c
}

// Validate checks the config against the registered models.
func (c Config) Validate(models *utility.Registry) error {
	if c.Name == "" {
		return fmt.Errorf("%w: name required", ErrInvalidConfig)
	}
	if c.Engine != EngineMaxMin && c.Engine != EngineRelaxation {
		return fmt.Errorf("%w: %s: unknown engine %q", ErrInvalidConfig, c.Name, c.Engine)
	}
	if c.MetricA == c.MetricB {
		return fmt.Errorf("%w: %s: metrics must differ, both are %q", ErrInvalidConfig, c.Name, c.MetricA)
	}
	for _, m := range []string{c.MetricA, c.MetricB} {
		if _, err := models.Lookup(m); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, c.Name, err)
		}
	}
	if c.Dimension < 0 || c.Floor < 0 {
		return fmt.Errorf("%w: %s: dimension and floor must be non-negative", ErrInvalidConfig, c.Name)
	}
	if c.Step <= 0 || c.Total <= 0 || c.Total%c.Step != 0 {
		return fmt.Errorf("%w: %s: step %d must be positive and divide total %d", ErrInvalidConfig, c.Name, c.Step, c.Total)
	}
	return nil
}

func validConcentration(v float64) bool {
	return v > 0 && v <= 1 && !math.IsNaN(v)
}
