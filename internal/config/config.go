package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/ariel-research/budget-survey-sub001/internal/matching"
	"github.com/ariel-research/budget-survey-sub001/internal/strategy"
)

type Config struct {
	Server           ServerConfig      `yaml:"server"`
	Database         DatabaseConfig    `yaml:"database"`
	Events           EventsConfig      `yaml:"events"`
	Survey           SurveyConfig      `yaml:"survey"`
	RelaxationLevels []matching.Level  `yaml:"relaxation_levels"`
	Strategies       []strategy.Config `yaml:"strategies"`
	Logging          LoggingConfig     `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type EventsConfig struct {
	URL string `yaml:"url"`
}

type SurveyConfig struct {
	Total                  int     `yaml:"total"`
	Step                   int     `yaml:"step"`
	DefaultPairs           int     `yaml:"default_pairs"`
	MaxPairs               int     `yaml:"max_pairs"`
	MaxDimension           int     `yaml:"max_dimension"`
	MaxFloorRetries        int     `yaml:"max_floor_retries"`
	ConcentrationThreshold float64 `yaml:"concentration_threshold"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultStrategies returns the strategies served when the config file does
// not list any.
func DefaultStrategies() []strategy.Config {
	return []strategy.Config{
		{Name: "l1_vs_leontief", Engine: strategy.EngineMaxMin, MetricA: "l1", MetricB: "leontief", Floor: 5},
		{Name: "l1_vs_l2", Engine: strategy.EngineMaxMin, MetricA: "l1", MetricB: "l2", Floor: 5},
		{Name: "kl_vs_leontief", Engine: strategy.EngineMaxMin, MetricA: "kl", MetricB: "leontief", Floor: 5},
		{Name: "leontief_vs_anti_leontief", Engine: strategy.EngineMaxMin, MetricA: "leontief", MetricB: "anti_leontief", Floor: 5},
		{Name: "l1_vs_leontief_relaxed", Engine: strategy.EngineRelaxation, MetricA: "l1", MetricB: "leontief", Floor: 0},
	}
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
		},
		Survey: SurveyConfig{
			Total:                  strategy.DefaultTotal,
			Step:                   strategy.DefaultStep,
			DefaultPairs:           10,
			MaxPairs:               50,
			MaxDimension:           6,
			MaxFloorRetries:        strategy.DefaultMaxFloorRetries,
			ConcentrationThreshold: strategy.DefaultConcentrationThreshold,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if len(cfg.RelaxationLevels) == 0 {
		cfg.RelaxationLevels = matching.DefaultLevels()
	}
	if len(cfg.Strategies) == 0 {
		cfg.Strategies = DefaultStrategies()
	}
	for i := range cfg.Strategies {
		if cfg.Strategies[i].Step == 0 {
			cfg.Strategies[i].Step = cfg.Survey.Step
		}
		if cfg.Strategies[i].Total == 0 {
			cfg.Strategies[i].Total = cfg.Survey.Total
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints the strategies rely on.
func (c *Config) Validate() error {
	s := c.Survey
	if s.Step <= 0 || s.Total <= 0 || s.Total%s.Step != 0 {
		return fmt.Errorf("survey: step %d must be positive and divide total %d", s.Step, s.Total)
	}
	if s.DefaultPairs <= 0 || s.MaxPairs < s.DefaultPairs {
		return fmt.Errorf("survey: need 0 < default_pairs (%d) <= max_pairs (%d)", s.DefaultPairs, s.MaxPairs)
	}
	if s.MaxDimension <= 0 {
		return fmt.Errorf("survey: max_dimension must be positive, got %d", s.MaxDimension)
	}
	if s.MaxFloorRetries <= 0 {
		return fmt.Errorf("survey: max_floor_retries must be positive, got %d", s.MaxFloorRetries)
	}
	if s.ConcentrationThreshold <= 0 || s.ConcentrationThreshold > 1 {
		return fmt.Errorf("survey: concentration_threshold %f outside (0, 1]", s.ConcentrationThreshold)
	}
	for _, l := range c.RelaxationLevels {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("relaxation_levels: %w", err)
		}
	}
	seen := make(map[string]bool, len(c.Strategies))
	for _, sc := range c.Strategies {
		if seen[sc.Name] {
			return fmt.Errorf("strategies: duplicate name %q", sc.Name)
		}
		seen[sc.Name] = true
		if sc.Dimension > s.MaxDimension {
			return fmt.Errorf("strategies: %s dimension %d exceeds max_dimension %d", sc.Name, sc.Dimension, s.MaxDimension)
		}
	}
	return nil
}

// StrategyOptions returns the options every configured strategy is built with.
func (c *Config) StrategyOptions() []strategy.Option {
	return []strategy.Option{
		strategy.WithLevels(c.RelaxationLevels),
		strategy.WithMaxFloorRetries(c.Survey.MaxFloorRetries),
		strategy.WithConcentrationThreshold(c.Survey.ConcentrationThreshold),
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PAIRGEN_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("PAIRGEN_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("PAIRGEN_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("PAIRGEN_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("PAIRGEN_EVENTS_URL"); v != "" {
		cfg.Events.URL = v
	}
	if v := os.Getenv("PAIRGEN_MAX_FLOOR_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Survey.MaxFloorRetries = n
		}
	}
	if v := os.Getenv("PAIRGEN_DEFAULT_PAIRS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Survey.DefaultPairs = n
		}
	}
	if v := os.Getenv("PAIRGEN_MAX_DIMENSION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Survey.MaxDimension = n
		}
	}
	if v := os.Getenv("PAIRGEN_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PAIRGEN_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
