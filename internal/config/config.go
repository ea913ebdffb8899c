// Package config loads run configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"alpha-search-lab/internal/domain"
	"alpha-search-lab/internal/objective"
	"alpha-search-lab/internal/search"
	"alpha-search-lab/internal/split"
)

// RunConfig is the on-disk shape of one search run definition.
// Durations are strings ("30m", "2h") so the file stays readable.
type RunConfig struct {
	Strategy       string                      `yaml:"strategy"`
	Symbol         string                      `yaml:"symbol"`
	Interval       string                      `yaml:"interval"`
	Sampler        string                      `yaml:"sampler"`
	Seed           int64                       `yaml:"seed"`
	MaxTrials      int                         `yaml:"max_trials"`
	Deadline       string                      `yaml:"deadline"`
	Workers        int                         `yaml:"workers"`
	NoImproveLimit int                         `yaml:"no_improve_limit"`
	GridPoints     int                         `yaml:"grid_points"`
	Objective      string                      `yaml:"objective"`
	Aggregation    objective.AggregationPolicy `yaml:"aggregation"`
	WindowWeights  []float64                   `yaml:"window_weights"`
	MultiObjective bool                        `yaml:"multi_objective"`
	DefaultSize    float64                     `yaml:"default_size"`

	Costs domain.CostModel `yaml:"costs"`

	Split split.Config `yaml:"split"`
}

// Defaults applied by Load when the file omits a field.
const (
	DefaultInterval    = "1d"
	DefaultMaxTrials   = 100
	DefaultSampler     = search.SamplerRandom
	DefaultTrainFrac   = 0.7
	DefaultWindowCount = 3
)

// Load reads and validates a run config file.
func Load(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &RunConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if _, err := cfg.SearchConfig(); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *RunConfig) applyDefaults() {
	if c.Interval == "" {
		c.Interval = DefaultInterval
	}
	if c.MaxTrials == 0 {
		c.MaxTrials = DefaultMaxTrials
	}
	if c.Sampler == "" {
		c.Sampler = DefaultSampler
	}
	if c.Split.Mode == "" {
		c.Split.Mode = split.ModeWalkForward
	}
	if c.Split.TrainFraction == 0 {
		c.Split.TrainFraction = DefaultTrainFrac
	}
	if c.Split.Mode == split.ModeWalkForward && c.Split.WindowCount == 0 {
		c.Split.WindowCount = DefaultWindowCount
	}
}

// SearchConfig converts the file shape into the controller's config,
// parsing the deadline string, and validates the result.
func (c *RunConfig) SearchConfig() (search.Config, error) {
	var deadline time.Duration
	if c.Deadline != "" {
		var err error
		deadline, err = time.ParseDuration(c.Deadline)
		if err != nil {
			return search.Config{}, fmt.Errorf("parse deadline %q: %w", c.Deadline, err)
		}
	}

	sc := search.Config{
		Strategy:       c.Strategy,
		Symbol:         c.Symbol,
		Sampler:        c.Sampler,
		Seed:           c.Seed,
		MaxTrials:      c.MaxTrials,
		Deadline:       deadline,
		Workers:        c.Workers,
		NoImproveLimit: c.NoImproveLimit,
		GridPoints:     c.GridPoints,
		Objective:      c.Objective,
		Aggregation:    c.Aggregation,
		WindowWeights:  c.WindowWeights,
		MultiObjective: c.MultiObjective,
		Costs:          c.Costs,
		DefaultSize:    c.DefaultSize,
		Split:          c.Split,
	}

	if err := sc.Validate(); err != nil {
		return search.Config{}, err
	}
	return sc, nil
}
