package search

import (
	"errors"
	"fmt"
	"time"

	"alpha-search-lab/internal/domain"
	"alpha-search-lab/internal/objective"
	"alpha-search-lab/internal/split"
)

// ErrInvalidConfig is returned when the search configuration cannot
// produce a well-formed run. It is reported before any trial executes.
var ErrInvalidConfig = errors.New("invalid search configuration")

// ErrMalformedSpec is returned when a strategy's parameter space is
// itself invalid, as opposed to a binding that violates a valid space.
var ErrMalformedSpec = errors.New("malformed parameter space")

// Config describes one parameter-search run.
type Config struct {
	// Strategy is the registered strategy family name.
	Strategy string `yaml:"strategy"`

	// Symbol names the instrument under test, recorded on the run header.
	Symbol string `yaml:"symbol"`

	// Sampler selects the proposal policy: random, grid or guided.
	Sampler string `yaml:"sampler"`

	// Seed makes stochastic samplers reproducible.
	Seed int64 `yaml:"seed"`

	// MaxTrials is the trial budget. The run ends EXHAUSTED when it is
	// spent.
	MaxTrials int `yaml:"max_trials"`

	// Deadline bounds the run's wall-clock time. Zero means no deadline.
	// The deadline is checked before dispatch only; in-flight trials
	// always complete.
	Deadline time.Duration `yaml:"deadline"`

	// Workers is the evaluation concurrency. Zero means 1.
	Workers int `yaml:"workers"`

	// NoImproveLimit declares convergence after this many consecutive
	// trials without a new best score. Zero disables the check.
	NoImproveLimit int `yaml:"no_improve_limit"`

	// GridPoints discretizes continuous dimensions for the grid
	// sampler. Zero uses the default.
	GridPoints int `yaml:"grid_points"`

	// Objective names the scoring function. Empty selects the default.
	Objective string `yaml:"objective"`

	// Aggregation combines per-window scores. Empty means mean.
	Aggregation objective.AggregationPolicy `yaml:"aggregation"`

	// WindowWeights are consulted for weighted aggregation only and
	// must then match the window count.
	WindowWeights []float64 `yaml:"window_weights"`

	// MultiObjective switches the final ranking to Pareto dominance
	// over (return, drawdown, sharpe). Scalar scores are still computed
	// and stored.
	MultiObjective bool `yaml:"multi_objective"`

	// Costs configures the simulator's transaction cost model.
	Costs domain.CostModel `yaml:"costs"`

	// DefaultSize is the simulator's position size when signals carry
	// none.
	DefaultSize float64 `yaml:"default_size"`

	// Split configures train/test window construction.
	Split split.Config `yaml:"split"`
}

// Validate checks the configuration before any trial runs.
func (c Config) Validate() error {
	if c.Strategy == "" {
		return fmt.Errorf("strategy is required: %w", ErrInvalidConfig)
	}
	if c.MaxTrials < 1 {
		return fmt.Errorf("max_trials %d must be >= 1: %w", c.MaxTrials, ErrInvalidConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers %d must be >= 0: %w", c.Workers, ErrInvalidConfig)
	}
	if c.Deadline < 0 {
		return fmt.Errorf("deadline %v must be >= 0: %w", c.Deadline, ErrInvalidConfig)
	}
	if err := c.Split.Validate(); err != nil {
		return err
	}
	return nil
}
