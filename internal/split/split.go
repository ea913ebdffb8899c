// Package split partitions a price series into train/test validation
// windows so reported fitness is not inflated by look-ahead fitting.
package split

import (
	"errors"
	"fmt"

	"alpha-search-lab/internal/domain"
)

// Splitter errors.
var (
	ErrInsufficientData = errors.New("series too short for requested window configuration")
	ErrInvalidConfig    = errors.New("invalid splitter configuration")
)

// Mode selects the splitting scheme.
type Mode string

// Splitting modes.
const (
	// ModeWalkForward produces WindowCount chronological windows with
	// non-overlapping test ranges covering the evaluation horizon.
	ModeWalkForward Mode = "walk_forward"

	// ModeFixedHoldout produces a single train/test split at the
	// TrainFraction point.
	ModeFixedHoldout Mode = "fixed_holdout"
)

// Config describes how to split a series.
type Config struct {
	Mode          Mode    `yaml:"mode"`
	WindowCount   int     `yaml:"window_count"`   // walk_forward only
	TrainFraction float64 `yaml:"train_fraction"` // fraction of bars used for the (first) train range
	Rolling       bool    `yaml:"rolling"`        // walk_forward: roll the train range instead of expanding it
}

// Validate checks configuration consistency.
func (c Config) Validate() error {
	if c.TrainFraction <= 0 || c.TrainFraction >= 1 {
		return fmt.Errorf("train_fraction %v must be in (0, 1): %w", c.TrainFraction, ErrInvalidConfig)
	}
	switch c.Mode {
	case ModeWalkForward:
		if c.WindowCount < 1 {
			return fmt.Errorf("window_count %d must be >= 1: %w", c.WindowCount, ErrInvalidConfig)
		}
	case ModeFixedHoldout:
		// WindowCount ignored
	default:
		return fmt.Errorf("mode %q: %w", c.Mode, ErrInvalidConfig)
	}
	return nil
}

// Split partitions the series into validation windows per the config.
// Every returned window satisfies the no-look-ahead invariant: its
// test range starts at or after its train range ends.
// Returns ErrInsufficientData when the series cannot support one full
// train+test cycle.
func Split(series *domain.PriceSeries, cfg Config) ([]domain.ValidationWindow, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("validate series: %w", err)
	}

	var windows []domain.ValidationWindow
	var err error
	switch cfg.Mode {
	case ModeWalkForward:
		windows, err = walkForward(series.Len(), cfg)
	case ModeFixedHoldout:
		windows, err = fixedHoldout(series.Len(), cfg)
	}
	if err != nil {
		return nil, err
	}

	// The ordering invariant is central to the whole engine; check it
	// for every window before handing them out.
	for i := range windows {
		if err := windows[i].Validate(); err != nil {
			return nil, err
		}
	}
	return windows, nil
}

// walkForward builds cfg.WindowCount windows. The first train range
// spans TrainFraction of the series; the remainder is divided into
// equal test ranges. With Rolling, the train range keeps its length
// and slides forward; otherwise it expands to include prior tests.
func walkForward(n int, cfg Config) ([]domain.ValidationWindow, error) {
	trainLen := int(float64(n) * cfg.TrainFraction)
	testTotal := n - trainLen
	testLen := testTotal / cfg.WindowCount

	if trainLen < 1 || testLen < 1 {
		return nil, fmt.Errorf("%d bars cannot support %d windows at train_fraction %v: %w",
			n, cfg.WindowCount, cfg.TrainFraction, ErrInsufficientData)
	}

	windows := make([]domain.ValidationWindow, 0, cfg.WindowCount)
	for i := 0; i < cfg.WindowCount; i++ {
		testStart := trainLen + i*testLen
		testEnd := testStart + testLen
		if i == cfg.WindowCount-1 {
			// Last window absorbs the division remainder so the test
			// ranges cover the whole evaluation horizon.
			testEnd = n
		}

		trainStart := 0
		if cfg.Rolling {
			trainStart = testStart - trainLen
		}

		windows = append(windows, domain.ValidationWindow{
			ID:         fmt.Sprintf("wf-%d", i+1),
			TrainStart: trainStart,
			TrainEnd:   testStart,
			TestStart:  testStart,
			TestEnd:    testEnd,
		})
	}
	return windows, nil
}

// fixedHoldout builds a single train/test split at the fraction point.
func fixedHoldout(n int, cfg Config) ([]domain.ValidationWindow, error) {
	trainLen := int(float64(n) * cfg.TrainFraction)
	if trainLen < 1 || n-trainLen < 1 {
		return nil, fmt.Errorf("%d bars cannot support a holdout at train_fraction %v: %w",
			n, cfg.TrainFraction, ErrInsufficientData)
	}

	return []domain.ValidationWindow{{
		ID:         "holdout",
		TrainStart: 0,
		TrainEnd:   trainLen,
		TestStart:  trainLen,
		TestEnd:    n,
	}}, nil
}
