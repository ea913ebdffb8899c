package split

import (
	"fmt"

	"alpha-search-lab/internal/domain"
)

// SufficiencyCheck represents one data sufficiency criterion.
type SufficiencyCheck struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// SufficiencyResult contains all checks for one series/config pair.
type SufficiencyResult struct {
	Checks  []SufficiencyCheck
	AllPass bool
}

// CheckSufficiency validates that a series can support the requested
// split before any trial runs. It mirrors what Split enforces, but
// reports every criterion individually for operator inspection.
func CheckSufficiency(series *domain.PriceSeries, cfg Config) *SufficiencyResult {
	result := &SufficiencyResult{AllPass: true}

	add := func(c SufficiencyCheck) {
		result.Checks = append(result.Checks, c)
		if !c.Pass {
			result.AllPass = false
		}
	}

	n := series.Len()
	ordered := series.Validate() == nil

	add(SufficiencyCheck{
		Name:      "bars present",
		Threshold: ">= 1",
		Actual:    fmt.Sprintf("%d", n),
		Pass:      n >= 1,
	})
	add(SufficiencyCheck{
		Name:      "timestamps strictly increasing",
		Threshold: "true",
		Actual:    fmt.Sprintf("%t", ordered),
		Pass:      ordered,
	})

	if cfg.Validate() != nil {
		add(SufficiencyCheck{
			Name:      "splitter config valid",
			Threshold: "true",
			Actual:    "false",
			Pass:      false,
		})
		return result
	}

	trainLen := int(float64(n) * cfg.TrainFraction)
	add(SufficiencyCheck{
		Name:      "train range length",
		Threshold: ">= 1 bar",
		Actual:    fmt.Sprintf("%d bars", trainLen),
		Pass:      trainLen >= 1,
	})

	switch cfg.Mode {
	case ModeWalkForward:
		testLen := 0
		if cfg.WindowCount > 0 {
			testLen = (n - trainLen) / cfg.WindowCount
		}
		add(SufficiencyCheck{
			Name:      "test range length per window",
			Threshold: ">= 1 bar",
			Actual:    fmt.Sprintf("%d bars", testLen),
			Pass:      testLen >= 1,
		})
	case ModeFixedHoldout:
		add(SufficiencyCheck{
			Name:      "holdout test length",
			Threshold: ">= 1 bar",
			Actual:    fmt.Sprintf("%d bars", n-trainLen),
			Pass:      n-trainLen >= 1,
		})
	}

	return result
}
