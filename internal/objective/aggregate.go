package objective

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Aggregation errors.
var (
	ErrNoScores         = errors.New("no window scores to aggregate")
	ErrUnknownPolicy    = errors.New("unknown aggregation policy")
	ErrWeightsMismatch  = errors.New("weight count does not match score count")
	ErrNonPositiveSum   = errors.New("weights must sum to a positive value")
)

// AggregationPolicy selects how per-window scores combine into one
// trial score.
type AggregationPolicy string

// Aggregation policies.
const (
	AggregateMean     AggregationPolicy = "mean"
	AggregateWorst    AggregationPolicy = "worst"
	AggregateWeighted AggregationPolicy = "weighted"
)

// Aggregate combines per-window scores under the policy. Weights are
// only consulted for AggregateWeighted and must then match the score
// count. Sentinel scores propagate: if any window scored the sentinel,
// the aggregate is the sentinel, so a binding that produced no trades
// in one window cannot hide behind good windows.
func Aggregate(scores []float64, weights []float64, policy AggregationPolicy) (float64, error) {
	if len(scores) == 0 {
		return 0, ErrNoScores
	}
	for _, s := range scores {
		if s == SentinelScore {
			return SentinelScore, nil
		}
	}

	switch policy {
	case AggregateMean, "":
		return stat.Mean(scores, nil), nil

	case AggregateWorst:
		worst := scores[0]
		for _, s := range scores[1:] {
			if s < worst {
				worst = s
			}
		}
		return worst, nil

	case AggregateWeighted:
		if len(weights) != len(scores) {
			return 0, fmt.Errorf("%d weights for %d scores: %w", len(weights), len(scores), ErrWeightsMismatch)
		}
		sum := 0.0
		for _, w := range weights {
			sum += w
		}
		if sum <= 0 {
			return 0, ErrNonPositiveSum
		}
		return stat.Mean(scores, weights), nil

	default:
		return 0, fmt.Errorf("policy %q: %w", policy, ErrUnknownPolicy)
	}
}
