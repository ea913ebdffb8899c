package strategy

import "alpha-search-lab/internal/domain"

// BreakoutStrategy trades channel breakouts: long when the close
// exceeds the highest high of the lookback window, flat when it falls
// below the lowest low.
type BreakoutStrategy struct{}

// NewBreakoutStrategy creates a new BreakoutStrategy.
func NewBreakoutStrategy() *BreakoutStrategy {
	return &BreakoutStrategy{}
}

// Name returns the strategy family name.
func (s *BreakoutStrategy) Name() string {
	return "breakout"
}

// Space returns the tunable parameter space.
func (s *BreakoutStrategy) Space() domain.ParameterSpace {
	return domain.ParameterSpace{
		{Name: "lookback", Kind: domain.KindInteger, Low: 5, High: 100},
	}
}

// Evaluate signals a buy when the current close breaks above the prior
// lookback-bar high and an exit when it breaks below the prior low.
func (s *BreakoutStrategy) Evaluate(history []domain.Bar, binding domain.ParameterBinding, _ *State) (Signal, error) {
	if len(history) == 0 {
		return Signal{}, ErrNoHistory
	}

	lookback := int(binding.Int("lookback"))

	high, low, ok := channelHighLow(history, lookback)
	if !ok {
		return hold(), nil
	}

	current := history[len(history)-1].Close

	switch {
	case current > high:
		return Signal{Action: ActionBuy, Reason: "close above lookback high"}, nil
	case current < low:
		return Signal{Action: ActionExit, Reason: "close below lookback low"}, nil
	default:
		return hold(), nil
	}
}

// Ensure BreakoutStrategy implements Strategy
var _ Strategy = (*BreakoutStrategy)(nil)
