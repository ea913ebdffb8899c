package strategy

import "alpha-search-lab/internal/domain"

// SMACrossStrategy trades moving-average crossovers: long when the
// fast SMA is above the slow SMA, flat when it crosses back below.
type SMACrossStrategy struct{}

// NewSMACrossStrategy creates a new SMACrossStrategy.
func NewSMACrossStrategy() *SMACrossStrategy {
	return &SMACrossStrategy{}
}

// Name returns the strategy family name.
func (s *SMACrossStrategy) Name() string {
	return "sma_cross"
}

// Space returns the tunable parameter space.
func (s *SMACrossStrategy) Space() domain.ParameterSpace {
	return domain.ParameterSpace{
		{Name: "fast", Kind: domain.KindInteger, Low: 2, High: 50},
		{Name: "slow", Kind: domain.KindInteger, Low: 10, High: 200},
	}
}

// Evaluate signals a buy when the fast SMA crosses above the slow SMA
// and an exit when it crosses back below. Holds until both averages
// have enough history.
func (s *SMACrossStrategy) Evaluate(history []domain.Bar, binding domain.ParameterBinding, state *State) (Signal, error) {
	if len(history) == 0 {
		return Signal{}, ErrNoHistory
	}

	fast := int(binding.Int("fast"))
	slow := int(binding.Int("slow"))

	fastVal, okFast := lastSMA(history, fast)
	slowVal, okSlow := lastSMA(history, slow)
	if !okFast || !okSlow {
		return hold(), nil
	}

	prevFast, hadPrev := state.Get("sma_fast")
	prevSlow, _ := state.Get("sma_slow")
	state.Set("sma_fast", fastVal)
	state.Set("sma_slow", slowVal)

	// First bar with both averages defined: no cross to detect yet.
	if !hadPrev {
		return hold(), nil
	}

	crossedUp := prevFast <= prevSlow && fastVal > slowVal
	crossedDown := prevFast >= prevSlow && fastVal < slowVal

	switch {
	case crossedUp:
		return Signal{Action: ActionBuy, Reason: "fast sma crossed above slow"}, nil
	case crossedDown:
		return Signal{Action: ActionExit, Reason: "fast sma crossed below slow"}, nil
	default:
		return hold(), nil
	}
}

// Ensure SMACrossStrategy implements Strategy
var _ Strategy = (*SMACrossStrategy)(nil)
