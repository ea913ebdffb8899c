package strategy

import "alpha-search-lab/internal/domain"

// EMACrossStrategy trades exponential moving-average crossovers.
// Same rule shape as SMACrossStrategy but with exponentially weighted
// averages, which react faster to recent bars.
type EMACrossStrategy struct{}

// NewEMACrossStrategy creates a new EMACrossStrategy.
func NewEMACrossStrategy() *EMACrossStrategy {
	return &EMACrossStrategy{}
}

// Name returns the strategy family name.
func (s *EMACrossStrategy) Name() string {
	return "ema_cross"
}

// Space returns the tunable parameter space.
func (s *EMACrossStrategy) Space() domain.ParameterSpace {
	return domain.ParameterSpace{
		{Name: "fast", Kind: domain.KindInteger, Low: 2, High: 50},
		{Name: "slow", Kind: domain.KindInteger, Low: 10, High: 200},
	}
}

// Evaluate signals a buy when the fast EMA crosses above the slow EMA
// and an exit when it crosses back below.
func (s *EMACrossStrategy) Evaluate(history []domain.Bar, binding domain.ParameterBinding, state *State) (Signal, error) {
	if len(history) == 0 {
		return Signal{}, ErrNoHistory
	}

	fast := int(binding.Int("fast"))
	slow := int(binding.Int("slow"))

	fastVal, okFast := lastEMA(history, fast)
	slowVal, okSlow := lastEMA(history, slow)
	if !okFast || !okSlow {
		return hold(), nil
	}

	prevFast, hadPrev := state.Get("ema_fast")
	prevSlow, _ := state.Get("ema_slow")
	state.Set("ema_fast", fastVal)
	state.Set("ema_slow", slowVal)

	if !hadPrev {
		return hold(), nil
	}

	crossedUp := prevFast <= prevSlow && fastVal > slowVal
	crossedDown := prevFast >= prevSlow && fastVal < slowVal

	switch {
	case crossedUp:
		return Signal{Action: ActionBuy, Reason: "fast ema crossed above slow"}, nil
	case crossedDown:
		return Signal{Action: ActionExit, Reason: "fast ema crossed below slow"}, nil
	default:
		return hold(), nil
	}
}

// Ensure EMACrossStrategy implements Strategy
var _ Strategy = (*EMACrossStrategy)(nil)
