package domain

// CostModel describes per-trade transaction costs applied by the
// simulator. The zero value disables costs entirely.
type CostModel struct {
	FixedPerTrade float64 `yaml:"fixed_per_trade"` // flat fee per fill (entry and exit each)
	SlippageBps   float64 `yaml:"slippage_bps"`    // basis points of traded notional per fill
}

// Enabled reports whether any cost component is configured.
func (c CostModel) Enabled() bool {
	return c.FixedPerTrade != 0 || c.SlippageBps != 0
}

// RoundTrip returns the total cost of entering and exiting a position
// with the given fill notionals.
func (c CostModel) RoundTrip(entryNotional, exitNotional float64) float64 {
	if !c.Enabled() {
		return 0
	}
	slippage := (entryNotional + exitNotional) * c.SlippageBps / 10000.0
	return 2*c.FixedPerTrade + slippage
}
