package domain

// PositionSide represents the direction of an open position.
type PositionSide string

// Position side constants.
const (
	SideFlat  PositionSide = "FLAT"
	SideLong  PositionSide = "LONG"
	SideShort PositionSide = "SHORT"
)

// Exit reason codes.
const (
	ExitReasonSignal = "SIGNAL"      // opposing or explicit exit signal
	ExitReasonForced = "FORCED_EXIT" // position closed at slice end
)

// TradeRecord represents one closed simulated trade.
// Produced only by the simulator; immutable once emitted.
type TradeRecord struct {
	Side       PositionSide
	EntryTime  int64   // Unix ms of entry bar
	ExitTime   int64   // Unix ms of exit bar
	EntryPrice float64 // fill price at entry
	ExitPrice  float64 // fill price at exit
	Size       float64 // position size in units
	GrossPnL   float64 // before transaction costs
	Cost       float64 // applied transaction costs for the round trip
	NetPnL     float64 // GrossPnL - Cost
	ExitReason string  // SIGNAL | FORCED_EXIT
}

// Return gives the fractional net return of the trade relative to the
// entry position value.
func (t *TradeRecord) Return() float64 {
	notional := t.EntryPrice * t.Size
	if notional == 0 {
		return 0
	}
	return t.NetPnL / notional
}

// PerformanceRecord aggregates the outcome of one simulator run.
// Owned by the run that created it; passed by value downstream.
type PerformanceRecord struct {
	// Aggregate statistics
	TotalReturn float64 // compounded net return over the slice
	MaxDrawdown float64 // worst peak-to-trough equity decline, as a fraction >= 0
	SharpeRatio float64 // mean bar return / stddev of bar returns (0 when undefined)
	TradeCount  int
	WinRate     float64 // winning trades / total trades (0 when no trades)

	// Full audit trail
	Trades      []TradeRecord
	BarReturns  []float64 // per-bar equity returns over the slice
	FinalEquity float64   // equity multiple, 1.0 = break-even
}
