// Package simulate replays a strategy bar-by-bar over a price series
// slice and produces a deterministic performance record.
package simulate

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"alpha-search-lab/internal/domain"
	"alpha-search-lab/internal/strategy"
)

// Simulator errors.
var (
	ErrEmptySlice = errors.New("series slice has zero bars")
)

// Options configures a Simulator.
type Options struct {
	Costs       domain.CostModel // zero value disables transaction costs
	DefaultSize float64          // position size in units when the signal carries none; 0 means 1.0
}

// Simulator replays strategies over price series slices.
// It owns no state beyond a single Run call, so one instance may be
// shared by concurrent workers.
type Simulator struct {
	costs       domain.CostModel
	defaultSize float64
}

// New creates a Simulator.
func New(opts Options) *Simulator {
	size := opts.DefaultSize
	if size <= 0 {
		size = 1.0
	}
	return &Simulator{
		costs:       opts.Costs,
		defaultSize: size,
	}
}

// position tracks the single open position during a run.
type position struct {
	side       domain.PositionSide
	entryTime  int64
	entryPrice float64
	size       float64
}

// Run replays the strategy over the slice in chronological order,
// exactly once. At each bar the strategy sees only the bars up to and
// including the current one. One position may be open at a time; an
// open position at slice end is force-closed at the last bar's close.
//
// Identical (strategy, binding, slice) inputs always produce an
// identical PerformanceRecord: the simulator consults no clock and no
// randomness.
//
// Returns domain.ErrInvalidBinding (wrapped) when the binding violates
// the strategy's parameter space, and ErrEmptySlice for zero bars.
func (s *Simulator) Run(strat strategy.Strategy, binding domain.ParameterBinding, slice *domain.PriceSeries) (*domain.PerformanceRecord, error) {
	return s.RunFrom(strat, binding, slice, 0)
}

// RunFrom replays the strategy over the whole slice but trades and
// measures performance only from bar index start onward. Bars before
// start are indicator history: the strategy sees them and its state
// advances over them, but they open no positions and contribute
// nothing to equity, returns or drawdown. Out-of-sample evaluation
// passes the train range as history and scores only the test range.
func (s *Simulator) RunFrom(strat strategy.Strategy, binding domain.ParameterBinding, slice *domain.PriceSeries, start int) (*domain.PerformanceRecord, error) {
	if slice == nil || slice.Len() == 0 {
		return nil, ErrEmptySlice
	}
	if start < 0 || start >= slice.Len() {
		return nil, fmt.Errorf("start %d outside slice of %d bars: %w", start, slice.Len(), ErrEmptySlice)
	}
	if err := binding.ValidateAgainst(strat.Space()); err != nil {
		return nil, err
	}

	bars := slice.Bars
	state := strategy.NewState()

	// Equity is tracked in price units against one default-size
	// position of the instrument, starting at the first measured close.
	initialCapital := bars[start].Close * s.defaultSize
	if initialCapital <= 0 {
		return nil, fmt.Errorf("non-positive initial capital from close %v: %w",
			bars[start].Close, ErrEmptySlice)
	}

	var (
		pos        position
		trades     []domain.TradeRecord
		realized   float64
		equity     = make([]float64, len(bars)-start)
		barReturns = make([]float64, 0, len(bars)-start-1)
	)
	pos.side = domain.SideFlat

	for i := range bars {
		bar := bars[i]

		sig, err := strat.Evaluate(bars[:i+1], binding, state)
		if err != nil {
			return nil, fmt.Errorf("evaluate bar %d: %w", i, err)
		}
		if i < start {
			continue
		}

		switch pos.side {
		case domain.SideFlat:
			switch sig.Action {
			case strategy.ActionBuy:
				pos = s.open(domain.SideLong, bar, sig)
			case strategy.ActionSell:
				pos = s.open(domain.SideShort, bar, sig)
			}
		case domain.SideLong:
			if sig.Action == strategy.ActionSell || sig.Action == strategy.ActionExit {
				trade := s.close(pos, bar, domain.ExitReasonSignal)
				trades = append(trades, trade)
				realized += trade.NetPnL
				pos = position{side: domain.SideFlat}
			}
		case domain.SideShort:
			if sig.Action == strategy.ActionBuy || sig.Action == strategy.ActionExit {
				trade := s.close(pos, bar, domain.ExitReasonSignal)
				trades = append(trades, trade)
				realized += trade.NetPnL
				pos = position{side: domain.SideFlat}
			}
		}

		j := i - start
		equity[j] = initialCapital + realized + unrealized(pos, bar.Close)
		if j > 0 && equity[j-1] != 0 {
			barReturns = append(barReturns, equity[j]/equity[j-1]-1)
		}
	}

	// Force-close any open position at the last bar so runs with
	// open-ended positions stay comparable. The last bar return is
	// recomputed so Sharpe and total return see the same equity path.
	if pos.side != domain.SideFlat {
		last := bars[len(bars)-1]
		trade := s.close(pos, last, domain.ExitReasonForced)
		trades = append(trades, trade)
		realized += trade.NetPnL
		j := len(equity) - 1
		equity[j] = initialCapital + realized
		if j > 0 && equity[j-1] != 0 {
			barReturns[len(barReturns)-1] = equity[j]/equity[j-1] - 1
		}
	}

	return buildRecord(trades, equity, barReturns, initialCapital), nil
}

// open creates a position from an entry signal filled at the bar close.
func (s *Simulator) open(side domain.PositionSide, bar domain.Bar, sig strategy.Signal) position {
	size := sig.Size
	if size <= 0 {
		size = s.defaultSize
	}
	return position{
		side:       side,
		entryTime:  bar.TimestampMs,
		entryPrice: bar.Close,
		size:       size,
	}
}

// close fills the position at the bar close and emits a TradeRecord.
func (s *Simulator) close(pos position, bar domain.Bar, reason string) domain.TradeRecord {
	exitPrice := bar.Close

	var gross float64
	switch pos.side {
	case domain.SideLong:
		gross = (exitPrice - pos.entryPrice) * pos.size
	case domain.SideShort:
		gross = (pos.entryPrice - exitPrice) * pos.size
	}

	cost := s.costs.RoundTrip(pos.entryPrice*pos.size, exitPrice*pos.size)

	return domain.TradeRecord{
		Side:       pos.side,
		EntryTime:  pos.entryTime,
		ExitTime:   bar.TimestampMs,
		EntryPrice: pos.entryPrice,
		ExitPrice:  exitPrice,
		Size:       pos.size,
		GrossPnL:   gross,
		Cost:       cost,
		NetPnL:     gross - cost,
		ExitReason: reason,
	}
}

// unrealized returns the mark-to-market P&L of an open position.
func unrealized(pos position, price float64) float64 {
	switch pos.side {
	case domain.SideLong:
		return (price - pos.entryPrice) * pos.size
	case domain.SideShort:
		return (pos.entryPrice - price) * pos.size
	default:
		return 0
	}
}

// buildRecord computes aggregate statistics from the equity curve and
// trade log.
func buildRecord(trades []domain.TradeRecord, equity, barReturns []float64, initialCapital float64) *domain.PerformanceRecord {
	final := equity[len(equity)-1]

	wins := 0
	for _, t := range trades {
		if t.NetPnL > 0 {
			wins++
		}
	}
	winRate := 0.0
	if len(trades) > 0 {
		winRate = float64(wins) / float64(len(trades))
	}

	sharpe := 0.0
	if len(barReturns) >= 2 {
		mean, std := stat.MeanStdDev(barReturns, nil)
		if std > 0 {
			sharpe = mean / std
		}
	}

	return &domain.PerformanceRecord{
		TotalReturn: final/initialCapital - 1,
		MaxDrawdown: maxDrawdown(equity),
		SharpeRatio: sharpe,
		TradeCount:  len(trades),
		WinRate:     winRate,
		Trades:      trades,
		BarReturns:  barReturns,
		FinalEquity: final / initialCapital,
	}
}

// maxDrawdown returns the worst peak-to-trough equity decline as a
// fraction of the peak, always >= 0.
func maxDrawdown(equity []float64) float64 {
	peak := equity[0]
	worst := 0.0
	for _, e := range equity[1:] {
		if e > peak {
			peak = e
			continue
		}
		if peak > 0 {
			dd := (peak - e) / peak
			if dd > worst {
				worst = dd
			}
		}
	}
	return worst
}
