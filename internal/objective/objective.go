// Package objective maps performance records to fitness values used
// to rank parameter-search trials.
package objective

import (
	"errors"
	"math"

	"alpha-search-lab/internal/domain"
)

// Objective errors.
var (
	ErrUnknownObjective = errors.New("unknown objective name")
)

// SentinelScore is the defined minimum returned for degenerate
// records (zero trades), so ranking stays a total order instead of
// producing NaN. A sentinel-scored binding only becomes the reported
// best when every binding in the run scores the sentinel.
const SentinelScore = -math.MaxFloat64

// minDrawdownFloor bounds the drawdown divisor away from zero for
// return/drawdown style objectives.
const minDrawdownFloor = 1e-4

// Objective scores a performance record. Implementations must be pure
// functions of the record's fields.
type Objective interface {
	// Name returns the objective identifier, e.g. "return_over_drawdown".
	Name() string

	// Score maps the record to a scalar fitness value. Higher is better.
	Score(rec *domain.PerformanceRecord) float64
}

// FromName creates an Objective by identifier.
// Returns ErrUnknownObjective for unregistered names.
func FromName(name string) (Objective, error) {
	switch name {
	case "return_over_drawdown", "":
		return ReturnOverDrawdown{}, nil
	case "sharpe":
		return Sharpe{}, nil
	case "total_return":
		return TotalReturn{}, nil
	default:
		return nil, ErrUnknownObjective
	}
}

// ReturnOverDrawdown is the default objective: total return divided by
// max drawdown, with the drawdown floored to keep the ratio finite.
type ReturnOverDrawdown struct{}

// Name returns the objective identifier.
func (ReturnOverDrawdown) Name() string { return "return_over_drawdown" }

// Score returns TotalReturn / max(MaxDrawdown, floor), or the sentinel
// minimum for zero-trade records.
func (ReturnOverDrawdown) Score(rec *domain.PerformanceRecord) float64 {
	if rec == nil || rec.TradeCount == 0 {
		return SentinelScore
	}
	dd := rec.MaxDrawdown
	if dd < minDrawdownFloor {
		dd = minDrawdownFloor
	}
	return rec.TotalReturn / dd
}

// Sharpe scores by the record's Sharpe-like ratio.
type Sharpe struct{}

// Name returns the objective identifier.
func (Sharpe) Name() string { return "sharpe" }

// Score returns the Sharpe ratio, or the sentinel minimum for
// zero-trade records.
func (Sharpe) Score(rec *domain.PerformanceRecord) float64 {
	if rec == nil || rec.TradeCount == 0 {
		return SentinelScore
	}
	return rec.SharpeRatio
}

// TotalReturn scores by raw compounded return.
type TotalReturn struct{}

// Name returns the objective identifier.
func (TotalReturn) Name() string { return "total_return" }

// Score returns the total return, or the sentinel minimum for
// zero-trade records.
func (TotalReturn) Score(rec *domain.PerformanceRecord) float64 {
	if rec == nil || rec.TradeCount == 0 {
		return SentinelScore
	}
	return rec.TotalReturn
}

// Compile-time interface checks.
var (
	_ Objective = ReturnOverDrawdown{}
	_ Objective = Sharpe{}
	_ Objective = TotalReturn{}
)
