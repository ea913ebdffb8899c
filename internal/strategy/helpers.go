package strategy

import (
	"github.com/markcheno/go-talib"

	"alpha-search-lab/internal/domain"
)

// lastSMA returns the simple moving average of the final period closes,
// or false when history is shorter than the period.
func lastSMA(history []domain.Bar, period int) (float64, bool) {
	if period <= 0 || len(history) < period {
		return 0, false
	}
	closes := closesOf(history)
	out := talib.Sma(closes, period)
	v := out[len(out)-1]
	if isNaN(v) {
		return 0, false
	}
	return v, true
}

// lastEMA returns the exponential moving average of the closes at the
// final bar, or false when history is shorter than the period.
func lastEMA(history []domain.Bar, period int) (float64, bool) {
	if period <= 0 || len(history) < period {
		return 0, false
	}
	closes := closesOf(history)
	out := talib.Ema(closes, period)
	v := out[len(out)-1]
	if isNaN(v) {
		return 0, false
	}
	return v, true
}

// channelHighLow returns the highest high and lowest low over the
// lookback bars preceding the current (last) bar.
func channelHighLow(history []domain.Bar, lookback int) (high, low float64, ok bool) {
	// Exclude the current bar so a breakout compares against prior bars only.
	if lookback <= 0 || len(history) < lookback+1 {
		return 0, 0, false
	}
	start := len(history) - 1 - lookback
	window := history[start : len(history)-1]
	high = window[0].High
	low = window[0].Low
	for _, b := range window[1:] {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	return high, low, true
}

// closesOf extracts close prices from bars.
func closesOf(history []domain.Bar) []float64 {
	closes := make([]float64, len(history))
	for i, b := range history {
		closes[i] = b.Close
	}
	return closes
}

// isNaN checks if a float64 is NaN.
func isNaN(f float64) bool {
	return f != f
}
