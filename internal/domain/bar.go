package domain

import "errors"

// Price series validation errors.
var (
	ErrEmptySeries        = errors.New("price series has no bars")
	ErrUnorderedSeries    = errors.New("price series timestamps are not strictly increasing")
	ErrInvalidSliceBounds = errors.New("invalid slice bounds for price series")
)

// Bar represents one OHLCV observation for a fixed interval.
// Timestamps are Unix milliseconds (UTC).
type Bar struct {
	TimestampMs int64   // bar open time, Unix ms
	Open        float64 // first traded price in interval
	High        float64 // highest traded price
	Low         float64 // lowest traded price
	Close       float64 // last traded price
	Volume      float64 // traded volume in interval
}

// PriceSeries is an ordered sequence of bars for one instrument.
// Bars are strictly ordered by timestamp with no duplicates. Gaps are
// tolerated and never interpolated.
type PriceSeries struct {
	Symbol   string
	Interval string // bar interval label: "1d", "1h", "5m"
	Bars     []Bar
}

// Validate checks the series ordering invariant.
// Returns ErrEmptySeries for zero bars and ErrUnorderedSeries when
// timestamps are not strictly increasing.
func (s *PriceSeries) Validate() error {
	if len(s.Bars) == 0 {
		return ErrEmptySeries
	}
	for i := 1; i < len(s.Bars); i++ {
		if s.Bars[i].TimestampMs <= s.Bars[i-1].TimestampMs {
			return ErrUnorderedSeries
		}
	}
	return nil
}

// Len returns the number of bars.
func (s *PriceSeries) Len() int {
	return len(s.Bars)
}

// Slice returns a sub-series over bar indices [from, to).
// The returned series shares the underlying bar storage; bars are
// treated as immutable everywhere downstream.
func (s *PriceSeries) Slice(from, to int) (*PriceSeries, error) {
	if from < 0 || to > len(s.Bars) || from >= to {
		return nil, ErrInvalidSliceBounds
	}
	return &PriceSeries{
		Symbol:   s.Symbol,
		Interval: s.Interval,
		Bars:     s.Bars[from:to],
	}, nil
}

// Closes returns the close prices of all bars in order.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// FirstTimestamp returns the timestamp of the first bar, or 0 for an
// empty series.
func (s *PriceSeries) FirstTimestamp() int64 {
	if len(s.Bars) == 0 {
		return 0
	}
	return s.Bars[0].TimestampMs
}

// LastTimestamp returns the timestamp of the last bar, or 0 for an
// empty series.
func (s *PriceSeries) LastTimestamp() int64 {
	if len(s.Bars) == 0 {
		return 0
	}
	return s.Bars[len(s.Bars)-1].TimestampMs
}
