package domain

import (
	"errors"
	"testing"
)

// Helper to create a series with sequential closes.
func makeSeries(closes []float64) *PriceSeries {
	bars := make([]Bar, len(closes))
	for i, c := range closes {
		bars[i] = Bar{
			TimestampMs: int64(1700000000000 + i*60000),
			Open:        c,
			High:        c * 1.01,
			Low:         c * 0.99,
			Close:       c,
			Volume:      100,
		}
	}
	return &PriceSeries{Symbol: "TEST", Interval: "1m", Bars: bars}
}

func TestPriceSeries_Validate_Empty(t *testing.T) {
	s := &PriceSeries{Symbol: "TEST", Interval: "1d"}
	if err := s.Validate(); !errors.Is(err, ErrEmptySeries) {
		t.Errorf("expected ErrEmptySeries, got %v", err)
	}
}

func TestPriceSeries_Validate_Unordered(t *testing.T) {
	s := makeSeries([]float64{1, 2, 3})
	s.Bars[2].TimestampMs = s.Bars[1].TimestampMs // duplicate

	if err := s.Validate(); !errors.Is(err, ErrUnorderedSeries) {
		t.Errorf("expected ErrUnorderedSeries for duplicate timestamp, got %v", err)
	}

	s.Bars[2].TimestampMs = s.Bars[0].TimestampMs - 1 // out of order
	if err := s.Validate(); !errors.Is(err, ErrUnorderedSeries) {
		t.Errorf("expected ErrUnorderedSeries for decreasing timestamp, got %v", err)
	}
}

func TestPriceSeries_Validate_OK(t *testing.T) {
	s := makeSeries([]float64{1, 2, 3, 4})
	if err := s.Validate(); err != nil {
		t.Errorf("expected valid series, got %v", err)
	}
}

func TestPriceSeries_Slice_HalfOpen(t *testing.T) {
	s := makeSeries([]float64{10, 20, 30, 40, 50})

	sub, err := s.Slice(1, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Len() != 3 {
		t.Errorf("expected 3 bars, got %d", sub.Len())
	}
	if sub.Bars[0].Close != 20 || sub.Bars[2].Close != 40 {
		t.Errorf("expected closes [20..40], got first %v last %v", sub.Bars[0].Close, sub.Bars[2].Close)
	}
	if sub.Symbol != s.Symbol || sub.Interval != s.Interval {
		t.Errorf("slice did not carry symbol/interval")
	}
}

func TestPriceSeries_Slice_InvalidBounds(t *testing.T) {
	s := makeSeries([]float64{1, 2, 3})

	cases := []struct{ from, to int }{
		{-1, 2},
		{0, 4},
		{2, 2},
		{3, 2},
	}
	for _, c := range cases {
		if _, err := s.Slice(c.from, c.to); !errors.Is(err, ErrInvalidSliceBounds) {
			t.Errorf("Slice(%d, %d): expected ErrInvalidSliceBounds, got %v", c.from, c.to, err)
		}
	}
}

func TestPriceSeries_Closes(t *testing.T) {
	s := makeSeries([]float64{1.5, 2.5, 3.5})
	closes := s.Closes()
	if len(closes) != 3 || closes[0] != 1.5 || closes[2] != 3.5 {
		t.Errorf("unexpected closes: %v", closes)
	}
}

func TestPriceSeries_Timestamps(t *testing.T) {
	s := makeSeries([]float64{1, 2})
	if s.FirstTimestamp() != s.Bars[0].TimestampMs {
		t.Errorf("unexpected first timestamp")
	}
	if s.LastTimestamp() != s.Bars[1].TimestampMs {
		t.Errorf("unexpected last timestamp")
	}

	empty := &PriceSeries{}
	if empty.FirstTimestamp() != 0 || empty.LastTimestamp() != 0 {
		t.Errorf("expected zero timestamps for empty series")
	}
}
