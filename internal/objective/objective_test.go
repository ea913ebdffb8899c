package objective

import (
	"errors"
	"math"
	"testing"

	"alpha-search-lab/internal/domain"
)

func record(totalReturn, maxDD, sharpe float64, trades int) *domain.PerformanceRecord {
	return &domain.PerformanceRecord{
		TotalReturn: totalReturn,
		MaxDrawdown: maxDD,
		SharpeRatio: sharpe,
		TradeCount:  trades,
	}
}

func TestFromName(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"return_over_drawdown", "return_over_drawdown"},
		{"", "return_over_drawdown"},
		{"sharpe", "sharpe"},
		{"total_return", "total_return"},
	}
	for _, tc := range cases {
		obj, err := FromName(tc.name)
		if err != nil {
			t.Fatalf("FromName(%q): %v", tc.name, err)
		}
		if obj.Name() != tc.want {
			t.Errorf("FromName(%q).Name() = %q, want %q", tc.name, obj.Name(), tc.want)
		}
	}

	if _, err := FromName("bogus"); !errors.Is(err, ErrUnknownObjective) {
		t.Errorf("expected ErrUnknownObjective, got %v", err)
	}
}

func TestReturnOverDrawdown(t *testing.T) {
	obj := ReturnOverDrawdown{}

	if got := obj.Score(record(0.2, 0.1, 0, 5)); got != 2.0 {
		t.Errorf("expected 2.0, got %v", got)
	}

	// Drawdown below the floor gets clamped, keeping the ratio finite.
	got := obj.Score(record(0.2, 0, 0, 5))
	if math.IsInf(got, 0) || math.IsNaN(got) {
		t.Errorf("expected finite score for zero drawdown, got %v", got)
	}

	if got := obj.Score(record(0.5, 0.1, 0, 0)); got != SentinelScore {
		t.Errorf("zero trades: expected sentinel, got %v", got)
	}
	if got := obj.Score(nil); got != SentinelScore {
		t.Errorf("nil record: expected sentinel, got %v", got)
	}
}

func TestSharpeAndTotalReturn(t *testing.T) {
	rec := record(0.3, 0.2, 1.5, 4)

	if got := (Sharpe{}).Score(rec); got != 1.5 {
		t.Errorf("sharpe: expected 1.5, got %v", got)
	}
	if got := (TotalReturn{}).Score(rec); got != 0.3 {
		t.Errorf("total return: expected 0.3, got %v", got)
	}
	if got := (Sharpe{}).Score(record(0, 0, 2, 0)); got != SentinelScore {
		t.Errorf("sharpe zero trades: expected sentinel, got %v", got)
	}
	if got := (TotalReturn{}).Score(record(1, 0, 0, 0)); got != SentinelScore {
		t.Errorf("total return zero trades: expected sentinel, got %v", got)
	}
}

func TestAggregate_Mean(t *testing.T) {
	got, err := Aggregate([]float64{1, 2, 3}, nil, AggregateMean)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 2 {
		t.Errorf("expected mean 2, got %v", got)
	}

	// Empty policy defaults to mean.
	got, err = Aggregate([]float64{4, 6}, nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 5 {
		t.Errorf("expected mean 5, got %v", got)
	}
}

func TestAggregate_Worst(t *testing.T) {
	got, err := Aggregate([]float64{3, -1, 2}, nil, AggregateWorst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != -1 {
		t.Errorf("expected worst -1, got %v", got)
	}
}

func TestAggregate_Weighted(t *testing.T) {
	got, err := Aggregate([]float64{1, 3}, []float64{3, 1}, AggregateWeighted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1.5 {
		t.Errorf("expected weighted mean 1.5, got %v", got)
	}

	if _, err := Aggregate([]float64{1, 2}, []float64{1}, AggregateWeighted); !errors.Is(err, ErrWeightsMismatch) {
		t.Errorf("expected ErrWeightsMismatch, got %v", err)
	}
	if _, err := Aggregate([]float64{1, 2}, []float64{0, 0}, AggregateWeighted); !errors.Is(err, ErrNonPositiveSum) {
		t.Errorf("expected ErrNonPositiveSum, got %v", err)
	}
}

func TestAggregate_SentinelPropagates(t *testing.T) {
	for _, policy := range []AggregationPolicy{AggregateMean, AggregateWorst} {
		got, err := Aggregate([]float64{10, SentinelScore, 20}, nil, policy)
		if err != nil {
			t.Fatalf("policy %s: %v", policy, err)
		}
		if got != SentinelScore {
			t.Errorf("policy %s: sentinel must propagate, got %v", policy, got)
		}
	}
}

func TestAggregate_Errors(t *testing.T) {
	if _, err := Aggregate(nil, nil, AggregateMean); !errors.Is(err, ErrNoScores) {
		t.Errorf("expected ErrNoScores, got %v", err)
	}
	if _, err := Aggregate([]float64{1}, nil, "median"); !errors.Is(err, ErrUnknownPolicy) {
		t.Errorf("expected ErrUnknownPolicy, got %v", err)
	}
}

func TestVectorDominates(t *testing.T) {
	a := Vector{1, 1, 1}
	b := Vector{0, 1, 1}

	if !a.Dominates(b) {
		t.Errorf("a should dominate b")
	}
	if b.Dominates(a) {
		t.Errorf("b must not dominate a")
	}
	if a.Dominates(a) {
		t.Errorf("equal vectors must not dominate each other")
	}
	if a.Dominates(Vector{1, 1}) {
		t.Errorf("mismatched lengths must not dominate")
	}
	// Trade-off vectors are mutually non-dominated.
	c := Vector{2, 0, 1}
	if a.Dominates(c) || c.Dominates(a) {
		t.Errorf("trade-off vectors must be mutually non-dominated")
	}
}

func TestVectorOf(t *testing.T) {
	v := VectorOf(record(0.2, 0.1, 1.5, 3))
	want := Vector{0.2, -0.1, 1.5}
	if len(v) != 3 || v[0] != want[0] || v[1] != want[1] || v[2] != want[2] {
		t.Errorf("got %v, want %v", v, want)
	}

	s := VectorOf(record(1, 0, 0, 0))
	for i, c := range s {
		if c != SentinelScore {
			t.Errorf("component %d: zero-trade vector must be sentinel, got %v", i, c)
		}
	}
}

func TestParetoRank(t *testing.T) {
	cands := []Candidate{
		{Seq: 0, Vector: Vector{1, 1}},  // dominated by seq 1
		{Seq: 1, Vector: Vector{2, 2}},  // front 0
		{Seq: 2, Vector: Vector{3, 0}},  // front 0, trade-off with seq 1
		{Seq: 3, Vector: Vector{0, 0}},  // dominated by everything
	}
	ranks := ParetoRank(cands)

	want := []int{1, 0, 0, 2}
	for i := range want {
		if ranks[i] != want[i] {
			t.Errorf("candidate %d: rank %d, want %d", i, ranks[i], want[i])
		}
	}
}

func TestSortByDominance(t *testing.T) {
	cands := []Candidate{
		{Seq: 0, Primary: 1.0, Vector: Vector{1, 1}},
		{Seq: 1, Primary: 5.0, Vector: Vector{2, 2}},
		{Seq: 2, Primary: 3.0, Vector: Vector{3, 0}},
		{Seq: 3, Primary: 5.0, Vector: Vector{0, 3}},
	}
	order := SortByDominance(cands)

	// Front 0 is {1, 2, 3}; within the front primary desc, then seq asc.
	want := []int{1, 3, 2, 0}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order %v, want %v", order, want)
		}
	}

	// Deterministic across repeated calls.
	for i := 0; i < 5; i++ {
		again := SortByDominance(cands)
		for j := range order {
			if again[j] != order[j] {
				t.Fatalf("ordering not deterministic: %v vs %v", again, order)
			}
		}
	}
}
