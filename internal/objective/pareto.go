package objective

import (
	"sort"

	"alpha-search-lab/internal/domain"
)

// Vector is a small fixed-size fitness vector for multi-objective
// ranking. All components are maximized.
type Vector []float64

// VectorOf builds the standard multi-objective vector from a record:
// (total return, -max drawdown, sharpe). Zero-trade records map to a
// sentinel vector so they rank below everything with trades.
func VectorOf(rec *domain.PerformanceRecord) Vector {
	if rec == nil || rec.TradeCount == 0 {
		return Vector{SentinelScore, SentinelScore, SentinelScore}
	}
	return Vector{rec.TotalReturn, -rec.MaxDrawdown, rec.SharpeRatio}
}

// Dominates reports whether a Pareto-dominates b: a is at least as
// good in every component and strictly better in at least one.
func (a Vector) Dominates(b Vector) bool {
	if len(a) != len(b) {
		return false
	}
	strict := false
	for i := range a {
		if a[i] < b[i] {
			return false
		}
		if a[i] > b[i] {
			strict = true
		}
	}
	return strict
}

// Candidate pairs a fitness vector with its dispatch sequence number
// and a primary metric used for in-front tie-breaking.
type Candidate struct {
	Seq     int64
	Primary float64
	Vector  Vector
}

// ParetoRank assigns each candidate its non-domination front index
// (0 = non-dominated). Returned slice is parallel to cands.
func ParetoRank(cands []Candidate) []int {
	n := len(cands)
	ranks := make([]int, n)
	assigned := make([]bool, n)
	remaining := n
	front := 0

	for remaining > 0 {
		// A candidate joins the current front when no unassigned
		// candidate dominates it.
		inFront := make([]int, 0)
		for i := 0; i < n; i++ {
			if assigned[i] {
				continue
			}
			dominated := false
			for j := 0; j < n; j++ {
				if i == j || assigned[j] {
					continue
				}
				if cands[j].Vector.Dominates(cands[i].Vector) {
					dominated = true
					break
				}
			}
			if !dominated {
				inFront = append(inFront, i)
			}
		}
		for _, i := range inFront {
			ranks[i] = front
			assigned[i] = true
			remaining--
		}
		front++
	}
	return ranks
}

// SortByDominance orders candidate indices best-first: by Pareto front,
// then by primary metric descending, then by sequence number ascending
// (earliest wins) for full determinism.
func SortByDominance(cands []Candidate) []int {
	ranks := ParetoRank(cands)
	order := make([]int, len(cands))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		i, j := order[x], order[y]
		if ranks[i] != ranks[j] {
			return ranks[i] < ranks[j]
		}
		if cands[i].Primary != cands[j].Primary {
			return cands[i].Primary > cands[j].Primary
		}
		return cands[i].Seq < cands[j].Seq
	})
	return order
}
