package search

import (
	"math/rand"

	"alpha-search-lab/internal/domain"
)

const (
	// guidedWarmupTrials is how many uniform draws precede exploitation.
	guidedWarmupTrials = 10

	// guidedExploreRate is the fraction of post-warmup proposals that
	// fall back to a uniform draw instead of mutating the incumbent.
	guidedExploreRate = 0.2

	// guidedMutateScale is the neighborhood width for numeric mutation,
	// as a fraction of the dimension's range.
	guidedMutateScale = 0.15
)

// guidedSampler balances exploration and exploitation. It starts with
// uniform draws, then mutates the best observed binding one dimension
// at a time, with an epsilon chance of a fresh uniform draw.
//
// Proposals depend on the order observations arrive, so guided runs are
// reproducible only with a single worker.
type guidedSampler struct {
	space    domain.ParameterSpace
	rng      *rand.Rand
	observed int
	best     domain.ParameterBinding
	bestVal  float64
	haveBest bool
}

var _ Sampler = (*guidedSampler)(nil)

func newGuidedSampler(space domain.ParameterSpace, seed int64) *guidedSampler {
	return &guidedSampler{
		space: space,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

func (s *guidedSampler) Name() string { return SamplerGuided }

func (s *guidedSampler) Propose(visited map[string]struct{}) (domain.ParameterBinding, bool) {
	for attempt := 0; attempt < maxProposalAttempts; attempt++ {
		var binding domain.ParameterBinding
		if s.observed < guidedWarmupTrials || !s.haveBest || s.rng.Float64() < guidedExploreRate {
			binding = drawUniform(s.space, s.rng)
		} else {
			binding = s.mutateBest()
		}
		if _, seen := visited[binding.Key()]; !seen {
			return binding, true
		}
	}
	return nil, false
}

func (s *guidedSampler) Observe(trial *domain.TrialResult) {
	s.observed++
	if trial.Status != domain.TrialStatusOK {
		return
	}
	if !s.haveBest || trial.Score > s.bestVal {
		s.best = trial.Binding.Clone()
		s.bestVal = trial.Score
		s.haveBest = true
	}
}

// mutateBest perturbs one randomly chosen dimension of the incumbent.
func (s *guidedSampler) mutateBest() domain.ParameterBinding {
	binding := s.best.Clone()
	dim := s.space[s.rng.Intn(len(s.space))]

	switch dim.Kind {
	case domain.KindInteger:
		span := int64((dim.High - dim.Low) * guidedMutateScale)
		if span < 1 {
			span = 1
		}
		v := binding.Int(dim.Name) + s.rng.Int63n(2*span+1) - span
		if v < int64(dim.Low) {
			v = int64(dim.Low)
		}
		if v > int64(dim.High) {
			v = int64(dim.High)
		}
		binding[dim.Name] = v
	case domain.KindContinuous:
		span := (dim.High - dim.Low) * guidedMutateScale
		v := binding.Float(dim.Name) + (s.rng.Float64()*2-1)*span
		if v < dim.Low {
			v = dim.Low
		}
		if v > dim.High {
			v = dim.High
		}
		binding[dim.Name] = v
	case domain.KindCategorical:
		binding[dim.Name] = dim.Choices[s.rng.Intn(len(dim.Choices))]
	}
	return binding
}
