package search

import (
	"math/rand"

	"alpha-search-lab/internal/domain"
)

// maxProposalAttempts bounds how many duplicate draws a stochastic
// sampler tolerates before reporting the space as exhausted.
const maxProposalAttempts = 200

// randomSampler draws each dimension independently and uniformly.
type randomSampler struct {
	space domain.ParameterSpace
	rng   *rand.Rand
}

var _ Sampler = (*randomSampler)(nil)

func newRandomSampler(space domain.ParameterSpace, seed int64) *randomSampler {
	return &randomSampler{
		space: space,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

func (s *randomSampler) Name() string { return SamplerRandom }

func (s *randomSampler) Propose(visited map[string]struct{}) (domain.ParameterBinding, bool) {
	for attempt := 0; attempt < maxProposalAttempts; attempt++ {
		binding := drawUniform(s.space, s.rng)
		if _, seen := visited[binding.Key()]; !seen {
			return binding, true
		}
	}
	return nil, false
}

func (s *randomSampler) Observe(*domain.TrialResult) {}

// drawUniform samples one value per dimension.
func drawUniform(space domain.ParameterSpace, rng *rand.Rand) domain.ParameterBinding {
	binding := make(domain.ParameterBinding, len(space))
	for _, dim := range space {
		switch dim.Kind {
		case domain.KindInteger:
			lo := int64(dim.Low)
			hi := int64(dim.High)
			binding[dim.Name] = lo + rng.Int63n(hi-lo+1)
		case domain.KindContinuous:
			binding[dim.Name] = dim.Low + rng.Float64()*(dim.High-dim.Low)
		case domain.KindCategorical:
			binding[dim.Name] = dim.Choices[rng.Intn(len(dim.Choices))]
		}
	}
	return binding
}
