package search

import (
	"errors"
	"fmt"

	"alpha-search-lab/internal/domain"
)

var (
	// ErrUnknownSampler is returned when a sampler name is not registered.
	ErrUnknownSampler = errors.New("unknown sampler")
)

// Sampler names accepted by NewSampler.
const (
	SamplerRandom = "random"
	SamplerGrid   = "grid"
	SamplerGuided = "guided"
)

// Sampler proposes parameter bindings for the controller to evaluate.
// Implementations are NOT safe for concurrent use; the controller calls
// Propose and Observe under its own lock.
type Sampler interface {
	// Name returns the sampler's registered name.
	Name() string

	// Propose returns the next candidate binding. The visited set holds
	// canonical keys of bindings already dispatched; implementations must
	// not return a binding whose key is in the set. ok=false means the
	// sampler cannot produce another unvisited binding.
	Propose(visited map[string]struct{}) (binding domain.ParameterBinding, ok bool)

	// Observe feeds a completed trial back into the sampler. Policies
	// that do not learn from history ignore it.
	Observe(trial *domain.TrialResult)
}

// NewSampler creates a sampler by name over the given space.
// The seed makes random and guided proposals reproducible.
func NewSampler(name string, space domain.ParameterSpace, seed int64, gridPoints int) (Sampler, error) {
	switch name {
	case SamplerRandom:
		return newRandomSampler(space, seed), nil
	case SamplerGrid:
		return newGridSampler(space, gridPoints)
	case SamplerGuided:
		return newGuidedSampler(space, seed), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSampler, name)
	}
}
