package search

import (
	"fmt"

	"alpha-search-lab/internal/domain"
)

// defaultGridPoints is the discretization used for continuous
// dimensions when the config does not set one.
const defaultGridPoints = 10

// gridSampler enumerates the full cartesian product of the space.
// Integer dimensions step by 1, continuous dimensions are discretized
// to a fixed number of evenly spaced points, categorical dimensions
// use every choice. Enumeration order is deterministic: the first
// dimension varies slowest.
type gridSampler struct {
	space  domain.ParameterSpace
	values [][]any
	cursor []int
	done   bool
}

var _ Sampler = (*gridSampler)(nil)

func newGridSampler(space domain.ParameterSpace, gridPoints int) (*gridSampler, error) {
	if gridPoints <= 0 {
		gridPoints = defaultGridPoints
	}

	values := make([][]any, len(space))
	for i, dim := range space {
		vals, err := gridValues(dim, gridPoints)
		if err != nil {
			return nil, err
		}
		values[i] = vals
	}

	return &gridSampler{
		space:  space,
		values: values,
		cursor: make([]int, len(space)),
	}, nil
}

func (s *gridSampler) Name() string { return SamplerGrid }

func (s *gridSampler) Propose(visited map[string]struct{}) (domain.ParameterBinding, bool) {
	for !s.done {
		binding := make(domain.ParameterBinding, len(s.space))
		for i, dim := range s.space {
			binding[dim.Name] = s.values[i][s.cursor[i]]
		}
		s.advance()
		if _, seen := visited[binding.Key()]; !seen {
			return binding, true
		}
	}
	return nil, false
}

func (s *gridSampler) Observe(*domain.TrialResult) {}

// advance increments the cursor like an odometer, last dimension fastest.
func (s *gridSampler) advance() {
	for i := len(s.cursor) - 1; i >= 0; i-- {
		s.cursor[i]++
		if s.cursor[i] < len(s.values[i]) {
			return
		}
		s.cursor[i] = 0
	}
	s.done = true
}

// gridValues expands one dimension into its enumerable values.
func gridValues(dim domain.ParameterDimension, gridPoints int) ([]any, error) {
	switch dim.Kind {
	case domain.KindInteger:
		lo := int64(dim.Low)
		hi := int64(dim.High)
		vals := make([]any, 0, hi-lo+1)
		for v := lo; v <= hi; v++ {
			vals = append(vals, v)
		}
		return vals, nil
	case domain.KindContinuous:
		if gridPoints == 1 {
			return []any{dim.Low}, nil
		}
		step := (dim.High - dim.Low) / float64(gridPoints-1)
		vals := make([]any, 0, gridPoints)
		for i := 0; i < gridPoints; i++ {
			vals = append(vals, dim.Low+float64(i)*step)
		}
		return vals, nil
	case domain.KindCategorical:
		vals := make([]any, 0, len(dim.Choices))
		for _, c := range dim.Choices {
			vals = append(vals, c)
		}
		return vals, nil
	default:
		return nil, fmt.Errorf("dimension %q kind %q: %w", dim.Name, dim.Kind, domain.ErrUnknownKind)
	}
}
