package strategy

import (
	"errors"

	"alpha-search-lab/internal/domain"
)

// Evaluation errors.
var (
	ErrNoHistory = errors.New("strategy evaluated with empty bar history")
)

// Action represents a trading decision for the current bar.
type Action string

// Action constants.
const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
	ActionExit Action = "EXIT"
)

// Signal is the output of one strategy evaluation.
// Size is optional position sizing in units; 0 means the simulator's
// default size.
type Signal struct {
	Action Action
	Size   float64
	Reason string
}

// State carries strategy-internal values across evaluations of one
// simulator run. Strategies are stateless except through this object,
// so replay is deterministic. It is never shared between runs.
type State struct {
	values map[string]float64
}

// NewState creates an empty strategy state.
func NewState() *State {
	return &State{values: make(map[string]float64)}
}

// Get returns a stored value and whether it was present.
func (s *State) Get(key string) (float64, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Set stores a value under key.
func (s *State) Set(key string, v float64) {
	s.values[key] = v
}

// Strategy is the pluggable evaluation rule of one strategy family.
// Evaluate receives the bar history up to and including the current
// bar (never future bars), the parameter binding, and the explicit
// per-run state. It must be a pure function of those inputs.
type Strategy interface {
	// Name returns the strategy family name, e.g. "sma_cross".
	Name() string

	// Space returns the tunable parameter space of the family.
	Space() domain.ParameterSpace

	// Evaluate produces a trading signal for the last bar of history.
	Evaluate(history []domain.Bar, binding domain.ParameterBinding, state *State) (Signal, error)
}

// hold is the no-op signal.
func hold() Signal {
	return Signal{Action: ActionHold}
}
