package strategy

import (
	"errors"
	"sort"
)

// Registry errors.
var (
	ErrUnknownStrategy = errors.New("unknown strategy family")
)

// builtins maps family names to constructors. Families register here
// rather than through a class hierarchy, so arbitrary templates can be
// added without touching the engine.
var builtins = map[string]func() Strategy{
	"sma_cross": func() Strategy { return NewSMACrossStrategy() },
	"ema_cross": func() Strategy { return NewEMACrossStrategy() },
	"breakout":  func() Strategy { return NewBreakoutStrategy() },
}

// FromName creates a Strategy for the given family name.
// Returns ErrUnknownStrategy for unregistered names.
func FromName(name string) (Strategy, error) {
	ctor, ok := builtins[name]
	if !ok {
		return nil, ErrUnknownStrategy
	}
	return ctor(), nil
}

// Names returns all registered family names, sorted.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds a strategy family constructor. Later registrations
// with the same name replace earlier ones.
func Register(name string, ctor func() Strategy) {
	builtins[name] = ctor
}
