package domain

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Parameter space validation errors.
var (
	ErrEmptySpace         = errors.New("parameter space has no dimensions")
	ErrDuplicateDimension = errors.New("duplicate dimension name in parameter space")
	ErrInvalidBounds      = errors.New("dimension bounds: low must be <= high")
	ErrEmptyChoices       = errors.New("categorical dimension has no choices")
	ErrUnknownKind        = errors.New("unknown dimension kind")
	ErrInvalidBinding     = errors.New("binding does not satisfy parameter space")
)

// DimensionKind classifies a tunable parameter dimension.
type DimensionKind string

// Dimension kind constants.
const (
	KindContinuous  DimensionKind = "continuous"
	KindInteger     DimensionKind = "integer"
	KindCategorical DimensionKind = "categorical"
)

// ParameterDimension describes one tunable dimension of a strategy.
// Continuous and integer kinds use [Low, High] bounds; categorical uses
// the Choices set.
type ParameterDimension struct {
	Name    string        `yaml:"name"`
	Kind    DimensionKind `yaml:"kind"`
	Low     float64       `yaml:"low"`
	High    float64       `yaml:"high"`
	Choices []string      `yaml:"choices"`
}

// Validate checks the dimension's internal consistency.
func (d *ParameterDimension) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("dimension name is empty: %w", ErrInvalidBounds)
	}
	switch d.Kind {
	case KindContinuous, KindInteger:
		if d.Low > d.High {
			return fmt.Errorf("dimension %q: %w", d.Name, ErrInvalidBounds)
		}
	case KindCategorical:
		if len(d.Choices) == 0 {
			return fmt.Errorf("dimension %q: %w", d.Name, ErrEmptyChoices)
		}
	default:
		return fmt.Errorf("dimension %q kind %q: %w", d.Name, d.Kind, ErrUnknownKind)
	}
	return nil
}

// Contains reports whether a concrete value satisfies the dimension.
func (d *ParameterDimension) Contains(value any) bool {
	switch d.Kind {
	case KindContinuous:
		f, ok := value.(float64)
		return ok && !math.IsNaN(f) && f >= d.Low && f <= d.High
	case KindInteger:
		i, ok := value.(int64)
		return ok && float64(i) >= d.Low && float64(i) <= d.High
	case KindCategorical:
		s, ok := value.(string)
		if !ok {
			return false
		}
		for _, c := range d.Choices {
			if c == s {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// ParameterSpace is the ordered set of dimensions a strategy exposes.
// Dimension names are unique.
type ParameterSpace []ParameterDimension

// Validate checks every dimension and name uniqueness.
func (sp ParameterSpace) Validate() error {
	if len(sp) == 0 {
		return ErrEmptySpace
	}
	seen := make(map[string]struct{}, len(sp))
	for i := range sp {
		if err := sp[i].Validate(); err != nil {
			return err
		}
		if _, dup := seen[sp[i].Name]; dup {
			return fmt.Errorf("dimension %q: %w", sp[i].Name, ErrDuplicateDimension)
		}
		seen[sp[i].Name] = struct{}{}
	}
	return nil
}

// Dimension returns the dimension with the given name, or nil.
func (sp ParameterSpace) Dimension(name string) *ParameterDimension {
	for i := range sp {
		if sp[i].Name == name {
			return &sp[i]
		}
	}
	return nil
}

// ParameterBinding maps dimension names to concrete values.
// Values are float64 (continuous), int64 (integer) or string (categorical).
// A binding is immutable once created by the search controller.
type ParameterBinding map[string]any

// Clone returns a copy of the binding.
func (b ParameterBinding) Clone() ParameterBinding {
	clone := make(ParameterBinding, len(b))
	for k, v := range b {
		clone[k] = v
	}
	return clone
}

// Int returns the int64 value of an integer dimension, or 0 if absent.
func (b ParameterBinding) Int(name string) int64 {
	v, _ := b[name].(int64)
	return v
}

// Float returns the float64 value of a continuous dimension, or 0 if absent.
func (b ParameterBinding) Float(name string) float64 {
	v, _ := b[name].(float64)
	return v
}

// Choice returns the string value of a categorical dimension, or "" if absent.
func (b ParameterBinding) Choice(name string) string {
	v, _ := b[name].(string)
	return v
}

// ValidateAgainst checks the binding covers every dimension of the space
// with an in-bounds value and carries no extra keys.
// Returns ErrInvalidBinding on any violation.
func (b ParameterBinding) ValidateAgainst(sp ParameterSpace) error {
	if len(b) != len(sp) {
		return fmt.Errorf("binding has %d values, space has %d dimensions: %w",
			len(b), len(sp), ErrInvalidBinding)
	}
	for i := range sp {
		v, ok := b[sp[i].Name]
		if !ok {
			return fmt.Errorf("binding missing dimension %q: %w", sp[i].Name, ErrInvalidBinding)
		}
		if !sp[i].Contains(v) {
			return fmt.Errorf("binding value %v out of bounds for dimension %q: %w",
				v, sp[i].Name, ErrInvalidBinding)
		}
	}
	return nil
}

// Key returns a canonical string form of the binding, used for the
// visited-binding set and for deterministic trial IDs. Dimension names
// are sorted so equal bindings always produce equal keys.
func (b ParameterBinding) Key() string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(b))
	for _, name := range names {
		switch v := b[name].(type) {
		case int64:
			parts = append(parts, fmt.Sprintf("%s=%d", name, v))
		case float64:
			parts = append(parts, fmt.Sprintf("%s=%.12g", name, v))
		case string:
			parts = append(parts, fmt.Sprintf("%s=%s", name, v))
		default:
			parts = append(parts, fmt.Sprintf("%s=%v", name, v))
		}
	}
	return strings.Join(parts, "|")
}
