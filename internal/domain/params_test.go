package domain

import (
	"errors"
	"testing"
)

func testSpace() ParameterSpace {
	return ParameterSpace{
		{Name: "lookback", Kind: KindInteger, Low: 5, High: 100},
		{Name: "threshold", Kind: KindContinuous, Low: 0.0, High: 1.0},
		{Name: "mode", Kind: KindCategorical, Choices: []string{"fast", "slow"}},
	}
}

func TestParameterSpace_Validate(t *testing.T) {
	if err := testSpace().Validate(); err != nil {
		t.Fatalf("expected valid space, got %v", err)
	}

	if err := (ParameterSpace{}).Validate(); !errors.Is(err, ErrEmptySpace) {
		t.Errorf("expected ErrEmptySpace, got %v", err)
	}

	dup := ParameterSpace{
		{Name: "x", Kind: KindInteger, Low: 0, High: 1},
		{Name: "x", Kind: KindInteger, Low: 0, High: 1},
	}
	if err := dup.Validate(); !errors.Is(err, ErrDuplicateDimension) {
		t.Errorf("expected ErrDuplicateDimension, got %v", err)
	}

	bad := ParameterSpace{{Name: "x", Kind: KindInteger, Low: 10, High: 5}}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidBounds) {
		t.Errorf("expected ErrInvalidBounds, got %v", err)
	}

	empty := ParameterSpace{{Name: "x", Kind: KindCategorical}}
	if err := empty.Validate(); !errors.Is(err, ErrEmptyChoices) {
		t.Errorf("expected ErrEmptyChoices, got %v", err)
	}

	unknown := ParameterSpace{{Name: "x", Kind: "fancy", Low: 0, High: 1}}
	if err := unknown.Validate(); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func TestParameterDimension_Contains(t *testing.T) {
	intDim := ParameterDimension{Name: "n", Kind: KindInteger, Low: 5, High: 10}
	if !intDim.Contains(int64(5)) || !intDim.Contains(int64(10)) {
		t.Errorf("bounds should be inclusive")
	}
	if intDim.Contains(int64(4)) || intDim.Contains(int64(11)) {
		t.Errorf("out-of-bounds values accepted")
	}
	if intDim.Contains(7.0) {
		t.Errorf("float value accepted for integer dimension")
	}

	catDim := ParameterDimension{Name: "m", Kind: KindCategorical, Choices: []string{"a", "b"}}
	if !catDim.Contains("a") || catDim.Contains("c") {
		t.Errorf("categorical membership wrong")
	}
}

func TestParameterBinding_ValidateAgainst(t *testing.T) {
	space := testSpace()

	ok := ParameterBinding{"lookback": int64(20), "threshold": 0.5, "mode": "fast"}
	if err := ok.ValidateAgainst(space); err != nil {
		t.Fatalf("expected valid binding, got %v", err)
	}

	missing := ParameterBinding{"lookback": int64(20), "threshold": 0.5}
	if err := missing.ValidateAgainst(space); !errors.Is(err, ErrInvalidBinding) {
		t.Errorf("expected ErrInvalidBinding for missing dimension, got %v", err)
	}

	extra := ParameterBinding{"lookback": int64(20), "threshold": 0.5, "mode": "fast", "bogus": int64(1)}
	if err := extra.ValidateAgainst(space); !errors.Is(err, ErrInvalidBinding) {
		t.Errorf("expected ErrInvalidBinding for extra key, got %v", err)
	}

	outOfBounds := ParameterBinding{"lookback": int64(101), "threshold": 0.5, "mode": "fast"}
	if err := outOfBounds.ValidateAgainst(space); !errors.Is(err, ErrInvalidBinding) {
		t.Errorf("expected ErrInvalidBinding for out-of-bounds value, got %v", err)
	}

	wrongType := ParameterBinding{"lookback": 20.0, "threshold": 0.5, "mode": "fast"}
	if err := wrongType.ValidateAgainst(space); !errors.Is(err, ErrInvalidBinding) {
		t.Errorf("expected ErrInvalidBinding for wrong value type, got %v", err)
	}
}

func TestParameterBinding_Key_Canonical(t *testing.T) {
	a := ParameterBinding{"fast": int64(10), "slow": int64(50), "mode": "x"}
	b := ParameterBinding{"slow": int64(50), "mode": "x", "fast": int64(10)}

	if a.Key() != b.Key() {
		t.Errorf("equal bindings produced different keys: %q vs %q", a.Key(), b.Key())
	}

	c := ParameterBinding{"fast": int64(11), "slow": int64(50), "mode": "x"}
	if a.Key() == c.Key() {
		t.Errorf("different bindings produced equal keys")
	}
}

func TestParameterBinding_Clone_Independent(t *testing.T) {
	orig := ParameterBinding{"n": int64(5)}
	clone := orig.Clone()
	clone["n"] = int64(6)

	if orig.Int("n") != 5 {
		t.Errorf("clone mutation leaked into the original")
	}
}
