package split

import (
	"errors"
	"testing"

	"alpha-search-lab/internal/domain"
)

func seriesOfLen(n int) *domain.PriceSeries {
	bars := make([]domain.Bar, n)
	for i := range bars {
		bars[i] = domain.Bar{
			TimestampMs: int64(1700000000000 + i*86400000),
			Open:        100,
			High:        101,
			Low:         99,
			Close:       100,
			Volume:      1,
		}
	}
	return &domain.PriceSeries{Symbol: "TEST", Interval: "1d", Bars: bars}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"walk forward ok", Config{Mode: ModeWalkForward, WindowCount: 3, TrainFraction: 0.7}, true},
		{"fixed holdout ok", Config{Mode: ModeFixedHoldout, TrainFraction: 0.5}, true},
		{"zero train fraction", Config{Mode: ModeWalkForward, WindowCount: 3, TrainFraction: 0}, false},
		{"train fraction one", Config{Mode: ModeWalkForward, WindowCount: 3, TrainFraction: 1}, false},
		{"zero windows", Config{Mode: ModeWalkForward, WindowCount: 0, TrainFraction: 0.7}, false},
		{"unknown mode", Config{Mode: "bogus", TrainFraction: 0.7}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.ok && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSplit_WalkForwardExpanding(t *testing.T) {
	cfg := Config{Mode: ModeWalkForward, WindowCount: 3, TrainFraction: 0.7}
	windows, err := Split(seriesOfLen(100), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(windows))
	}

	// trainLen = 70, testTotal = 30, testLen = 10.
	for i, w := range windows {
		if w.TestStart < w.TrainEnd {
			t.Errorf("window %d: test range starts before train ends (%d < %d)", i, w.TestStart, w.TrainEnd)
		}
		if w.TrainStart != 0 {
			t.Errorf("window %d: expanding train must start at 0, got %d", i, w.TrainStart)
		}
	}
	if windows[0].TestStart != 70 || windows[0].TestEnd != 80 {
		t.Errorf("window 0 test range [%d,%d), want [70,80)", windows[0].TestStart, windows[0].TestEnd)
	}
	if windows[2].TestEnd != 100 {
		t.Errorf("last window must end at series end, got %d", windows[2].TestEnd)
	}

	// Consecutive test ranges must tile the evaluation horizon.
	for i := 1; i < len(windows); i++ {
		if windows[i].TestStart != windows[i-1].TestEnd {
			t.Errorf("gap between window %d and %d test ranges", i-1, i)
		}
	}
}

func TestSplit_WalkForwardRolling(t *testing.T) {
	cfg := Config{Mode: ModeWalkForward, WindowCount: 3, TrainFraction: 0.7, Rolling: true}
	windows, err := Split(seriesOfLen(100), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Each rolling train range keeps the initial 70-bar width.
	for i, w := range windows {
		if got := w.TrainEnd - w.TrainStart; got != 70 {
			t.Errorf("window %d: rolling train width %d, want 70", i, got)
		}
		if w.TrainEnd != w.TestStart {
			t.Errorf("window %d: train must end where test starts", i)
		}
	}
	if windows[1].TrainStart != 10 {
		t.Errorf("window 1 train start %d, want 10", windows[1].TrainStart)
	}
}

func TestSplit_LastWindowAbsorbsRemainder(t *testing.T) {
	// trainLen = 70, testTotal = 31, testLen = 10, remainder 1.
	cfg := Config{Mode: ModeWalkForward, WindowCount: 3, TrainFraction: 0.7}
	windows, err := Split(seriesOfLen(101), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := windows[len(windows)-1]
	if last.TestEnd != 101 {
		t.Errorf("last test end %d, want 101", last.TestEnd)
	}
	if got := last.TestEnd - last.TestStart; got != 11 {
		t.Errorf("last test length %d, want 11", got)
	}
}

func TestSplit_FixedHoldout(t *testing.T) {
	cfg := Config{Mode: ModeFixedHoldout, TrainFraction: 0.8}
	windows, err := Split(seriesOfLen(50), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(windows))
	}
	w := windows[0]
	if w.ID != "holdout" {
		t.Errorf("window ID %q, want holdout", w.ID)
	}
	if w.TrainStart != 0 || w.TrainEnd != 40 || w.TestStart != 40 || w.TestEnd != 50 {
		t.Errorf("unexpected holdout bounds: %+v", w)
	}
}

func TestSplit_InsufficientData(t *testing.T) {
	cfg := Config{Mode: ModeWalkForward, WindowCount: 10, TrainFraction: 0.7}
	if _, err := Split(seriesOfLen(12), cfg); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestSplit_EmptySeries(t *testing.T) {
	cfg := Config{Mode: ModeFixedHoldout, TrainFraction: 0.7}
	empty := &domain.PriceSeries{Symbol: "TEST", Interval: "1d"}
	if _, err := Split(empty, cfg); !errors.Is(err, domain.ErrEmptySeries) {
		t.Errorf("expected ErrEmptySeries, got %v", err)
	}
}

func TestCheckSufficiency_Pass(t *testing.T) {
	cfg := Config{Mode: ModeWalkForward, WindowCount: 3, TrainFraction: 0.7}
	result := CheckSufficiency(seriesOfLen(100), cfg)
	if !result.AllPass {
		t.Errorf("expected all checks to pass: %+v", result.Checks)
	}
	if len(result.Checks) == 0 {
		t.Errorf("expected individual checks to be reported")
	}
}

func TestCheckSufficiency_TooFewBars(t *testing.T) {
	cfg := Config{Mode: ModeWalkForward, WindowCount: 10, TrainFraction: 0.7}
	result := CheckSufficiency(seriesOfLen(12), cfg)
	if result.AllPass {
		t.Errorf("expected sufficiency failure for 12 bars and 10 windows")
	}
}

func TestCheckSufficiency_BadConfig(t *testing.T) {
	result := CheckSufficiency(seriesOfLen(100), Config{Mode: "bogus", TrainFraction: 0.7})
	if result.AllPass {
		t.Errorf("expected failure for invalid config")
	}
	found := false
	for _, c := range result.Checks {
		if c.Name == "splitter config valid" && !c.Pass {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a failed config check, got %+v", result.Checks)
	}
}
