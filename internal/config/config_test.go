package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"alpha-search-lab/internal/split"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
strategy: sma_cross
symbol: BTC-USD
interval: 1h
sampler: grid
seed: 7
max_trials: 250
deadline: 30m
workers: 4
no_improve_limit: 50
grid_points: 5
objective: sharpe
aggregation: worst
multi_objective: true
default_size: 2.0
costs:
  fixed_per_trade: 0.5
  slippage_bps: 10
split:
  mode: walk_forward
  window_count: 4
  train_fraction: 0.6
  rolling: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Strategy != "sma_cross" || cfg.Symbol != "BTC-USD" || cfg.Interval != "1h" {
		t.Errorf("basic fields wrong: %+v", cfg)
	}
	if cfg.Sampler != "grid" || cfg.Seed != 7 || cfg.MaxTrials != 250 {
		t.Errorf("sampler fields wrong: %+v", cfg)
	}
	if cfg.Costs.FixedPerTrade != 0.5 || cfg.Costs.SlippageBps != 10 {
		t.Errorf("costs wrong: %+v", cfg.Costs)
	}
	if cfg.Split.WindowCount != 4 || !cfg.Split.Rolling {
		t.Errorf("split wrong: %+v", cfg.Split)
	}

	sc, err := cfg.SearchConfig()
	if err != nil {
		t.Fatalf("SearchConfig: %v", err)
	}
	if sc.Deadline != 30*time.Minute {
		t.Errorf("deadline %v, want 30m", sc.Deadline)
	}
	if sc.Objective != "sharpe" || !sc.MultiObjective || sc.Workers != 4 {
		t.Errorf("search config wrong: %+v", sc)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
strategy: breakout
symbol: BTC-USD
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Interval != DefaultInterval {
		t.Errorf("interval %q, want %q", cfg.Interval, DefaultInterval)
	}
	if cfg.MaxTrials != DefaultMaxTrials {
		t.Errorf("max_trials %d, want %d", cfg.MaxTrials, DefaultMaxTrials)
	}
	if cfg.Sampler != DefaultSampler {
		t.Errorf("sampler %q, want %q", cfg.Sampler, DefaultSampler)
	}
	if cfg.Split.Mode != split.ModeWalkForward {
		t.Errorf("split mode %q, want walk_forward", cfg.Split.Mode)
	}
	if cfg.Split.TrainFraction != DefaultTrainFrac {
		t.Errorf("train_fraction %v, want %v", cfg.Split.TrainFraction, DefaultTrainFrac)
	}
	if cfg.Split.WindowCount != DefaultWindowCount {
		t.Errorf("window_count %d, want %d", cfg.Split.WindowCount, DefaultWindowCount)
	}
}

func TestLoad_FixedHoldoutSkipsWindowCount(t *testing.T) {
	path := writeConfig(t, `
strategy: breakout
symbol: BTC-USD
split:
  mode: fixed_holdout
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Split.WindowCount != 0 {
		t.Errorf("fixed holdout must not default window_count, got %d", cfg.Split.WindowCount)
	}
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing strategy", "symbol: BTC-USD\n"},
		{"bad deadline", "strategy: breakout\ndeadline: soon\n"},
		{"bad yaml", "strategy: [unclosed\n"},
		{"bad train fraction", "strategy: breakout\nsplit:\n  train_fraction: 1.5\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			if _, err := Load(path); err == nil {
				t.Errorf("expected error")
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("expected error for missing file")
	}
}
