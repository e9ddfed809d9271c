package services

import (
	"testing"
	"time"

	"p2eInfernoAPI/internal/config"
	"p2eInfernoAPI/internal/multiplier"
)

func TestBuildStrategyTieredDefault(t *testing.T) {
	cfg := &config.Config{MultiplierStrategy: "tiered"}

	s := buildStrategy(cfg)

	if got := s.CalculateMultiplier(15); got != 1.5 {
		t.Errorf("expected default tier table (15 days -> 1.5), got %v", got)
	}
	if s.TierCount() != 5 {
		t.Errorf("expected 5 default tiers, got %d", s.TierCount())
	}
}

func TestBuildStrategyLinear(t *testing.T) {
	cfg := &config.Config{
		MultiplierStrategy:     "linear",
		MultiplierBase:         1.0,
		MultiplierIncrement:    0.2,
		MultiplierMax:          2.0,
		MultiplierIntervalDays: 7,
	}

	s := buildStrategy(cfg)

	if got := s.CalculateMultiplier(14); got < 1.4-1e-9 || got > 1.4+1e-9 {
		t.Errorf("expected 1.0 + 2*0.2 = 1.4 at two weeks, got %v", got)
	}
	if got := s.CalculateMultiplier(700); got != 2.0 {
		t.Errorf("expected cap 2.0, got %v", got)
	}
}

func TestBuildStrategyExponential(t *testing.T) {
	cfg := &config.Config{
		MultiplierStrategy:     "exponential",
		MultiplierBase:         1.0,
		MultiplierExponentBase: 2.0,
		MultiplierMax:          8.0,
		MultiplierIntervalDays: 7,
	}

	s := buildStrategy(cfg)

	if got := s.CalculateMultiplier(14); got != 4.0 {
		t.Errorf("expected 2^2 = 4.0 at two weeks, got %v", got)
	}
	if got := s.CalculateMultiplier(7000); got != 8.0 {
		t.Errorf("expected cap 8.0, got %v", got)
	}
}

func TestBuildStrategySeasonalWrapping(t *testing.T) {
	start := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	end := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)

	cfg := &config.Config{
		MultiplierStrategy: "tiered",
		SeasonalEnabled:    true,
		SeasonalMultiplier: 2.0,
		SeasonalStart:      start,
		SeasonalEnd:        end,
	}

	s := buildStrategy(cfg)

	if _, ok := s.(*multiplier.SeasonalStrategy); !ok {
		t.Fatalf("expected seasonal wrapper, got %T", s)
	}
	if got := s.CalculateMultiplier(15); got != 3.0 {
		t.Errorf("expected 1.5 * 2.0 = 3.0 during the event, got %v", got)
	}
}

func TestBuildStrategySeasonalDisabled(t *testing.T) {
	cfg := &config.Config{
		MultiplierStrategy: "tiered",
		SeasonalEnabled:    false,
		SeasonalMultiplier: 2.0,
	}

	s := buildStrategy(cfg)

	if _, ok := s.(*multiplier.SeasonalStrategy); ok {
		t.Fatal("seasonal wrapper must not apply when disabled")
	}
}
