package multiplier

import (
	"math"
	"testing"
)

func TestDefaultTiersContiguity(t *testing.T) {
	assertContiguous(t, NewTieredStrategy(nil).Tiers())
}

func assertContiguous(t *testing.T, tiers []Tier) {
	t.Helper()
	if len(tiers) == 0 {
		t.Fatal("empty tier table")
	}
	unbounded := 0
	for i, tier := range tiers {
		if tier.MaxStreak == nil {
			unbounded++
			if i != len(tiers)-1 {
				t.Errorf("unbounded tier %q must be last", tier.Name)
			}
			continue
		}
		if i+1 < len(tiers) && tiers[i+1].MinStreak != *tier.MaxStreak+1 {
			t.Errorf("gap between tier %q (max %d) and %q (min %d)",
				tier.Name, *tier.MaxStreak, tiers[i+1].Name, tiers[i+1].MinStreak)
		}
	}
	if unbounded != 1 {
		t.Errorf("expected exactly one unbounded tier, found %d", unbounded)
	}
}

func TestTieredCalculateMultiplier(t *testing.T) {
	s := NewTieredStrategy(nil)

	tests := []struct {
		streak int
		want   float64
	}{
		{-1, 1.0}, // defensive baseline
		{0, 1.0},
		{6, 1.0},
		{7, 1.5},
		{15, 1.5},
		{29, 1.5},
		{30, 2.0},
		{99, 2.0},
		{100, 2.5},
		{364, 2.5},
		{365, 3.0},
		{10000, 3.0},
	}

	for _, tt := range tests {
		if got := s.CalculateMultiplier(tt.streak); got != tt.want {
			t.Errorf("CalculateMultiplier(%d) = %v, want %v", tt.streak, got, tt.want)
		}
	}
}

func TestTieredTierLookups(t *testing.T) {
	s := NewTieredStrategy(nil)

	current := s.CurrentTier(15)
	if current == nil || current.Name != "Consistent" {
		t.Fatalf("expected Consistent tier for streak 15, got %+v", current)
	}

	next := s.NextTier(15)
	if next == nil || next.Name != "Dedicated" {
		t.Fatalf("expected Dedicated as next tier for streak 15, got %+v", next)
	}

	if s.CurrentTier(-5) != nil {
		t.Error("negative streak must have no current tier")
	}
	if s.NextTier(400) != nil {
		t.Error("terminal tier must have no next tier")
	}
	if s.NextTier(-5) != nil {
		t.Error("negative streak must have no next tier")
	}
}

func TestTieredProgressToNextTier(t *testing.T) {
	s := NewTieredStrategy(nil)

	got := s.ProgressToNextTier(6)
	want := 6.0 / 7.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("ProgressToNextTier(6) = %v, want %v", got, want)
	}

	if got := s.ProgressToNextTier(0); got != 0 {
		t.Errorf("progress at tier start must be 0, got %v", got)
	}
	if got := s.ProgressToNextTier(500); got != 1.0 {
		t.Errorf("terminal tier progress must be exactly 1.0, got %v", got)
	}
	if got := s.ProgressToNextTier(-1); got != 0 {
		t.Errorf("invalid streak progress must be 0, got %v", got)
	}

	for streak := 0; streak <= 400; streak += 13 {
		p := s.ProgressToNextTier(streak)
		if p < 0 || p > 1 {
			t.Errorf("progress out of [0,1] at streak %d: %v", streak, p)
		}
	}
}

func TestTieredTierByIndex(t *testing.T) {
	s := NewTieredStrategy(nil)

	if s.TierCount() != 5 {
		t.Fatalf("expected 5 default tiers, got %d", s.TierCount())
	}
	if tier := s.TierByIndex(0); tier == nil || tier.Name != "Beginner" {
		t.Errorf("expected Beginner at index 0, got %+v", tier)
	}
	if tier := s.TierByIndex(4); tier == nil || tier.Name != "Legend" {
		t.Errorf("expected Legend at index 4, got %+v", tier)
	}
	if s.TierByIndex(-1) != nil {
		t.Error("negative index must return nil")
	}
	if s.TierByIndex(5) != nil {
		t.Error("out-of-range index must return nil")
	}
}

func TestTieredCustomTable(t *testing.T) {
	custom := []Tier{
		{MinStreak: 0, MaxStreak: intPtr(2), Multiplier: 1.0, Name: "Spark"},
		{MinStreak: 3, MaxStreak: nil, Multiplier: 2.0, Name: "Blaze"},
	}
	s := NewTieredStrategy(custom)

	if s.TierCount() != 2 {
		t.Fatalf("expected 2 custom tiers, got %d", s.TierCount())
	}
	if got := s.CalculateMultiplier(5); got != 2.0 {
		t.Errorf("expected 2.0 for streak 5, got %v", got)
	}
	if tier := s.CurrentTier(1); tier == nil || tier.Name != "Spark" {
		t.Errorf("expected Spark for streak 1, got %+v", tier)
	}
}

func TestTieredTiersReturnsCopy(t *testing.T) {
	s := NewTieredStrategy(nil)
	tiers := s.Tiers()
	tiers[0].Multiplier = 99

	if s.CalculateMultiplier(0) != 1.0 {
		t.Error("mutating the returned slice must not affect the strategy")
	}
}
