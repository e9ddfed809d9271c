package multiplier

import (
	"math"
	"testing"
	"time"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestSeasonalActiveScalesMultiplier(t *testing.T) {
	now := time.Date(2026, 12, 25, 12, 0, 0, 0, time.UTC)
	start := now.Add(-24 * time.Hour)
	end := now.Add(24 * time.Hour)

	base := NewTieredStrategy(nil)
	s := NewSeasonalStrategy(base, 2.0, timePtr(start), timePtr(end))
	s.now = func() time.Time { return now }

	if got := s.CalculateMultiplier(15); got != 3.0 {
		t.Errorf("expected 1.5 * 2.0 = 3.0 during the event, got %v", got)
	}
}

func TestSeasonalInactiveDelegatesExactly(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	start := now.Add(24 * time.Hour) // event starts tomorrow
	end := now.Add(72 * time.Hour)

	bases := []Strategy{
		NewTieredStrategy(nil),
		NewLinearStrategy(LinearConfig{}),
		NewExponentialStrategy(ExponentialConfig{}),
	}

	for _, base := range bases {
		s := NewSeasonalStrategy(base, 2.0, timePtr(start), timePtr(end))
		s.now = func() time.Time { return now }

		for _, streak := range []int{-1, 0, 7, 15, 100, 365, 1000} {
			if got, want := s.CalculateMultiplier(streak), base.CalculateMultiplier(streak); got != want {
				t.Errorf("inactive event must delegate exactly: streak %d got %v want %v", streak, got, want)
			}
		}
	}
}

func TestSeasonalWindowInclusiveBounds(t *testing.T) {
	start := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC)
	s := NewSeasonalStrategy(NewTieredStrategy(nil), 2.0, timePtr(start), timePtr(end))

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before start", start.Add(-time.Second), false},
		{"exactly at start", start, true},
		{"inside window", start.Add(12 * time.Hour), true},
		{"exactly at end", end, true},
		{"after end", end.Add(time.Second), false},
	}

	for _, tt := range tests {
		if got := s.IsEventActive(tt.now); got != tt.want {
			t.Errorf("%s: IsEventActive = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSeasonalMissingBoundsDefaultActive(t *testing.T) {
	ref := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	// No bounds at all: always active.
	s := NewSeasonalStrategy(NewTieredStrategy(nil), 2.0, nil, nil)
	if !s.IsEventActive(ref) {
		t.Error("event with no bounds must be active")
	}

	// Only an end bound: active until it passes.
	s = NewSeasonalStrategy(NewTieredStrategy(nil), 2.0, nil, timePtr(ref))
	if !s.IsEventActive(ref.Add(-time.Hour)) {
		t.Error("missing start bound must not restrict the early side")
	}
	if s.IsEventActive(ref.Add(time.Hour)) {
		t.Error("end bound must still apply")
	}

	// Only a start bound: active forever after.
	s = NewSeasonalStrategy(NewTieredStrategy(nil), 2.0, timePtr(ref), nil)
	if s.IsEventActive(ref.Add(-time.Hour)) {
		t.Error("start bound must still apply")
	}
	if !s.IsEventActive(ref.Add(10000 * time.Hour)) {
		t.Error("missing end bound must not restrict the late side")
	}
}

func TestSeasonalTiersScaledOnlyWhenActive(t *testing.T) {
	base := NewTieredStrategy(nil)
	s := NewSeasonalStrategy(base, 1.5, nil, nil) // always active
	s.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	scaled := s.Tiers()
	original := base.Tiers()
	if len(scaled) != len(original) {
		t.Fatalf("tier count changed: %d vs %d", len(scaled), len(original))
	}
	for i := range scaled {
		want := original[i].Multiplier * 1.5
		if math.Abs(scaled[i].Multiplier-want) > 1e-9 {
			t.Errorf("tier %d multiplier = %v, want %v", i, scaled[i].Multiplier, want)
		}
		if scaled[i].Name != original[i].Name || scaled[i].MinStreak != original[i].MinStreak {
			t.Errorf("tier %d identity fields must pass through unchanged", i)
		}
	}
}

func TestSeasonalTierIdentityNeverShifts(t *testing.T) {
	base := NewTieredStrategy(nil)
	s := NewSeasonalStrategy(base, 3.0, nil, nil) // always active

	for _, streak := range []int{0, 7, 15, 100, 365} {
		got, want := s.CurrentTier(streak), base.CurrentTier(streak)
		if (got == nil) != (want == nil) || (got != nil && got.Name != want.Name) {
			t.Errorf("CurrentTier(%d) identity differs from base", streak)
		}
		if s.ProgressToNextTier(streak) != base.ProgressToNextTier(streak) {
			t.Errorf("ProgressToNextTier(%d) differs from base", streak)
		}
	}
}

func TestSeasonalTierByIndexReflectsScaling(t *testing.T) {
	s := NewSeasonalStrategy(NewTieredStrategy(nil), 2.0, nil, nil)
	s.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	tier := s.TierByIndex(1)
	if tier == nil || tier.Name != "Consistent" {
		t.Fatalf("expected Consistent at index 1, got %+v", tier)
	}
	if tier.Multiplier != 3.0 {
		t.Errorf("expected scaled multiplier 3.0, got %v", tier.Multiplier)
	}
	if s.TierByIndex(99) != nil {
		t.Error("out-of-range index must return nil")
	}
}
