package streak

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubCounts struct {
	count int
	err   error
}

func (s *stubCounts) CountStreak(ctx context.Context, userKey string) (int, error) {
	return s.count, s.err
}

type stubCheckins struct {
	last *time.Time
	err  error
}

func (s *stubCheckins) LastCheckin(ctx context.Context, userKey string) (*time.Time, error) {
	return s.last, s.err
}

func newTestCalculator(count int, last *time.Time) *Calculator {
	return NewCalculator(&stubCounts{count: count}, &stubCheckins{last: last}, CalculatorConfig{})
}

func TestCalculateStreakDelegates(t *testing.T) {
	c := newTestCalculator(12, nil)

	count, err := c.CalculateStreak(context.Background(), "did:privy:abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 12 {
		t.Errorf("expected 12, got %d", count)
	}
}

func TestCalculateStreakEmptyKey(t *testing.T) {
	c := newTestCalculator(99, nil)

	count, err := c.CalculateStreak(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Errorf("empty user key should resolve to 0, got %d", count)
	}
}

func TestCalculateStreakCollaboratorError(t *testing.T) {
	dbErr := errors.New("connection refused")
	c := NewCalculator(&stubCounts{err: dbErr}, &stubCheckins{}, CalculatorConfig{})

	_, err := c.CalculateStreak(context.Background(), "user-1")
	if err == nil {
		t.Fatal("expected error from collaborator")
	}
	var calcErr *CalculationError
	if !errors.As(err, &calcErr) {
		t.Fatalf("expected *CalculationError, got %T", err)
	}
	if !errors.Is(err, dbErr) {
		t.Error("wrapped error should unwrap to the collaborator error")
	}
	if calcErr.UserKey != "user-1" {
		t.Errorf("expected user key in error, got %q", calcErr.UserKey)
	}
}

func TestCalculateStreakNegativeClamped(t *testing.T) {
	c := newTestCalculator(-3, nil)

	count, err := c.CalculateStreak(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Errorf("negative collaborator value should clamp to 0, got %d", count)
	}
}

func TestGetStreakInfoActiveFlag(t *testing.T) {
	last := time.Now().Add(-2 * time.Hour)

	tests := []struct {
		name   string
		count  int
		last   *time.Time
		active bool
	}{
		{"zero streak", 0, nil, false},
		{"positive streak", 5, &last, true},
		{"positive streak no timestamp", 3, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCalculator(tt.count, tt.last)
			info, err := c.GetStreakInfo(context.Background(), "user-1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if info.CurrentStreak != tt.count {
				t.Errorf("expected streak %d, got %d", tt.count, info.CurrentStreak)
			}
			if info.IsActive != tt.active {
				t.Errorf("expected IsActive=%v for streak %d", tt.active, tt.count)
			}
			if info.IsActive != (info.CurrentStreak > 0) {
				t.Error("IsActive must equal CurrentStreak > 0")
			}
		})
	}
}

func TestGetStreakInfoErrorPropagates(t *testing.T) {
	c := NewCalculator(&stubCounts{count: 1}, &stubCheckins{err: errors.New("rpc down")}, CalculatorConfig{})

	_, err := c.GetStreakInfo(context.Background(), "user-1")
	var calcErr *CalculationError
	if !errors.As(err, &calcErr) {
		t.Fatalf("expected *CalculationError from check-in lookup, got %v", err)
	}
}

func TestIsStreakBrokenBoundary(t *testing.T) {
	c := newTestCalculator(0, nil)
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	if c.IsStreakBroken(base, base.Add(DefaultMaxStreakGap)) {
		t.Error("a gap exactly equal to the maximum must not break the streak")
	}
	if !c.IsStreakBroken(base, base.Add(DefaultMaxStreakGap+time.Millisecond)) {
		t.Error("any gap beyond the maximum must break the streak")
	}
	if c.IsStreakBroken(base, base.Add(time.Hour)) {
		t.Error("a one hour gap must not break the streak")
	}
}

func TestIsStreakBrokenCustomGap(t *testing.T) {
	c := NewCalculator(&stubCounts{}, &stubCheckins{}, CalculatorConfig{MaxStreakGap: 48 * time.Hour})
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	if c.IsStreakBroken(base, base.Add(36*time.Hour)) {
		t.Error("36h gap within a 48h window must not break")
	}
	if !c.IsStreakBroken(base, base.Add(49*time.Hour)) {
		t.Error("49h gap beyond a 48h window must break")
	}
}

func TestGetStreakStatusTransitions(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ago := func(d time.Duration) *time.Time {
		ts := now.Add(-d)
		return &ts
	}

	tests := []struct {
		name  string
		count int
		last  *time.Time
		want  Status
	}{
		{"zero streak is new", 0, ago(2 * time.Hour), StatusNew},
		{"zero streak no date is new", 0, nil, StatusNew},
		{"recent check-in is active", 4, ago(2 * time.Hour), StatusActive},
		{"21h boundary still active", 4, ago(21 * time.Hour), StatusActive},
		{"22h is at risk", 4, ago(22 * time.Hour), StatusAtRisk},
		{"24h boundary still at risk", 4, ago(24 * time.Hour), StatusAtRisk},
		{"25h is broken", 4, ago(25 * time.Hour), StatusBroken},
		{"missing date treated as active", 4, nil, StatusActive},
		{"future-dated check-in is active", 4, ago(-time.Hour), StatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCalculator(tt.count, tt.last)
			c.now = func() time.Time { return now }

			status, err := c.GetStreakStatus(context.Background(), "user-1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if status != tt.want {
				t.Errorf("expected %q, got %q", tt.want, status)
			}
		})
	}
}

func TestGetStreakStatusErrorNotSwallowed(t *testing.T) {
	c := NewCalculator(&stubCounts{err: errors.New("db down")}, &stubCheckins{}, CalculatorConfig{})

	_, err := c.GetStreakStatus(context.Background(), "user-1")
	var calcErr *CalculationError
	if !errors.As(err, &calcErr) {
		t.Fatalf("collaborator error must propagate, got %v", err)
	}
}

func TestGetTimeUntilStreakExpires(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	last := now.Add(-20 * time.Hour)

	c := newTestCalculator(4, &last)
	c.now = func() time.Time { return now }

	remaining, err := c.GetTimeUntilStreakExpires(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if remaining == nil {
		t.Fatal("expected a countdown for an active streak")
	}
	if *remaining != 4*time.Hour {
		t.Errorf("expected 4h remaining, got %v", *remaining)
	}
}

func TestGetTimeUntilStreakExpiresInactive(t *testing.T) {
	c := newTestCalculator(0, nil)

	remaining, err := c.GetTimeUntilStreakExpires(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if remaining != nil {
		t.Errorf("expected nil for inactive streak, got %v", *remaining)
	}
}

func TestGetTimeUntilStreakExpiresClampedAtZero(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	last := now.Add(-30 * time.Hour)

	c := newTestCalculator(4, &last)
	c.now = func() time.Time { return now }

	remaining, err := c.GetTimeUntilStreakExpires(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if remaining == nil || *remaining != 0 {
		t.Errorf("expired countdown must clamp to exactly 0, got %v", remaining)
	}
}

func TestGetTimeUntilStreakExpiresMonotonic(t *testing.T) {
	start := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	last := start.Add(-2 * time.Hour)

	c := newTestCalculator(4, &last)

	var prev time.Duration = DefaultMaxStreakGap + time.Hour
	for _, offset := range []time.Duration{0, time.Hour, 5 * time.Hour, 21 * time.Hour, 23 * time.Hour} {
		sample := start.Add(offset)
		c.now = func() time.Time { return sample }

		remaining, err := c.GetTimeUntilStreakExpires(context.Background(), "user-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if remaining == nil {
			t.Fatal("expected a countdown while active")
		}
		if *remaining >= prev {
			t.Errorf("countdown must strictly decrease: %v then %v", prev, *remaining)
		}
		prev = *remaining
	}
}

func TestValidateStreakContinuity(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		last      *time.Time
		candidate time.Time
		want      bool
	}{
		{"first check-in always valid", nil, base, true},
		{"within gap extends", &base, base.Add(10 * time.Hour), true},
		{"exactly at gap still extends", &base, base.Add(DefaultMaxStreakGap), true},
		{"beyond gap resets", &base, base.Add(25 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCalculator(1, tt.last)
			ok, err := c.ValidateStreakContinuity(context.Background(), "user-1", tt.candidate)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.want {
				t.Errorf("expected %v, got %v", tt.want, ok)
			}
		})
	}
}
