package streak

import (
	"context"
	"time"
)

// CountSource is the external procedure that counts consecutive
// qualifying days for a user. Backed by the database in production.
type CountSource interface {
	CountStreak(ctx context.Context, userKey string) (int, error)
}

// CheckinSource looks up the most recent check-in instant for a user.
// Returns nil when the user has never checked in.
type CheckinSource interface {
	LastCheckin(ctx context.Context, userKey string) (*time.Time, error)
}

const (
	// DefaultMaxStreakGap is the longest allowed gap between check-ins
	// before a streak counts as broken.
	DefaultMaxStreakGap = 24 * time.Hour

	// atRiskWindow is how long before breaking a streak reports at_risk.
	atRiskWindow = 3 * time.Hour
)

// CalculatorConfig tunes a Calculator. Zero values fall back to the
// defaults above. Timezone is a display label only; all comparisons are
// UTC-instant based.
type CalculatorConfig struct {
	MaxStreakGap time.Duration
	Timezone     string
}

// Calculator derives streak snapshots and status from the two
// collaborator sources. It holds no state of its own beyond
// configuration; every call is an independent read.
type Calculator struct {
	counts   CountSource
	checkins CheckinSource
	gap      time.Duration
	timezone string

	now func() time.Time
}

func NewCalculator(counts CountSource, checkins CheckinSource, cfg CalculatorConfig) *Calculator {
	if cfg.MaxStreakGap <= 0 {
		cfg.MaxStreakGap = DefaultMaxStreakGap
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}
	return &Calculator{
		counts:   counts,
		checkins: checkins,
		gap:      cfg.MaxStreakGap,
		timezone: cfg.Timezone,
		now:      time.Now,
	}
}

// MaxStreakGap reports the configured gap.
func (c *Calculator) MaxStreakGap() time.Duration { return c.gap }

// Timezone reports the configured display timezone label.
func (c *Calculator) Timezone() string { return c.timezone }

// CalculateStreak delegates to the counting collaborator. A collaborator
// error surfaces as *CalculationError; an empty user key without one
// resolves to 0.
func (c *Calculator) CalculateStreak(ctx context.Context, userKey string) (int, error) {
	if userKey == "" {
		return 0, nil
	}
	count, err := c.counts.CountStreak(ctx, userKey)
	if err != nil {
		return 0, &CalculationError{UserKey: userKey, Err: err}
	}
	if count < 0 {
		count = 0
	}
	return count, nil
}

// GetStreakInfo composes the streak count and the latest check-in
// timestamp into a fresh snapshot.
func (c *Calculator) GetStreakInfo(ctx context.Context, userKey string) (*Info, error) {
	count, err := c.CalculateStreak(ctx, userKey)
	if err != nil {
		return nil, err
	}
	last, err := c.checkins.LastCheckin(ctx, userKey)
	if err != nil {
		return nil, &CalculationError{UserKey: userKey, Err: err}
	}
	return &Info{
		CurrentStreak:   count,
		LastCheckinDate: last,
		IsActive:        count > 0,
	}, nil
}

// IsStreakBroken reports whether the gap between lastCheckin and now
// exceeds the configured maximum. A gap exactly equal to the maximum
// does not break the streak.
func (c *Calculator) IsStreakBroken(lastCheckin, now time.Time) bool {
	return now.Sub(lastCheckin) > c.gap
}

// GetStreakStatus classifies the current streak:
//
//	count == 0            -> new
//	no check-in timestamp -> active (optimistic; see ValidateStreakContinuity)
//	gap exceeded          -> broken
//	inside final window   -> at_risk
//	otherwise             -> active
//
// A future-dated check-in reads as very recent and reports active.
func (c *Calculator) GetStreakStatus(ctx context.Context, userKey string) (Status, error) {
	info, err := c.GetStreakInfo(ctx, userKey)
	if err != nil {
		return "", err
	}
	if info.CurrentStreak == 0 {
		return StatusNew, nil
	}
	if info.LastCheckinDate == nil {
		return StatusActive, nil
	}
	elapsed := c.now().Sub(*info.LastCheckinDate)
	switch {
	case elapsed > c.gap:
		return StatusBroken, nil
	case elapsed > c.gap-atRiskWindow:
		return StatusAtRisk, nil
	default:
		return StatusActive, nil
	}
}

// GetTimeUntilStreakExpires returns how long until the active streak
// breaks, clamped at zero. Nil when there is no active streak. The value
// strictly decreases as wall-clock time advances.
func (c *Calculator) GetTimeUntilStreakExpires(ctx context.Context, userKey string) (*time.Duration, error) {
	info, err := c.GetStreakInfo(ctx, userKey)
	if err != nil {
		return nil, err
	}
	if !info.IsActive || info.LastCheckinDate == nil {
		return nil, nil
	}
	remaining := c.gap - c.now().Sub(*info.LastCheckinDate)
	if remaining < 0 {
		remaining = 0
	}
	return &remaining, nil
}

// ValidateStreakContinuity reports whether a check-in at candidate time
// extends the streak rather than resetting it. A first-ever check-in is
// always valid.
func (c *Calculator) ValidateStreakContinuity(ctx context.Context, userKey string, candidate time.Time) (bool, error) {
	last, err := c.checkins.LastCheckin(ctx, userKey)
	if err != nil {
		return false, &CalculationError{UserKey: userKey, Err: err}
	}
	if last == nil {
		return true, nil
	}
	return !c.IsStreakBroken(*last, candidate), nil
}
