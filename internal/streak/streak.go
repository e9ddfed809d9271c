// Package streak derives streak state from persisted check-in data.
// Counting itself lives in the database (a recursive consecutive-day
// query); this package classifies the result.
package streak

import (
	"fmt"
	"time"
)

// Status classifies a learner's streak at a point in time. It is
// recomputed on every call, never persisted.
type Status string

const (
	StatusNew    Status = "new"      // no streak yet
	StatusActive Status = "active"   // checked in recently
	StatusAtRisk Status = "at_risk"  // inside the final window before breaking
	StatusBroken Status = "broken"   // gap exceeded
)

// Info is a point-in-time snapshot of a learner's streak.
// IsActive is always CurrentStreak > 0.
type Info struct {
	CurrentStreak   int        `json:"current_streak"`
	LastCheckinDate *time.Time `json:"last_checkin_date"`
	IsActive        bool       `json:"is_active"`
}

// CalculationError reports a failure from the streak-count collaborator.
// It is the only error this package raises; everything else degrades to
// documented sentinel values.
type CalculationError struct {
	UserKey string
	Err     error
}

func (e *CalculationError) Error() string {
	return fmt.Sprintf("streak calculation failed for %q: %v", e.UserKey, e.Err)
}

func (e *CalculationError) Unwrap() error {
	return e.Err
}
