package checkin

import (
	"time"

	"github.com/google/uuid"

	"p2eInfernoAPI/internal/multiplier"
	"p2eInfernoAPI/internal/streak"
)

// Record is a persisted daily check-in row.
type Record struct {
	ID          uuid.UUID `json:"id" db:"id"`
	LearnerID   uuid.UUID `json:"learner_id" db:"learner_id"`
	CheckinDate time.Time `json:"checkin_date" db:"checkin_date"`
	CheckinAt   time.Time `json:"checkin_at" db:"checkin_at"`
	XPAwarded   int       `json:"xp_awarded" db:"xp_awarded"`
	Multiplier  float64   `json:"multiplier" db:"multiplier"`
	StreakAfter int       `json:"streak_after" db:"streak_after"`
}

// Result is what the check-in endpoint returns: the new streak state plus
// everything the client renders around it.
type Result struct {
	Streak           int              `json:"streak"`
	Continued        bool             `json:"continued"`          // false when the streak was reset
	AlreadyCheckedIn bool             `json:"already_checked_in"` // repeat call today, nothing awarded
	Status           streak.Status    `json:"status"`
	Multiplier       float64          `json:"multiplier"`
	XPAwarded        int              `json:"xp_awarded"`
	Tier             *multiplier.Tier `json:"tier"`
	NextTier         *multiplier.Tier `json:"next_tier"`
	TierProgress     float64          `json:"tier_progress"`
	ExpiresInSeconds *int64           `json:"expires_in_seconds"`
}
