package badge

import (
	"time"

	"github.com/google/uuid"
)

type CriteriaType string

const (
	CriteriaStreak        CriteriaType = "streak"
	CriteriaTotalCheckins CriteriaType = "total_checkins"
	CriteriaXP            CriteriaType = "xp"
)

type Badge struct {
	ID            uuid.UUID    `json:"id" db:"id"`
	Name          string       `json:"name" db:"name"`
	Description   string       `json:"description" db:"description"`
	Icon          string       `json:"icon" db:"icon"`
	CriteriaType  CriteriaType `json:"criteria_type" db:"criteria_type"`
	CriteriaValue int          `json:"criteria_value" db:"criteria_value"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
}

type LearnerBadge struct {
	ID        uuid.UUID `json:"id" db:"id"`
	LearnerID uuid.UUID `json:"learner_id" db:"learner_id"`
	BadgeID   uuid.UUID `json:"badge_id" db:"badge_id"`
	EarnedAt  time.Time `json:"earned_at" db:"earned_at"`
}

type BadgeWithStatus struct {
	Badge
	Earned   bool       `json:"earned"`
	EarnedAt *time.Time `json:"earned_at,omitempty"`
}
