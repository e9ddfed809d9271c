package notification

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	TypeStreakRisk      NotificationType = "streak_risk"
	TypeStreakBroken    NotificationType = "streak_broken"
	TypeStreakMilestone NotificationType = "streak_milestone"
	TypeTierUp          NotificationType = "tier_up"
	TypeBadgeEarned     NotificationType = "badge_earned"
)

type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	LearnerID uuid.UUID        `json:"learner_id" db:"learner_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	IsRead    bool             `json:"is_read" db:"is_read"`
	Data      map[string]any   `json:"data" db:"data"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

type DeviceToken struct {
	Token    string `json:"token" db:"token"`
	Platform string `json:"platform" db:"platform"`
}

// AtRiskLearner identifies a learner whose streak is about to break,
// or already has, as found by the maintenance sweeps.
type AtRiskLearner struct {
	LearnerID   uuid.UUID
	LastCheckin time.Time
}
