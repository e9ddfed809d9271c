package leaderboard

import "github.com/google/uuid"

type Entry struct {
	LearnerID     uuid.UUID `json:"learner_id" db:"learner_id"`
	Username      string    `json:"username" db:"username"`
	ImageURL      *string   `json:"image_url" db:"image_url"`
	XP            int       `json:"xp" db:"xp"`
	CurrentStreak int       `json:"current_streak" db:"current_streak"`
	Rank          int       `json:"rank" db:"rank"`
}

type Leaderboard struct {
	Entries         []*Entry `json:"entries"`
	LearnerPosition *Entry   `json:"learner_position"`
	TotalLearners   int      `json:"total_learners"`
}
