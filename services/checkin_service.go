package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"p2eInfernoAPI/internal/checkin"
	"p2eInfernoAPI/internal/notification"
	"p2eInfernoAPI/internal/streak"
)

// CheckinService persists daily check-ins and implements the calculator's
// two collaborator contracts (streak.CountSource, streak.CheckinSource)
// on top of Postgres.
type CheckinService struct {
	db            *pgxpool.Pool
	calc          *streak.Calculator
	rewards       *RewardService
	notifications *NotificationService
}

func NewCheckinService(db *pgxpool.Pool, rewards *RewardService, notifications *NotificationService) *CheckinService {
	return &CheckinService{
		db:            db,
		rewards:       rewards,
		notifications: notifications,
	}
}

// SetCalculator injects the calculator after construction. The calculator
// itself consumes this service as its data source, so the two are wired
// in main once both exist.
func (s *CheckinService) SetCalculator(calc *streak.Calculator) {
	s.calc = calc
}

// CountStreak counts consecutive check-in days ending today or
// yesterday. The walk happens in SQL so the count and the underlying
// rows can never disagree.
func (s *CheckinService) CountStreak(ctx context.Context, clerkID string) (int, error) {
	var learnerID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM learners WHERE clerk_id = $1`, clerkID).Scan(&learnerID)
	if err != nil {
		return 0, fmt.Errorf("learner not found: %w", err)
	}

	query := `
    WITH RECURSIVE streak_calc AS (
        -- Anchor on the most recent check-in, but only if it is today
        -- or yesterday; anything older means the streak already broke.
        SELECT
            learner_id,
            checkin_date,
            1 as streak_length
        FROM daily_checkins
        WHERE learner_id = $1
            AND checkin_date = (
                SELECT MAX(checkin_date)
                FROM daily_checkins
                WHERE learner_id = $1
                    AND checkin_date <= CURRENT_DATE
            )
            AND checkin_date >= CURRENT_DATE - INTERVAL '1 day'

        UNION ALL

        SELECT
            dc.learner_id,
            dc.checkin_date,
            sc.streak_length + 1
        FROM daily_checkins dc
        INNER JOIN streak_calc sc ON dc.learner_id = sc.learner_id
            AND dc.checkin_date = sc.checkin_date - INTERVAL '1 day'
    )
    SELECT COALESCE(MAX(streak_length), 0) FROM streak_calc
    `

	var count int
	if err := s.db.QueryRow(ctx, query, learnerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count streak: %w", err)
	}

	return count, nil
}

// LastCheckin returns the instant of the most recent check-in, nil when
// the learner has never checked in.
func (s *CheckinService) LastCheckin(ctx context.Context, clerkID string) (*time.Time, error) {
	query := `
	SELECT MAX(dc.checkin_at)
	FROM daily_checkins dc
	INNER JOIN learners l ON dc.learner_id = l.id
	WHERE l.clerk_id = $1
	`

	var last *time.Time
	if err := s.db.QueryRow(ctx, query, clerkID).Scan(&last); err != nil {
		return nil, fmt.Errorf("failed to get last check-in: %w", err)
	}

	return last, nil
}

// RecordCheckin logs today's check-in and returns the resulting streak
// state with the reward applied. A repeat check-in on the same day is a
// no-op that still reports current state, so clients can call this
// endpoint freely.
func (s *CheckinService) RecordCheckin(ctx context.Context, clerkID string) (*checkin.Result, error) {
	var learnerID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM learners WHERE clerk_id = $1`, clerkID).Scan(&learnerID)
	if err != nil {
		return nil, fmt.Errorf("learner not found: %w", err)
	}

	now := time.Now().UTC()

	continued, err := s.calc.ValidateStreakContinuity(ctx, clerkID, now)
	if err != nil {
		return nil, err
	}

	insert := `
	INSERT INTO daily_checkins (learner_id, checkin_date, checkin_at)
	VALUES ($1, CURRENT_DATE, $2)
	ON CONFLICT (learner_id, checkin_date) DO NOTHING
	`

	tag, err := s.db.Exec(ctx, insert, learnerID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to record check-in: %w", err)
	}
	firstToday := tag.RowsAffected() > 0

	count, err := s.calc.CalculateStreak(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	result := &checkin.Result{
		Streak:           count,
		Continued:        continued,
		AlreadyCheckedIn: !firstToday,
	}

	if firstToday {
		mult, xp, err := s.rewards.AwardCheckinXP(ctx, learnerID, count)
		if err != nil {
			return nil, err
		}
		result.Multiplier = mult
		result.XPAwarded = xp

		update := `
		UPDATE daily_checkins
		SET xp_awarded = $2, multiplier = $3, streak_after = $4
		WHERE learner_id = $1 AND checkin_date = CURRENT_DATE
		`
		if _, err := s.db.Exec(ctx, update, learnerID, xp, mult, count); err != nil {
			log.Printf("RecordCheckin: failed to annotate check-in row: %v", err)
		}

		s.rewards.EvaluateBadges(ctx, learnerID, clerkID, count)
		s.notifyTierUp(learnerID, count)
		s.notifyMilestone(learnerID, count)
	} else {
		strategy := s.rewards.Strategy()
		result.Multiplier = strategy.CalculateMultiplier(count)
	}

	strategy := s.rewards.Strategy()
	result.Tier = strategy.CurrentTier(count)
	result.NextTier = strategy.NextTier(count)
	result.TierProgress = strategy.ProgressToNextTier(count)

	status, err := s.calc.GetStreakStatus(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	result.Status = status

	if remaining, err := s.calc.GetTimeUntilStreakExpires(ctx, clerkID); err == nil && remaining != nil {
		seconds := int64(remaining.Seconds())
		result.ExpiresInSeconds = &seconds
	}

	return result, nil
}

// GetHistory lists a learner's check-in records, newest first.
func (s *CheckinService) GetHistory(ctx context.Context, clerkID string, limit int) ([]*checkin.Record, error) {
	if limit <= 0 || limit > 365 {
		limit = 30
	}

	query := `
	SELECT dc.id, dc.learner_id, dc.checkin_date, dc.checkin_at,
	       COALESCE(dc.xp_awarded, 0), COALESCE(dc.multiplier, 1.0), COALESCE(dc.streak_after, 0)
	FROM daily_checkins dc
	INNER JOIN learners l ON dc.learner_id = l.id
	WHERE l.clerk_id = $1
	ORDER BY dc.checkin_date DESC
	LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, clerkID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch check-in history: %w", err)
	}
	defer rows.Close()

	var records []*checkin.Record
	for rows.Next() {
		rec := &checkin.Record{}
		err := rows.Scan(
			&rec.ID,
			&rec.LearnerID,
			&rec.CheckinDate,
			&rec.CheckinAt,
			&rec.XPAwarded,
			&rec.Multiplier,
			&rec.StreakAfter,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check-in: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if records == nil {
		records = []*checkin.Record{}
	}

	return records, nil
}

var streakMilestones = map[int]string{
	7:   "One full week",
	30:  "One full month",
	100: "100 days",
	365: "One full year",
}

// notifyMilestone celebrates round-number streaks independently of the
// tier table, so milestone messages survive a custom or linear policy.
func (s *CheckinService) notifyMilestone(learnerID uuid.UUID, count int) {
	label, ok := streakMilestones[count]
	if !ok {
		return
	}

	go func() {
		req := &notification.CreateNotificationRequest{
			LearnerID: learnerID,
			Type:      notification.TypeStreakMilestone,
			Title:     fmt.Sprintf("%s! 🎉", label),
			Message:   fmt.Sprintf("You've checked in %d days in a row. Keep it going!", count),
			Data:      map[string]any{"streak": count},
		}
		if _, err := s.notifications.CreateNotification(context.Background(), req); err != nil {
			log.Printf("notifyMilestone: failed for learner %s: %v", learnerID, err)
		}
	}()
}

// notifyTierUp fires a notification when this check-in crossed a tier
// boundary. Runs in the background; a failure only logs.
func (s *CheckinService) notifyTierUp(learnerID uuid.UUID, count int) {
	strategy := s.rewards.Strategy()
	current := strategy.CurrentTier(count)
	previous := strategy.CurrentTier(count - 1)
	if current == nil || previous == nil || current.Name == previous.Name {
		return
	}

	go func() {
		req := &notification.CreateNotificationRequest{
			LearnerID: learnerID,
			Type:      notification.TypeTierUp,
			Title:     fmt.Sprintf("Tier up: %s %s", current.Name, current.Icon),
			Message:   fmt.Sprintf("Your %d-day streak reached the %s tier. Rewards now earn %.1fx.", count, current.Name, current.Multiplier),
			Data: map[string]any{
				"streak":     count,
				"tier":       current.Name,
				"multiplier": current.Multiplier,
			},
		}
		if _, err := s.notifications.CreateNotification(context.Background(), req); err != nil {
			log.Printf("notifyTierUp: failed for learner %s: %v", learnerID, err)
		}
	}()
}

