package services

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"p2eInfernoAPI/internal/badge"
	"p2eInfernoAPI/internal/cache"
	"p2eInfernoAPI/internal/config"
	"p2eInfernoAPI/internal/leaderboard"
	"p2eInfernoAPI/internal/multiplier"
	"p2eInfernoAPI/internal/notification"
)

const leaderboardCacheKey = "leaderboard:global"

// RewardService turns streak counts into XP awards through the
// configured multiplier strategy, evaluates milestone badges, and serves
// the XP leaderboard.
type RewardService struct {
	db            *pgxpool.Pool
	strategy      multiplier.Strategy
	baseXP        int
	cache         *cache.Cache
	notifications *NotificationService
	cfg           *config.Config
}

func NewRewardService(db *pgxpool.Pool, cfg *config.Config, c *cache.Cache, notifications *NotificationService) *RewardService {
	return &RewardService{
		db:            db,
		strategy:      buildStrategy(cfg),
		baseXP:        cfg.CheckinBaseXP,
		cache:         c,
		notifications: notifications,
		cfg:           cfg,
	}
}

// buildStrategy assembles the multiplier policy from config, optionally
// wrapped in the seasonal decorator.
func buildStrategy(cfg *config.Config) multiplier.Strategy {
	var base multiplier.Strategy
	switch cfg.MultiplierStrategy {
	case "linear":
		base = multiplier.NewLinearStrategy(multiplier.LinearConfig{
			BaseMultiplier:   cfg.MultiplierBase,
			IncrementPerWeek: cfg.MultiplierIncrement,
			MaxMultiplier:    cfg.MultiplierMax,
			IntervalDays:     cfg.MultiplierIntervalDays,
		})
	case "exponential":
		base = multiplier.NewExponentialStrategy(multiplier.ExponentialConfig{
			BaseMultiplier: cfg.MultiplierBase,
			ExponentBase:   cfg.MultiplierExponentBase,
			MaxMultiplier:  cfg.MultiplierMax,
			IntervalDays:   cfg.MultiplierIntervalDays,
		})
	default:
		base = multiplier.NewTieredStrategy(nil)
	}

	if cfg.SeasonalEnabled {
		start, end := cfg.SeasonalWindow()
		return multiplier.NewSeasonalStrategy(base, cfg.SeasonalMultiplier, start, end)
	}
	return base
}

// Strategy exposes the active multiplier policy for read-only queries.
func (s *RewardService) Strategy() multiplier.Strategy {
	return s.strategy
}

// AwardCheckinXP credits the learner with base XP scaled by the streak
// multiplier. Returns the multiplier and the XP actually awarded.
func (s *RewardService) AwardCheckinXP(ctx context.Context, learnerID uuid.UUID, streakCount int) (float64, int, error) {
	mult := s.strategy.CalculateMultiplier(streakCount)
	xp := int(math.Round(float64(s.baseXP) * mult))

	query := `
	UPDATE learners
	SET xp = xp + $2, total_checkins = total_checkins + 1, updated_at = NOW()
	WHERE id = $1
	`

	if _, err := s.db.Exec(ctx, query, learnerID, xp); err != nil {
		return 0, 0, fmt.Errorf("failed to award XP: %w", err)
	}

	s.cache.Invalidate(ctx, leaderboardCacheKey)

	return mult, xp, nil
}

// EvaluateBadges grants any streak badges the learner now qualifies for.
// Runs inline but failures only log; badge grants never block a check-in.
func (s *RewardService) EvaluateBadges(ctx context.Context, learnerID uuid.UUID, clerkID string, streakCount int) {
	query := `
	INSERT INTO learner_badges (id, learner_id, badge_id, earned_at)
	SELECT gen_random_uuid(), $1, b.id, NOW()
	FROM badges b
	WHERE b.criteria_type = 'streak'
		AND b.criteria_value <= $2
		AND NOT EXISTS (
			SELECT 1 FROM learner_badges lb
			WHERE lb.learner_id = $1 AND lb.badge_id = b.id
		)
	RETURNING badge_id
	`

	rows, err := s.db.Query(ctx, query, learnerID, streakCount)
	if err != nil {
		log.Printf("EvaluateBadges: failed for learner %s: %v", learnerID, err)
		return
	}
	defer rows.Close()

	var earned []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			continue
		}
		earned = append(earned, id)
	}

	for _, badgeID := range earned {
		s.notifyBadgeEarned(learnerID, badgeID)
	}
}

func (s *RewardService) notifyBadgeEarned(learnerID, badgeID uuid.UUID) {
	go func() {
		ctx := context.Background()

		var b badge.Badge
		err := s.db.QueryRow(ctx, `SELECT id, name, description, icon FROM badges WHERE id = $1`, badgeID).
			Scan(&b.ID, &b.Name, &b.Description, &b.Icon)
		if err != nil {
			log.Printf("notifyBadgeEarned: badge %s lookup failed: %v", badgeID, err)
			return
		}

		req := &notification.CreateNotificationRequest{
			LearnerID: learnerID,
			Type:      notification.TypeBadgeEarned,
			Title:     fmt.Sprintf("Badge earned: %s %s", b.Name, b.Icon),
			Message:   b.Description,
			Data:      map[string]any{"badge_id": b.ID.String(), "badge": b.Name},
		}
		if _, err := s.notifications.CreateNotification(ctx, req); err != nil {
			log.Printf("notifyBadgeEarned: failed for learner %s: %v", learnerID, err)
		}
	}()
}

// GetBadges lists every badge with the learner's earned status.
func (s *RewardService) GetBadges(ctx context.Context, clerkID string) ([]*badge.BadgeWithStatus, error) {
	var learnerID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM learners WHERE clerk_id = $1`, clerkID).Scan(&learnerID)
	if err != nil {
		return nil, fmt.Errorf("learner not found: %w", err)
	}

	query := `
	SELECT
		b.id,
		b.name,
		b.description,
		b.icon,
		b.criteria_type,
		b.criteria_value,
		b.created_at,
		CASE WHEN lb.id IS NOT NULL THEN true ELSE false END as earned,
		lb.earned_at
	FROM badges b
	LEFT JOIN learner_badges lb ON b.id = lb.badge_id AND lb.learner_id = $1
	ORDER BY earned DESC, b.criteria_value ASC
	`

	rows, err := s.db.Query(ctx, query, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch badges: %w", err)
	}
	defer rows.Close()

	var badges []*badge.BadgeWithStatus
	for rows.Next() {
		b := &badge.BadgeWithStatus{}
		err := rows.Scan(
			&b.ID,
			&b.Name,
			&b.Description,
			&b.Icon,
			&b.CriteriaType,
			&b.CriteriaValue,
			&b.CreatedAt,
			&b.Earned,
			&b.EarnedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, b)
	}

	return badges, nil
}

// GetLeaderboard ranks learners by XP with current streak as tiebreaker.
// The top-50 snapshot is cached in Redis; the caller's own position is
// always resolved fresh against the full table.
func (s *RewardService) GetLeaderboard(ctx context.Context, clerkID string) (*leaderboard.Leaderboard, error) {
	var learnerID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM learners WHERE clerk_id = $1`, clerkID).Scan(&learnerID)
	if err != nil {
		return nil, fmt.Errorf("learner not found: %w", err)
	}

	var entries []*leaderboard.Entry
	if !s.cache.GetJSON(ctx, leaderboardCacheKey, &entries) {
		entries, err = s.queryLeaderboard(ctx)
		if err != nil {
			return nil, err
		}
		s.cache.SetJSON(ctx, leaderboardCacheKey, entries, s.cfg.LeaderboardTTL)
	}

	var position *leaderboard.Entry
	for _, entry := range entries {
		if entry.LearnerID == learnerID {
			position = entry
			break
		}
	}
	if position == nil {
		position, err = s.queryLearnerPosition(ctx, learnerID)
		if err != nil {
			log.Printf("GetLeaderboard: position lookup failed for %s: %v", learnerID, err)
		}
	}

	return &leaderboard.Leaderboard{
		Entries:         entries,
		LearnerPosition: position,
		TotalLearners:   len(entries),
	}, nil
}

func (s *RewardService) queryLeaderboard(ctx context.Context) ([]*leaderboard.Entry, error) {
	query := `
	SELECT
		l.id AS learner_id,
		l.username,
		l.image_url,
		l.xp,
		COALESCE(sc.current_streak, 0) AS current_streak,
		RANK() OVER (ORDER BY l.xp DESC, COALESCE(sc.current_streak, 0) DESC) AS rank
	FROM learners l
	LEFT JOIN LATERAL (
		SELECT COUNT(*) AS current_streak
		FROM daily_checkins dc
		WHERE dc.learner_id = l.id
			AND dc.checkin_date > (
				SELECT COALESCE(MAX(gap.checkin_date), '1970-01-01'::date)
				FROM daily_checkins gap
				WHERE gap.learner_id = l.id
					AND NOT EXISTS (
						SELECT 1 FROM daily_checkins nxt
						WHERE nxt.learner_id = l.id
							AND nxt.checkin_date = gap.checkin_date + INTERVAL '1 day'
					)
					AND gap.checkin_date < CURRENT_DATE - INTERVAL '1 day'
			)
	) sc ON true
	ORDER BY l.xp DESC, current_streak DESC
	LIMIT 50
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []*leaderboard.Entry
	for rows.Next() {
		entry := &leaderboard.Entry{}
		err := rows.Scan(
			&entry.LearnerID,
			&entry.Username,
			&entry.ImageURL,
			&entry.XP,
			&entry.CurrentStreak,
			&entry.Rank,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		entries = append(entries, entry)
	}

	if entries == nil {
		entries = []*leaderboard.Entry{}
	}

	return entries, nil
}

func (s *RewardService) queryLearnerPosition(ctx context.Context, learnerID uuid.UUID) (*leaderboard.Entry, error) {
	query := `
	WITH ranked AS (
		SELECT
			id,
			username,
			image_url,
			xp,
			RANK() OVER (ORDER BY xp DESC) AS rank
		FROM learners
	)
	SELECT id, username, image_url, xp, rank
	FROM ranked
	WHERE id = $1
	`

	entry := &leaderboard.Entry{}
	err := s.db.QueryRow(ctx, query, learnerID).Scan(
		&entry.LearnerID,
		&entry.Username,
		&entry.ImageURL,
		&entry.XP,
		&entry.Rank,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to rank learner: %w", err)
	}

	return entry, nil
}
