package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"p2eInfernoAPI/internal/notification"
	"p2eInfernoAPI/internal/streak"
	"p2eInfernoAPI/middleware"
)

// SweepSource is what the sweeps need from the notification layer:
// find the learners to warn and record the warning. Implemented by
// services.NotificationService.
type SweepSource interface {
	FindAtRiskLearners(ctx context.Context, gap, warnWindow time.Duration) ([]notification.AtRiskLearner, error)
	FindBrokenStreakLearners(ctx context.Context, gap time.Duration) ([]notification.AtRiskLearner, error)
	StreakForLearner(ctx context.Context, learnerID uuid.UUID) (int, error)
	CreateNotification(ctx context.Context, req *notification.CreateNotificationRequest) (*notification.Notification, error)
}

// Scheduler runs the streak maintenance sweeps on cron schedules.
type Scheduler struct {
	cron       *cron.Cron
	gap        time.Duration
	warnWindow time.Duration
	atRiskSpec string
	brokenSpec string
}

// Config for the background sweeps. Specs are standard 5-field cron
// expressions evaluated in the given location.
type Config struct {
	MaxStreakGap time.Duration
	WarnWindow   time.Duration
	AtRiskSpec   string
	BrokenSpec   string
	Location     *time.Location
}

func NewScheduler(cfg Config) *Scheduler {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	warn := cfg.WarnWindow
	if warn <= 0 {
		warn = 3 * time.Hour
	}
	gap := cfg.MaxStreakGap
	if gap <= 0 {
		gap = streak.DefaultMaxStreakGap
	}
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		gap:        gap,
		warnWindow: warn,
		atRiskSpec: cfg.AtRiskSpec,
		brokenSpec: cfg.BrokenSpec,
	}
}

// Start registers both sweeps and starts the cron loop.
func (s *Scheduler) Start(svc SweepSource) error {
	if _, err := s.cron.AddFunc(s.atRiskSpec, func() { s.runAtRiskSweep(svc) }); err != nil {
		return fmt.Errorf("invalid at-risk schedule %q: %w", s.atRiskSpec, err)
	}
	if _, err := s.cron.AddFunc(s.brokenSpec, func() { s.runBrokenSweep(svc) }); err != nil {
		return fmt.Errorf("invalid broken-streak schedule %q: %w", s.brokenSpec, err)
	}

	s.cron.Start()
	log.Printf("Streak sweep scheduler started (at-risk %q, broken %q)", s.atRiskSpec, s.brokenSpec)
	return nil
}

// Stop halts the cron loop and waits for running sweeps to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Streak sweep scheduler stopped")
}

func (s *Scheduler) runAtRiskSweep(svc SweepSource) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	learners, err := svc.FindAtRiskLearners(ctx, s.gap, s.warnWindow)
	if err != nil {
		log.Printf("[CRON] at-risk sweep failed: %v", err)
		return
	}

	for _, l := range learners {
		count, err := svc.StreakForLearner(ctx, l.LearnerID)
		if err != nil {
			log.Printf("[CRON] streak lookup failed for %s: %v", l.LearnerID, err)
			continue
		}
		if count == 0 {
			continue
		}

		expires := l.LastCheckin.Add(s.gap)
		remaining := time.Until(expires).Round(time.Minute)
		if remaining < 0 {
			continue
		}

		req := &notification.CreateNotificationRequest{
			LearnerID: l.LearnerID,
			Type:      notification.TypeStreakRisk,
			Title:     "Your streak is at risk! 🔥",
			Message:   fmt.Sprintf("Check in within %s to keep your %d-day streak alive.", remaining, count),
			Data: map[string]any{
				"current_streak": count,
				"expires_at":     expires.UTC().Format(time.RFC3339),
			},
		}
		if _, err := svc.CreateNotification(ctx, req); err != nil {
			log.Printf("[CRON] at-risk notification failed for %s: %v", l.LearnerID, err)
			continue
		}
		middleware.RecordStreakNotification(string(notification.TypeStreakRisk))
	}

	if len(learners) > 0 {
		log.Printf("[CRON] at-risk sweep warned %d learners", len(learners))
	}
}

func (s *Scheduler) runBrokenSweep(svc SweepSource) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	learners, err := svc.FindBrokenStreakLearners(ctx, s.gap)
	if err != nil {
		log.Printf("[CRON] broken-streak sweep failed: %v", err)
		return
	}

	for _, l := range learners {
		req := &notification.CreateNotificationRequest{
			LearnerID: l.LearnerID,
			Type:      notification.TypeStreakBroken,
			Title:     "Your streak has ended",
			Message:   "Your daily streak was broken. Check in today to start a new one!",
			Data: map[string]any{
				"last_checkin": l.LastCheckin.UTC().Format(time.RFC3339),
			},
		}
		if _, err := svc.CreateNotification(ctx, req); err != nil {
			log.Printf("[CRON] broken-streak notification failed for %s: %v", l.LearnerID, err)
			continue
		}
		middleware.RecordStreakNotification(string(notification.TypeStreakBroken))
	}

	if len(learners) > 0 {
		log.Printf("[CRON] broken-streak sweep notified %d learners", len(learners))
	}
}
