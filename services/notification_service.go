package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"p2eInfernoAPI/internal/notification"
)

// PushProvider delivers a notification to a learner's registered
// devices. Implemented by notification.FCMService; nil means push
// delivery is disabled and notifications stay in-app only.
type PushProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

type NotificationService struct {
	db           *pgxpool.Pool
	pushProvider PushProvider
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	return &NotificationService{db: db}
}

// SetPushProvider wires the push backend after construction. Optional.
func (s *NotificationService) SetPushProvider(p PushProvider) {
	s.pushProvider = p
}

func (s *NotificationService) getLearnerID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var learnerID uuid.UUID
	err := s.db.QueryRow(ctx, "SELECT id FROM learners WHERE clerk_id = $1", clerkID).Scan(&learnerID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("learner not found for clerk_id %s: %w", clerkID, err)
	}
	return learnerID, nil
}

// CreateNotification persists an in-app notification and pushes it to
// the learner's devices in the background.
func (s *NotificationService) CreateNotification(ctx context.Context, req *notification.CreateNotificationRequest) (*notification.Notification, error) {
	dataJSON, _ := json.Marshal(req.Data)

	query := `
	INSERT INTO notifications (id, learner_id, type, title, message, data, created_at)
	VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, NOW())
	RETURNING id, learner_id, type, title, message, is_read, data, created_at
	`

	notif := &notification.Notification{}
	var dataStr string

	err := s.db.QueryRow(
		ctx, query,
		req.LearnerID, req.Type, req.Title, req.Message, dataJSON,
	).Scan(
		&notif.ID, &notif.LearnerID, &notif.Type, &notif.Title,
		&notif.Message, &notif.IsRead, &dataStr, &notif.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	json.Unmarshal([]byte(dataStr), &notif.Data)

	go s.dispatchPush(notif)

	return notif, nil
}

// dispatchPush fans the notification out to registered devices. Runs
// detached from the request; failures only log.
func (s *NotificationService) dispatchPush(notif *notification.Notification) {
	if s.pushProvider == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tokens, err := s.deviceTokens(ctx, notif.LearnerID)
	if err != nil {
		log.Printf("dispatchPush: token lookup failed for learner %s: %v", notif.LearnerID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	data := map[string]any{"type": string(notif.Type)}
	for k, v := range notif.Data {
		data[k] = v
	}

	if err := s.pushProvider.SendPush(ctx, tokens, notif.Title, notif.Message, data); err != nil {
		log.Printf("dispatchPush: delivery failed for learner %s: %v", notif.LearnerID, err)
	}
}

func (s *NotificationService) deviceTokens(ctx context.Context, learnerID uuid.UUID) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx, `SELECT token, platform FROM device_tokens WHERE learner_id = $1`, learnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []notification.DeviceToken
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.Token, &t.Platform); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, nil
}

// GetNotifications returns the learner's notifications newest-first.
func (s *NotificationService) GetNotifications(ctx context.Context, clerkID string, page, pageSize int, unreadOnly bool) (*notification.ListResponse, error) {
	learnerID, err := s.getLearnerID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	whereClause := "WHERE learner_id = $1"
	if unreadOnly {
		whereClause += " AND is_read = false"
	}

	query := fmt.Sprintf(`
	SELECT id, learner_id, type, title, message, is_read, data, created_at
	FROM notifications
	%s
	ORDER BY created_at DESC
	LIMIT $2 OFFSET $3
	`, whereClause)

	rows, err := s.db.Query(ctx, query, learnerID, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*notification.Notification
	for rows.Next() {
		notif := &notification.Notification{}
		var dataStr string
		err := rows.Scan(
			&notif.ID, &notif.LearnerID, &notif.Type, &notif.Title,
			&notif.Message, &notif.IsRead, &dataStr, &notif.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		json.Unmarshal([]byte(dataStr), &notif.Data)
		notifications = append(notifications, notif)
	}
	if notifications == nil {
		notifications = []*notification.Notification{}
	}

	var unreadCount, totalCount int
	s.db.QueryRow(ctx, "SELECT COUNT(*) FROM notifications WHERE learner_id = $1 AND is_read = false", learnerID).Scan(&unreadCount)
	s.db.QueryRow(ctx, "SELECT COUNT(*) FROM notifications WHERE learner_id = $1", learnerID).Scan(&totalCount)

	return &notification.ListResponse{
		Notifications: notifications,
		UnreadCount:   unreadCount,
		TotalCount:    totalCount,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, clerkID string) (int, error) {
	learnerID, err := s.getLearnerID(ctx, clerkID)
	if err != nil {
		return 0, err
	}

	var unreadCount int
	query := "SELECT COUNT(*) FROM notifications WHERE learner_id = $1 AND is_read = false"
	if err := s.db.QueryRow(ctx, query, learnerID).Scan(&unreadCount); err != nil {
		return 0, fmt.Errorf("failed to get unread count: %w", err)
	}
	return unreadCount, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID uuid.UUID, clerkID string) error {
	learnerID, err := s.getLearnerID(ctx, clerkID)
	if err != nil {
		return err
	}

	query := `
	UPDATE notifications
	SET is_read = true
	WHERE id = $1 AND learner_id = $2 AND is_read = false
	`
	result, err := s.db.Exec(ctx, query, notificationID, learnerID)
	if err != nil {
		return fmt.Errorf("failed to mark as read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("notification not found or already read")
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, clerkID string) error {
	learnerID, err := s.getLearnerID(ctx, clerkID)
	if err != nil {
		return err
	}

	query := `UPDATE notifications SET is_read = true WHERE learner_id = $1 AND is_read = false`
	_, err = s.db.Exec(ctx, query, learnerID)
	return err
}

func (s *NotificationService) DeleteNotification(ctx context.Context, notificationID uuid.UUID, clerkID string) error {
	learnerID, err := s.getLearnerID(ctx, clerkID)
	if err != nil {
		return err
	}

	query := "DELETE FROM notifications WHERE id = $1 AND learner_id = $2"
	result, err := s.db.Exec(ctx, query, notificationID, learnerID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("notification not found")
	}
	return nil
}

// RegisterDevice upserts a push token. A token moving between learners
// (device handed to another account) is reassigned.
func (s *NotificationService) RegisterDevice(ctx context.Context, clerkID string, req notification.RegisterDeviceRequest) error {
	learnerID, err := s.getLearnerID(ctx, clerkID)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO device_tokens (learner_id, token, platform, created_at, last_used_at)
	VALUES ($1, $2, $3, NOW(), NOW())
	ON CONFLICT (token)
	DO UPDATE SET learner_id = $1, platform = $3, last_used_at = NOW()
	`
	if _, err := s.db.Exec(ctx, query, learnerID, req.Token, req.Platform); err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

// FindAtRiskLearners returns learners whose last check-in falls inside
// the warning window before their streak would break, skipping anyone
// already warned since that check-in.
func (s *NotificationService) FindAtRiskLearners(ctx context.Context, gap, warnWindow time.Duration) ([]notification.AtRiskLearner, error) {
	query := `
	SELECT lc.learner_id, lc.last_checkin
	FROM (
		SELECT learner_id, MAX(checkin_at) AS last_checkin
		FROM daily_checkins
		GROUP BY learner_id
	) lc
	WHERE lc.last_checkin <= NOW() - make_interval(secs => $1)
		AND lc.last_checkin > NOW() - make_interval(secs => $2)
		AND NOT EXISTS (
			SELECT 1 FROM notifications n
			WHERE n.learner_id = lc.learner_id
				AND n.type = 'streak_risk'
				AND n.created_at > lc.last_checkin
		)
	`

	warnStart := gap - warnWindow
	rows, err := s.db.Query(ctx, query, warnStart.Seconds(), gap.Seconds())
	if err != nil {
		return nil, fmt.Errorf("failed to find at-risk learners: %w", err)
	}
	defer rows.Close()

	return scanRiskRows(rows)
}

// FindBrokenStreakLearners returns learners whose streak broke within
// the last sweep period and who have not yet been told.
func (s *NotificationService) FindBrokenStreakLearners(ctx context.Context, gap time.Duration) ([]notification.AtRiskLearner, error) {
	query := `
	SELECT lc.learner_id, lc.last_checkin
	FROM (
		SELECT learner_id, MAX(checkin_at) AS last_checkin
		FROM daily_checkins
		GROUP BY learner_id
	) lc
	WHERE lc.last_checkin <= NOW() - make_interval(secs => $1)
		AND lc.last_checkin > NOW() - make_interval(secs => $2)
		AND NOT EXISTS (
			SELECT 1 FROM notifications n
			WHERE n.learner_id = lc.learner_id
				AND n.type = 'streak_broken'
				AND n.created_at > lc.last_checkin
		)
	`

	rows, err := s.db.Query(ctx, query, gap.Seconds(), (gap + 24*time.Hour).Seconds())
	if err != nil {
		return nil, fmt.Errorf("failed to find broken streaks: %w", err)
	}
	defer rows.Close()

	return scanRiskRows(rows)
}

func scanRiskRows(rows pgx.Rows) ([]notification.AtRiskLearner, error) {
	var learners []notification.AtRiskLearner
	for rows.Next() {
		var l notification.AtRiskLearner
		if err := rows.Scan(&l.LearnerID, &l.LastCheckin); err != nil {
			return nil, fmt.Errorf("failed to scan learner: %w", err)
		}
		learners = append(learners, l)
	}
	return learners, rows.Err()
}

// StreakForLearner resolves the learner's consecutive-day count by
// internal ID, for sweep notifications that want to include it.
func (s *NotificationService) StreakForLearner(ctx context.Context, learnerID uuid.UUID) (int, error) {
	query := `
	WITH RECURSIVE streak_days AS (
		SELECT checkin_date, 1 AS streak_length
		FROM daily_checkins
		WHERE learner_id = $1
			AND checkin_date = (
				SELECT MAX(checkin_date) FROM daily_checkins WHERE learner_id = $1
			)
		UNION ALL
		SELECT dc.checkin_date, sd.streak_length + 1
		FROM daily_checkins dc
		JOIN streak_days sd ON dc.checkin_date = sd.checkin_date - INTERVAL '1 day'
		WHERE dc.learner_id = $1
	)
	SELECT COALESCE(MAX(streak_length), 0) FROM streak_days
	`

	var count int
	err := s.db.QueryRow(ctx, query, learnerID).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to count streak: %w", err)
	}
	return count, nil
}
