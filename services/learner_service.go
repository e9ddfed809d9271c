package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"p2eInfernoAPI/internal/learner"
)

type LearnerService struct {
	db *pgxpool.Pool
}

func NewLearnerService(db *pgxpool.Pool) *LearnerService {
	return &LearnerService{db: db}
}

func (s *LearnerService) CreateLearner(ctx context.Context, req *learner.CreateLearnerRequest) (*learner.Learner, error) {
	l := &learner.Learner{
		ID:        uuid.New().String(),
		ClerkID:   req.ClerkID,
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		ImageURL:  req.ImageURL,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	query := `
	INSERT INTO learners (id, clerk_id, email, username, first_name, last_name, image_url, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id, clerk_id, email, username, first_name, last_name, image_url, email_verified, created_at, updated_at
	`

	err := s.db.QueryRow(
		ctx,
		query,
		l.ID,
		l.ClerkID,
		l.Email,
		l.Username,
		l.FirstName,
		l.LastName,
		l.ImageURL,
		l.CreatedAt,
		l.UpdatedAt,
	).Scan(
		&l.ID,
		&l.ClerkID,
		&l.Email,
		&l.Username,
		&l.FirstName,
		&l.LastName,
		&l.ImageURL,
		&l.EmailVerified,
		&l.CreatedAt,
		&l.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create learner: %w", err)
	}

	return l, nil
}

func (s *LearnerService) GetLearnerByClerkID(ctx context.Context, clerkID string) (*learner.Learner, error) {
	query := `
	SELECT id, clerk_id, email, username, first_name, last_name, image_url, email_verified, created_at, updated_at, xp, dg_tokens, total_checkins
	FROM learners
	WHERE clerk_id = $1
	`

	l := &learner.Learner{}
	err := s.db.QueryRow(ctx, query, clerkID).Scan(
		&l.ID,
		&l.ClerkID,
		&l.Email,
		&l.Username,
		&l.FirstName,
		&l.LastName,
		&l.ImageURL,
		&l.EmailVerified,
		&l.CreatedAt,
		&l.UpdatedAt,
		&l.XP,
		&l.DGTokens,
		&l.TotalCheckins,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("learner not found")
		}
		return nil, fmt.Errorf("failed to get learner: %w", err)
	}

	return l, nil
}

func (s *LearnerService) UpdateProfileByClerkID(ctx context.Context, clerkID string, req *learner.UpdateProfileRequest) (*learner.Learner, error) {
	query := `
	UPDATE learners
	SET
		username = COALESCE(NULLIF($2, ''), username),
		first_name = COALESCE(NULLIF($3, ''), first_name),
		last_name = COALESCE(NULLIF($4, ''), last_name),
		image_url = COALESCE(NULLIF($5, ''), image_url),
		updated_at = NOW()
	WHERE clerk_id = $1
	RETURNING id, clerk_id, email, username, first_name, last_name, image_url, email_verified, created_at, updated_at, xp, dg_tokens, total_checkins
	`

	l := &learner.Learner{}
	err := s.db.QueryRow(
		ctx,
		query,
		clerkID,
		req.Username,
		req.FirstName,
		req.LastName,
		req.ImageURL,
	).Scan(
		&l.ID,
		&l.ClerkID,
		&l.Email,
		&l.Username,
		&l.FirstName,
		&l.LastName,
		&l.ImageURL,
		&l.EmailVerified,
		&l.CreatedAt,
		&l.UpdatedAt,
		&l.XP,
		&l.DGTokens,
		&l.TotalCheckins,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("learner not found")
		}
		return nil, fmt.Errorf("failed to update learner: %w", err)
	}

	return l, nil
}

func (s *LearnerService) DeleteLearnerByClerkID(ctx context.Context, clerkID string) error {
	query := `DELETE FROM learners WHERE clerk_id = $1`

	result, err := s.db.Exec(ctx, query, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete learner: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("learner not found")
	}

	return nil
}

func (s *LearnerService) UpdateEmailVerification(ctx context.Context, clerkID string, verified bool) error {
	query := `
	UPDATE learners
	SET email_verified = $2, updated_at = NOW()
	WHERE clerk_id = $1
	`

	_, err := s.db.Exec(ctx, query, clerkID, verified)
	return err
}

// resolveLearnerID maps a Clerk ID onto the internal learner UUID.
func (s *LearnerService) resolveLearnerID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM learners WHERE clerk_id = $1`, clerkID).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("learner not found: %w", err)
	}
	return id, nil
}
