package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"p2eInfernoAPI/internal/streak"
	"p2eInfernoAPI/middleware"
	"p2eInfernoAPI/services"
)

type StreakHandler struct {
	calc          *streak.Calculator
	rewardService *services.RewardService
}

func NewStreakHandler(calc *streak.Calculator, rewardService *services.RewardService) *StreakHandler {
	return &StreakHandler{
		calc:          calc,
		rewardService: rewardService,
	}
}

// GET /api/v1/streak - Current streak, status, and time until it breaks.
func (h *StreakHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Learner not authenticated")
		return
	}

	info, err := h.calc.GetStreakInfo(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch streak")
		return
	}

	status, err := h.calc.GetStreakStatus(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch streak status")
		return
	}

	payload := map[string]interface{}{
		"current_streak":    info.CurrentStreak,
		"last_checkin_date": info.LastCheckinDate,
		"is_active":         info.IsActive,
		"status":            status,
	}

	if remaining, err := h.calc.GetTimeUntilStreakExpires(ctx, clerkID); err == nil && remaining != nil {
		payload["expires_in_seconds"] = int64(remaining.Seconds())
	}

	respondWithJSON(w, http.StatusOK, payload)
}

// GET /api/v1/streak/multiplier - The learner's multiplier and tier standing.
func (h *StreakHandler) GetMultiplier(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Learner not authenticated")
		return
	}

	count, err := h.calc.CalculateStreak(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to calculate streak")
		return
	}

	strategy := h.rewardService.Strategy()

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"current_streak": count,
		"multiplier":     strategy.CalculateMultiplier(count),
		"tier":           strategy.CurrentTier(count),
		"next_tier":      strategy.NextTier(count),
		"tier_progress":  strategy.ProgressToNextTier(count),
	})
}

// GET /api/v1/streak/tiers - The full tier table, optionally previewing
// the multiplier at a given streak (?streak=N).
func (h *StreakHandler) GetTiers(w http.ResponseWriter, r *http.Request) {
	strategy := h.rewardService.Strategy()

	payload := map[string]interface{}{
		"tiers":      strategy.Tiers(),
		"tier_count": strategy.TierCount(),
	}

	if raw := r.URL.Query().Get("streak"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid streak value")
			return
		}
		payload["preview_streak"] = n
		payload["preview_multiplier"] = strategy.CalculateMultiplier(n)
	}

	respondWithJSON(w, http.StatusOK, payload)
}
