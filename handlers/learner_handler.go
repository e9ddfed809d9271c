package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"p2eInfernoAPI/internal/learner"
	"p2eInfernoAPI/middleware"
	"p2eInfernoAPI/services"
)

type LearnerHandler struct {
	learnerService *services.LearnerService
	rewardService  *services.RewardService
}

func NewLearnerHandler(learnerService *services.LearnerService, rewardService *services.RewardService) *LearnerHandler {
	return &LearnerHandler{
		learnerService: learnerService,
		rewardService:  rewardService,
	}
}

func (h *LearnerHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Learner not authenticated")
		return
	}

	profile, err := h.learnerService.GetLearnerByClerkID(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Learner not found")
		return
	}

	respondWithJSON(w, http.StatusOK, profile)
}

func (h *LearnerHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Learner not authenticated")
		return
	}

	var req learner.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.learnerService.UpdateProfileByClerkID(ctx, clerkID, &req)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *LearnerHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Learner not authenticated")
		return
	}

	board, err := h.rewardService.GetLeaderboard(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch leaderboard")
		return
	}

	respondWithJSON(w, http.StatusOK, board)
}

func (h *LearnerHandler) GetBadges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Learner not authenticated")
		return
	}

	badges, err := h.rewardService.GetBadges(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch badges")
		return
	}

	respondWithJSON(w, http.StatusOK, badges)
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
