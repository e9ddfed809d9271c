package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"p2eInfernoAPI/middleware"
	"p2eInfernoAPI/services"
)

type CheckinHandler struct {
	checkinService *services.CheckinService
}

func NewCheckinHandler(checkinService *services.CheckinService) *CheckinHandler {
	return &CheckinHandler{
		checkinService: checkinService,
	}
}

// POST /api/v1/checkins - Record today's check-in. Idempotent: a repeat
// call the same day returns the current state without awarding again.
func (h *CheckinHandler) RecordCheckin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Learner not authenticated")
		return
	}

	result, err := h.checkinService.RecordCheckin(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to record check-in")
		return
	}

	status := http.StatusCreated
	if result.AlreadyCheckedIn {
		status = http.StatusOK
	} else {
		middleware.RecordCheckin(result.XPAwarded)
	}
	respondWithJSON(w, status, result)
}

// GET /api/v1/checkins/history?limit=30
func (h *CheckinHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Learner not authenticated")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	history, err := h.checkinService.GetHistory(ctx, clerkID, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch check-in history")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"checkins": history,
		"count":    len(history),
	})
}
