package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/tradelog/backend/internal/performance"
	"github.com/wonny/tradelog/backend/pkg/logger"
)

// PerformanceHandler handles performance report endpoints
type PerformanceHandler struct {
	analyzer *performance.Analyzer
	logger   *logger.Logger
}

// NewPerformanceHandler creates a new performance handler
func NewPerformanceHandler(analyzer *performance.Analyzer, log *logger.Logger) *PerformanceHandler {
	return &PerformanceHandler{
		analyzer: analyzer,
		logger:   log,
	}
}

// GetReport returns the user's performance report, serving a cached copy
// when one is available
// GET /api/performance/{userID}
func (h *PerformanceHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := mux.Vars(r)["userID"]

	if report, ok := h.analyzer.Cached(ctx, userID); ok {
		respondJSON(w, http.StatusOK, report)
		return
	}

	report, err := h.analyzer.Analyze(ctx, userID)
	if err != nil {
		h.logger.WithError(err).WithField("user", userID).Error("Failed to analyze performance")
		respondError(w, http.StatusInternalServerError, "Failed to compute performance report")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// Refresh forces a recomputation, bypassing caches
// POST /api/performance/{userID}/refresh
func (h *PerformanceHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := mux.Vars(r)["userID"]

	report, err := h.analyzer.Analyze(ctx, userID)
	if err != nil {
		h.logger.WithError(err).WithField("user", userID).Error("Failed to refresh performance report")
		respondError(w, http.StatusInternalServerError, "Failed to compute performance report")
		return
	}

	respondJSON(w, http.StatusOK, report)
}
