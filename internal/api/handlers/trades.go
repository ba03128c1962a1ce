package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/tradelog/backend/internal/journal"
	"github.com/wonny/tradelog/backend/pkg/logger"
)

// JournalStore is the slice of the journal repository the trade endpoints
// need
type JournalStore interface {
	GetTradesByUser(ctx context.Context, userID string) ([]journal.Trade, error)
	GetStrategiesByUser(ctx context.Context, userID string) ([]journal.Strategy, error)
	InsertTrade(ctx context.Context, t *journal.Trade) error
	DeleteTrade(ctx context.Context, userID, tradeID string) error
}

// TradeHandler handles journal CRUD endpoints
type TradeHandler struct {
	store  JournalStore
	logger *logger.Logger
}

// NewTradeHandler creates a new trade handler
func NewTradeHandler(store JournalStore, log *logger.Logger) *TradeHandler {
	return &TradeHandler{
		store:  store,
		logger: log,
	}
}

// ListTrades returns all trades for a user
// GET /api/trades/{userID}
func (h *TradeHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := mux.Vars(r)["userID"]

	trades, err := h.store.GetTradesByUser(ctx, userID)
	if err != nil {
		h.logger.WithError(err).WithField("user", userID).Error("Failed to list trades")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve trades")
		return
	}

	respondJSON(w, http.StatusOK, trades)
}

// ListStrategies returns all strategies for a user
// GET /api/strategies/{userID}
func (h *TradeHandler) ListStrategies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := mux.Vars(r)["userID"]

	strategies, err := h.store.GetStrategiesByUser(ctx, userID)
	if err != nil {
		h.logger.WithError(err).WithField("user", userID).Error("Failed to list strategies")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve strategies")
		return
	}

	respondJSON(w, http.StatusOK, strategies)
}

// CreateTrade logs a new trade. The result classification is always derived
// server-side from profit/loss and the break-even flag.
// POST /api/trades
func (h *TradeHandler) CreateTrade(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var trade journal.Trade
	if err := json.NewDecoder(r.Body).Decode(&trade); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if trade.ID == "" {
		trade.ID = journal.NewTradeID()
	}
	if trade.CreatedAt.IsZero() {
		trade.CreatedAt = time.Now().UTC()
	}

	if err := trade.Normalize(); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid trade: "+err.Error())
		return
	}

	if err := h.store.InsertTrade(ctx, &trade); err != nil {
		h.logger.WithError(err).WithField("user", trade.UserID).Error("Failed to insert trade")
		respondError(w, http.StatusBadRequest, "Failed to store trade")
		return
	}

	respondJSON(w, http.StatusCreated, trade)
}

// DeleteTrade removes a trade owned by the user
// DELETE /api/trades/{userID}/{tradeID}
func (h *TradeHandler) DeleteTrade(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)
	userID := vars["userID"]
	tradeID := vars["tradeID"]

	if err := h.store.DeleteTrade(ctx, userID, tradeID); err != nil {
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"user":  userID,
			"trade": tradeID,
		}).Error("Failed to delete trade")
		respondError(w, http.StatusNotFound, "Trade not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
