package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tradelog/backend/internal/journal"
	"github.com/wonny/tradelog/backend/internal/performance"
	"github.com/wonny/tradelog/backend/pkg/config"
	"github.com/wonny/tradelog/backend/pkg/logger"
)

type stubJournal struct {
	trades     []journal.Trade
	strategies []journal.Strategy
	inserted   []journal.Trade
	deleted    []string
	failWith   error
}

func (s *stubJournal) GetTradesByUser(ctx context.Context, userID string) ([]journal.Trade, error) {
	return s.trades, s.failWith
}

func (s *stubJournal) GetStrategiesByUser(ctx context.Context, userID string) ([]journal.Strategy, error) {
	return s.strategies, s.failWith
}

func (s *stubJournal) InsertTrade(ctx context.Context, t *journal.Trade) error {
	if s.failWith != nil {
		return s.failWith
	}
	s.inserted = append(s.inserted, *t)
	return nil
}

func (s *stubJournal) DeleteTrade(ctx context.Context, userID, tradeID string) error {
	if s.failWith != nil {
		return s.failWith
	}
	s.deleted = append(s.deleted, tradeID)
	return nil
}

type noopReports struct{}

func (noopReports) UpsertReport(ctx context.Context, userID string, report *performance.PerformanceReport, tradesAnalyzed int) error {
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(&config.Config{LogLevel: "error", LogFormat: "json", Env: "development"})
}

func sampleTrade(id string, pl float64) journal.Trade {
	return journal.Trade{
		ID:         id,
		UserID:     "u1",
		Pair:       "EURUSD",
		Direction:  journal.DirectionBuy,
		ProfitLoss: pl,
		Result:     journal.DeriveResult(pl, false),
		CreatedAt:  time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func newRouter(store *stubJournal) http.Handler {
	log := testLogger()

	analyzer := performance.NewAnalyzer(store, noopReports{}, nil, config.AnalysisConfig{
		VolatilePnLPerTrade: 50,
		RecentTradeWindow:   20,
	}, log)

	perfHandler := NewPerformanceHandler(analyzer, log)
	tradeHandler := NewTradeHandler(store, log)

	r := mux.NewRouter()
	r.HandleFunc("/api/performance/{userID}", perfHandler.GetReport).Methods("GET")
	r.HandleFunc("/api/performance/{userID}/refresh", perfHandler.Refresh).Methods("POST")
	r.HandleFunc("/api/trades/{userID}", tradeHandler.ListTrades).Methods("GET")
	r.HandleFunc("/api/trades", tradeHandler.CreateTrade).Methods("POST")
	r.HandleFunc("/api/trades/{userID}/{tradeID}", tradeHandler.DeleteTrade).Methods("DELETE")
	r.HandleFunc("/api/strategies/{userID}", tradeHandler.ListStrategies).Methods("GET")
	return r
}

func TestGetReport_ComputesFromJournal(t *testing.T) {
	store := &stubJournal{
		trades: []journal.Trade{
			sampleTrade("t1", 100),
			sampleTrade("t2", -50),
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/performance/u1", nil)
	rec := httptest.NewRecorder()
	newRouter(store).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(2), body["total_trades"])
	assert.Equal(t, float64(50), body["win_rate"])
}

func TestGetReport_FetchFailureIs500(t *testing.T) {
	store := &stubJournal{failWith: errors.New("db down")}

	req := httptest.NewRequest(http.MethodGet, "/api/performance/u1", nil)
	rec := httptest.NewRecorder()
	newRouter(store).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
}

func TestRefresh_RecomputesReport(t *testing.T) {
	store := &stubJournal{
		trades: []journal.Trade{sampleTrade("t1", 25)},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/performance/u1/refresh", nil)
	rec := httptest.NewRecorder()
	newRouter(store).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body["total_trades"])
}

func TestListTrades(t *testing.T) {
	store := &stubJournal{
		trades: []journal.Trade{sampleTrade("t1", 10), sampleTrade("t2", -5)},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/trades/u1", nil)
	rec := httptest.NewRecorder()
	newRouter(store).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body []journal.Trade
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body, 2)
}

func TestCreateTrade_DerivesResultAndID(t *testing.T) {
	store := &stubJournal{}

	payload := map[string]interface{}{
		"user_id":     "u1",
		"pair":        "BTCUSD",
		"direction":   "SELL",
		"profit_loss": -42.5,
	}
	raw, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/api/trades", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	newRouter(store).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.inserted, 1)

	created := store.inserted[0]
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, journal.ResultLoss, created.Result)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestCreateTrade_BadBodyIs400(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/trades", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	newRouter(&stubJournal{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteTrade(t *testing.T) {
	store := &stubJournal{}

	req := httptest.NewRequest(http.MethodDelete, "/api/trades/u1/t9", nil)
	rec := httptest.NewRecorder()
	newRouter(store).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"t9"}, store.deleted)
}

func TestListStrategies(t *testing.T) {
	store := &stubJournal{
		strategies: []journal.Strategy{{ID: "s1", UserID: "u1", Name: "Scalping"}},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/strategies/u1", nil)
	rec := httptest.NewRecorder()
	newRouter(store).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body []journal.Strategy
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "Scalping", body[0].Name)
}
