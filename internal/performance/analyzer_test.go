package performance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tradelog/backend/internal/journal"
	"github.com/wonny/tradelog/backend/pkg/config"
	"github.com/wonny/tradelog/backend/pkg/logger"
)

type stubSource struct {
	trades     []journal.Trade
	strategies []journal.Strategy
	tradesErr  error
	stratErr   error
}

func (s *stubSource) GetTradesByUser(ctx context.Context, userID string) ([]journal.Trade, error) {
	return s.trades, s.tradesErr
}

func (s *stubSource) GetStrategiesByUser(ctx context.Context, userID string) ([]journal.Strategy, error) {
	return s.strategies, s.stratErr
}

type stubStore struct {
	upserts int
	lastN   int
	err     error
}

func (s *stubStore) UpsertReport(ctx context.Context, userID string, report *PerformanceReport, tradesAnalyzed int) error {
	s.upserts++
	s.lastN = tradesAnalyzed
	return s.err
}

func testLogger() *logger.Logger {
	return logger.New(&config.Config{LogLevel: "error", LogFormat: "json", Env: "development"})
}

func testAnalysisConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		VolatilePnLPerTrade: 50,
		RecentTradeWindow:   20,
	}
}

func TestAnalyzer_AnalyzeComputesAndPersists(t *testing.T) {
	source := &stubSource{
		trades: []journal.Trade{
			trade("t1", 100, false, day(0)),
			trade("t2", -50, false, day(1)),
		},
	}
	store := &stubStore{}

	analyzer := NewAnalyzer(source, store, nil, testAnalysisConfig(), testLogger())

	report, err := analyzer.Analyze(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalTrades)
	assert.Equal(t, 1, store.upserts)
	assert.Equal(t, 2, store.lastN)
}

func TestAnalyzer_FetchErrorPropagates(t *testing.T) {
	source := &stubSource{tradesErr: errors.New("connection refused")}
	store := &stubStore{}

	analyzer := NewAnalyzer(source, store, nil, testAnalysisConfig(), testLogger())

	_, err := analyzer.Analyze(context.Background(), "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch trades")
	assert.Zero(t, store.upserts, "nothing is persisted when a fetch fails")
}

func TestAnalyzer_StrategyFetchErrorPropagates(t *testing.T) {
	source := &stubSource{stratErr: errors.New("timeout")}

	analyzer := NewAnalyzer(source, &stubStore{}, nil, testAnalysisConfig(), testLogger())

	_, err := analyzer.Analyze(context.Background(), "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch strategies")
}

func TestAnalyzer_PersistFailureDoesNotFailAnalysis(t *testing.T) {
	source := &stubSource{
		trades: []journal.Trade{trade("t1", 10, false, day(0))},
	}
	store := &stubStore{err: errors.New("table missing")}

	analyzer := NewAnalyzer(source, store, nil, testAnalysisConfig(), testLogger())

	report, err := analyzer.Analyze(context.Background(), "u1")
	require.NoError(t, err, "report store failures are best-effort")
	assert.Equal(t, 1, report.TotalTrades)
	assert.Equal(t, 1, store.upserts)
}

func TestAnalyzer_EmptyJournal(t *testing.T) {
	analyzer := NewAnalyzer(&stubSource{}, &stubStore{}, nil, testAnalysisConfig(), testLogger())

	report, err := analyzer.Analyze(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, report.TotalTrades)
	assert.Equal(t, LabelConsistent, report.PerformanceLabel)
}
