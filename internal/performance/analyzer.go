package performance

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/tradelog/backend/internal/journal"
	"github.com/wonny/tradelog/backend/pkg/config"
	"github.com/wonny/tradelog/backend/pkg/logger"
	"github.com/wonny/tradelog/backend/pkg/redis"
)

// TradeSource supplies the analyzer's two upstream reads. Both return empty
// slices rather than failing on "no rows".
type TradeSource interface {
	GetTradesByUser(ctx context.Context, userID string) ([]journal.Trade, error)
	GetStrategiesByUser(ctx context.Context, userID string) ([]journal.Strategy, error)
}

// ReportStore persists computed reports. Failures here are best-effort and
// never surface through Analyze.
type ReportStore interface {
	UpsertReport(ctx context.Context, userID string, report *PerformanceReport, tradesAnalyzed int) error
}

// Analyzer orchestrates report computation: fetch, compute, best-effort
// persist. The computation itself lives in ComputeMetrics and owns no state,
// so a single Analyzer is safe for concurrent use.
type Analyzer struct {
	trades  TradeSource
	reports ReportStore
	cache   *redis.Cache
	opts    Options
	cfg     config.AnalysisConfig
	logger  *logger.Logger
}

// NewAnalyzer creates a new performance analyzer. cache may be nil when
// Redis is not wired in (CLI one-off runs).
func NewAnalyzer(trades TradeSource, reports ReportStore, cache *redis.Cache, cfg config.AnalysisConfig, log *logger.Logger) *Analyzer {
	return &Analyzer{
		trades:  trades,
		reports: reports,
		cache:   cache,
		opts: Options{
			VolatilePnLPerTrade: cfg.VolatilePnLPerTrade,
			RecentTradeWindow:   cfg.RecentTradeWindow,
		},
		cfg:    cfg,
		logger: log,
	}
}

// Analyze computes the performance report for a user.
//
// The two upstream reads are independent and run concurrently; a failure of
// either propagates to the caller untouched. Persisting and caching the
// result are best-effort: their failures are logged and the computed report
// is returned regardless.
func (a *Analyzer) Analyze(ctx context.Context, userID string) (*PerformanceReport, error) {
	var (
		trades     []journal.Trade
		strategies []journal.Strategy
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		trades, err = a.trades.GetTradesByUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("fetch trades: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		strategies, err = a.trades.GetStrategiesByUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("fetch strategies: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := ComputeMetricsWithOptions(trades, strategies, a.opts)

	a.logger.WithFields(map[string]interface{}{
		"user":          userID,
		"total_trades":  report.TotalTrades,
		"win_rate":      report.WinRate,
		"profit_factor": report.ProfitFactor,
		"label":         report.PerformanceLabel,
	}).Info("Performance analysis completed")

	// Best-effort persistence; the caller still gets the report
	if a.reports != nil {
		if err := a.reports.UpsertReport(ctx, userID, report, report.TotalTrades); err != nil {
			a.logger.WithError(err).WithField("user", userID).Error("Failed to persist performance report")
		}
	}
	if a.cache != nil {
		if err := a.cache.Set(ctx, redis.ReportKey(userID), report, a.cfg.ReportCacheTTL); err != nil {
			a.logger.WithError(err).WithField("user", userID).Warn("Failed to cache performance report")
		}
	}

	return report, nil
}

// Cached returns the most recent report for a user without recomputing:
// Redis first, then the persisted report row. The boolean reports a hit.
func (a *Analyzer) Cached(ctx context.Context, userID string) (*PerformanceReport, bool) {
	if a.cache != nil {
		var report PerformanceReport
		if found, err := a.cache.Get(ctx, redis.ReportKey(userID), &report); err == nil && found {
			return &report, true
		}
	}

	if store, ok := a.reports.(cachedReportReader); ok {
		if report, err := store.GetCachedReport(ctx, userID); err == nil && report != nil {
			return report, true
		}
	}

	return nil, false
}

// cachedReportReader is the optional read side of a ReportStore
type cachedReportReader interface {
	GetCachedReport(ctx context.Context, userID string) (*PerformanceReport, error)
}
