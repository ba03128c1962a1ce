package performance

import (
	"math"
	"sort"

	"github.com/wonny/tradelog/backend/internal/journal"
)

// Options holds the tunable thresholds of the analyzer
type Options struct {
	// VolatilePnLPerTrade is the |total P/L| per trade above which overall
	// performance is labeled Volatile (account currency units per trade).
	VolatilePnLPerTrade float64

	// RecentTradeWindow is the number of most recent trades compared against
	// the full history for the Improving/Declining rules.
	RecentTradeWindow int
}

// DefaultOptions returns the standard analyzer thresholds
func DefaultOptions() Options {
	return Options{
		VolatilePnLPerTrade: 50.0,
		RecentTradeWindow:   20,
	}
}

// emptyInsightMessage is the single insight of the empty report
const emptyInsightMessage = "Start trading to generate your performance insights!"

// unknownStrategyName is used when a trade references a strategy id that has
// no matching strategy row
const unknownStrategyName = "Unknown Strategy"

// ComputeMetrics derives a full performance report from a user's trade
// history using the default thresholds. Pure and deterministic: no I/O, no
// hidden state, no wall-clock dependency.
func ComputeMetrics(trades []journal.Trade, strategies []journal.Strategy) *PerformanceReport {
	return ComputeMetricsWithOptions(trades, strategies, DefaultOptions())
}

// ComputeMetricsWithOptions is ComputeMetrics with explicit thresholds
func ComputeMetricsWithOptions(trades []journal.Trade, strategies []journal.Strategy, opts Options) *PerformanceReport {
	if len(trades) == 0 {
		return emptyReport()
	}

	// Input order is not guaranteed (the store may return ascending or
	// descending). Sort a copy ascending by creation time so that "last N
	// trades" is well-defined everywhere below.
	sorted := make([]journal.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	report := &PerformanceReport{
		TotalTrades: len(sorted),
	}

	var (
		winCount    int
		grossProfit float64
		grossLoss   float64
		winTrades   int // trades with positive P/L
		lossTrades  int // trades with negative P/L

		holdingSum   float64
		holdingCount int

		rrSum   float64
		rrCount int
	)

	strategyStats := make(map[string]*strategyAccumulator)
	monthlyStats := make(map[string]*monthlyAccumulator)
	rrBuckets := make([]int, len(rrBucketBounds))
	var withChecklist, withoutChecklist checklistAccumulator

	for i := range sorted {
		t := &sorted[i]
		won := t.Result == journal.ResultWin

		if won {
			winCount++
		}
		report.TotalProfitLoss += t.ProfitLoss

		// Gross profit/loss buckets follow the P/L sign, independent of the
		// break-even flag
		switch {
		case t.ProfitLoss > 0:
			grossProfit += t.ProfitLoss
			winTrades++
		case t.ProfitLoss < 0:
			grossLoss += -t.ProfitLoss
			lossTrades++
		}

		// Holding time: only trades with a recorded positive duration
		if t.HoldingDurationMinutes != nil && *t.HoldingDurationMinutes > 0 {
			holdingSum += float64(*t.HoldingDurationMinutes)
			holdingCount++
		}

		// R:R distribution: only trades with a recorded positive ratio
		hasRR := t.RiskRewardRatio != nil && *t.RiskRewardRatio > 0
		if hasRR {
			rr := *t.RiskRewardRatio
			rrSum += rr
			rrCount++
			rrBuckets[rrBucketIndex(rr)]++
		}

		// Strategy cohort: trades without a strategy are excluded entirely
		if t.StrategyUsed != nil {
			acc, ok := strategyStats[*t.StrategyUsed]
			if !ok {
				acc = &strategyAccumulator{}
				strategyStats[*t.StrategyUsed] = acc
			}
			acc.trades++
			if won {
				acc.wins++
			}
			acc.totalPnL += t.ProfitLoss
			if hasRR {
				acc.rrSum += *t.RiskRewardRatio
				acc.rrCount++
			}
		}

		// Monthly cohort
		month := monthKey(t)
		macc, ok := monthlyStats[month]
		if !ok {
			macc = &monthlyAccumulator{}
			monthlyStats[month] = macc
		}
		macc.trades++
		if won {
			macc.wins++
		}
		macc.pnl += t.ProfitLoss

		// Checklist correlation
		if t.ChecklistUsedID != nil {
			withChecklist.add(won)
		} else {
			withoutChecklist.add(won)
		}
	}

	// Win rate denominator is all trades, break-even included
	report.WinRate = 100 * float64(winCount) / float64(report.TotalTrades)

	report.ProfitFactor = profitFactor(grossProfit, grossLoss)

	if winTrades > 0 {
		report.AverageWin = grossProfit / float64(winTrades)
	}
	if lossTrades > 0 {
		report.AverageLoss = grossLoss / float64(lossTrades)
	}
	if holdingCount > 0 {
		report.AverageHoldingTime = holdingSum / float64(holdingCount)
	}

	report.StrategyPerformance = buildStrategyPerformance(strategyStats, strategies)
	report.MonthlyPerformance = buildMonthlyPerformance(monthlyStats)

	report.RiskRewardAnalysis = RiskRewardAnalysis{
		Buckets: makeRRBuckets(rrBuckets),
	}
	if rrCount > 0 {
		report.RiskRewardAnalysis.AverageRR = rrSum / float64(rrCount)
	}

	report.ChecklistCorrelation = ChecklistCorrelation{
		WithChecklist:    withChecklist.cohort(),
		WithoutChecklist: withoutChecklist.cohort(),
	}

	report.PerformanceLabel = classifyPerformance(report, sorted, opts)
	report.Insights = generateInsights(report, rrCount)

	return report
}

// emptyReport is the defined degenerate result for a user with no trades
func emptyReport() *PerformanceReport {
	return &PerformanceReport{
		StrategyPerformance: []StrategyPerformance{},
		MonthlyPerformance:  []MonthlyPerformance{},
		RiskRewardAnalysis: RiskRewardAnalysis{
			Buckets: makeRRBuckets(make([]int, len(rrBucketBounds))),
		},
		PerformanceLabel: LabelConsistent,
		Insights: []Insight{
			{Type: InsightNeutral, Message: emptyInsightMessage},
		},
	}
}

// profitFactor returns gross profit over gross loss magnitude.
// All-profit histories get the positive-infinity sentinel; an empty or
// all-break-even history gets zero.
func profitFactor(grossProfit, grossLoss float64) float64 {
	if grossLoss == 0 {
		if grossProfit > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return grossProfit / grossLoss
}

// monthKey truncates a trade's creation time to its YYYY-MM bucket.
// Always UTC, so bucketing does not depend on the host time zone.
func monthKey(t *journal.Trade) string {
	return t.CreatedAt.UTC().Format("2006-01")
}

type strategyAccumulator struct {
	trades   int
	wins     int
	totalPnL float64
	rrSum    float64
	rrCount  int
}

type monthlyAccumulator struct {
	trades int
	wins   int
	pnl    float64
}

type checklistAccumulator struct {
	trades int
	wins   int
}

func (c *checklistAccumulator) add(won bool) {
	c.trades++
	if won {
		c.wins++
	}
}

func (c *checklistAccumulator) cohort() ChecklistCohort {
	out := ChecklistCohort{Trades: c.trades}
	if c.trades > 0 {
		out.WinRate = 100 * float64(c.wins) / float64(c.trades)
	}
	return out
}

// buildStrategyPerformance resolves strategy names and orders cohorts
// descending by total P/L. The ordering is load-bearing: the best-strategy
// insight names the first entry.
func buildStrategyPerformance(stats map[string]*strategyAccumulator, strategies []journal.Strategy) []StrategyPerformance {
	names := make(map[string]string, len(strategies))
	for _, s := range strategies {
		names[s.ID] = s.Name
	}

	out := make([]StrategyPerformance, 0, len(stats))
	for id, acc := range stats {
		name, ok := names[id]
		if !ok {
			name = unknownStrategyName
		}

		sp := StrategyPerformance{
			StrategyID:   id,
			StrategyName: name,
			Trades:       acc.trades,
			WinRate:      100 * float64(acc.wins) / float64(acc.trades),
			TotalPnL:     acc.totalPnL,
		}
		if acc.rrCount > 0 {
			sp.AvgRR = acc.rrSum / float64(acc.rrCount)
		}
		out = append(out, sp)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPnL != out[j].TotalPnL {
			return out[i].TotalPnL > out[j].TotalPnL
		}
		return out[i].StrategyID < out[j].StrategyID
	})

	return out
}

// buildMonthlyPerformance orders cohorts ascending by month key; lexical
// order on YYYY-MM is chronological order.
func buildMonthlyPerformance(stats map[string]*monthlyAccumulator) []MonthlyPerformance {
	out := make([]MonthlyPerformance, 0, len(stats))
	for month, acc := range stats {
		out = append(out, MonthlyPerformance{
			Month:   month,
			Trades:  acc.trades,
			WinRate: 100 * float64(acc.wins) / float64(acc.trades),
			PnL:     acc.pnl,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Month < out[j].Month
	})

	return out
}

// rrBucketBounds are the upper bounds of the R:R histogram bins. Bins are
// half-open on the lower end; the last bin is unbounded.
var rrBucketBounds = []struct {
	label string
	upper float64
}{
	{"0-1", 1},
	{"1-2", 2},
	{"2-3", 3},
	{"3+", math.Inf(1)},
}

// rrBucketIndex places a positive ratio into its bin (first match wins)
func rrBucketIndex(rr float64) int {
	for i, b := range rrBucketBounds {
		if rr < b.upper {
			return i
		}
	}
	return len(rrBucketBounds) - 1
}

func makeRRBuckets(counts []int) []RiskRewardBucket {
	out := make([]RiskRewardBucket, len(rrBucketBounds))
	for i, b := range rrBucketBounds {
		out[i] = RiskRewardBucket{Label: b.label, Count: counts[i]}
	}
	return out
}
