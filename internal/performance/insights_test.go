package performance

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tradelog/backend/internal/journal"
)

func TestClassifyPerformance_LabelPriority(t *testing.T) {
	tests := []struct {
		name   string
		trades []journal.Trade
		want   PerformanceLabel
	}{
		{
			name: "excellent",
			trades: []journal.Trade{
				trade("t1", 100, false, day(0)),
				trade("t2", 100, false, day(1)),
				trade("t3", 100, false, day(2)),
				trade("t4", -100, false, day(3)),
			},
			want: LabelExcellent,
		},
		{
			name: "consistent via thresholds",
			trades: []journal.Trade{
				trade("t1", 60, false, day(0)),
				trade("t2", 60, false, day(1)),
				trade("t3", -45, false, day(2)),
				trade("t4", -45, false, day(3)),
			},
			want: LabelConsistent,
		},
		{
			name: "volatile on large swings",
			trades: []journal.Trade{
				trade("t1", 500, false, day(0)),
				trade("t2", -650, false, day(1)),
				trade("t3", -650, false, day(2)),
			},
			want: LabelVolatile,
		},
		{
			name: "declining on negative totals",
			trades: []journal.Trade{
				trade("t1", -10, false, day(0)),
				trade("t2", -20, false, day(1)),
				trade("t3", 5, false, day(2)),
			},
			want: LabelDeclining,
		},
		{
			name: "consistent fallback for flat history",
			trades: []journal.Trade{
				trade("t1", 0, true, day(0)),
				trade("t2", 0, true, day(1)),
			},
			want: LabelConsistent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := ComputeMetrics(tt.trades, nil)
			assert.Equal(t, tt.want, report.PerformanceLabel)
		})
	}
}

func TestClassifyPerformance_ImprovingNeedsRecentEdge(t *testing.T) {
	// 25 losses then 20 wins: the recent window beats the overall win rate
	trades := make([]journal.Trade, 0, 45)
	for i := 0; i < 25; i++ {
		trades = append(trades, trade(idx("l", i), -5, false, day(i)))
	}
	for i := 0; i < 20; i++ {
		trades = append(trades, trade(idx("w", i), 4, false, day(25+i)))
	}

	report := ComputeMetrics(trades, nil)
	assert.Equal(t, LabelImproving, report.PerformanceLabel)
}

func TestGenerateInsights_OrderAndSelection(t *testing.T) {
	// 10 trades on one strategy, 7 wins, strong profit factor, no R:R logged
	trades := make([]journal.Trade, 0, 10)
	for i := 0; i < 10; i++ {
		pl := 30.0
		if i >= 7 {
			pl = -10
		}
		tr := trade(idx("s", i), pl, false, day(i))
		tr.StrategyUsed = sptr("strat-1")
		trades = append(trades, tr)
	}

	report := ComputeMetrics(trades, []journal.Strategy{
		{ID: "strat-1", Name: "Momentum"},
	})

	require.GreaterOrEqual(t, len(report.Insights), 4)

	// Fixed presentation order: strategy, win rate, profit factor, risk tracking
	assert.Contains(t, report.Insights[0].Message, "Momentum")
	assert.Equal(t, InsightPositive, report.Insights[0].Type)

	assert.Contains(t, report.Insights[1].Message, "win rate")
	assert.Equal(t, InsightPositive, report.Insights[1].Type)

	assert.Contains(t, report.Insights[2].Message, "profit factor")
	assert.Equal(t, InsightPositive, report.Insights[2].Type)

	last := report.Insights[len(report.Insights)-1]
	assert.Equal(t, InsightNeutral, last.Type)
	assert.Contains(t, last.Message, "risk/reward")
}

func TestGenerateInsights_MiddleWinRateStaysSilent(t *testing.T) {
	// 50% win rate: neither the positive nor the negative win-rate message
	trades := []journal.Trade{
		trade("t1", 10, false, day(0)),
		trade("t2", -10, false, day(1)),
		trade("t3", 10, false, day(2)),
		trade("t4", -10, false, day(3)),
	}
	for i := range trades {
		trades[i].RiskRewardRatio = fptr(1.5)
	}

	report := ComputeMetrics(trades, nil)

	for _, ins := range report.Insights {
		assert.NotContains(t, ins.Message, "win rate",
			"no win-rate insight expected between 40%% and 60%%")
	}
}

func TestGenerateInsights_NegativeFindings(t *testing.T) {
	// 1 win, 4 losses: weak win rate and profit factor below 1
	trades := []journal.Trade{
		trade("t1", 20, false, day(0)),
		trade("t2", -30, false, day(1)),
		trade("t3", -30, false, day(2)),
		trade("t4", -30, false, day(3)),
		trade("t5", -30, false, day(4)),
	}
	for i := range trades {
		trades[i].RiskRewardRatio = fptr(2.0)
	}

	report := ComputeMetrics(trades, nil)

	var negatives []string
	for _, ins := range report.Insights {
		if ins.Type == InsightNegative {
			negatives = append(negatives, ins.Message)
		}
	}

	require.Len(t, negatives, 2)
	assert.Contains(t, negatives[0], "win rate")
	assert.Contains(t, negatives[1], "losses exceed wins")
}

func TestGenerateInsights_InfiniteProfitFactorReadsCleanly(t *testing.T) {
	trades := []journal.Trade{
		trade("t1", 50, false, day(0)),
		trade("t2", 50, false, day(1)),
	}

	report := ComputeMetrics(trades, nil)

	var found bool
	for _, ins := range report.Insights {
		if strings.Contains(ins.Message, "profit factor") {
			found = true
			assert.Contains(t, ins.Message, "∞")
		}
	}
	assert.True(t, found, "all-win history should produce a profit factor insight")
}

func TestGenerateInsights_ChecklistEdge(t *testing.T) {
	trades := make([]journal.Trade, 0, 10)
	for i := 0; i < 5; i++ {
		tr := trade(idx("c", i), 10, false, day(i)) // checklist: 100% wins
		tr.ChecklistUsedID = sptr("cl-1")
		tr.RiskRewardRatio = fptr(2)
		trades = append(trades, tr)
	}
	for i := 0; i < 5; i++ {
		pl := -10.0
		if i == 0 {
			pl = 10
		}
		tr := trade(idx("f", i), pl, false, day(10+i)) // free-hand: 20% wins
		tr.RiskRewardRatio = fptr(2)
		trades = append(trades, tr)
	}

	report := ComputeMetrics(trades, nil)

	var found bool
	for _, ins := range report.Insights {
		if strings.Contains(ins.Message, "checklist") {
			found = true
			assert.Equal(t, InsightPositive, ins.Type)
		}
	}
	assert.True(t, found, "expected a checklist correlation insight")
}

func TestRecentWindow_ShorterHistoryUsesAllTrades(t *testing.T) {
	trades := []journal.Trade{
		trade("t1", 10, false, day(0)),
		trade("t2", -5, false, day(1)),
	}

	pl, winRate := recentWindow(trades, 20)
	assert.InDelta(t, 5, pl, 1e-9)
	assert.InDelta(t, 50, winRate, 1e-9)
}
