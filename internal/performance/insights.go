package performance

import (
	"fmt"
	"math"

	"github.com/wonny/tradelog/backend/internal/journal"
)

// Label thresholds. First matching rule in classifyPerformance wins, so the
// order of checks there is part of the contract.
const (
	excellentWinRate       = 60.0
	excellentProfitFactor  = 1.5
	consistentWinRate      = 45.0
	consistentProfitFactor = 1.2
)

// classifyPerformance assigns the qualitative label. Rules are applied in
// priority order against the full history and a recent tail window:
//
//  1. Excellent:  winRate >= 60, positive total P/L, profit factor >= 1.5
//  2. Consistent: winRate >= 45, positive total P/L, profit factor >= 1.2
//  3. Improving:  recent window profitable and beating the overall win rate
//  4. Volatile:   |total P/L| per trade above the configured threshold
//  5. Declining:  recent window or total P/L negative
//  6. Consistent fallback
func classifyPerformance(report *PerformanceReport, sorted []journal.Trade, opts Options) PerformanceLabel {
	if report.WinRate >= excellentWinRate &&
		report.TotalProfitLoss > 0 &&
		report.ProfitFactor >= excellentProfitFactor {
		return LabelExcellent
	}

	if report.WinRate >= consistentWinRate &&
		report.TotalProfitLoss > 0 &&
		report.ProfitFactor >= consistentProfitFactor {
		return LabelConsistent
	}

	recentPL, recentWinRate := recentWindow(sorted, opts.RecentTradeWindow)

	if recentPL > 0 && recentWinRate > report.WinRate {
		return LabelImproving
	}

	if math.Abs(report.TotalProfitLoss)/float64(report.TotalTrades) > opts.VolatilePnLPerTrade {
		return LabelVolatile
	}

	if recentPL < 0 || report.TotalProfitLoss < 0 {
		return LabelDeclining
	}

	return LabelConsistent
}

// recentWindow sums P/L and win rate over the tail of the ascending-sorted
// trade history
func recentWindow(sorted []journal.Trade, window int) (pl float64, winRate float64) {
	if len(sorted) == 0 {
		return 0, 0
	}

	start := len(sorted) - window
	if start < 0 {
		start = 0
	}
	recent := sorted[start:]

	wins := 0
	for i := range recent {
		pl += recent[i].ProfitLoss
		if recent[i].Result == journal.ResultWin {
			wins++
		}
	}

	winRate = 100 * float64(wins) / float64(len(recent))
	return pl, winRate
}

// Insight thresholds
const (
	strongWinRate       = 60.0
	weakWinRate         = 40.0
	strongProfitFactor  = 2.0
	checklistEdgePoints = 5.0
)

// generateInsights produces the ordered finding list. Every rule is
// evaluated independently; all matching rules contribute, in this fixed
// order: best strategy, win rate, profit factor, checklist correlation,
// risk tracking.
func generateInsights(report *PerformanceReport, rrCount int) []Insight {
	insights := make([]Insight, 0, 5)

	// 1. Best strategy (first entry of the P/L-descending breakdown)
	if len(report.StrategyPerformance) > 0 {
		best := report.StrategyPerformance[0]
		insights = append(insights, Insight{
			Type: InsightPositive,
			Message: fmt.Sprintf("Your best performing strategy is %q with a %.1f%% win rate across %d trades.",
				best.StrategyName, best.WinRate, best.Trades),
		})
	}

	// 2. Win rate
	if report.WinRate >= strongWinRate {
		insights = append(insights, Insight{
			Type: InsightPositive,
			Message: fmt.Sprintf("Strong win rate of %.1f%%. You're consistently picking winning trades.",
				report.WinRate),
		})
	} else if report.WinRate < weakWinRate {
		insights = append(insights, Insight{
			Type: InsightNegative,
			Message: fmt.Sprintf("Your win rate of %.1f%% needs improvement. Review your entry criteria.",
				report.WinRate),
		})
	}

	// 3. Profit factor
	if report.ProfitFactor >= strongProfitFactor {
		insights = append(insights, Insight{
			Type: InsightPositive,
			Message: fmt.Sprintf("Outstanding profit factor of %s. Your winners significantly outweigh your losers.",
				formatProfitFactor(report.ProfitFactor)),
		})
	} else if report.ProfitFactor < 1 {
		insights = append(insights, Insight{
			Type: InsightNegative,
			Message: fmt.Sprintf("Your profit factor of %s means losses exceed wins. Review your risk management.",
				formatProfitFactor(report.ProfitFactor)),
		})
	}

	// 4. Checklist correlation (needs trades on both sides to compare)
	with := report.ChecklistCorrelation.WithChecklist
	without := report.ChecklistCorrelation.WithoutChecklist
	if with.Trades > 0 && without.Trades > 0 {
		if with.WinRate > without.WinRate+checklistEdgePoints {
			insights = append(insights, Insight{
				Type: InsightPositive,
				Message: fmt.Sprintf("Trades logged with a checklist win %.1f points more often. Keep using it.",
					with.WinRate-without.WinRate),
			})
		} else if without.WinRate > with.WinRate+checklistEdgePoints {
			insights = append(insights, Insight{
				Type:    InsightNegative,
				Message: "Your checklist trades underperform the rest. Consider revising the checklist items.",
			})
		}
	}

	// 5. Risk tracking reminder: fewer than half of trades carry an R:R
	if rrCount*2 < report.TotalTrades {
		insights = append(insights, Insight{
			Type:    InsightNeutral,
			Message: "Less than half of your trades have a recorded risk/reward ratio. Track it consistently to sharpen these insights.",
		})
	}

	return insights
}

// formatProfitFactor renders the infinite sentinel readably
func formatProfitFactor(pf float64) string {
	if math.IsInf(pf, 1) {
		return "∞"
	}
	return fmt.Sprintf("%.2f", pf)
}
