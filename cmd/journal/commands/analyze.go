package commands

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/wonny/tradelog/backend/internal/journal"
	"github.com/wonny/tradelog/backend/internal/performance"
	"github.com/wonny/tradelog/backend/pkg/config"
	"github.com/wonny/tradelog/backend/pkg/database"
	"github.com/wonny/tradelog/backend/pkg/logger"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute a performance report for one user",
	Long: `Computes the full performance report for a user's trade history and
prints it. The report is also persisted to the report cache table, so the
next API read serves it without recomputing.

Output:
- Scalar metrics (win rate, P/L, profit factor, holding time)
- Strategy and monthly breakdowns
- Risk/reward distribution
- Performance label and insights

Example:
  go run ./cmd/journal analyze --user 4f2c...
  go run ./cmd/journal analyze --user 4f2c... --output json`,
	RunE: runAnalyze,
}

var (
	analyzeUser   string
	analyzeOutput string
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeUser, "user", "", "user id to analyze (required)")
	analyzeCmd.Flags().StringVar(&analyzeOutput, "output", "text", "output format (text, json)")
	_ = analyzeCmd.MarkFlagRequired("user")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	fmt.Println("=== tradelog Performance Analysis ===")

	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	journalRepo := journal.NewRepository(db.Pool)
	reportRepo := performance.NewRepository(db.Pool)

	// One-off run: no Redis, the persisted row is enough
	analyzer := performance.NewAnalyzer(journalRepo, reportRepo, nil, cfg.Analysis, log)

	report, err := analyzer.Analyze(ctx, analyzeUser)
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}

	if analyzeOutput == "json" {
		jsonData, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(jsonData))
		return nil
	}

	printReport(report)
	return nil
}

func printReport(report *performance.PerformanceReport) {
	fmt.Println("\n=== Performance Report ===")
	fmt.Printf("Label: %s\n\n", report.PerformanceLabel)

	fmt.Println("📊 Overview")
	fmt.Printf("  Total Trades: %d\n", report.TotalTrades)
	fmt.Printf("  Win Rate: %.1f%%\n", report.WinRate)
	fmt.Printf("  Total P/L: %+.2f\n", report.TotalProfitLoss)
	fmt.Printf("  Avg Win: %.2f / Avg Loss: %.2f\n", report.AverageWin, report.AverageLoss)
	if math.IsInf(report.ProfitFactor, 1) {
		fmt.Println("  Profit Factor: ∞ (no losing trades)")
	} else {
		fmt.Printf("  Profit Factor: %.2f\n", report.ProfitFactor)
	}
	fmt.Printf("  Avg Holding Time: %.0f min\n", report.AverageHoldingTime)

	if len(report.StrategyPerformance) > 0 {
		fmt.Println("\n📈 Strategies (by total P/L)")
		for _, sp := range report.StrategyPerformance {
			fmt.Printf("  %-24s trades=%-4d win=%.1f%% pnl=%+.2f\n",
				sp.StrategyName, sp.Trades, sp.WinRate, sp.TotalPnL)
		}
	}

	if len(report.MonthlyPerformance) > 0 {
		fmt.Println("\n📅 Monthly")
		for _, mp := range report.MonthlyPerformance {
			fmt.Printf("  %s  trades=%-4d win=%.1f%% pnl=%+.2f\n",
				mp.Month, mp.Trades, mp.WinRate, mp.PnL)
		}
	}

	fmt.Println("\n🎯 Risk/Reward")
	fmt.Printf("  Average R:R: %.2f\n", report.RiskRewardAnalysis.AverageRR)
	for _, b := range report.RiskRewardAnalysis.Buckets {
		fmt.Printf("  [%s] %d\n", b.Label, b.Count)
	}

	fmt.Println("\n💡 Insights")
	for _, ins := range report.Insights {
		fmt.Printf("  [%s] %s\n", ins.Type, ins.Message)
	}
}
