package performance

import (
	"encoding/json"
	"math"
)

// PerformanceLabel is a coarse qualitative classification of a trader's
// overall recent performance
type PerformanceLabel string

const (
	LabelExcellent  PerformanceLabel = "Excellent"
	LabelConsistent PerformanceLabel = "Consistent"
	LabelImproving  PerformanceLabel = "Improving"
	LabelVolatile   PerformanceLabel = "Volatile"
	LabelDeclining  PerformanceLabel = "Declining"
)

// InsightType tags the sentiment of an insight for display coloring
type InsightType string

const (
	InsightPositive InsightType = "positive"
	InsightNegative InsightType = "negative"
	InsightNeutral  InsightType = "neutral"
)

// Insight is one human-readable finding about the trader's performance.
// Order within a report matters for presentation.
type Insight struct {
	Type    InsightType `json:"type"`
	Message string      `json:"message"`
}

// StrategyPerformance aggregates trades sharing a strategy id
type StrategyPerformance struct {
	StrategyID   string  `json:"strategy_id"`
	StrategyName string  `json:"strategy_name"`
	Trades       int     `json:"trades"`
	WinRate      float64 `json:"win_rate"`
	TotalPnL     float64 `json:"total_pnl"`
	AvgRR        float64 `json:"avg_rr"`
}

// MonthlyPerformance aggregates trades sharing a calendar month.
// Month keys are YYYY-MM in UTC.
type MonthlyPerformance struct {
	Month   string  `json:"month"`
	Trades  int     `json:"trades"`
	WinRate float64 `json:"win_rate"`
	PnL     float64 `json:"pnl"`
}

// RiskRewardBucket is one bin of the R:R histogram
type RiskRewardBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// RiskRewardAnalysis summarizes user-entered reward multiples across trades
// that recorded one
type RiskRewardAnalysis struct {
	AverageRR float64            `json:"average_rr"`
	Buckets   []RiskRewardBucket `json:"buckets"`
}

// ChecklistCohort is one side of the checklist correlation split
type ChecklistCohort struct {
	Trades  int     `json:"trades"`
	WinRate float64 `json:"win_rate"`
}

// ChecklistCorrelation compares outcomes of trades logged with and without
// a checklist consulted
type ChecklistCorrelation struct {
	WithChecklist    ChecklistCohort `json:"with_checklist"`
	WithoutChecklist ChecklistCohort `json:"without_checklist"`
}

// PerformanceReport is the full derived view of a user's trade history.
// It is entirely determined by the trades and strategies passed to
// ComputeMetrics; it holds no mutable state of its own.
//
// ProfitFactor carries math.Inf(1) as the sentinel for "gross profit with
// zero gross loss". MarshalJSON clamps the sentinel so the wire and cache
// forms stay valid JSON.
type PerformanceReport struct {
	TotalTrades        int     `json:"total_trades"`
	WinRate            float64 `json:"win_rate"`
	TotalProfitLoss    float64 `json:"total_profit_loss"`
	AverageWin         float64 `json:"average_win"`
	AverageLoss        float64 `json:"average_loss"`
	ProfitFactor       float64 `json:"profit_factor"`
	AverageHoldingTime float64 `json:"average_holding_time"` // minutes

	StrategyPerformance  []StrategyPerformance `json:"strategy_performance"`
	MonthlyPerformance   []MonthlyPerformance  `json:"monthly_performance"`
	RiskRewardAnalysis   RiskRewardAnalysis    `json:"risk_reward_analysis"`
	ChecklistCorrelation ChecklistCorrelation  `json:"checklist_correlation"`

	PerformanceLabel PerformanceLabel `json:"performance_label"`
	Insights         []Insight        `json:"insights"`
}

// profitFactorCap replaces the infinite sentinel in serialized reports
const profitFactorCap = 999999.0

// MarshalJSON clamps non-finite metric values to keep the serialized form
// valid JSON
func (r *PerformanceReport) MarshalJSON() ([]byte, error) {
	type alias PerformanceReport
	out := alias(*r)
	if math.IsInf(out.ProfitFactor, 1) || out.ProfitFactor > profitFactorCap {
		out.ProfitFactor = profitFactorCap
	}
	return json.Marshal(out)
}

// InsightMessages flattens the insights into plain strings
func (r *PerformanceReport) InsightMessages() []string {
	msgs := make([]string, 0, len(r.Insights))
	for _, ins := range r.Insights {
		msgs = append(msgs, ins.Message)
	}
	return msgs
}
