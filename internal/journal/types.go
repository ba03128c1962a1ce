package journal

import (
	"fmt"
	"math"
	"time"
)

// TradeResult classifies the outcome of a closed trade
type TradeResult string

const (
	ResultWin       TradeResult = "WIN"
	ResultLoss      TradeResult = "LOSS"
	ResultBreakEven TradeResult = "BREAK EVEN"
)

// TradeDirection is the side the position was opened on
type TradeDirection string

const (
	DirectionBuy  TradeDirection = "BUY"
	DirectionSell TradeDirection = "SELL"
)

// Trade is one logged position with an outcome and optional risk/strategy
// metadata. Rows are owned by the trade-logging side; the analyzer treats
// them as read-only input.
//
// ProfitLoss is the user-entered realized P/L in account currency and is
// authoritative for win/loss classification. It is never derived from the
// entry/exit price delta.
type Trade struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Pair      string         `json:"pair"`
	Direction TradeDirection `json:"direction"`

	EntryPrice *float64 `json:"entry_price,omitempty"`
	ExitPrice  *float64 `json:"exit_price,omitempty"`

	ProfitLoss  float64     `json:"profit_loss"`
	IsBreakEven bool        `json:"is_break_even"`
	Result      TradeResult `json:"result"`

	StrategyUsed           *string  `json:"strategy_used,omitempty"`
	RiskRewardRatio        *float64 `json:"risk_reward_ratio,omitempty"`
	HoldingDurationMinutes *int     `json:"holding_duration_minutes,omitempty"`
	ChecklistUsedID        *string  `json:"checklist_used_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Strategy is a user-defined trading strategy, referenced by trades via
// StrategyUsed. Only the name is consumed by the analyzer.
type Strategy struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// DeriveResult applies the creation-time classification rule:
// break-even flag wins over the P/L sign, zero P/L is break-even.
func DeriveResult(profitLoss float64, isBreakEven bool) TradeResult {
	if isBreakEven {
		return ResultBreakEven
	}
	if profitLoss > 0 {
		return ResultWin
	}
	if profitLoss < 0 {
		return ResultLoss
	}
	return ResultBreakEven
}

// Normalize validates a trade row at the boundary where external data enters
// the system and coerces unusable optional fields to absent. Rows with an
// unusable required field are rejected; rows with unusable optional fields
// survive so that per-metric exclusion can happen downstream.
func (t *Trade) Normalize() error {
	if t.ID == "" {
		return fmt.Errorf("trade is missing id")
	}
	if t.UserID == "" {
		return fmt.Errorf("trade %s is missing user_id", t.ID)
	}
	if t.Direction != DirectionBuy && t.Direction != DirectionSell {
		return fmt.Errorf("trade %s has invalid direction %q", t.ID, t.Direction)
	}
	if math.IsNaN(t.ProfitLoss) || math.IsInf(t.ProfitLoss, 0) {
		return fmt.Errorf("trade %s has unusable profit_loss", t.ID)
	}
	if t.CreatedAt.IsZero() {
		return fmt.Errorf("trade %s is missing created_at", t.ID)
	}

	// Optional fields: drop rather than fail
	if t.RiskRewardRatio != nil {
		if rr := *t.RiskRewardRatio; rr <= 0 || math.IsNaN(rr) || math.IsInf(rr, 0) {
			t.RiskRewardRatio = nil
		}
	}
	if t.HoldingDurationMinutes != nil && *t.HoldingDurationMinutes < 0 {
		t.HoldingDurationMinutes = nil
	}
	if t.StrategyUsed != nil && *t.StrategyUsed == "" {
		t.StrategyUsed = nil
	}
	if t.ChecklistUsedID != nil && *t.ChecklistUsedID == "" {
		t.ChecklistUsedID = nil
	}

	// Result is derived, never trusted from input
	t.Result = DeriveResult(t.ProfitLoss, t.IsBreakEven)

	return nil
}
