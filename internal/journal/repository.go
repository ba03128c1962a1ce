package journal

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles trade and strategy persistence
// ⭐ SSOT: journal rows are read and written here only
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new journal repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const tradeColumns = `
	id, user_id, pair, direction, entry_price, exit_price,
	profit_loss, is_break_even, result, strategy_used,
	risk_reward_ratio, holding_duration_minutes, checklist_used_id, created_at
`

// GetTradesByUser returns all trades for a user ordered by creation time.
// "No rows" yields an empty slice, not an error.
func (r *Repository) GetTradesByUser(ctx context.Context, userID string) ([]Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trades
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	trades := make([]Trade, 0)

	for rows.Next() {
		var t Trade
		err := rows.Scan(
			&t.ID, &t.UserID, &t.Pair, &t.Direction, &t.EntryPrice, &t.ExitPrice,
			&t.ProfitLoss, &t.IsBreakEven, &t.Result, &t.StrategyUsed,
			&t.RiskRewardRatio, &t.HoldingDurationMinutes, &t.ChecklistUsedID, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}

		// Coerce malformed rows at the boundary; skip the ones that are
		// unusable outright
		if err := t.Normalize(); err != nil {
			continue
		}

		trades = append(trades, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trades: %w", err)
	}

	return trades, nil
}

// GetStrategiesByUser returns all strategies for a user.
// "No rows" yields an empty slice, not an error.
func (r *Repository) GetStrategiesByUser(ctx context.Context, userID string) ([]Strategy, error) {
	query := `
		SELECT id, user_id, name, created_at
		FROM strategies
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query strategies: %w", err)
	}
	defer rows.Close()

	strategies := make([]Strategy, 0)

	for rows.Next() {
		var s Strategy
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan strategy: %w", err)
		}
		strategies = append(strategies, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read strategies: %w", err)
	}

	return strategies, nil
}

// InsertTrade stores a new trade row
func (r *Repository) InsertTrade(ctx context.Context, t *Trade) error {
	if err := t.Normalize(); err != nil {
		return fmt.Errorf("invalid trade: %w", err)
	}

	query := `
		INSERT INTO trades (` + tradeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.UserID, t.Pair, t.Direction, t.EntryPrice, t.ExitPrice,
		t.ProfitLoss, t.IsBreakEven, t.Result, t.StrategyUsed,
		t.RiskRewardRatio, t.HoldingDurationMinutes, t.ChecklistUsedID, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trade: %w", err)
	}

	return nil
}

// DeleteTrade removes a trade owned by the user
func (r *Repository) DeleteTrade(ctx context.Context, userID, tradeID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM trades WHERE user_id = $1 AND id = $2`, userID, tradeID)
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListUserIDs returns the distinct users that have logged at least one
// trade. Used by the scheduled report refresh.
func (r *Repository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT user_id FROM trades`)
	if err != nil {
		return nil, fmt.Errorf("failed to query user ids: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read user ids: %w", err)
	}

	return ids, nil
}
