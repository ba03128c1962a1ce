package performance

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles performance report persistence
// ⭐ SSOT: report rows are read and written here only
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new performance report repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertReport stores the latest computed report for a user, replacing any
// previous row
func (r *Repository) UpsertReport(ctx context.Context, userID string, report *PerformanceReport, tradesAnalyzed int) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	query := `
		INSERT INTO user_performance_reports (
			user_id, report_data, performance_label, trades_analyzed, generated_at
		) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			report_data = EXCLUDED.report_data,
			performance_label = EXCLUDED.performance_label,
			trades_analyzed = EXCLUDED.trades_analyzed,
			generated_at = EXCLUDED.generated_at
	`

	_, err = r.pool.Exec(ctx, query,
		userID, reportJSON, string(report.PerformanceLabel), tradesAnalyzed, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert report: %w", err)
	}

	return nil
}

// GetCachedReport retrieves the last persisted report for a user, nil when
// none exists
func (r *Repository) GetCachedReport(ctx context.Context, userID string) (*PerformanceReport, error) {
	var reportJSON []byte

	err := r.pool.QueryRow(ctx,
		`SELECT report_data FROM user_performance_reports WHERE user_id = $1`, userID).
		Scan(&reportJSON)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached report: %w", err)
	}

	var report PerformanceReport
	if err := json.Unmarshal(reportJSON, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached report: %w", err)
	}

	return &report, nil
}
