package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/tradelog/backend/internal/performance"
	"github.com/wonny/tradelog/backend/pkg/logger"
)

// UserLister enumerates users that have logged trades
type UserLister interface {
	ListUserIDs(ctx context.Context) ([]string, error)
}

// ReportRefreshJob recomputes the cached performance report for every user
// with at least one trade. A failure for one user is logged and the rest of
// the batch continues.
type ReportRefreshJob struct {
	users    UserLister
	analyzer *performance.Analyzer
	logger   *logger.Logger
	schedule string
}

// NewReportRefreshJob creates the nightly report refresh job
func NewReportRefreshJob(users UserLister, analyzer *performance.Analyzer, log *logger.Logger) *ReportRefreshJob {
	return &ReportRefreshJob{
		users:    users,
		analyzer: analyzer,
		logger:   log,
		schedule: "0 0 3 * * *", // daily at 3 AM
	}
}

// Name returns the job name
func (j *ReportRefreshJob) Name() string {
	return "report_refresh"
}

// Schedule returns the cron schedule expression
func (j *ReportRefreshJob) Schedule() string {
	return j.schedule
}

// Run refreshes reports for all users
func (j *ReportRefreshJob) Run(ctx context.Context) error {
	userIDs, err := j.users.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	var failed int
	for _, userID := range userIDs {
		if _, err := j.analyzer.Analyze(ctx, userID); err != nil {
			failed++
			j.logger.WithError(err).WithField("user", userID).Error("Report refresh failed for user")
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"users":  len(userIDs),
		"failed": failed,
	}).Info("Report refresh batch completed")

	if failed == len(userIDs) && len(userIDs) > 0 {
		return fmt.Errorf("report refresh failed for all %d users", failed)
	}

	return nil
}
