package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/tradelog/backend/internal/journal"
	"github.com/wonny/tradelog/backend/internal/performance"
	"github.com/wonny/tradelog/backend/internal/scheduler"
	"github.com/wonny/tradelog/backend/internal/scheduler/jobs"
	"github.com/wonny/tradelog/backend/pkg/config"
	"github.com/wonny/tradelog/backend/pkg/database"
	"github.com/wonny/tradelog/backend/pkg/logger"
	"github.com/wonny/tradelog/backend/pkg/redis"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the background job scheduler",
	Long: `Runs the cron scheduler.

Jobs:
  report_refresh  - nightly recompute of all users' performance reports

Example:
  go run ./cmd/journal scheduler
  go run ./cmd/journal scheduler --run-now report_refresh`,
	RunE: runScheduler,
}

var schedulerRunNow string

func init() {
	rootCmd.AddCommand(schedulerCmd)

	schedulerCmd.Flags().StringVar(&schedulerRunNow, "run-now", "", "run the named job immediately on startup")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== tradelog Scheduler ===")

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

	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	reportCache := redis.NewCache(redisClient, "tradelog")

	journalRepo := journal.NewRepository(db.Pool)
	reportRepo := performance.NewRepository(db.Pool)
	analyzer := performance.NewAnalyzer(journalRepo, reportRepo, reportCache, cfg.Analysis, log)

	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewReportRefreshJob(journalRepo, analyzer, log)); err != nil {
		return fmt.Errorf("add report refresh job: %w", err)
	}

	sched.Start()
	defer sched.Stop()

	if schedulerRunNow != "" {
		if err := sched.RunJob(schedulerRunNow); err != nil {
			return fmt.Errorf("run job now: %w", err)
		}
	}

	fmt.Println("\n✅ Scheduler running")
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	return nil
}
