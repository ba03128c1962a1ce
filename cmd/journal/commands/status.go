package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/tradelog/backend/pkg/config"
	"github.com/wonny/tradelog/backend/pkg/database"
	"github.com/wonny/tradelog/backend/pkg/logger"
	"github.com/wonny/tradelog/backend/pkg/redis"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check configuration and backing-service health",
	Long: `Loads the configuration and pings the database and Redis.

Example:
  go run ./cmd/journal status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== tradelog Status ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fmt.Printf("\n⚙️  Config\n")
	fmt.Printf("  Env: %s\n", cfg.Env)
	fmt.Printf("  Port: %s\n", cfg.Port)
	fmt.Printf("  Redis enabled: %v\n", cfg.Redis.Enabled)
	fmt.Printf("  Volatile threshold: %.1f per trade\n", cfg.Analysis.VolatilePnLPerTrade)
	fmt.Printf("  Recent window: %d trades\n", cfg.Analysis.RecentTradeWindow)

	log := logger.New(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Database
	db, err := database.New(cfg)
	if err != nil {
		fmt.Printf("\n❌ Database: %v\n", err)
		return err
	}
	defer db.Close()

	health, err := db.HealthCheck(ctx)
	if err != nil {
		fmt.Printf("\n❌ Database health check: %v\n", err)
		return err
	}
	fmt.Printf("\n✅ Database: healthy (ping %v, %d/%d conns)\n",
		health.ResponseTime, health.Stats.TotalConns, health.Stats.MaxConns)

	// Redis
	redisClient, err := redis.New(cfg)
	if err != nil {
		fmt.Printf("❌ Redis: %v\n", err)
		return err
	}
	defer redisClient.Close()

	if redisClient.Enabled() {
		fmt.Println("✅ Redis: connected")
	} else {
		fmt.Println("➖ Redis: disabled")
	}

	log.Info("Status check completed")
	return nil
}
