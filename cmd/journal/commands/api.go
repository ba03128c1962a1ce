package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/tradelog/backend/internal/api"
	"github.com/wonny/tradelog/backend/internal/api/handlers"
	"github.com/wonny/tradelog/backend/internal/journal"
	"github.com/wonny/tradelog/backend/internal/performance"
	"github.com/wonny/tradelog/backend/pkg/config"
	"github.com/wonny/tradelog/backend/pkg/database"
	"github.com/wonny/tradelog/backend/pkg/logger"
	"github.com/wonny/tradelog/backend/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the REST API server",
	Long: `Starts the tradelog REST API server.

Endpoints:
  GET    /health                              - Health check
  GET    /api/performance/{userID}            - Performance report (cached)
  POST   /api/performance/{userID}/refresh    - Force report recompute
  GET    /api/trades/{userID}                 - List trades
  POST   /api/trades                          - Log a trade
  DELETE /api/trades/{userID}/{tradeID}       - Delete a trade
  GET    /api/strategies/{userID}             - List strategies

Example:
  go run ./cmd/journal api
  go run ./cmd/journal api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== tradelog API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	log.Info("Connected to database")

	// 4. Connect to Redis (optional)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	reportCache := redis.NewCache(redisClient, "tradelog")

	// 5. Create repositories
	journalRepo := journal.NewRepository(db.Pool)
	reportRepo := performance.NewRepository(db.Pool)

	// 6. Create analyzer
	analyzer := performance.NewAnalyzer(journalRepo, reportRepo, reportCache, cfg.Analysis, log)

	// 7. Create handlers
	perfHandler := handlers.NewPerformanceHandler(analyzer, log)
	tradeHandler := handlers.NewTradeHandler(journalRepo, log)

	// 8. Create router and server
	router := api.NewRouter(perfHandler, tradeHandler, log)
	server := api.New(cfg, log, router)

	// 9. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
