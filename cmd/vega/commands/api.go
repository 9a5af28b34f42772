package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sjkim/vega/internal/api"
	"github.com/sjkim/vega/internal/api/handlers"
	"github.com/sjkim/vega/internal/backtest"
	"github.com/sjkim/vega/internal/liquidity"
	"github.com/sjkim/vega/internal/thresholds"
	"github.com/sjkim/vega/pkg/config"
	"github.com/sjkim/vega/pkg/database"
	"github.com/sjkim/vega/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the REST API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                        - Health check
  POST /api/backtest/run              - Run a backtest
  POST /api/backtest/walkforward      - Walk-forward validation
  GET  /api/backtest/results          - Recent persisted results
  GET  /api/thresholds/rolling        - Global rolling thresholds
  GET  /api/thresholds/sector/{sector} - Sector thresholds
  POST /api/score/preview             - Score candidates ad hoc
  POST /api/liquidity/check           - Check option tradability

Example:
  go run ./cmd/vega api
  go run ./cmd/vega api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from env)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Vega API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := newLogger(cfg)

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
		log.WithError(err).Warn("Redis unavailable, threshold caching disabled")
		redisClient = nil
	}
	var cache *redis.Cache
	if redisClient != nil {
		defer redisClient.Close()
		cache = redis.NewCache(redisClient, "vega")
	}

	// 5. Create repositories
	backtestRepo := backtest.NewRepository(db.Pool)
	observationRepo := thresholds.NewRepository(db.Pool)

	// 6. Create threshold calculator
	calc := thresholds.NewCalculator(
		observationRepo,
		cache,
		thresholds.DefaultStatics(),
		cfg.Strategy.ThresholdTTL,
		log,
	)

	// 7. Create backtest engine
	engine := backtest.NewEngine(backtestRepo, backtest.DefaultSimConfig(), nil, log)

	// 8. Create handlers
	backtestHandler := handlers.NewBacktestHandler(engine, backtestRepo, log)
	thresholdHandler := handlers.NewThresholdHandler(calc, cfg.Strategy.ThresholdWindow, log)
	scoreHandler := handlers.NewScoreHandler(log)
	liquidityHandler := handlers.NewLiquidityHandler(liquidity.NewScorer(liquidity.DefaultConfig(), log), log)

	// 9. Create router and server
	router := api.NewRouter(db, backtestHandler, thresholdHandler, scoreHandler, liquidityHandler, log)
	server := api.New(cfg, log, router)

	// 10. Start server with graceful shutdown
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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
