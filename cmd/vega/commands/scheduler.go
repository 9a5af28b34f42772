package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sjkim/vega/internal/backtest"
	"github.com/sjkim/vega/internal/scheduler"
	"github.com/sjkim/vega/internal/scheduler/jobs"
	"github.com/sjkim/vega/internal/thresholds"
	"github.com/sjkim/vega/pkg/config"
	"github.com/sjkim/vega/pkg/database"
	"github.com/sjkim/vega/pkg/redis"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Start the job scheduler",
	Long: `Starts the cron scheduler.

Jobs:
  threshold_refresh  - recompute rolling VRP thresholds (daily 6 AM)
  result_retention   - delete old backtest results (daily 3 AM)

Example:
  go run ./cmd/vega scheduler
  go run ./cmd/vega scheduler --run-now threshold_refresh`,
	RunE: runScheduler,
}

var runNowJob string

func init() {
	schedulerCmd.Flags().StringVar(&runNowJob, "run-now", "", "trigger the named job immediately at startup")
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Vega Scheduler ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := newLogger(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

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

	calc := thresholds.NewCalculator(
		thresholds.NewRepository(db.Pool),
		cache,
		thresholds.DefaultStatics(),
		cfg.Strategy.ThresholdTTL,
		log,
	)
	backtestRepo := backtest.NewRepository(db.Pool)

	sched := scheduler.New(log)

	if err := sched.AddJob(jobs.NewThresholdRefreshJob(calc, cfg.Strategy.ThresholdWindow, nil, log)); err != nil {
		return fmt.Errorf("add threshold refresh job: %w", err)
	}
	if err := sched.AddJob(jobs.NewResultRetentionJob(backtestRepo, cfg.Strategy.ResultRetention, log)); err != nil {
		return fmt.Errorf("add retention job: %w", err)
	}

	sched.Start()

	fmt.Println("\n✅ Scheduler running")
	fmt.Println("\nRegistered jobs:")
	for _, name := range sched.Jobs() {
		fmt.Printf("  - %s\n", name)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	if runNowJob != "" {
		if err := sched.RunJob(runNowJob); err != nil {
			return fmt.Errorf("run job now: %w", err)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	printJobSummary(sched)
	return nil
}

// printJobSummary reports each job's run history on shutdown.
func printJobSummary(sched *scheduler.Scheduler) {
	fmt.Println("\nJob summary:")
	for _, name := range sched.Jobs() {
		history, err := sched.History(name)
		if err != nil {
			continue
		}
		recent := history.LatestResults(1)
		if len(recent) == 0 {
			fmt.Printf("  - %s: no runs\n", name)
			continue
		}
		fmt.Printf("  - %s: success rate %.0f%%, last run %s in %s\n",
			name, history.SuccessRate()*100,
			recent[0].EndTime.Format("2006-01-02 15:04:05"), recent[0].Duration.Round(time.Millisecond))
	}
}
