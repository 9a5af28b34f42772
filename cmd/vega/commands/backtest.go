package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sjkim/vega/internal/backtest"
	"github.com/sjkim/vega/internal/scoring"
	"github.com/sjkim/vega/pkg/config"
	"github.com/sjkim/vega/pkg/database"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Backtest scoring configs against historical earnings",
	Long: `Replays historical earnings events through the scoring pipeline and
simulates short-volatility P&L for the selected trades.

Example:
  go run ./cmd/vega backtest run --from 2024-01-01 --to 2024-12-31
  go run ./cmd/vega backtest run --profile conservative --realistic
  go run ./cmd/vega backtest walkforward --from 2023-01-01 --to 2024-12-31`,
}

var (
	backtestRunCmd = &cobra.Command{
		Use:   "run",
		Short: "Run a single backtest",
		Long: `Runs one backtest over the given date range.

Flags:
  --from       start date (YYYY-MM-DD, required)
  --to         end date (YYYY-MM-DD, default: today)
  --profile    scoring profile (conservative|balanced|aggressive|legacy)
  --realistic  apply spread, commission and residual-IV costs
  --dollar     Kelly-sized dollar bookkeeping instead of percent compounding
  --capital    starting capital for --dollar mode

Example:
  go run ./cmd/vega backtest run --from 2024-01-01 --to 2024-12-31
  go run ./cmd/vega backtest run --profile aggressive --realistic --dollar --capital 100000`,
		RunE: runBacktest,
	}

	backtestWalkForwardCmd = &cobra.Command{
		Use:   "walkforward",
		Short: "Walk-forward validation across profiles",
		Long: `Slides train/test windows across the date range, picks the profile
with the best training Sharpe in each window, and reports how the
winners performed out of sample.

Example:
  go run ./cmd/vega backtest walkforward --from 2023-01-01 --to 2024-12-31
  go run ./cmd/vega backtest walkforward --train 180 --test 90 --step 90`,
		RunE: runWalkForward,
	}

	// Flags
	backtestFrom      string
	backtestTo        string
	backtestProfile   string
	backtestRealistic bool
	backtestDollar    bool
	backtestCapital   float64
	backtestSave      bool

	walkForwardTrain int
	walkForwardTest  int
	walkForwardStep  int
)

func init() {
	rootCmd.AddCommand(backtestCmd)
	backtestCmd.AddCommand(backtestRunCmd)
	backtestCmd.AddCommand(backtestWalkForwardCmd)

	for _, cmd := range []*cobra.Command{backtestRunCmd, backtestWalkForwardCmd} {
		cmd.Flags().StringVar(&backtestFrom, "from", "", "start date (YYYY-MM-DD, required)")
		cmd.Flags().StringVar(&backtestTo, "to", "", "end date (YYYY-MM-DD, default: today)")
		cmd.Flags().BoolVar(&backtestRealistic, "realistic", false, "apply realistic execution costs")
		cmd.Flags().BoolVar(&backtestDollar, "dollar", false, "Kelly-sized dollar bookkeeping")
		cmd.Flags().Float64Var(&backtestCapital, "capital", 100_000, "starting capital for --dollar mode")
		cmd.MarkFlagRequired("from")
	}

	backtestRunCmd.Flags().StringVar(&backtestProfile, "profile", "balanced", "scoring profile")
	backtestRunCmd.Flags().BoolVar(&backtestSave, "save", false, "persist the result")

	backtestWalkForwardCmd.Flags().IntVar(&walkForwardTrain, "train", 180, "training window (days)")
	backtestWalkForwardCmd.Flags().IntVar(&walkForwardTest, "test", 90, "test window (days)")
	backtestWalkForwardCmd.Flags().IntVar(&walkForwardStep, "step", 90, "step between windows (days)")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Vega Backtest ===")

	startDate, endDate, err := parseBacktestDates()
	if err != nil {
		return err
	}

	scoringCfg, err := loadScoringConfig(backtestProfile)
	if err != nil {
		return err
	}

	fmt.Printf("\n📅 Period:  %s ~ %s\n", startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	fmt.Printf("⚙️  Profile: %s (min score %.0f, max positions %d)\n",
		scoringCfg.Profile, scoringCfg.MinScore, scoringCfg.MaxPositions)
	if backtestDollar {
		fmt.Printf("💰 Capital: %s\n", formatDollars(backtestCapital))
	}
	fmt.Println()

	engine, repo, db, err := initBacktestEngine()
	if err != nil {
		return fmt.Errorf("init backtest engine: %w", err)
	}
	defer db.Close()

	result, err := engine.Run(cmd.Context(), scoringCfg, backtest.RunOptions{
		StartDate:         startDate,
		EndDate:           endDate,
		UseRealisticModel: backtestRealistic,
		DollarMode:        backtestDollar,
		TotalCapital:      backtestCapital,
	})
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	printBacktestResult(result)

	if backtestSave {
		if err := repo.SaveResult(cmd.Context(), result); err != nil {
			return fmt.Errorf("save result: %w", err)
		}
		fmt.Println("💾 Result saved")
	}

	return nil
}

func runWalkForward(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Vega Walk-Forward Validation ===")

	startDate, endDate, err := parseBacktestDates()
	if err != nil {
		return err
	}

	profiles := []scoring.Profile{
		scoring.ProfileConservative,
		scoring.ProfileBalanced,
		scoring.ProfileAggressive,
		scoring.ProfileLegacy,
	}
	configs := make([]scoring.Config, 0, len(profiles))
	for _, p := range profiles {
		cfg, err := loadScoringConfig(string(p))
		if err != nil {
			return err
		}
		configs = append(configs, cfg)
	}

	fmt.Printf("\n📅 Period:  %s ~ %s\n", startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	fmt.Printf("🪟 Windows: train %dd / test %dd / step %dd\n\n", walkForwardTrain, walkForwardTest, walkForwardStep)

	engine, _, db, err := initBacktestEngine()
	if err != nil {
		return fmt.Errorf("init backtest engine: %w", err)
	}
	defer db.Close()

	result, err := engine.RunWalkForward(cmd.Context(), configs, backtest.WalkForwardOptions{
		StartDate:         startDate,
		EndDate:           endDate,
		TrainWindowDays:   walkForwardTrain,
		TestWindowDays:    walkForwardTest,
		StepDays:          walkForwardStep,
		UseRealisticModel: backtestRealistic,
		DollarMode:        backtestDollar,
		TotalCapital:      backtestCapital,
	})
	if err != nil {
		return fmt.Errorf("walk-forward validation failed: %w", err)
	}

	printWalkForwardResult(result)
	return nil
}

func parseBacktestDates() (time.Time, time.Time, error) {
	startDate, err := time.Parse("2006-01-02", backtestFrom)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date: %w", err)
	}

	endDate := time.Now()
	if backtestTo != "" {
		endDate, err = time.Parse("2006-01-02", backtestTo)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end date: %w", err)
		}
	}

	return startDate, endDate, nil
}

// loadScoringConfig resolves the effective scoring config: the --config
// YAML file when given, otherwise the named profile with defaults.
func loadScoringConfig(profile string) (scoring.Config, error) {
	if configFile != "" {
		cfg, warnings, err := scoring.Load(configFile)
		if err != nil {
			return scoring.Config{}, fmt.Errorf("load scoring config: %w", err)
		}
		for _, warn := range warnings {
			fmt.Printf("⚠️  %s: %s\n", warn.Code, warn.Message)
		}
		return *cfg, nil
	}

	p, known := scoring.ParseProfile(profile)
	if !known {
		fmt.Printf("⚠️  Unknown profile %q, using %q\n", profile, p)
	}

	cfg := scoring.DefaultConfig()
	cfg.Name = string(p)
	cfg.Profile = string(p)
	cfg.Thresholds = p.Thresholds()
	return cfg, nil
}

func initBacktestEngine() (*backtest.Engine, *backtest.Repository, *database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	log := newLogger(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	repo := backtest.NewRepository(db.Pool)
	engine := backtest.NewEngine(repo, backtest.DefaultSimConfig(), nil, log)

	return engine, repo, db, nil
}

func printBacktestResult(result *backtest.Result) {
	fmt.Println("\n✅ Backtest Completed")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()

	fmt.Println("📊 Opportunities")
	fmt.Printf("Total:     %d\n", result.TotalOpportunities)
	fmt.Printf("Qualified: %d\n", result.QualifiedOpportunities)
	fmt.Printf("Selected:  %d\n", result.SelectedTrades)
	if result.SkippedInsufficientData > 0 || result.SkippedErrors > 0 {
		fmt.Printf("Skipped:   %d insufficient data, %d errors\n",
			result.SkippedInsufficientData, result.SkippedErrors)
	}
	fmt.Println()

	fmt.Println("💰 Performance")
	fmt.Printf("Win Rate:        %.1f%%\n", result.WinRate*100)
	fmt.Printf("Total P&L:       %+.2f%%\n", result.TotalPnlPct)
	if result.DollarMode {
		fmt.Printf("Final Capital:   %s (started %s)\n",
			formatDollars(result.FinalCapital), formatDollars(result.TotalCapital))
	}
	fmt.Printf("Avg per Trade:   %+.2f%%\n", result.AvgPnlPerTrade)
	fmt.Println()

	fmt.Println("📉 Risk")
	fmt.Printf("Sharpe Ratio:    %.2f%s\n", result.SharpeRatio, sharpeLabel(result.SharpeRatio))
	fmt.Printf("Max Drawdown:    %.2f%%%s\n", result.MaxDrawdownPct, drawdownLabel(result.MaxDrawdownPct))
	fmt.Println()

	fmt.Println("🎯 Score Separation")
	fmt.Printf("Avg Winner Score: %.1f\n", result.AvgScoreWinners)
	fmt.Printf("Avg Loser Score:  %.1f\n", result.AvgScoreLosers)
	fmt.Println()

	fmt.Printf("Duration: %.2f seconds\n", result.Duration.Seconds())
	fmt.Println()
}

func printWalkForwardResult(result *backtest.WalkForwardResult) {
	fmt.Println("\n✅ Walk-Forward Completed")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()

	fmt.Printf("Windows: %d total, %d completed, %d skipped\n",
		result.TotalWindows, len(result.Windows), result.SkippedWindows)
	fmt.Println()

	fmt.Println("🏆 Profile Wins")
	for profile, wins := range result.ConfigWins {
		fmt.Printf("%-14s %d\n", profile, wins)
	}
	fmt.Println()

	fmt.Println("📊 Out-of-Sample Averages")
	fmt.Printf("Sharpe:       %.2f\n", result.AvgTestSharpe)
	fmt.Printf("Win Rate:     %.1f%%\n", result.AvgTestWinRate*100)
	fmt.Printf("P&L:          %+.2f%%\n", result.AvgTestPnlPct)
	fmt.Printf("Max Drawdown: %.2f%%\n", result.AvgTestMaxDrawdown)
	fmt.Println()

	for _, w := range result.Windows {
		fmt.Printf("%s ~ %s  winner=%-12s train Sharpe %.2f, test Sharpe %.2f, test P&L %+.2f%%\n",
			w.Window.TestStart.Format("2006-01-02"),
			w.Window.TestEnd.Format("2006-01-02"),
			w.WinnerConfig,
			w.TrainSharpe,
			w.Test.SharpeRatio,
			w.Test.TotalPnlPct)
	}
	fmt.Println()
}

func sharpeLabel(sharpe float64) string {
	switch {
	case sharpe > 2.0:
		return " 🌟 (Excellent)"
	case sharpe > 1.0:
		return " ✅ (Good)"
	case sharpe > 0.5:
		return " ⚠️  (Fair)"
	default:
		return " ❌ (Poor)"
	}
}

func drawdownLabel(dd float64) string {
	switch {
	case dd < 10:
		return " 🌟 (Excellent)"
	case dd < 20:
		return " ✅ (Good)"
	case dd < 30:
		return " ⚠️  (Fair)"
	default:
		return " ❌ (High)"
	}
}
