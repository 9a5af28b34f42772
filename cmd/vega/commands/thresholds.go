package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sjkim/vega/internal/thresholds"
	"github.com/sjkim/vega/pkg/config"
	"github.com/sjkim/vega/pkg/database"
)

// thresholdsCmd represents the thresholds command
var thresholdsCmd = &cobra.Command{
	Use:   "thresholds",
	Short: "Show rolling VRP thresholds",
	Long: `Computes the adaptive VRP tier boundaries from the trailing
observation window and prints them alongside the static defaults.

Example:
  go run ./cmd/vega thresholds
  go run ./cmd/vega thresholds --window 180 --sector Technology`,
	RunE: runThresholds,
}

var (
	thresholdsWindow int
	thresholdsSector string
	thresholdsAsOf   string
)

func init() {
	rootCmd.AddCommand(thresholdsCmd)

	// Flags
	thresholdsCmd.Flags().IntVar(&thresholdsWindow, "window", 0, "trailing window in days (default from env)")
	thresholdsCmd.Flags().StringVar(&thresholdsSector, "sector", "", "restrict to one sector")
	thresholdsCmd.Flags().StringVar(&thresholdsAsOf, "as-of", "", "as-of date (YYYY-MM-DD, default: today)")
}

func runThresholds(cmd *cobra.Command, args []string) error {
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

	windowDays := cfg.Strategy.ThresholdWindow
	if thresholdsWindow > 0 {
		windowDays = thresholdsWindow
	}

	asOf := time.Now()
	if thresholdsAsOf != "" {
		asOf, err = time.Parse("2006-01-02", thresholdsAsOf)
		if err != nil {
			return fmt.Errorf("invalid as-of date: %w", err)
		}
	}

	calc := thresholds.NewCalculator(
		thresholds.NewRepository(db.Pool),
		nil, // no cache for one-shot CLI runs
		thresholds.DefaultStatics(),
		0,
		log,
	)

	var result thresholds.RollingThresholds
	if thresholdsSector != "" {
		result = calc.Sector(cmd.Context(), thresholdsSector, windowDays, asOf)
	} else {
		result = calc.Rolling(cmd.Context(), windowDays, asOf)
	}

	fmt.Println("=== Rolling VRP Thresholds ===")
	fmt.Println()
	if thresholdsSector != "" {
		fmt.Printf("Sector:     %s\n", thresholdsSector)
	}
	fmt.Printf("As of:      %s\n", result.AsOfDate.Format("2006-01-02"))
	fmt.Printf("Window:     %d days\n", result.WindowDays)
	fmt.Printf("Samples:    %d\n", result.SampleSize)
	fmt.Printf("Source:     %s\n", result.Source)
	fmt.Println()
	fmt.Printf("Excellent:  %.3f (p75)\n", result.Excellent)
	fmt.Printf("Good:       %.3f (p50)\n", result.Good)
	fmt.Printf("Marginal:   %.3f (p25)\n", result.Marginal)
	fmt.Println()
	fmt.Printf("Mean:       %.3f\n", result.Mean)
	fmt.Printf("Std:        %.3f\n", result.Std)

	return nil
}
