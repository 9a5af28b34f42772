package backtest

import (
	"context"
	"time"

	"github.com/sjkim/vega/internal/scoring"
)

// Window is one (train, test) pair. The invariant maintained by
// GenerateWindows is that TestStart is strictly after TrainEnd, so no
// training observation can leak into its own test slice.
type Window struct {
	TrainStart time.Time `json:"train_start"`
	TrainEnd   time.Time `json:"train_end"`
	TestStart  time.Time `json:"test_start"`
	TestEnd    time.Time `json:"test_end"`
}

// GenerateWindows slides (train, test) pairs across [start, end],
// stepping forward stepDays each iteration. Windows whose test slice
// would run past end are not generated.
func GenerateWindows(start, end time.Time, trainDays, testDays, stepDays int) []Window {
	if trainDays <= 0 || testDays <= 0 || stepDays <= 0 {
		return nil
	}

	var windows []Window
	for trainStart := start; ; trainStart = trainStart.AddDate(0, 0, stepDays) {
		trainEnd := trainStart.AddDate(0, 0, trainDays)
		testStart := trainEnd.AddDate(0, 0, 1)
		testEnd := testStart.AddDate(0, 0, testDays)

		if testEnd.After(end) {
			break
		}

		windows = append(windows, Window{
			TrainStart: trainStart,
			TrainEnd:   trainEnd,
			TestStart:  testStart,
			TestEnd:    testEnd,
		})
	}

	return windows
}

// WindowResult records one walk-forward iteration: which config won the
// training slice and how it fared out of sample.
type WindowResult struct {
	Window       Window  `json:"window"`
	WinnerConfig string  `json:"winner_config"`
	TrainSharpe  float64 `json:"train_sharpe"`
	Test         *Result `json:"test"`
}

// WalkForwardResult aggregates a full walk-forward sweep.
type WalkForwardResult struct {
	TotalWindows   int            `json:"total_windows"`
	SkippedWindows int            `json:"skipped_windows"`
	ConfigWins     map[string]int `json:"config_wins"`
	Windows        []WindowResult `json:"windows"`

	// Averages over completed test slices
	AvgTestSharpe      float64 `json:"avg_test_sharpe"`
	AvgTestWinRate     float64 `json:"avg_test_win_rate"`
	AvgTestPnlPct      float64 `json:"avg_test_pnl_pct"`
	AvgTestMaxDrawdown float64 `json:"avg_test_max_drawdown"`
}

// WalkForwardOptions controls a sweep.
type WalkForwardOptions struct {
	StartDate time.Time
	EndDate   time.Time

	TrainWindowDays int
	TestWindowDays  int
	StepDays        int

	// MinWindowTrades is the minimum number of selected trades a train
	// or test slice needs before it counts. Thin windows are skipped,
	// not reported. Zero means the default (5).
	MinWindowTrades int

	UseRealisticModel bool
	DollarMode        bool
	TotalCapital      float64
}

// RunWalkForward evaluates every candidate config on each training
// slice, picks the best train-period Sharpe as the window winner, and
// scores only the winner on the strictly-later test slice.
func (e *Engine) RunWalkForward(ctx context.Context, configs []scoring.Config, opts WalkForwardOptions) (*WalkForwardResult, error) {
	windows := GenerateWindows(opts.StartDate, opts.EndDate, opts.TrainWindowDays, opts.TestWindowDays, opts.StepDays)

	minTrades := opts.MinWindowTrades
	if minTrades <= 0 {
		minTrades = 5
	}

	result := &WalkForwardResult{
		TotalWindows: len(windows),
		ConfigWins:   make(map[string]int),
		Windows:      make([]WindowResult, 0, len(windows)),
	}

	runOpts := RunOptions{
		UseRealisticModel: opts.UseRealisticModel,
		DollarMode:        opts.DollarMode,
		TotalCapital:      opts.TotalCapital,
	}

	for _, window := range windows {
		var (
			winner     *scoring.Config
			bestSharpe float64
			haveWinner bool
		)

		// Fit: pick the config with the best training Sharpe.
		for i := range configs {
			trainOpts := runOpts
			trainOpts.StartDate = window.TrainStart
			trainOpts.EndDate = window.TrainEnd

			trainResult, err := e.Run(ctx, configs[i], trainOpts)
			if err != nil {
				return nil, err
			}
			if trainResult.SelectedTrades < minTrades {
				continue
			}

			if !haveWinner || trainResult.SharpeRatio > bestSharpe {
				winner = &configs[i]
				bestSharpe = trainResult.SharpeRatio
				haveWinner = true
			}
		}

		if !haveWinner {
			result.SkippedWindows++
			continue
		}

		// Validate: only the winner sees the test slice.
		testOpts := runOpts
		testOpts.StartDate = window.TestStart
		testOpts.EndDate = window.TestEnd

		testResult, err := e.Run(ctx, *winner, testOpts)
		if err != nil {
			return nil, err
		}
		if testResult.SelectedTrades < minTrades {
			result.SkippedWindows++
			continue
		}

		result.ConfigWins[winner.Name]++
		result.Windows = append(result.Windows, WindowResult{
			Window:       window,
			WinnerConfig: winner.Name,
			TrainSharpe:  bestSharpe,
			Test:         testResult,
		})
	}

	e.aggregateWalkForward(result)

	e.logger.WithFields(map[string]interface{}{
		"windows":   result.TotalWindows,
		"completed": len(result.Windows),
		"skipped":   result.SkippedWindows,
		"wins":      result.ConfigWins,
	}).Info("Walk-forward validation completed")

	return result, nil
}

func (e *Engine) aggregateWalkForward(result *WalkForwardResult) {
	if len(result.Windows) == 0 {
		return
	}

	var sharpe, winRate, pnl, drawdown float64
	for _, w := range result.Windows {
		sharpe += w.Test.SharpeRatio
		winRate += w.Test.WinRate
		pnl += w.Test.TotalPnlPct
		drawdown += w.Test.MaxDrawdownPct
	}

	n := float64(len(result.Windows))
	result.AvgTestSharpe = sharpe / n
	result.AvgTestWinRate = winRate / n
	result.AvgTestPnlPct = pnl / n
	result.AvgTestMaxDrawdown = drawdown / n
}
