package backtest

import (
	"fmt"
	"math"

	"github.com/sjkim/vega/internal/contracts"
)

// tradesPerYear is the annualization base for the Sharpe ratio.
// Earnings positions turn over roughly weekly.
const tradesPerYear = 50

// sharpeRatio computes mean/std of per-trade P&L, annualized by the
// square root of the yearly trade cadence. Degenerate inputs (fewer
// than two trades, zero variance) yield 0 rather than an error.
func sharpeRatio(pnls []float64) float64 {
	if len(pnls) < 2 {
		return 0
	}

	std := stddev(pnls)
	if std == 0 {
		return 0
	}

	return mean(pnls) / std * math.Sqrt(tradesPerYear)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev is the population standard deviation.
func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	variance := 0.0
	for _, v := range values {
		diff := v - m
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

// historyStats derives the average absolute move and consistency from a
// pre-event history. Errors are matchable against the contracts
// sentinels so the caller can attribute the skip.
func historyStats(moves []float64, minHistory int) (avgMove, consistency float64, err error) {
	if len(moves) < minHistory {
		return 0, 0, fmt.Errorf("%w: %d of %d quarters", contracts.ErrDataInsufficient, len(moves), minHistory)
	}

	avgMove = mean(moves)
	if avgMove <= 0 {
		return 0, 0, fmt.Errorf("%w: non-positive average move", contracts.ErrCalculationDegenerate)
	}

	return avgMove, consistencyFromMoves(moves), nil
}

// consistencyFromMoves maps a series of absolute historical moves into
// a 0-1 consistency value via the coefficient of variation: tight,
// repeatable moves score near 1, erratic ones near 0. A zero-mean
// series is degenerate and scores 0 (neutral) instead of erroring.
func consistencyFromMoves(moves []float64) float64 {
	if len(moves) < 2 {
		return 0
	}

	m := mean(moves)
	if m <= 0 {
		return 0
	}

	cv := stddev(moves) / m
	consistency := 1 - cv
	if consistency < 0 {
		return 0
	}
	if consistency > 1 {
		return 1
	}
	return consistency
}
