package backtest

import (
	"time"

	"github.com/sjkim/vega/internal/contracts"
)

// Result holds one completed backtest run. Produced once; immutable.
type Result struct {
	// Config identity
	ConfigName string `json:"config_name"`
	ConfigHash string `json:"config_hash"`

	// Date range
	StartDate time.Time     `json:"start_date"`
	EndDate   time.Time     `json:"end_date"`
	Duration  time.Duration `json:"duration"`

	// Opportunity counts
	TotalOpportunities     int `json:"total_opportunities"`
	QualifiedOpportunities int `json:"qualified_opportunities"`
	SelectedTrades         int `json:"selected_trades"`

	// Performance metrics (selected trades only)
	WinRate         float64 `json:"win_rate"`
	TotalPnlPct     float64 `json:"total_pnl_pct"` // compounded equity return, percent
	TotalPnlDollars float64 `json:"total_pnl_dollars"`
	AvgPnlPerTrade  float64 `json:"avg_pnl_per_trade"`
	SharpeRatio     float64 `json:"sharpe_ratio"`
	MaxDrawdownPct  float64 `json:"max_drawdown_pct"`
	AvgScoreWinners float64 `json:"avg_score_winners"`
	AvgScoreLosers  float64 `json:"avg_score_losers"`

	// Position sizing mode
	DollarMode    bool    `json:"dollar_mode"` // Kelly-sized dollar bookkeeping vs compounded percent
	KellyFraction float64 `json:"kelly_fraction"`
	TotalCapital  float64 `json:"total_capital"`
	FinalCapital  float64 `json:"final_capital"`

	// Every qualified trade, chronological
	Trades []contracts.Trade `json:"trades"`

	// Skip accounting, so partial data loss is always observable
	SkippedInsufficientData int `json:"skipped_insufficient_data"`
	SkippedErrors           int `json:"skipped_errors"`
}
