package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sjkim/vega/internal/contracts"
)

// Repository is the pgx-backed EventStore, plus result persistence.
// Event tables live in the data schema owned by the upstream collection
// layer; backtest results live in our own backtest schema.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new backtest repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EarningsEvents returns all earnings events in [start, end], oldest first.
func (r *Repository) EarningsEvents(ctx context.Context, start, end time.Time) ([]contracts.EarningsEvent, error) {
	query := `
		SELECT ticker, sector, earnings_date, actual_move_pct,
		       implied_move_pct, skew, open_interest, spread_pct, volume,
		       COALESCE(stock_price, 0)
		FROM data.earnings_events
		WHERE earnings_date >= $1
		  AND earnings_date <= $2
		ORDER BY earnings_date, ticker
	`

	rows, err := r.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("query earnings events: %w: %v", contracts.ErrExternalUnavailable, err)
	}
	defer rows.Close()

	var events []contracts.EarningsEvent
	for rows.Next() {
		var ev contracts.EarningsEvent
		if err := rows.Scan(
			&ev.Ticker, &ev.Sector, &ev.EarningsDate, &ev.ActualMovePct,
			&ev.ImpliedMovePct, &ev.Skew, &ev.OpenInterest, &ev.SpreadPct, &ev.Volume,
			&ev.StockPrice,
		); err != nil {
			return nil, fmt.Errorf("scan earnings event: %w", err)
		}
		events = append(events, ev)
	}

	return events, rows.Err()
}

// HistoricalMoves returns a ticker's post-earnings moves strictly before
// the given date, oldest first.
func (r *Repository) HistoricalMoves(ctx context.Context, ticker string, before time.Time) ([]contracts.EarningsMove, error) {
	query := `
		SELECT ticker, earnings_date, close_move_pct, gap_move_pct, intraday_move_pct
		FROM data.earnings_moves
		WHERE ticker = $1
		  AND earnings_date < $2
		ORDER BY earnings_date
	`

	rows, err := r.pool.Query(ctx, query, ticker, before)
	if err != nil {
		return nil, fmt.Errorf("query earnings moves: %w: %v", contracts.ErrExternalUnavailable, err)
	}
	defer rows.Close()

	var moves []contracts.EarningsMove
	for rows.Next() {
		var m contracts.EarningsMove
		if err := rows.Scan(&m.Ticker, &m.EarningsDate, &m.CloseMovePct, &m.GapMovePct, &m.IntradayMovePct); err != nil {
			return nil, fmt.Errorf("scan earnings move: %w", err)
		}
		moves = append(moves, m)
	}

	return moves, rows.Err()
}

// SaveResult upserts a completed run keyed by (config_hash, start_date,
// end_date), so re-running an identical backtest overwrites rather than
// duplicates. Trades are stored as a JSON payload.
func (r *Repository) SaveResult(ctx context.Context, result *Result) error {
	trades, err := json.Marshal(result.Trades)
	if err != nil {
		return fmt.Errorf("marshal trades: %w", err)
	}

	query := `
		INSERT INTO backtest.results (
			config_name, config_hash, start_date, end_date, duration_ms,
			total_opportunities, qualified_opportunities, selected_trades,
			win_rate, total_pnl_pct, total_pnl_dollars, avg_pnl_per_trade,
			sharpe_ratio, max_drawdown_pct,
			avg_score_winners, avg_score_losers,
			dollar_mode, kelly_fraction, total_capital, final_capital,
			skipped_insufficient_data, skipped_errors,
			trades, created_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8,
			$9, $10, $11, $12,
			$13, $14,
			$15, $16,
			$17, $18, $19, $20,
			$21, $22,
			$23, NOW()
		)
		ON CONFLICT (config_hash, start_date, end_date) DO UPDATE SET
			config_name = EXCLUDED.config_name,
			duration_ms = EXCLUDED.duration_ms,
			total_opportunities = EXCLUDED.total_opportunities,
			qualified_opportunities = EXCLUDED.qualified_opportunities,
			selected_trades = EXCLUDED.selected_trades,
			win_rate = EXCLUDED.win_rate,
			total_pnl_pct = EXCLUDED.total_pnl_pct,
			total_pnl_dollars = EXCLUDED.total_pnl_dollars,
			avg_pnl_per_trade = EXCLUDED.avg_pnl_per_trade,
			sharpe_ratio = EXCLUDED.sharpe_ratio,
			max_drawdown_pct = EXCLUDED.max_drawdown_pct,
			avg_score_winners = EXCLUDED.avg_score_winners,
			avg_score_losers = EXCLUDED.avg_score_losers,
			dollar_mode = EXCLUDED.dollar_mode,
			kelly_fraction = EXCLUDED.kelly_fraction,
			total_capital = EXCLUDED.total_capital,
			final_capital = EXCLUDED.final_capital,
			skipped_insufficient_data = EXCLUDED.skipped_insufficient_data,
			skipped_errors = EXCLUDED.skipped_errors,
			trades = EXCLUDED.trades,
			created_at = NOW()
	`

	_, err = r.pool.Exec(ctx, query,
		result.ConfigName, result.ConfigHash, result.StartDate, result.EndDate, result.Duration.Milliseconds(),
		result.TotalOpportunities, result.QualifiedOpportunities, result.SelectedTrades,
		result.WinRate, result.TotalPnlPct, result.TotalPnlDollars, result.AvgPnlPerTrade,
		result.SharpeRatio, result.MaxDrawdownPct,
		result.AvgScoreWinners, result.AvgScoreLosers,
		result.DollarMode, result.KellyFraction, result.TotalCapital, result.FinalCapital,
		result.SkippedInsufficientData, result.SkippedErrors,
		trades,
	)
	if err != nil {
		return fmt.Errorf("save backtest result: %w", err)
	}

	return nil
}

// LatestResults returns the most recent saved runs, newest first.
func (r *Repository) LatestResults(ctx context.Context, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT config_name, config_hash, start_date, end_date, duration_ms,
		       total_opportunities, qualified_opportunities, selected_trades,
		       win_rate, total_pnl_pct, total_pnl_dollars, avg_pnl_per_trade,
		       sharpe_ratio, max_drawdown_pct,
		       avg_score_winners, avg_score_losers,
		       dollar_mode, kelly_fraction, total_capital, final_capital,
		       skipped_insufficient_data, skipped_errors
		FROM backtest.results
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query backtest results: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var (
			res        Result
			durationMs int64
		)
		if err := rows.Scan(
			&res.ConfigName, &res.ConfigHash, &res.StartDate, &res.EndDate, &durationMs,
			&res.TotalOpportunities, &res.QualifiedOpportunities, &res.SelectedTrades,
			&res.WinRate, &res.TotalPnlPct, &res.TotalPnlDollars, &res.AvgPnlPerTrade,
			&res.SharpeRatio, &res.MaxDrawdownPct,
			&res.AvgScoreWinners, &res.AvgScoreLosers,
			&res.DollarMode, &res.KellyFraction, &res.TotalCapital, &res.FinalCapital,
			&res.SkippedInsufficientData, &res.SkippedErrors,
		); err != nil {
			return nil, fmt.Errorf("scan backtest result: %w", err)
		}
		res.Duration = time.Duration(durationMs) * time.Millisecond
		results = append(results, res)
	}

	return results, rows.Err()
}

// DeleteResultsBefore removes saved runs created before the cutoff and
// returns the number deleted. Used by the retention job.
func (r *Repository) DeleteResultsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM backtest.results WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete backtest results: %w", err)
	}
	return tag.RowsAffected(), nil
}
