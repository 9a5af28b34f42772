package backtest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjkim/vega/internal/contracts"
	"github.com/sjkim/vega/internal/scoring"
	"github.com/sjkim/vega/internal/sizing"
	"github.com/sjkim/vega/pkg/logger"
)

// fakeEventStore serves canned events and per-ticker history.
type fakeEventStore struct {
	events   []contracts.EarningsEvent
	moves    map[string][]contracts.EarningsMove
	eventErr error
	moveErr  map[string]error
}

func (f *fakeEventStore) EarningsEvents(ctx context.Context, start, end time.Time) ([]contracts.EarningsEvent, error) {
	if f.eventErr != nil {
		return nil, f.eventErr
	}
	var inRange []contracts.EarningsEvent
	for _, ev := range f.events {
		if !ev.EarningsDate.Before(start) && !ev.EarningsDate.After(end) {
			inRange = append(inRange, ev)
		}
	}
	return inRange, nil
}

func (f *fakeEventStore) HistoricalMoves(ctx context.Context, ticker string, before time.Time) ([]contracts.EarningsMove, error) {
	if err := f.moveErr[ticker]; err != nil {
		return nil, err
	}
	return f.moves[ticker], nil
}

func day(offset int) time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

// steadyHistory builds n quarterly moves of the given size, all before
// the event date.
func steadyHistory(eventDate time.Time, n int, movePct float64) []contracts.EarningsMove {
	moves := make([]contracts.EarningsMove, n)
	for i := 0; i < n; i++ {
		moves[i] = contracts.EarningsMove{
			EarningsDate: eventDate.AddDate(0, -3*(n-i), 0),
			CloseMovePct: movePct,
		}
	}
	return moves
}

func event(ticker string, date time.Time, actualMove, impliedMove float64) contracts.EarningsEvent {
	return contracts.EarningsEvent{
		Ticker:         ticker,
		EarningsDate:   date,
		ActualMovePct:  actualMove,
		ImpliedMovePct: &impliedMove,
		StockPrice:     100,
	}
}

func newTestEngine(store EventStore) *Engine {
	return NewEngine(store, DefaultSimConfig(), nil, logger.NewNop())
}

func testRunOptions() RunOptions {
	return RunOptions{
		StartDate: day(0),
		EndDate:   day(90),
	}
}

func TestEngine_NilStoreIsEmptyResult(t *testing.T) {
	e := newTestEngine(nil)

	result, err := e.Run(context.Background(), scoring.DefaultConfig(), testRunOptions())
	require.NoError(t, err)

	assert.Zero(t, result.TotalOpportunities)
	assert.Zero(t, result.SelectedTrades)
	assert.NotEmpty(t, result.ConfigHash)
}

func TestEngine_EventLoadFailureCountsAsSkip(t *testing.T) {
	e := newTestEngine(&fakeEventStore{eventErr: errors.New("connection refused")})

	result, err := e.Run(context.Background(), scoring.DefaultConfig(), testRunOptions())
	require.NoError(t, err, "store failures degrade to an empty run")

	assert.Equal(t, 1, result.SkippedErrors)
	assert.Zero(t, result.SelectedTrades)
}

func TestEngine_InsufficientHistorySkipped(t *testing.T) {
	date := day(10)
	store := &fakeEventStore{
		events: []contracts.EarningsEvent{event("NEWIPO", date, 3, 10)},
		moves: map[string][]contracts.EarningsMove{
			"NEWIPO": steadyHistory(date, 2, 5), // below the 4-quarter default
		},
	}
	e := newTestEngine(store)

	result, err := e.Run(context.Background(), scoring.DefaultConfig(), testRunOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, result.SkippedInsufficientData)
	assert.Equal(t, 1, result.TotalOpportunities, "skips still count as opportunities")
	assert.Zero(t, result.QualifiedOpportunities)
}

func TestEngine_HistoryErrorSkipsOnlyThatEvent(t *testing.T) {
	date := day(10)
	store := &fakeEventStore{
		events: []contracts.EarningsEvent{
			event("GOOD", date, 3, 10),
			event("BROKEN", date, 3, 10),
		},
		moves: map[string][]contracts.EarningsMove{
			"GOOD": steadyHistory(date, 8, 5),
		},
		moveErr: map[string]error{
			"BROKEN": errors.New("timeout"),
		},
	}
	e := newTestEngine(store)

	result, err := e.Run(context.Background(), scoring.DefaultConfig(), testRunOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, result.SkippedErrors)
	assert.Equal(t, 1, result.QualifiedOpportunities, "the healthy event still scores")
}

func TestEngine_FutureHistoryNeverLeaks(t *testing.T) {
	date := day(10)
	history := steadyHistory(date, 8, 5)
	// Poison: a record dated on the event day itself.
	history = append(history, contracts.EarningsMove{EarningsDate: date, CloseMovePct: 50})

	store := &fakeEventStore{
		events: []contracts.EarningsEvent{event("LEAK", date, 3, 10)},
		moves:  map[string][]contracts.EarningsMove{"LEAK": history},
	}
	e := newTestEngine(store)

	result, err := e.Run(context.Background(), scoring.DefaultConfig(), testRunOptions())
	require.NoError(t, err)
	require.Equal(t, 1, result.SelectedTrades)

	// avg move stays 5 (the 50 is excluded), so the win books the full
	// premium: 5 * 1.3 * 0.5 = 3.25.
	assert.InDelta(t, 3.25, result.Trades[0].SimulatedPnl, 0.001)
}

func TestEngine_WinningBacktest(t *testing.T) {
	store := &fakeEventStore{moves: map[string][]contracts.EarningsMove{}}
	for i, ticker := range []string{"AAA", "BBB", "CCC"} {
		date := day(10 + i*7)
		// Rich premium (implied 10 vs avg 5) and a quiet realized move.
		store.events = append(store.events, event(ticker, date, 2, 10))
		store.moves[ticker] = steadyHistory(date, 8, 5)
	}
	e := newTestEngine(store)

	result, err := e.Run(context.Background(), scoring.DefaultConfig(), testRunOptions())
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalOpportunities)
	assert.Equal(t, 3, result.QualifiedOpportunities)
	assert.Equal(t, 3, result.SelectedTrades)
	assert.Equal(t, 1.0, result.WinRate)
	assert.Greater(t, result.TotalPnlPct, 0.0)
	assert.Zero(t, result.MaxDrawdownPct)
	assert.Greater(t, result.AvgScoreWinners, 0.0)
	assert.Zero(t, result.AvgScoreLosers)

	// Identical wins compound: (1.0325)^3 - 1.
	want := (mustPow(1.0325, 3) - 1) * 100
	assert.InDelta(t, want, result.TotalPnlPct, 0.01)
}

func TestEngine_SelectionHonorsMaxPositions(t *testing.T) {
	store := &fakeEventStore{moves: map[string][]contracts.EarningsMove{}}
	tickers := []string{"T1", "T2", "T3", "T4", "T5", "T6", "T7"}
	for i, ticker := range tickers {
		date := day(10 + i)
		store.events = append(store.events, event(ticker, date, 2, 10))
		store.moves[ticker] = steadyHistory(date, 8, 5)
	}
	e := newTestEngine(store)

	cfg := scoring.DefaultConfig()
	cfg.MaxPositions = 2

	result, err := e.Run(context.Background(), cfg, testRunOptions())
	require.NoError(t, err)

	assert.Equal(t, 7, result.QualifiedOpportunities)
	assert.Equal(t, 2, result.SelectedTrades)
	assert.Len(t, result.Trades, 7, "unselected qualifiers are still recorded")

	selected := 0
	for _, trade := range result.Trades {
		if trade.Selected {
			selected++
			assert.LessOrEqual(t, trade.Rank, 2)
		}
	}
	assert.Equal(t, 2, selected)
}

func TestEngine_TradesAreChronological(t *testing.T) {
	store := &fakeEventStore{moves: map[string][]contracts.EarningsMove{}}
	// Insert out of order on purpose.
	for i, ticker := range []string{"LATE", "EARLY", "MID"} {
		date := day(30 - i*10)
		store.events = append(store.events, event(ticker, date, 2, 10))
		store.moves[ticker] = steadyHistory(date, 8, 5)
	}
	e := newTestEngine(store)

	result, err := e.Run(context.Background(), scoring.DefaultConfig(), testRunOptions())
	require.NoError(t, err)
	require.Len(t, result.Trades, 3)

	for i := 1; i < len(result.Trades); i++ {
		assert.False(t, result.Trades[i].EarningsDate.Before(result.Trades[i-1].EarningsDate))
	}
}

func TestEngine_DollarMode(t *testing.T) {
	date := day(10)
	store := &fakeEventStore{
		events: []contracts.EarningsEvent{event("WIN", date, 2, 10)},
		moves:  map[string][]contracts.EarningsMove{"WIN": steadyHistory(date, 20, 5)},
	}
	e := newTestEngine(store)

	opts := testRunOptions()
	opts.DollarMode = true
	opts.TotalCapital = 100_000

	result, err := e.Run(context.Background(), scoring.DefaultConfig(), opts)
	require.NoError(t, err)
	require.Equal(t, 1, result.SelectedTrades)

	assert.True(t, result.DollarMode)
	assert.Equal(t, 0.25, result.KellyFraction)
	assert.Greater(t, result.FinalCapital, opts.TotalCapital, "a winning trade grows capital")
	assert.InDelta(t, result.FinalCapital-opts.TotalCapital, result.TotalPnlDollars, 0.001)
	assert.NotZero(t, result.Trades[0].PnlDollars)
}

func TestEngine_SizeByDayCapsSameDayExposure(t *testing.T) {
	cfg := sizing.DefaultConfig()
	cfg.MaxTotalExposurePct = 10.0
	sizer := sizing.NewSizer(cfg, nil, logger.NewNop())
	e := NewEngine(nil, DefaultSimConfig(), sizer, logger.NewNop())

	score := func(ticker string, date time.Time) contracts.TickerScore {
		return contracts.TickerScore{
			Ticker:           ticker,
			EarningsDate:     date,
			VRPRatio:         2.0,
			ConsistencyScore: 90,
			Selected:         true,
		}
	}
	qualified := []contracts.TickerScore{
		score("A", day(10)),
		score("B", day(10)),
		score("C", day(10)),
		score("D", day(11)),
	}

	sized := e.sizeByDay(qualified)
	require.Len(t, sized, 4)

	crowded := []sizing.PositionSize{
		sized[eventKey("A", day(10))],
		sized[eventKey("B", day(10))],
		sized[eventKey("C", day(10))],
	}
	assert.InDelta(t, cfg.MaxTotalExposurePct, sizing.TotalExposurePct(crowded), 0.001,
		"three same-day positions scale down to the cap")
	for _, pos := range crowded {
		assert.True(t, pos.RiskAdjusted)
	}

	alone := sized[eventKey("D", day(11))]
	assert.Greater(t, alone.PositionSizePct, crowded[0].PositionSizePct,
		"a solo position keeps its full size")
}

func TestEngine_DeterministicAcrossRuns(t *testing.T) {
	store := &fakeEventStore{moves: map[string][]contracts.EarningsMove{}}
	for i, ticker := range []string{"A", "B", "C", "D"} {
		date := day(10 + i*5)
		store.events = append(store.events, event(ticker, date, float64(i), 10))
		store.moves[ticker] = steadyHistory(date, 8, 5)
	}
	e := newTestEngine(store)

	first, err := e.Run(context.Background(), scoring.DefaultConfig(), testRunOptions())
	require.NoError(t, err)
	second, err := e.Run(context.Background(), scoring.DefaultConfig(), testRunOptions())
	require.NoError(t, err)

	assert.Equal(t, first.ConfigHash, second.ConfigHash)
	assert.Equal(t, first.TotalPnlPct, second.TotalPnlPct)
	assert.Equal(t, first.SharpeRatio, second.SharpeRatio)
	assert.Equal(t, len(first.Trades), len(second.Trades))
}

func mustPow(base float64, exp int) float64 {
	out := 1.0
	for i := 0; i < exp; i++ {
		out *= base
	}
	return out
}
