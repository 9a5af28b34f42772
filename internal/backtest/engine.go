package backtest

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/sjkim/vega/internal/contracts"
	"github.com/sjkim/vega/internal/scoring"
	"github.com/sjkim/vega/internal/sizing"
	"github.com/sjkim/vega/pkg/logger"
)

// EventStore is the read path into historical earnings data, owned by
// the external data layer.
type EventStore interface {
	// EarningsEvents returns events with earnings dates in [start, end].
	EarningsEvents(ctx context.Context, start, end time.Time) ([]contracts.EarningsEvent, error)

	// HistoricalMoves returns a ticker's move records strictly before
	// the given date.
	HistoricalMoves(ctx context.Context, ticker string, before time.Time) ([]contracts.EarningsMove, error)
}

// Engine orchestrates scoring, selection and P&L simulation over a
// historical date range. All computation is synchronous and
// deterministic.
type Engine struct {
	store     EventStore
	simConfig SimConfig
	sizer     *sizing.Sizer
	logger    *logger.Logger
}

// NewEngine creates a backtest engine. A nil store is valid and yields
// empty results; a nil sizer gets the default quarter-Kelly sizer.
func NewEngine(store EventStore, simConfig SimConfig, sizer *sizing.Sizer, log *logger.Logger) *Engine {
	if sizer == nil {
		sizer = sizing.NewSizer(sizing.DefaultConfig(), nil, log)
	}
	return &Engine{
		store:     store,
		simConfig: simConfig,
		sizer:     sizer,
		logger:    log,
	}
}

// RunOptions controls one backtest run.
type RunOptions struct {
	StartDate time.Time
	EndDate   time.Time

	UseRealisticModel bool

	// DollarMode switches from compounded-percent bookkeeping to
	// Kelly-sized dollar bookkeeping.
	DollarMode   bool
	TotalCapital float64

	// MinHistoryQuarters is the minimum number of prior earnings moves
	// required to score an event. Zero means the default (4).
	MinHistoryQuarters int
}

// scoredEvent pairs a ticker score with the event context the simulator
// needs later.
type scoredEvent struct {
	event   contracts.EarningsEvent
	avgMove float64
}

// Run executes one backtest. A missing or failing data source produces
// an empty result, never an error; individual event failures are
// skipped and counted.
func (e *Engine) Run(ctx context.Context, cfg scoring.Config, opts RunOptions) (*Result, error) {
	startTime := time.Now()

	hash, err := scoring.Hash(&cfg)
	if err != nil {
		return nil, err
	}

	result := &Result{
		ConfigName:   cfg.Name,
		ConfigHash:   hash,
		StartDate:    opts.StartDate,
		EndDate:      opts.EndDate,
		DollarMode:   opts.DollarMode,
		TotalCapital: opts.TotalCapital,
		Trades:       make([]contracts.Trade, 0),
	}

	minHistory := opts.MinHistoryQuarters
	if minHistory <= 0 {
		minHistory = 4
	}

	events := e.loadEvents(ctx, opts, result)
	if len(events) == 0 {
		result.Duration = time.Since(startTime)
		return result, nil
	}

	scorer := scoring.NewTickerScorer(cfg, e.logger)
	ranker := scoring.NewRanker(cfg, e.logger)

	// SCORE phase: every event gets a composite score, or a skip count.
	scores := make([]contracts.TickerScore, 0, len(events))
	eventCtx := make(map[string]scoredEvent, len(events))
	for _, event := range events {
		moves, err := e.store.HistoricalMoves(ctx, event.Ticker, event.EarningsDate)
		if err != nil {
			result.SkippedErrors++
			e.logger.WithError(err).WithField("ticker", event.Ticker).Warn("Skipping event: history load failed")
			continue
		}

		// Defense in depth: never let a record at or after the event
		// date leak into its own history.
		abs := make([]float64, 0, len(moves))
		for _, m := range moves {
			if m.EarningsDate.Before(event.EarningsDate) {
				abs = append(abs, absFloat(m.CloseMovePct))
			}
		}

		avgMove, consistency, err := historyStats(abs, minHistory)
		if err != nil {
			if errors.Is(err, contracts.ErrDataInsufficient) {
				result.SkippedInsufficientData++
			} else {
				result.SkippedErrors++
				e.logger.WithError(err).WithField("ticker", event.Ticker).Warn("Skipping event: degenerate history")
			}
			continue
		}

		vrpRatio := e.vrpRatio(event, avgMove)

		score := scorer.Score(scoring.Inputs{
			Ticker:       event.Ticker,
			EarningsDate: event.EarningsDate,
			VRPRatio:     vrpRatio,
			Consistency:  consistency,
			Skew:         event.Skew,
			OpenInterest: event.OpenInterest,
			SpreadPct:    event.SpreadPct,
			Volume:       event.Volume,
		})

		scores = append(scores, score)
		eventCtx[eventKey(event.Ticker, event.EarningsDate)] = scoredEvent{
			event:   event,
			avgMove: avgMove,
		}
	}
	result.TotalOpportunities = len(scores) + result.SkippedInsufficientData + result.SkippedErrors

	// SELECT phase.
	qualified := ranker.RankAndSelect(scores)
	result.QualifiedOpportunities = len(qualified)

	// SIMULATE phase, strictly chronological.
	sort.SliceStable(qualified, func(i, j int) bool {
		if !qualified[i].EarningsDate.Equal(qualified[j].EarningsDate) {
			return qualified[i].EarningsDate.Before(qualified[j].EarningsDate)
		}
		return qualified[i].Ticker < qualified[j].Ticker
	})

	e.simulate(qualified, eventCtx, opts, result)

	result.Duration = time.Since(startTime)

	e.logger.WithFields(map[string]interface{}{
		"config":     cfg.Name,
		"events":     result.TotalOpportunities,
		"qualified":  result.QualifiedOpportunities,
		"selected":   result.SelectedTrades,
		"win_rate":   result.WinRate,
		"sharpe":     result.SharpeRatio,
		"max_dd_pct": result.MaxDrawdownPct,
		"skipped":    result.SkippedInsufficientData + result.SkippedErrors,
	}).Info("Backtest completed")

	return result, nil
}

// loadEvents pulls the event range. Any store failure degrades to an
// empty run: a partial backtest is still useful, an aborted one is not.
func (e *Engine) loadEvents(ctx context.Context, opts RunOptions, result *Result) []contracts.EarningsEvent {
	if e.store == nil {
		e.logger.Warn("No event store configured, returning empty result")
		return nil
	}

	events, err := e.store.EarningsEvents(ctx, opts.StartDate, opts.EndDate)
	if err != nil {
		result.SkippedErrors++
		e.logger.WithError(err).Warn("Event load failed, returning empty result")
		return nil
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].EarningsDate.Before(events[j].EarningsDate)
	})
	return events
}

// vrpRatio prefers the captured implied move; without one the implied
// move is approximated from the historical average, which pins the
// ratio at the implied multiplier.
func (e *Engine) vrpRatio(event contracts.EarningsEvent, avgMove float64) float64 {
	if avgMove <= 0 {
		return 0
	}
	if event.ImpliedMovePct != nil {
		return *event.ImpliedMovePct / avgMove
	}
	return e.simConfig.ImpliedMultiplier
}

// simulate books P&L for every qualified trade. Only selected trades
// move equity; the rest are recorded with zero exposure.
func (e *Engine) simulate(qualified []contracts.TickerScore, ctxByKey map[string]scoredEvent, opts RunOptions, result *Result) {
	var (
		book  *ledger
		sized map[string]sizing.PositionSize
	)
	if opts.DollarMode {
		book = newLedger(UnitDollar, opts.TotalCapital)
		result.KellyFraction = e.sizer.Config().FractionalKelly
		sized = e.sizeByDay(qualified)
	} else {
		book = newLedger(UnitPercent, 1.0)
	}

	var (
		selectedPnls []float64
		winnerScores []float64
		loserScores  []float64
	)

	for _, score := range qualified {
		sc, ok := ctxByKey[eventKey(score.Ticker, score.EarningsDate)]
		if !ok {
			result.SkippedErrors++
			continue
		}

		spreadPct := 0.0
		if sc.event.SpreadPct != nil {
			spreadPct = *sc.event.SpreadPct
		}

		pnlPct := SimulatePnl(e.simConfig, SimInputs{
			ActualMovePct:        sc.event.ActualMovePct,
			AvgHistoricalMovePct: sc.avgMove,
			SpreadPct:            spreadPct,
			StockPrice:           sc.event.StockPrice,
			UseRealisticModel:    opts.UseRealisticModel,
		})

		trade := contracts.Trade{
			Ticker:         score.Ticker,
			EarningsDate:   score.EarningsDate,
			CompositeScore: score.CompositeScore,
			Rank:           *score.Rank,
			Selected:       score.Selected,
			ActualMove:     sc.event.ActualMovePct,
			SimulatedPnl:   pnlPct,
		}

		if score.Selected {
			if opts.DollarMode {
				size := sized[eventKey(score.Ticker, score.EarningsDate)]
				trade.PnlDollars = book.equity * size.PositionSizePct / 100 * pnlPct / 100
				book.apply(DollarPnl(trade.PnlDollars))
			} else {
				book.apply(PercentPnl(pnlPct))
			}

			result.SelectedTrades++
			selectedPnls = append(selectedPnls, pnlPct)
			if pnlPct > 0 {
				winnerScores = append(winnerScores, score.CompositeScore)
			} else {
				loserScores = append(loserScores, score.CompositeScore)
			}
		}

		result.Trades = append(result.Trades, trade)
	}

	// AGGREGATE phase.
	if result.SelectedTrades > 0 {
		result.WinRate = float64(len(winnerScores)) / float64(result.SelectedTrades)
		result.AvgPnlPerTrade = mean(selectedPnls)
	}
	result.SharpeRatio = sharpeRatio(selectedPnls)
	result.MaxDrawdownPct = book.maxDrawdownPct()
	result.AvgScoreWinners = mean(winnerScores)
	result.AvgScoreLosers = mean(loserScores)

	if opts.DollarMode {
		result.FinalCapital = book.equity
		result.TotalPnlDollars = book.equity - opts.TotalCapital
		if opts.TotalCapital > 0 {
			result.TotalPnlPct = result.TotalPnlDollars / opts.TotalCapital * 100
		}
	} else {
		result.TotalPnlPct = (book.equity - 1.0) * 100
	}
}

// sizeByDay sizes every selected trade and scales same-day batches so
// their combined exposure stays under MaxTotalExposurePct.
func (e *Engine) sizeByDay(qualified []contracts.TickerScore) map[string]sizing.PositionSize {
	cfg := e.sizer.Config()

	byDay := make(map[time.Time][]contracts.TickerScore)
	for _, score := range qualified {
		if score.Selected {
			byDay[score.EarningsDate] = append(byDay[score.EarningsDate], score)
		}
	}

	sized := make(map[string]sizing.PositionSize, len(qualified))
	for day, batch := range byDay {
		positions := make([]sizing.PositionSize, 0, len(batch))
		for _, score := range batch {
			positions = append(positions, e.sizer.Size(sizing.Inputs{
				Ticker:           score.Ticker,
				VRPRatio:         score.VRPRatio,
				ConsistencyScore: score.ConsistencyScore,
			}))
		}
		positions = sizing.AllocatePortfolio(positions, cfg.MaxTotalExposurePct)
		for _, pos := range positions {
			sized[eventKey(pos.Ticker, day)] = pos
		}
	}
	return sized
}

func eventKey(ticker string, date time.Time) string {
	return ticker + "|" + date.Format("2006-01-02")
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
