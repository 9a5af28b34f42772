package backtest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatePnl_SimpleWin(t *testing.T) {
	// avg 5%: implied = 6.5, premium = 3.25, loss boundary = 9.75.
	// A 4% realized move stays inside: keep the full premium.
	pnl := SimulatePnl(DefaultSimConfig(), SimInputs{
		ActualMovePct:        4.0,
		AvgHistoricalMovePct: 5.0,
	})

	assert.InDelta(t, 3.25, pnl, 0.001)
}

func TestSimulatePnl_SimpleLoss(t *testing.T) {
	// 12% realized move blows 2.25 points past the 9.75 boundary:
	// pnl = 3.25 - 2.25 = 1.0.
	pnl := SimulatePnl(DefaultSimConfig(), SimInputs{
		ActualMovePct:        12.0,
		AvgHistoricalMovePct: 5.0,
	})
	assert.InDelta(t, 1.0, pnl, 0.001)

	// Far enough through the boundary the trade goes negative.
	pnl = SimulatePnl(DefaultSimConfig(), SimInputs{
		ActualMovePct:        20.0,
		AvgHistoricalMovePct: 5.0,
	})
	assert.InDelta(t, 3.25-10.25, pnl, 0.001)
}

func TestSimulatePnl_MoveAtBoundaryKeepsPremium(t *testing.T) {
	pnl := SimulatePnl(DefaultSimConfig(), SimInputs{
		ActualMovePct:        9.75,
		AvgHistoricalMovePct: 5.0,
	})
	assert.InDelta(t, 3.25, pnl, 0.001)
}

func TestSimulatePnl_RealisticNeverExceedsSimple(t *testing.T) {
	cfg := DefaultSimConfig()

	cases := []SimInputs{
		{ActualMovePct: 4, AvgHistoricalMovePct: 5, SpreadPct: 8, StockPrice: 150},
		{ActualMovePct: 12, AvgHistoricalMovePct: 5, SpreadPct: 2, StockPrice: 40},
		{ActualMovePct: 1, AvgHistoricalMovePct: 3, SpreadPct: 25, StockPrice: 500},
		{ActualMovePct: 6, AvgHistoricalMovePct: 5, SpreadPct: 0, StockPrice: 0}, // degenerate price
	}

	for _, in := range cases {
		simple := SimulatePnl(cfg, in)

		in.UseRealisticModel = true
		realistic := SimulatePnl(cfg, in)

		assert.LessOrEqual(t, realistic, simple,
			"costs only subtract (actual=%.1f avg=%.1f)", in.ActualMovePct, in.AvgHistoricalMovePct)
	}
}

func TestSimulatePnl_RealisticCosts(t *testing.T) {
	// premium 3.25: spread cost = 3.25*0.08 = 0.26,
	// commission = 0.65*2*2/100 = 0.026, residual = 0.325.
	pnl := SimulatePnl(DefaultSimConfig(), SimInputs{
		ActualMovePct:        4.0,
		AvgHistoricalMovePct: 5.0,
		SpreadPct:            8.0,
		StockPrice:           100,
		UseRealisticModel:    true,
	})

	assert.InDelta(t, 3.25-0.26-0.026-0.325, pnl, 0.001)
}

func TestLedger_PercentCompounds(t *testing.T) {
	book := newLedger(UnitPercent, 1.0)

	for i := 0; i < 3; i++ {
		book.apply(PercentPnl(-10))
	}

	// 0.9^3 = 0.729: drawdown is ~27.1%, not the summed 30%.
	assert.InDelta(t, 0.729, book.equity, 0.0001)
	assert.InDelta(t, 27.1, book.maxDrawdownPct(), 0.001)
}

func TestLedger_DollarAdds(t *testing.T) {
	book := newLedger(UnitDollar, 100_000)

	book.apply(DollarPnl(-10_000))
	book.apply(DollarPnl(-10_000))
	book.apply(DollarPnl(-10_000))

	assert.InDelta(t, 70_000, book.equity, 0.001)
	assert.InDelta(t, 30.0, book.maxDrawdownPct(), 0.001)
}

func TestLedger_PeakIsMonotone(t *testing.T) {
	book := newLedger(UnitPercent, 1.0)

	book.apply(PercentPnl(20)) // peak 1.2
	book.apply(PercentPnl(-25))
	ddAfterLoss := book.maxDrawdownPct()
	book.apply(PercentPnl(10)) // partial recovery

	assert.InDelta(t, 1.2, book.peak, 0.0001, "recovery below the old peak does not move it")
	assert.Equal(t, ddAfterLoss, book.maxDrawdownPct(), "max drawdown does not shrink on recovery")
	assert.InDelta(t, 25.0, ddAfterLoss, 0.001)
}

func TestLedger_DrawdownStaysBelowHundred(t *testing.T) {
	book := newLedger(UnitDollar, 1_000)
	book.apply(DollarPnl(-2_000)) // equity goes negative

	dd := book.maxDrawdownPct()
	assert.Less(t, dd, 100.0)
	assert.GreaterOrEqual(t, dd, 0.0)
}

func TestLedger_UnitMismatchPanics(t *testing.T) {
	book := newLedger(UnitPercent, 1.0)

	require.Panics(t, func() {
		book.apply(DollarPnl(500))
	})
}

func TestLedger_NoTrades(t *testing.T) {
	book := newLedger(UnitPercent, 1.0)
	assert.Zero(t, book.maxDrawdownPct())
	assert.False(t, math.IsNaN(book.maxDrawdownPct()))
}
