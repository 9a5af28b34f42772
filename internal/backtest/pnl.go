package backtest

import "math"

// SimConfig holds the P&L simulation constants for a short-volatility
// earnings position (short strangle collapsed to a single premium
// number).
type SimConfig struct {
	ImpliedMultiplier float64 // implied move = avg historical move x this
	PremiumFraction   float64 // premium collected as a fraction of implied move
	LossMultiplier    float64 // loss begins beyond implied move x this

	// Realistic-model costs. Each is a pure subtraction, so the
	// realistic P&L can never exceed the simple one.
	CommissionPerContract float64 // dollars per contract per side
	ContractLegs          int     // legs opened and closed (strangle: 2)
	ResidualIVFraction    float64 // premium retained by residual IV after the crush
}

// DefaultSimConfig returns the reference simulation constants.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		ImpliedMultiplier:     1.3,
		PremiumFraction:       0.5,
		LossMultiplier:        1.5,
		CommissionPerContract: 0.65,
		ContractLegs:          2,
		ResidualIVFraction:    0.10,
	}
}

// SimInputs are the per-trade inputs to the P&L simulation.
type SimInputs struct {
	ActualMovePct        float64
	AvgHistoricalMovePct float64
	SpreadPct            float64 // bid-ask spread as percent of mid
	StockPrice           float64 // for commission normalization
	UseRealisticModel    bool
}

// SimulatePnl returns the simulated P&L for one trade as a percent of
// notional.
//
// Simple model: collect premium on the implied move, lose only when the
// realized move blows through the loss boundary.
// Realistic model: the simple P&L minus round-trip spread cost,
// commissions normalized by stock price, and the premium give-back from
// residual IV after the crush.
func SimulatePnl(cfg SimConfig, in SimInputs) float64 {
	implied := in.AvgHistoricalMovePct * cfg.ImpliedMultiplier
	premium := implied * cfg.PremiumFraction
	loss := math.Max(0, in.ActualMovePct-implied*cfg.LossMultiplier)

	pnl := premium - loss
	if !in.UseRealisticModel {
		return pnl
	}

	// Round-trip bid-ask cost, proportional to how wide the market is.
	spreadCost := premium * math.Max(in.SpreadPct, 0) / 100

	// Fixed commissions, in and out for every leg, normalized to a
	// percent of the 100-share notional.
	price := in.StockPrice
	if price <= 0 {
		price = 100
	}
	commissionCost := cfg.CommissionPerContract * float64(cfg.ContractLegs) * 2 / price

	// Residual IV keeps part of the premium from ever being collected.
	residualCost := premium * cfg.ResidualIVFraction

	return pnl - spreadCost - commissionCost - residualCost
}

// PnlUnit tags which bookkeeping regime a P&L value belongs to. Keeping
// the unit on the value (rather than a bare float plus a mode flag)
// prevents percent and dollar amounts from being mixed silently.
type PnlUnit int

const (
	UnitPercent PnlUnit = iota
	UnitDollar
)

// Pnl is a unit-tagged P&L amount.
type Pnl struct {
	Unit  PnlUnit
	Value float64
}

// PercentPnl constructs a percent-of-equity P&L.
func PercentPnl(pct float64) Pnl {
	return Pnl{Unit: UnitPercent, Value: pct}
}

// DollarPnl constructs a dollar P&L.
func DollarPnl(dollars float64) Pnl {
	return Pnl{Unit: UnitDollar, Value: dollars}
}

// ledger tracks an equity curve and its running-peak drawdown. The two
// regimes share the drawdown logic but differ in how a trade moves
// equity: percent P&L compounds, dollar P&L adds.
type ledger struct {
	unit   PnlUnit
	equity float64
	peak   float64
	maxDD  float64 // largest observed (peak-equity)/peak
}

// newLedger starts a ledger at the given equity (1.0 for percent mode,
// initial capital for dollar mode).
func newLedger(unit PnlUnit, initial float64) *ledger {
	return &ledger{
		unit:   unit,
		equity: initial,
		peak:   initial,
	}
}

// apply books one trade. Percent P&L is compounded sequentially, never
// summed: three -10% trades draw equity down ~27.1%, not 30%.
func (l *ledger) apply(p Pnl) {
	if p.Unit != l.unit {
		// Unit mismatch is a programming error; refuse to book it.
		panic("backtest: pnl unit does not match ledger")
	}

	switch l.unit {
	case UnitPercent:
		l.equity *= 1 + p.Value/100
	case UnitDollar:
		l.equity += p.Value
	}

	// Peak is monotonically non-decreasing; max drawdown never shrinks
	// on recovery.
	if l.equity > l.peak {
		l.peak = l.equity
	}
	if l.peak > 0 {
		if dd := (l.peak - l.equity) / l.peak; dd > l.maxDD {
			l.maxDD = dd
		}
	}
}

// maxDrawdownPct returns the max drawdown as a percent in [0, 100).
func (l *ledger) maxDrawdownPct() float64 {
	dd := l.maxDD * 100
	if dd < 0 {
		return 0
	}
	if dd >= 100 {
		return math.Nextafter(100, 0)
	}
	return dd
}
