package contracts

import "time"

// TickerScore is the scored view of one earnings event, passed from the
// scorer to selection and the backtest engine. Rank and Selected are
// assigned exactly once by ranking; everything else is read-only after
// creation.
type TickerScore struct {
	Ticker       string    `json:"ticker"`
	EarningsDate time.Time `json:"earnings_date"`

	// Component scores, each 0-100
	VRPScore         float64 `json:"vrp_score"`
	ConsistencyScore float64 `json:"consistency_score"`
	SkewScore        float64 `json:"skew_score"`
	LiquidityScore   float64 `json:"liquidity_score"`

	// Weighted composite, 0-100
	CompositeScore float64 `json:"composite_score"`

	// Raw inputs kept for audit
	VRPRatio    float64  `json:"vrp_ratio"`
	Consistency float64  `json:"consistency"`
	Skew        *float64 `json:"skew,omitempty"`

	// Assigned by ranking. Rank is nil for unqualified scores.
	Rank     *int `json:"rank,omitempty"`
	Selected bool `json:"selected"`
}

// IsQualified reports whether ranking assigned this score a rank.
func (s *TickerScore) IsQualified() bool {
	return s.Rank != nil
}

// Trade is one simulated earnings trade. Immutable once produced by the
// simulation step.
type Trade struct {
	Ticker         string    `json:"ticker"`
	EarningsDate   time.Time `json:"earnings_date"`
	CompositeScore float64   `json:"composite_score"`
	Rank           int       `json:"rank"`
	Selected       bool      `json:"selected"`
	ActualMove     float64   `json:"actual_move"`   // realized move, percent
	SimulatedPnl   float64   `json:"simulated_pnl"` // percent of notional
	PnlDollars     float64   `json:"pnl_dollars"`   // zero in percentage mode
}
