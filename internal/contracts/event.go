package contracts

import "time"

// EarningsEvent is one backtestable earnings event: the realized
// outcome plus whatever option-market context the data layer captured
// at the time. Optional fields are nil when the snapshot is incomplete;
// scoring degrades gracefully instead of skipping the event.
type EarningsEvent struct {
	Ticker       string    `json:"ticker"`
	Sector       string    `json:"sector"`
	EarningsDate time.Time `json:"earnings_date"`

	// Ground truth: the realized post-earnings move, percent.
	ActualMovePct float64 `json:"actual_move_pct"`

	// Option-market snapshot taken before the event.
	ImpliedMovePct *float64 `json:"implied_move_pct,omitempty"`
	Skew           *float64 `json:"skew,omitempty"`
	OpenInterest   *int64   `json:"open_interest,omitempty"`
	SpreadPct      *float64 `json:"spread_pct,omitempty"`
	Volume         *int64   `json:"volume,omitempty"`
	StockPrice     float64  `json:"stock_price"`
}
