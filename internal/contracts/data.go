package contracts

import "time"

// EarningsMove is one historical post-earnings move record for a ticker.
// Produced by the upstream data layer; this service only reads them.
type EarningsMove struct {
	Ticker          string    `json:"ticker"`
	EarningsDate    time.Time `json:"earnings_date"`
	CloseMovePct    float64   `json:"close_move_pct"`    // close-to-close absolute move, percent
	GapMovePct      float64   `json:"gap_move_pct"`      // overnight gap, percent
	IntradayMovePct float64   `json:"intraday_move_pct"` // open-to-close, percent
}

// OptionQuote carries the per-option liquidity metrics used by the
// liquidity scorer. Every field is optional; missing data is scored
// conservatively, never skipped.
type OptionQuote struct {
	Symbol       string   `json:"symbol"`
	OpenInterest *int64   `json:"open_interest,omitempty"`
	Volume       *int64   `json:"volume,omitempty"`
	Bid          *float64 `json:"bid,omitempty"`
	Ask          *float64 `json:"ask,omitempty"`
	Depth        *float64 `json:"depth,omitempty"` // top-of-book size, contracts
}

// SpreadPct returns the bid-ask spread as a percentage of mid.
// Missing or degenerate quotes return the worst case (100%).
func (q OptionQuote) SpreadPct() float64 {
	if q.Bid == nil || q.Ask == nil {
		return 100.0
	}
	mid := (*q.Bid + *q.Ask) / 2
	if mid <= 0 {
		return 100.0
	}
	return (*q.Ask - *q.Bid) / mid * 100
}
