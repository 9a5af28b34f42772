package contracts

import (
	"testing"
)

func f(v float64) *float64 { return &v }

func TestOptionQuote_SpreadPct(t *testing.T) {
	tests := []struct {
		name  string
		quote OptionQuote
		want  float64
	}{
		{
			name:  "normal quote",
			quote: OptionQuote{Bid: f(9.50), Ask: f(10.50)},
			want:  10.0, // 1.0 / 10.0 * 100
		},
		{
			name:  "tight quote",
			quote: OptionQuote{Bid: f(4.99), Ask: f(5.01)},
			want:  0.4,
		},
		{
			name:  "missing bid",
			quote: OptionQuote{Ask: f(10.0)},
			want:  100.0,
		},
		{
			name:  "missing ask",
			quote: OptionQuote{Bid: f(10.0)},
			want:  100.0,
		},
		{
			name:  "empty quote",
			quote: OptionQuote{},
			want:  100.0,
		},
		{
			name:  "zero mid",
			quote: OptionQuote{Bid: f(0), Ask: f(0)},
			want:  100.0,
		},
		{
			name:  "negative mid",
			quote: OptionQuote{Bid: f(-2), Ask: f(1)},
			want:  100.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.quote.SpreadPct()
			epsilon := 0.0001
			if diff := got - tt.want; diff > epsilon || diff < -epsilon {
				t.Errorf("SpreadPct() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTickerScore_IsQualified(t *testing.T) {
	score := TickerScore{Ticker: "AAPL", CompositeScore: 85}
	if score.IsQualified() {
		t.Error("score without a rank should not be qualified")
	}

	rank := 1
	score.Rank = &rank
	if !score.IsQualified() {
		t.Error("ranked score should be qualified")
	}
}
