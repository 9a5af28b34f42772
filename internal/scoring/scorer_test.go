package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sjkim/vega/pkg/logger"
)

func newTestScorer() *TickerScorer {
	return NewTickerScorer(DefaultConfig(), logger.NewNop())
}

func TestTickerScorer_VRPScore(t *testing.T) {
	s := newTestScorer()

	// Balanced thresholds: marginal 1.2, good 1.4, excellent 1.8
	tests := []struct {
		name  string
		ratio float64
		want  float64
	}{
		{"nan", math.NaN(), 0},
		{"negative", -0.5, 0},
		{"zero", 0, 0},
		{"below parity", 0.9, 0},
		{"at parity", 1.0, 0},
		{"halfway to marginal", 1.1, 25},
		{"at marginal", 1.2, 50},
		{"between marginal and good", 1.3, 62.5},
		{"at good", 1.4, 75},
		{"between good and excellent", 1.6, 87.5},
		{"at excellent", 1.8, 100},
		{"above excellent", 2.0, 100},
		{"far above excellent", 5.0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.VRPScore(tt.ratio), 0.001)
		})
	}
}

func TestTickerScorer_VRPScore_Monotone(t *testing.T) {
	s := newTestScorer()

	prev := -1.0
	for ratio := 0.0; ratio <= 3.0; ratio += 0.01 {
		score := s.VRPScore(ratio)
		assert.GreaterOrEqual(t, score, prev, "score must not decrease at ratio %.2f", ratio)
		prev = score
	}
}

func TestTickerScorer_ConsistencyScore(t *testing.T) {
	s := newTestScorer()

	// Balanced thresholds: marginal 0.60, good 0.75, excellent 0.85
	tests := []struct {
		name        string
		consistency float64
		want        float64
	}{
		{"nan", math.NaN(), 0},
		{"zero", 0, 0},
		{"just below marginal", 0.59, 0},
		{"at marginal", 0.60, 50},
		{"between marginal and good", 0.675, 62.5},
		{"at good", 0.75, 75},
		{"between good and excellent", 0.80, 87.5},
		{"at excellent", 0.85, 100},
		{"perfect", 1.0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.ConsistencyScore(tt.consistency), 0.001)
		})
	}
}

// The two factor curves treat their marginal boundary differently: VRP
// gives partial credit below it, consistency drops straight to zero.
func TestTickerScorer_MarginalAsymmetry(t *testing.T) {
	s := newTestScorer()

	assert.Greater(t, s.VRPScore(1.19), 0.0, "VRP just below marginal keeps partial credit")
	assert.Equal(t, 0.0, s.ConsistencyScore(0.599), "consistency just below marginal is a hard zero")
}

func TestTickerScorer_SkewScore(t *testing.T) {
	s := newTestScorer()

	skew := func(v float64) *float64 { return &v }

	// Balanced bands: neutral 0.10, moderate 0.25
	tests := []struct {
		name string
		skew *float64
		want float64
	}{
		{"nil scores neutral-ish", nil, 75},
		{"zero", skew(0), 100},
		{"within neutral", skew(0.05), 100},
		{"at neutral edge", skew(0.10), 100},
		{"mid moderate", skew(0.175), 85},
		{"at moderate edge", skew(0.25), 70},
		{"beyond moderate", skew(0.30), 60},
		{"deep skew floors at 40", skew(2.0), 40},
		{"negative skew uses magnitude", skew(-0.05), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.SkewScore(tt.skew), 0.001)
		})
	}
}

func TestTickerScorer_LiquidityScore(t *testing.T) {
	s := newTestScorer()

	oi := func(v int64) *int64 { return &v }
	spread := func(v float64) *float64 { return &v }
	vol := func(v int64) *int64 { return &v }

	tests := []struct {
		name   string
		oi     *int64
		spread *float64
		volume *int64
		want   float64
	}{
		{"all excellent", oi(5000), spread(3.0), vol(1000), 100}, // (10+10+5)*4
		{"all missing takes mid tiers", nil, nil, nil, 50},       // (5+5+2.5)*4
		{"all worst", oi(10), spread(50.0), vol(5), 12},          // (2+1+1)*4
		{"mixed", oi(1500), spread(8.0), vol(200), 78},           // (8+8+3.5)*4
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.LiquidityScore(tt.oi, tt.spread, tt.volume), 0.001)
		})
	}
}

func TestTickerScorer_Score_Composite(t *testing.T) {
	s := newTestScorer()

	oi := int64(5000)
	spread := 3.0
	vol := int64(1000)
	skew := 0.0

	in := Inputs{
		Ticker:       "NVDA",
		EarningsDate: time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC),
		VRPRatio:     2.0,
		Consistency:  0.90,
		Skew:         &skew,
		OpenInterest: &oi,
		SpreadPct:    &spread,
		Volume:       &vol,
	}

	score := s.Score(in)

	// Every factor maxes out, so the weighted composite is 100.
	assert.InDelta(t, 100.0, score.VRPScore, 0.001)
	assert.InDelta(t, 100.0, score.ConsistencyScore, 0.001)
	assert.InDelta(t, 100.0, score.SkewScore, 0.001)
	assert.InDelta(t, 100.0, score.LiquidityScore, 0.001)
	assert.InDelta(t, 100.0, score.CompositeScore, 0.001)
	assert.Equal(t, "NVDA", score.Ticker)
	assert.Nil(t, score.Rank)
	assert.False(t, score.Selected)
}

func TestTickerScorer_Score_Deterministic(t *testing.T) {
	s := newTestScorer()

	in := Inputs{
		Ticker:      "AAPL",
		VRPRatio:    1.5,
		Consistency: 0.7,
	}

	first := s.Score(in)
	second := s.Score(in)
	assert.Equal(t, first.CompositeScore, second.CompositeScore)
}

func TestInterpolate_ZeroWidth(t *testing.T) {
	assert.Equal(t, 50.0, interpolate(1.5, 1.2, 1.2, 50, 75))
}
