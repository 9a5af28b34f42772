package sizing

import (
	"math"

	"github.com/sjkim/vega/pkg/logger"
)

// PositionSize is the sized view of one candidate trade. All fractions
// are of total capital; percent fields are fractions x100.
type PositionSize struct {
	Ticker              string  `json:"ticker"`
	KellyFraction       float64 `json:"kelly_fraction"`
	RecommendedFraction float64 `json:"recommended_fraction"` // after fractional Kelly and caps
	PositionSizePct     float64 `json:"position_size_pct"`
	MaxLossPct          float64 `json:"max_loss_pct"`
	Confidence          float64 `json:"confidence"`
	RiskAdjusted        bool    `json:"risk_adjusted"`
}

// Config defines sizing limits.
type Config struct {
	FractionalKelly     float64 // e.g. 0.25 for quarter-Kelly
	MaxPositionPct      float64 // per-position cap, percent of capital
	MaxLossPct          float64 // per-position stress-loss ceiling, percent
	StressLossFraction  float64 // fraction of a position assumed lost in a blowup
	DefaultPayoffRatio  float64 // avg-win/avg-loss when history is absent
	MaxTotalExposurePct float64 // combined cap across concurrent positions
}

// DefaultConfig returns conservative quarter-Kelly sizing limits.
func DefaultConfig() Config {
	return Config{
		FractionalKelly:     0.25,
		MaxPositionPct:      10.0,
		MaxLossPct:          3.0,
		StressLossFraction:  0.50,
		DefaultPayoffRatio:  0.80,
		MaxTotalExposurePct: 20.0,
	}
}

// WinRateEstimator supplies a win probability when no trade history is
// available. The default heuristic is intentionally replaceable; its
// constants are not load-bearing.
type WinRateEstimator interface {
	EstimateWinRate(vrpRatio, consistencyScore float64) float64
}

// HeuristicEstimator maps VRP richness and consistency into a win
// probability in [0.35, 0.85].
type HeuristicEstimator struct{}

// EstimateWinRate implements WinRateEstimator.
func (HeuristicEstimator) EstimateWinRate(vrpRatio, consistencyScore float64) float64 {
	p := 0.50
	if vrpRatio > 1.0 {
		// Each 0.1x of premium richness adds ~2% of win probability.
		p += math.Min((vrpRatio-1.0)*0.20, 0.20)
	}
	p += (consistencyScore/100 - 0.5) * 0.30

	return clamp(p, 0.35, 0.85)
}

// Sizer computes Kelly-criterion position sizes.
type Sizer struct {
	config    Config
	estimator WinRateEstimator
	logger    *logger.Logger
}

// NewSizer creates a position sizer. A nil estimator gets the default
// heuristic.
func NewSizer(cfg Config, estimator WinRateEstimator, log *logger.Logger) *Sizer {
	if estimator == nil {
		estimator = HeuristicEstimator{}
	}
	return &Sizer{
		config:    cfg,
		estimator: estimator,
		logger:    log,
	}
}

// Config returns the sizer's limits.
func (s *Sizer) Config() Config {
	return s.config
}

// Inputs carries the per-ticker statistics for sizing. Historical win
// rate and trade count are optional; when absent the estimator supplies
// the win probability.
type Inputs struct {
	Ticker           string
	VRPRatio         float64
	ConsistencyScore float64 // 0-100

	HistoricalWinRate   *float64
	NumHistoricalTrades *int

	AvgWinPct  float64 // average winning trade, percent of notional
	AvgLossPct float64 // average losing trade, percent (positive)
}

// Size computes the Kelly position for one ticker.
//
// kelly = (p*b - (1-p)) / b where p is win probability and b the
// win/loss payoff ratio. Negative edge yields a zero position; there is
// no short side in this model.
func (s *Sizer) Size(in Inputs) PositionSize {
	cfg := s.config

	p, sampleCount := s.winProbability(in)

	b := cfg.DefaultPayoffRatio
	if in.AvgWinPct > 0 && in.AvgLossPct > 0 {
		b = in.AvgWinPct / in.AvgLossPct
	}

	result := PositionSize{
		Ticker:     in.Ticker,
		Confidence: confidence(in.ConsistencyScore, sampleCount),
	}

	if b <= 0 {
		return result
	}

	result.KellyFraction = (p*b - (1 - p)) / b
	if result.KellyFraction <= 0 {
		return result
	}

	recommended := result.KellyFraction * cfg.FractionalKelly

	// Position cap.
	maxFraction := cfg.MaxPositionPct / 100
	if recommended > maxFraction {
		recommended = maxFraction
		result.RiskAdjusted = true
	}

	// Stress-loss ceiling: the implied worst-case loss of the position
	// must stay under the configured maximum.
	if maxLoss := recommended * 100 * cfg.StressLossFraction; maxLoss > cfg.MaxLossPct {
		recommended = cfg.MaxLossPct / cfg.StressLossFraction / 100
		result.RiskAdjusted = true
	}

	result.RecommendedFraction = recommended

	// Confidence shrinks the live size independently of Kelly; it is a
	// penalty, not a cap.
	result.PositionSizePct = recommended * 100 * result.Confidence
	result.MaxLossPct = result.PositionSizePct * cfg.StressLossFraction

	s.logger.WithFields(map[string]interface{}{
		"ticker":     in.Ticker,
		"p":          p,
		"b":          b,
		"kelly":      result.KellyFraction,
		"size_pct":   result.PositionSizePct,
		"confidence": result.Confidence,
	}).Debug("Sized position")

	return result
}

// winProbability prefers observed history, falling back to the
// estimator.
func (s *Sizer) winProbability(in Inputs) (float64, int) {
	if in.HistoricalWinRate != nil && in.NumHistoricalTrades != nil && *in.NumHistoricalTrades > 0 {
		return clamp(*in.HistoricalWinRate, 0, 1), *in.NumHistoricalTrades
	}
	return s.estimator.EstimateWinRate(in.VRPRatio, in.ConsistencyScore), 0
}

// confidence grows with consistency and historical sample count,
// ranging over [0.5, 1.0].
func confidence(consistencyScore float64, sampleCount int) float64 {
	c := 0.5 + 0.3*clamp(consistencyScore/100, 0, 1)
	c += 0.2 * math.Min(float64(sampleCount)/20, 1)
	return clamp(c, 0, 1)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
