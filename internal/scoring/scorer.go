package scoring

import (
	"math"
	"time"

	"github.com/sjkim/vega/internal/contracts"
	"github.com/sjkim/vega/pkg/logger"
)

// TickerScorer converts per-event statistics into factor scores and a
// weighted composite. All scoring is pure; the only side effect is debug
// logging.
type TickerScorer struct {
	weights    Weights
	thresholds Thresholds
	logger     *logger.Logger
}

// NewTickerScorer creates a scorer from a resolved config.
func NewTickerScorer(cfg Config, log *logger.Logger) *TickerScorer {
	return &TickerScorer{
		weights:    cfg.Weights,
		thresholds: cfg.Thresholds,
		logger:     log,
	}
}

// Inputs are the raw statistics for one upcoming earnings event.
// Skew and the option liquidity fields are optional.
type Inputs struct {
	Ticker       string
	EarningsDate time.Time

	VRPRatio    float64  // implied move / avg historical move
	Consistency float64  // 0-1, from coefficient of variation
	Skew        *float64 // put-call skew, nil when unknown

	OpenInterest *int64
	SpreadPct    *float64
	Volume       *int64
}

// VRPScore maps a VRP ratio into 0-100.
//
// Below the marginal threshold the score declines softly toward 0 at a
// ratio of 1.0 rather than cutting hard. This is a deliberate asymmetry
// with ConsistencyScore: slightly-cheap premium is still worth partial
// credit, while inconsistent movers are not.
func (s *TickerScorer) VRPScore(ratio float64) float64 {
	t := s.thresholds

	switch {
	case math.IsNaN(ratio) || ratio <= 0:
		return 0
	case ratio < 1.0:
		return 0
	case ratio < t.VRPMarginal:
		return interpolate(ratio, 1.0, t.VRPMarginal, 0, 50)
	case ratio < t.VRPGood:
		return interpolate(ratio, t.VRPMarginal, t.VRPGood, 50, 75)
	case ratio < t.VRPExcellent:
		return interpolate(ratio, t.VRPGood, t.VRPExcellent, 75, 100)
	default:
		return 100
	}
}

// ConsistencyScore maps a 0-1 consistency value into 0-100.
//
// Unlike VRPScore there is no partial credit below the marginal
// threshold: a ticker that moves erratically is a hard zero regardless
// of how close it came.
func (s *TickerScorer) ConsistencyScore(consistency float64) float64 {
	t := s.thresholds

	switch {
	case math.IsNaN(consistency) || consistency < t.ConsistencyMarginal:
		return 0
	case consistency < t.ConsistencyGood:
		return interpolate(consistency, t.ConsistencyMarginal, t.ConsistencyGood, 50, 75)
	case consistency < t.ConsistencyExcellent:
		return interpolate(consistency, t.ConsistencyGood, t.ConsistencyExcellent, 75, 100)
	default:
		return 100
	}
}

// SkewScore maps absolute skew into 0-100. Unknown skew scores 75:
// assume neutral, but don't hand out full credit for missing data.
func (s *TickerScorer) SkewScore(skew *float64) float64 {
	if skew == nil {
		return 75
	}

	t := s.thresholds
	abs := math.Abs(*skew)

	switch {
	case abs <= t.SkewNeutralRange:
		return 100
	case abs <= t.SkewModerateRange:
		return interpolate(abs, t.SkewNeutralRange, t.SkewModerateRange, 100, 70)
	default:
		width := t.SkewModerateRange - t.SkewNeutralRange
		if width <= 0 {
			return 40
		}
		// Continue the moderate-band slope, floored at 40.
		score := 70 - (abs-t.SkewModerateRange)*(30/width)
		return math.Max(score, 40)
	}
}

// LiquidityScore combines three tiered sub-scores (open interest out of
// 10, spread out of 10, volume out of 5) and scales the 25-point sum
// onto 0-100. Missing fields take their mid-tier value.
func (s *TickerScorer) LiquidityScore(oi *int64, spreadPct *float64, volume *int64) float64 {
	t := s.thresholds

	oiPts := 5.0
	if oi != nil {
		switch {
		case *oi >= t.OIExcellent:
			oiPts = 10
		case *oi >= t.OIGood:
			oiPts = 8
		case *oi >= t.OIMin:
			oiPts = 5
		default:
			oiPts = 2
		}
	}

	spreadPts := 5.0
	if spreadPct != nil {
		switch {
		case *spreadPct <= t.SpreadTightPct:
			spreadPts = 10
		case *spreadPct <= t.SpreadOKPct:
			spreadPts = 8
		case *spreadPct <= t.SpreadWidePct:
			spreadPts = 5
		default:
			spreadPts = 1
		}
	}

	volPts := 2.5
	if volume != nil {
		switch {
		case *volume >= t.VolumeHigh:
			volPts = 5
		case *volume >= t.VolumeMid:
			volPts = 3.5
		case *volume >= t.VolumeLow:
			volPts = 2
		default:
			volPts = 1
		}
	}

	return (oiPts + spreadPts + volPts) * 4
}

// Score produces the full TickerScore for one event. Pure function:
// same inputs always give the same score.
func (s *TickerScorer) Score(in Inputs) contracts.TickerScore {
	vrp := s.VRPScore(in.VRPRatio)
	consistency := s.ConsistencyScore(in.Consistency)
	skew := s.SkewScore(in.Skew)
	liquidity := s.LiquidityScore(in.OpenInterest, in.SpreadPct, in.Volume)

	composite := vrp*s.weights.VRP +
		consistency*s.weights.Consistency +
		skew*s.weights.Skew +
		liquidity*s.weights.Liquidity
	composite = clamp(composite, 0, 100)

	s.logger.WithFields(map[string]interface{}{
		"ticker":      in.Ticker,
		"vrp_ratio":   in.VRPRatio,
		"vrp":         vrp,
		"consistency": consistency,
		"skew":        skew,
		"liquidity":   liquidity,
		"composite":   composite,
	}).Debug("Scored ticker")

	return contracts.TickerScore{
		Ticker:           in.Ticker,
		EarningsDate:     in.EarningsDate,
		VRPScore:         vrp,
		ConsistencyScore: consistency,
		SkewScore:        skew,
		LiquidityScore:   liquidity,
		CompositeScore:   composite,
		VRPRatio:         in.VRPRatio,
		Consistency:      in.Consistency,
		Skew:             in.Skew,
	}
}

// interpolate maps x from [lo, hi] onto [scoreLo, scoreHi].
// Zero-width ranges return the lower bound's score.
func interpolate(x, lo, hi, scoreLo, scoreHi float64) float64 {
	if hi <= lo {
		return scoreLo
	}
	return scoreLo + (x-lo)/(hi-lo)*(scoreHi-scoreLo)
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
