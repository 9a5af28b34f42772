package liquidity

import (
	"math"

	"github.com/sjkim/vega/internal/contracts"
	"github.com/sjkim/vega/pkg/logger"
)

// Factor weights for the composite liquidity score. Depth is optional;
// when a quote has no depth its weight is redistributed proportionally
// so the composite stays on 0-100.
const (
	weightOI     = 0.40
	weightVolume = 0.30
	weightSpread = 0.25
	weightDepth  = 0.05
)

// Scorer rates the tradability of individual options and multi-leg
// strategies.
type Scorer struct {
	config Config
	logger *logger.Logger
}

// Config defines the per-factor tier boundaries and the hard minimums.
type Config struct {
	MinOpenInterest       int64
	GoodOpenInterest      int64
	ExcellentOpenInterest int64

	MinVolume       int64
	GoodVolume      int64
	ExcellentVolume int64

	// Spread tiers are inverted: lower is better. MaxSpreadPct doubles
	// as the hard gate ceiling.
	MaxSpreadPct       float64
	GoodSpreadPct      float64
	ExcellentSpreadPct float64

	MinDepth       float64
	GoodDepth      float64
	ExcellentDepth float64
}

// DefaultConfig returns tier boundaries tuned for liquid single-name
// earnings options.
func DefaultConfig() Config {
	return Config{
		MinOpenInterest:       500,
		GoodOpenInterest:      1000,
		ExcellentOpenInterest: 5000,

		MinVolume:       50,
		GoodVolume:      200,
		ExcellentVolume: 1000,

		MaxSpreadPct:       15.0,
		GoodSpreadPct:      8.0,
		ExcellentSpreadPct: 3.0,

		MinDepth:       10,
		GoodDepth:      50,
		ExcellentDepth: 200,
	}
}

// NewScorer creates a liquidity scorer.
func NewScorer(cfg Config, log *logger.Logger) *Scorer {
	return &Scorer{
		config: cfg,
		logger: log,
	}
}

// OptionLiquidity is the scored view of a single option.
type OptionLiquidity struct {
	Symbol       string  `json:"symbol"`
	OIScore      float64 `json:"oi_score"`
	VolumeScore  float64 `json:"volume_score"`
	SpreadScore  float64 `json:"spread_score"`
	DepthScore   float64 `json:"depth_score"`
	OverallScore float64 `json:"overall_score"`
	SpreadPct    float64 `json:"spread_pct"`
	Tier         string  `json:"tier"` // excellent|good|fair|poor

	// IsLiquid is a hard gate (OI, volume and spread minimums), fully
	// independent of OverallScore. A 90-score option missing one hard
	// minimum is still not tradeable.
	IsLiquid bool `json:"is_liquid"`
}

// StrategyLiquidity aggregates leg scores for a multi-leg strategy.
type StrategyLiquidity struct {
	Legs     []OptionLiquidity `json:"legs"`
	MinScore float64           `json:"min_score"`
	AvgScore float64           `json:"avg_score"`

	// AllLiquid is the AND over every leg: the weakest leg is the
	// bottleneck for the whole structure.
	AllLiquid bool `json:"all_liquid"`
}

// ScoreOption scores one option's tradability.
func (s *Scorer) ScoreOption(quote contracts.OptionQuote) OptionLiquidity {
	cfg := s.config
	spreadPct := quote.SpreadPct()

	var oi, volume int64
	if quote.OpenInterest != nil {
		oi = *quote.OpenInterest
	}
	if quote.Volume != nil {
		volume = *quote.Volume
	}

	result := OptionLiquidity{
		Symbol:      quote.Symbol,
		OIScore:     tierScore(float64(oi), float64(cfg.MinOpenInterest), float64(cfg.GoodOpenInterest), float64(cfg.ExcellentOpenInterest)),
		VolumeScore: tierScore(float64(volume), float64(cfg.MinVolume), float64(cfg.GoodVolume), float64(cfg.ExcellentVolume)),
		SpreadScore: invertedTierScore(spreadPct, cfg.MaxSpreadPct, cfg.GoodSpreadPct, cfg.ExcellentSpreadPct),
		SpreadPct:   spreadPct,
	}

	wOI, wVol, wSpread := weightOI, weightVolume, weightSpread
	if quote.Depth != nil {
		result.DepthScore = tierScore(*quote.Depth, cfg.MinDepth, cfg.GoodDepth, cfg.ExcellentDepth)
		result.OverallScore = result.OIScore*wOI +
			result.VolumeScore*wVol +
			result.SpreadScore*wSpread +
			result.DepthScore*weightDepth
	} else {
		// Redistribute the depth weight across the remaining factors.
		scale := 1.0 / (wOI + wVol + wSpread)
		result.OverallScore = result.OIScore*wOI*scale +
			result.VolumeScore*wVol*scale +
			result.SpreadScore*wSpread*scale
	}

	result.Tier = tierLabel(result.OverallScore)
	result.IsLiquid = oi >= cfg.MinOpenInterest &&
		volume >= cfg.MinVolume &&
		spreadPct <= cfg.MaxSpreadPct

	return result
}

// ScoreStrategyLegs scores every leg of a multi-leg strategy and
// aggregates the results.
func (s *Scorer) ScoreStrategyLegs(legs []contracts.OptionQuote) StrategyLiquidity {
	result := StrategyLiquidity{
		Legs:      make([]OptionLiquidity, 0, len(legs)),
		AllLiquid: len(legs) > 0,
	}

	if len(legs) == 0 {
		return result
	}

	sum := 0.0
	result.MinScore = math.MaxFloat64
	for _, leg := range legs {
		scored := s.ScoreOption(leg)
		result.Legs = append(result.Legs, scored)

		sum += scored.OverallScore
		if scored.OverallScore < result.MinScore {
			result.MinScore = scored.OverallScore
		}
		if !scored.IsLiquid {
			result.AllLiquid = false
		}
	}
	result.AvgScore = sum / float64(len(legs))

	s.logger.WithFields(map[string]interface{}{
		"legs":       len(legs),
		"min_score":  result.MinScore,
		"avg_score":  result.AvgScore,
		"all_liquid": result.AllLiquid,
	}).Debug("Scored strategy legs")

	return result
}

// tierScore maps an increasing-is-better value onto 0-100: linear
// interpolation inside tiers, sub-linear decay below the minimum.
func tierScore(value, min, good, excellent float64) float64 {
	switch {
	case value >= excellent:
		return 100
	case value >= good:
		return interp(value, good, excellent, 75, 100)
	case value >= min:
		return interp(value, min, good, 50, 75)
	case min <= 0 || value <= 0:
		return 0
	default:
		return 50 * math.Sqrt(value/min)
	}
}

// invertedTierScore is tierScore for lower-is-better values (spreads).
func invertedTierScore(value, max, good, excellent float64) float64 {
	switch {
	case value <= excellent:
		return 100
	case value <= good:
		return interp(value, excellent, good, 100, 75)
	case value <= max:
		return interp(value, good, max, 75, 50)
	case value <= 0 || max <= 0:
		return 0
	default:
		return 50 * math.Sqrt(max/value)
	}
}

func tierLabel(score float64) string {
	switch {
	case score >= 80:
		return "excellent"
	case score >= 65:
		return "good"
	case score >= 50:
		return "fair"
	default:
		return "poor"
	}
}

// interp maps value from [lo, hi] onto [scoreLo, scoreHi] with a
// zero-width guard.
func interp(value, lo, hi, scoreLo, scoreHi float64) float64 {
	if hi <= lo {
		return scoreLo
	}
	return scoreLo + (value-lo)/(hi-lo)*(scoreHi-scoreLo)
}
