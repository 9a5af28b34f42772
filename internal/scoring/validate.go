package scoring

import (
	"fmt"
	"math"
)

// ValidationError marks a configuration problem. These fail fast before
// any simulation starts.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning marks a recommended-constraint violation (non-fatal).
type Warning struct {
	Code    string
	Message string
}

// Validate checks all hard constraints on a scoring config.
func Validate(cfg *Config) error {
	if cfg.Name == "" {
		return ValidationError{"name", "required"}
	}

	// Weights must sum to 1.0
	if err := validateWeightsSum(cfg.Weights, 1.0, 1e-6); err != nil {
		return ValidationError{"weights", err.Error()}
	}
	if cfg.Weights.VRP < 0 || cfg.Weights.Consistency < 0 || cfg.Weights.Skew < 0 || cfg.Weights.Liquidity < 0 {
		return ValidationError{"weights", "must all be >= 0"}
	}

	// Tier ordering: stricter -> looser
	t := cfg.Thresholds
	if !(t.VRPExcellent >= t.VRPGood && t.VRPGood >= t.VRPMarginal) {
		return ValidationError{"thresholds.vrp", "must satisfy excellent >= good >= marginal"}
	}
	if t.VRPMarginal <= 1.0 {
		return ValidationError{"thresholds.vrp_marginal", "must be > 1.0"}
	}
	if !(t.ConsistencyExcellent >= t.ConsistencyGood && t.ConsistencyGood >= t.ConsistencyMarginal) {
		return ValidationError{"thresholds.consistency", "must satisfy excellent >= good >= marginal"}
	}
	if t.ConsistencyMarginal < 0 || t.ConsistencyExcellent > 1 {
		return ValidationError{"thresholds.consistency", "tiers must stay in [0, 1]"}
	}
	if t.SkewNeutralRange < 0 || t.SkewModerateRange < t.SkewNeutralRange {
		return ValidationError{"thresholds.skew", "must satisfy 0 <= neutral_range <= moderate_range"}
	}
	if !(t.OIExcellent >= t.OIGood && t.OIGood >= t.OIMin && t.OIMin >= 0) {
		return ValidationError{"thresholds.oi", "must satisfy excellent >= good >= min >= 0"}
	}
	if !(t.SpreadTightPct <= t.SpreadOKPct && t.SpreadOKPct <= t.SpreadWidePct) {
		return ValidationError{"thresholds.spread", "must satisfy tight <= ok <= wide"}
	}
	if !(t.VolumeHigh >= t.VolumeMid && t.VolumeMid >= t.VolumeLow && t.VolumeLow >= 0) {
		return ValidationError{"thresholds.volume", "must satisfy high >= mid >= low >= 0"}
	}

	// Selection
	if cfg.MaxPositions <= 0 {
		return ValidationError{"max_positions", "must be > 0"}
	}
	if cfg.MinScore < 0 || cfg.MinScore > 100 {
		return ValidationError{"min_score", "must be in [0, 100]"}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal).
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	if cfg.MinScore < 50 {
		warnings = append(warnings, Warning{
			Code:    "LOW_MIN_SCORE",
			Message: fmt.Sprintf("min_score=%.0f admits marginal setups; 60+ recommended", cfg.MinScore),
		})
	}

	if cfg.Weights.VRP < 0.25 {
		warnings = append(warnings, Warning{
			Code:    "LOW_VRP_WEIGHT",
			Message: "vrp weight < 0.25: composite barely tracks the edge the strategy trades",
		})
	}

	if cfg.MaxPositions > 10 {
		warnings = append(warnings, Warning{
			Code:    "HIGH_POSITION_COUNT",
			Message: fmt.Sprintf("max_positions=%d dilutes selection quality", cfg.MaxPositions),
		})
	}

	return warnings
}

func validateWeightsSum(w Weights, target, epsilon float64) error {
	if math.Abs(w.Sum()-target) > epsilon {
		return fmt.Errorf("must sum to %.2f, got %.4f", target, w.Sum())
	}
	return nil
}
