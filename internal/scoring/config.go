package scoring

// Weights defines the factor weights for the composite score.
// By convention they sum to 1.0; Validate enforces it with a small
// floating point tolerance.
type Weights struct {
	VRP         float64 `yaml:"vrp" json:"vrp"`
	Consistency float64 `yaml:"consistency" json:"consistency"`
	Skew        float64 `yaml:"skew" json:"skew"`
	Liquidity   float64 `yaml:"liquidity" json:"liquidity"`
}

// Sum returns the sum of all weights.
func (w Weights) Sum() float64 {
	return w.VRP + w.Consistency + w.Skew + w.Liquidity
}

// Thresholds defines the tier boundaries for every factor score.
// Invariant: excellent >= good >= marginal (stricter to looser).
type Thresholds struct {
	// VRP ratio tiers
	VRPExcellent float64 `yaml:"vrp_excellent" json:"vrp_excellent"`
	VRPGood      float64 `yaml:"vrp_good" json:"vrp_good"`
	VRPMarginal  float64 `yaml:"vrp_marginal" json:"vrp_marginal"`

	// Consistency tiers (0-1 scale)
	ConsistencyExcellent float64 `yaml:"consistency_excellent" json:"consistency_excellent"`
	ConsistencyGood      float64 `yaml:"consistency_good" json:"consistency_good"`
	ConsistencyMarginal  float64 `yaml:"consistency_marginal" json:"consistency_marginal"`

	// Skew bands (absolute skew)
	SkewNeutralRange  float64 `yaml:"skew_neutral_range" json:"skew_neutral_range"`
	SkewModerateRange float64 `yaml:"skew_moderate_range" json:"skew_moderate_range"`

	// Liquidity sub-score tiers
	OIExcellent int64 `yaml:"oi_excellent" json:"oi_excellent"`
	OIGood      int64 `yaml:"oi_good" json:"oi_good"`
	OIMin       int64 `yaml:"oi_min" json:"oi_min"`

	SpreadTightPct float64 `yaml:"spread_tight_pct" json:"spread_tight_pct"`
	SpreadOKPct    float64 `yaml:"spread_ok_pct" json:"spread_ok_pct"`
	SpreadWidePct  float64 `yaml:"spread_wide_pct" json:"spread_wide_pct"`

	VolumeHigh int64 `yaml:"volume_high" json:"volume_high"`
	VolumeMid  int64 `yaml:"volume_mid" json:"volume_mid"`
	VolumeLow  int64 `yaml:"volume_low" json:"volume_low"`
}

// Config is the full scoring configuration for one strategy variant.
// Supplied externally (YAML file or CLI); immutable once loaded.
type Config struct {
	Name         string     `yaml:"name" json:"name"`
	Description  string     `yaml:"description" json:"description"`
	Profile      string     `yaml:"profile" json:"profile"` // conservative|balanced|aggressive|legacy
	Weights      Weights    `yaml:"weights" json:"weights"`
	Thresholds   Thresholds `yaml:"thresholds" json:"thresholds"`
	MaxPositions int        `yaml:"max_positions" json:"max_positions"`
	MinScore     float64    `yaml:"min_score" json:"min_score"`
}

// DefaultWeights returns the balanced factor weights.
func DefaultWeights() Weights {
	return Weights{
		VRP:         0.40,
		Consistency: 0.30,
		Skew:        0.15,
		Liquidity:   0.15,
	}
}

// DefaultConfig returns the balanced-profile configuration.
func DefaultConfig() Config {
	return Config{
		Name:         "balanced",
		Description:  "Balanced earnings short-volatility selection",
		Profile:      string(ProfileBalanced),
		Weights:      DefaultWeights(),
		Thresholds:   ProfileBalanced.Thresholds(),
		MaxPositions: 5,
		MinScore:     60.0,
	}
}
