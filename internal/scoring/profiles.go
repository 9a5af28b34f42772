package scoring

// Profile is a named threshold bundle. The set is closed: unrecognized
// names fall back to balanced with a warning at load time rather than
// failing the run.
type Profile string

const (
	ProfileConservative Profile = "conservative"
	ProfileBalanced     Profile = "balanced"
	ProfileAggressive   Profile = "aggressive"

	// ProfileLegacy reproduces the threshold set used before adaptive
	// percentile thresholds were introduced. Kept for replaying old runs.
	ProfileLegacy Profile = "legacy"
)

// ParseProfile maps a profile name to a known Profile. Returns balanced
// and false for unrecognized names.
func ParseProfile(name string) (Profile, bool) {
	switch Profile(name) {
	case ProfileConservative, ProfileBalanced, ProfileAggressive, ProfileLegacy:
		return Profile(name), true
	default:
		return ProfileBalanced, false
	}
}

// Thresholds returns the constant threshold bundle for the profile.
func (p Profile) Thresholds() Thresholds {
	base := Thresholds{
		ConsistencyExcellent: 0.85,
		ConsistencyGood:      0.75,
		ConsistencyMarginal:  0.60,

		SkewNeutralRange:  0.10,
		SkewModerateRange: 0.25,

		OIExcellent: 2000,
		OIGood:      1000,
		OIMin:       500,

		SpreadTightPct: 5.0,
		SpreadOKPct:    10.0,
		SpreadWidePct:  20.0,

		VolumeHigh: 500,
		VolumeMid:  100,
		VolumeLow:  20,
	}

	switch p {
	case ProfileConservative:
		base.VRPExcellent = 2.0
		base.VRPGood = 1.6
		base.VRPMarginal = 1.3
		base.ConsistencyMarginal = 0.70
	case ProfileAggressive:
		base.VRPExcellent = 1.6
		base.VRPGood = 1.3
		base.VRPMarginal = 1.1
		base.ConsistencyMarginal = 0.50
	case ProfileLegacy:
		base.VRPExcellent = 1.8
		base.VRPGood = 1.5
		base.VRPMarginal = 1.25
		base.SkewModerateRange = 0.30
	default: // balanced
		base.VRPExcellent = 1.8
		base.VRPGood = 1.4
		base.VRPMarginal = 1.2
	}

	return base
}

// ThresholdOverrides is the per-field override layer applied on top of a
// profile bundle. Only non-nil fields take effect.
type ThresholdOverrides struct {
	VRPExcellent *float64 `yaml:"vrp_excellent,omitempty" json:"vrp_excellent,omitempty"`
	VRPGood      *float64 `yaml:"vrp_good,omitempty" json:"vrp_good,omitempty"`
	VRPMarginal  *float64 `yaml:"vrp_marginal,omitempty" json:"vrp_marginal,omitempty"`

	ConsistencyExcellent *float64 `yaml:"consistency_excellent,omitempty" json:"consistency_excellent,omitempty"`
	ConsistencyGood      *float64 `yaml:"consistency_good,omitempty" json:"consistency_good,omitempty"`
	ConsistencyMarginal  *float64 `yaml:"consistency_marginal,omitempty" json:"consistency_marginal,omitempty"`

	SkewNeutralRange  *float64 `yaml:"skew_neutral_range,omitempty" json:"skew_neutral_range,omitempty"`
	SkewModerateRange *float64 `yaml:"skew_moderate_range,omitempty" json:"skew_moderate_range,omitempty"`
}

// Apply returns a copy of base with every non-nil override applied.
func (o ThresholdOverrides) Apply(base Thresholds) Thresholds {
	if o.VRPExcellent != nil {
		base.VRPExcellent = *o.VRPExcellent
	}
	if o.VRPGood != nil {
		base.VRPGood = *o.VRPGood
	}
	if o.VRPMarginal != nil {
		base.VRPMarginal = *o.VRPMarginal
	}
	if o.ConsistencyExcellent != nil {
		base.ConsistencyExcellent = *o.ConsistencyExcellent
	}
	if o.ConsistencyGood != nil {
		base.ConsistencyGood = *o.ConsistencyGood
	}
	if o.ConsistencyMarginal != nil {
		base.ConsistencyMarginal = *o.ConsistencyMarginal
	}
	if o.SkewNeutralRange != nil {
		base.SkewNeutralRange = *o.SkewNeutralRange
	}
	if o.SkewModerateRange != nil {
		base.SkewModerateRange = *o.SkewModerateRange
	}
	return base
}
