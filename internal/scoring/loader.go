package scoring

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape of a scoring config. Thresholds are
// expressed as a profile name plus field overrides so configs stay short
// and diffs stay readable.
type fileConfig struct {
	Name         string             `yaml:"name"`
	Description  string             `yaml:"description"`
	Profile      string             `yaml:"profile"`
	Weights      *Weights           `yaml:"weights,omitempty"`
	Overrides    ThresholdOverrides `yaml:"threshold_overrides,omitempty"`
	MaxPositions int                `yaml:"max_positions"`
	MinScore     float64            `yaml:"min_score"`
}

// Load reads a YAML scoring config. Unknown fields fail immediately;
// an unrecognized profile name falls back to balanced with a warning.
func Load(path string) (*Config, []Warning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read scoring config: %w", err)
	}

	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return nil, nil, fmt.Errorf("decode scoring config: %w", err)
	}

	cfg, warnings := Resolve(fc)

	if err := Validate(cfg); err != nil {
		return nil, warnings, err
	}

	warnings = append(warnings, Warn(cfg)...)
	return cfg, warnings, nil
}

// Resolve expands a file config into a full Config: profile bundle,
// then overrides, then defaults for anything still unset.
func Resolve(fc fileConfig) (*Config, []Warning) {
	var warnings []Warning

	profile, known := ParseProfile(fc.Profile)
	if !known && fc.Profile != "" {
		warnings = append(warnings, Warning{
			Code:    "UNKNOWN_PROFILE",
			Message: fmt.Sprintf("profile %q not recognized, using %q", fc.Profile, ProfileBalanced),
		})
	}

	cfg := &Config{
		Name:         fc.Name,
		Description:  fc.Description,
		Profile:      string(profile),
		Thresholds:   fc.Overrides.Apply(profile.Thresholds()),
		MaxPositions: fc.MaxPositions,
		MinScore:     fc.MinScore,
	}

	if fc.Weights != nil {
		cfg.Weights = *fc.Weights
	} else {
		cfg.Weights = DefaultWeights()
	}

	return cfg, warnings
}

// Hash generates a SHA-256 hash of the resolved config (canonical JSON).
// Struct marshaling keeps field order deterministic, so equal configs
// always hash equal.
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
