package thresholds

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sjkim/vega/pkg/logger"
	"github.com/sjkim/vega/pkg/redis"
)

const (
	// MinSamples below which percentile thresholds are blended with the
	// static defaults.
	MinSamples = 30

	// SectorMinSamples is the sample floor for sector-scoped thresholds.
	SectorMinSamples = 10

	// staticFloorRatio floors each adaptive threshold at this fraction
	// of its static default, so quiet markets cannot collapse the tiers
	// toward zero.
	staticFloorRatio = 0.80
)

// RollingThresholds are adaptive VRP tier boundaries derived from a
// trailing observation window.
type RollingThresholds struct {
	Excellent  float64   `json:"excellent"` // p75
	Good       float64   `json:"good"`      // p50
	Marginal   float64   `json:"marginal"`  // p25
	SampleSize int       `json:"sample_size"`
	WindowDays int       `json:"window_days"`
	AsOfDate   time.Time `json:"as_of_date"`
	Mean       float64   `json:"mean"`
	Std        float64   `json:"std"`
	Source     string    `json:"source"` // rolling|blended|static
}

// Statics are the fallback tier values used when the window is empty or
// the store is unavailable.
type Statics struct {
	Excellent float64
	Good      float64
	Marginal  float64
}

// DefaultStatics returns the balanced-profile VRP tier defaults.
func DefaultStatics() Statics {
	return Statics{
		Excellent: 1.8,
		Good:      1.4,
		Marginal:  1.2,
	}
}

// ObservationStore is the read path into the VRP observation history.
// Owned by the external data layer; nil is a valid value here.
type ObservationStore interface {
	VRPRatios(ctx context.Context, from, to time.Time) ([]float64, error)
	SectorVRPRatios(ctx context.Context, sector string, from, to time.Time) ([]float64, error)
}

// Calculator derives rolling thresholds. It never returns an error:
// every failure mode degrades to the static defaults.
type Calculator struct {
	store   ObservationStore
	cache   *redis.Cache
	statics Statics
	ttl     time.Duration
	logger  *logger.Logger
}

// NewCalculator creates a calculator. Both store and cache may be nil;
// a nil store always yields static thresholds.
func NewCalculator(store ObservationStore, cache *redis.Cache, statics Statics, ttl time.Duration, log *logger.Logger) *Calculator {
	return &Calculator{
		store:   store,
		cache:   cache,
		statics: statics,
		ttl:     ttl,
		logger:  log,
	}
}

// Rolling computes thresholds from observations in
// [asOf - windowDays, asOf].
func (c *Calculator) Rolling(ctx context.Context, windowDays int, asOf time.Time) RollingThresholds {
	cacheKey := fmt.Sprintf("thresholds:%d:%s:global", windowDays, asOf.Format("2006-01-02"))
	if cached, ok := c.fromCache(ctx, cacheKey); ok {
		return cached
	}

	result := c.compute(ctx, windowDays, asOf, "", MinSamples)
	c.toCache(ctx, cacheKey, result)
	return result
}

// Sector computes thresholds scoped to one sector, requiring at least
// SectorMinSamples observations before trusting the percentiles at all.
func (c *Calculator) Sector(ctx context.Context, sector string, windowDays int, asOf time.Time) RollingThresholds {
	cacheKey := fmt.Sprintf("thresholds:%d:%s:%s", windowDays, asOf.Format("2006-01-02"), sector)
	if cached, ok := c.fromCache(ctx, cacheKey); ok {
		return cached
	}

	result := c.compute(ctx, windowDays, asOf, sector, SectorMinSamples)
	if sector != "" && result.SampleSize < SectorMinSamples {
		// Thin sector history: fall back to the global static defaults.
		result = c.static(windowDays, asOf)
	}
	c.toCache(ctx, cacheKey, result)
	return result
}

// Invalidate drops the cached thresholds for asOf so the next request
// recomputes them. The refresh job uses this to overwrite entries cached
// before the overnight data load finished.
func (c *Calculator) Invalidate(ctx context.Context, windowDays int, asOf time.Time, sectors ...string) {
	if c.cache == nil {
		return
	}
	date := asOf.Format("2006-01-02")
	keys := []string{fmt.Sprintf("thresholds:%d:%s:global", windowDays, date)}
	for _, sector := range sectors {
		keys = append(keys, fmt.Sprintf("thresholds:%d:%s:%s", windowDays, date, sector))
	}
	for _, key := range keys {
		if err := c.cache.Delete(ctx, key); err != nil {
			c.logger.WithError(err).WithField("key", key).Debug("Threshold cache invalidation failed")
		}
	}
}

func (c *Calculator) compute(ctx context.Context, windowDays int, asOf time.Time, sector string, minSamples int) RollingThresholds {
	if c.store == nil || windowDays <= 0 {
		return c.static(windowDays, asOf)
	}

	from := asOf.AddDate(0, 0, -windowDays)

	var (
		ratios []float64
		err    error
	)
	if sector == "" {
		ratios, err = c.store.VRPRatios(ctx, from, asOf)
	} else {
		ratios, err = c.store.SectorVRPRatios(ctx, sector, from, asOf)
	}
	if err != nil {
		c.logger.WithError(err).WithFields(map[string]interface{}{
			"window_days": windowDays,
			"sector":      sector,
		}).Warn("VRP observation query failed, using static thresholds")
		return c.static(windowDays, asOf)
	}

	if len(ratios) == 0 {
		return c.static(windowDays, asOf)
	}

	result := RollingThresholds{
		Excellent:  percentile(ratios, 75),
		Good:       percentile(ratios, 50),
		Marginal:   percentile(ratios, 25),
		SampleSize: len(ratios),
		WindowDays: windowDays,
		AsOfDate:   asOf,
		Mean:       mean(ratios),
		Std:        stddev(ratios),
		Source:     "rolling",
	}

	// Thin windows: blend toward the static defaults by sample weight.
	if result.SampleSize < minSamples {
		w := clamp01(float64(result.SampleSize) / float64(minSamples))
		result.Excellent = w*result.Excellent + (1-w)*c.statics.Excellent
		result.Good = w*result.Good + (1-w)*c.statics.Good
		result.Marginal = w*result.Marginal + (1-w)*c.statics.Marginal
		result.Source = "blended"
	}

	// Floor each tier at 80% of its static default.
	result.Excellent = math.Max(result.Excellent, c.statics.Excellent*staticFloorRatio)
	result.Good = math.Max(result.Good, c.statics.Good*staticFloorRatio)
	result.Marginal = math.Max(result.Marginal, c.statics.Marginal*staticFloorRatio)

	return result
}

func (c *Calculator) static(windowDays int, asOf time.Time) RollingThresholds {
	return RollingThresholds{
		Excellent:  c.statics.Excellent,
		Good:       c.statics.Good,
		Marginal:   c.statics.Marginal,
		WindowDays: windowDays,
		AsOfDate:   asOf,
		Source:     "static",
	}
}

func (c *Calculator) fromCache(ctx context.Context, key string) (RollingThresholds, bool) {
	if c.cache == nil {
		return RollingThresholds{}, false
	}
	var cached RollingThresholds
	found, err := c.cache.Get(ctx, key, &cached)
	if err != nil || !found {
		return RollingThresholds{}, false
	}
	return cached, true
}

func (c *Calculator) toCache(ctx context.Context, key string, value RollingThresholds) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, key, value, c.ttl); err != nil {
		c.logger.WithError(err).Debug("Threshold cache write failed")
	}
}

// percentile computes the p-th percentile with linear interpolation
// between closest ranks.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	variance := 0.0
	for _, v := range values {
		diff := v - m
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
