package jobs

import (
	"context"
	"time"

	"github.com/sjkim/vega/internal/thresholds"
	"github.com/sjkim/vega/pkg/logger"
)

// ThresholdRefreshJob recomputes rolling VRP thresholds ahead of the
// trading day so the first API or backtest request hits a warm cache.
type ThresholdRefreshJob struct {
	calc       *thresholds.Calculator
	windowDays int
	sectors    []string
	logger     *logger.Logger
}

// NewThresholdRefreshJob creates a new threshold refresh job. sectors may
// be empty; the global thresholds are always refreshed.
func NewThresholdRefreshJob(calc *thresholds.Calculator, windowDays int, sectors []string, log *logger.Logger) *ThresholdRefreshJob {
	return &ThresholdRefreshJob{
		calc:       calc,
		windowDays: windowDays,
		sectors:    sectors,
		logger:     log,
	}
}

// Name returns the job name
func (j *ThresholdRefreshJob) Name() string {
	return "threshold_refresh"
}

// Schedule returns the cron schedule (every day at 6 AM)
func (j *ThresholdRefreshJob) Schedule() string {
	return "0 0 6 * * *"
}

// Run recomputes and caches today's thresholds
func (j *ThresholdRefreshJob) Run(ctx context.Context) error {
	asOf := time.Now()

	// Drop anything cached before the overnight data load finished.
	j.calc.Invalidate(ctx, j.windowDays, asOf, j.sectors...)

	global := j.calc.Rolling(ctx, j.windowDays, asOf)
	j.logger.WithFields(map[string]interface{}{
		"source":    global.Source,
		"samples":   global.SampleSize,
		"excellent": global.Excellent,
		"good":      global.Good,
		"marginal":  global.Marginal,
	}).Info("Global thresholds refreshed")

	for _, sector := range j.sectors {
		st := j.calc.Sector(ctx, sector, j.windowDays, asOf)
		j.logger.WithFields(map[string]interface{}{
			"sector":  sector,
			"source":  st.Source,
			"samples": st.SampleSize,
		}).Debug("Sector thresholds refreshed")
	}

	return nil
}
