package jobs

import (
	"context"
	"time"

	"github.com/sjkim/vega/internal/backtest"
	"github.com/sjkim/vega/pkg/logger"
)

// ResultRetentionJob deletes persisted backtest results older than the
// configured retention period.
type ResultRetentionJob struct {
	repo      *backtest.Repository
	retention time.Duration
	logger    *logger.Logger
}

// NewResultRetentionJob creates a new retention job
func NewResultRetentionJob(repo *backtest.Repository, retention time.Duration, log *logger.Logger) *ResultRetentionJob {
	return &ResultRetentionJob{
		repo:      repo,
		retention: retention,
		logger:    log,
	}
}

// Name returns the job name
func (j *ResultRetentionJob) Name() string {
	return "result_retention"
}

// Schedule returns the cron schedule (every day at 3 AM)
func (j *ResultRetentionJob) Schedule() string {
	return "0 0 3 * * *"
}

// Run deletes results past the retention cutoff
func (j *ResultRetentionJob) Run(ctx context.Context) error {
	if j.retention <= 0 {
		return nil
	}

	cutoff := time.Now().Add(-j.retention)

	deleted, err := j.repo.DeleteResultsBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	if deleted > 0 {
		j.logger.WithFields(map[string]interface{}{
			"deleted": deleted,
			"cutoff":  cutoff.Format("2006-01-02"),
		}).Info("Old backtest results deleted")
	}

	return nil
}
