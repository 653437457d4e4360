package util

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CleanupJob is one housekeeping task run on the cleanup schedule.
type CleanupJob struct {
	Name string
	Run  func(ctx context.Context) (int64, error)
}

// StartCleanup registers jobs on a cron schedule and starts the scheduler.
// The caller stops it with Stop() on shutdown.
func StartCleanup(schedule string, logger *zap.Logger, jobs ...CleanupJob) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		RunCleanup(context.Background(), logger, jobs...)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}

	c.Start()
	for _, e := range c.Entries() {
		logger.Info("cleanup scheduled", zap.String("schedule", schedule), zap.Time("next_run", e.Next))
	}
	return c, nil
}

// RunCleanup runs every job once; a failing job does not stop the others.
func RunCleanup(ctx context.Context, logger *zap.Logger, jobs ...CleanupJob) {
	for _, job := range jobs {
		start := time.Now()
		n, err := job.Run(ctx)
		if err != nil {
			logger.Error("cleanup job failed", zap.String("job", job.Name), zap.Error(err))
			continue
		}
		logger.Info("cleanup job completed",
			zap.String("job", job.Name),
			zap.Int64("deleted", n),
			zap.Duration("took", time.Since(start)))
	}
}
