package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const defaultReadRetention = 30 * 24 * time.Hour

// Job purges read notifications past their retention window. Unread
// notifications are never touched.
type Job struct {
	purger    notificationPurger
	retention time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

type notificationPurger interface {
	DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

func New(purger notificationPurger, retention time.Duration, logger *zap.Logger) *Job {
	if retention <= 0 {
		retention = defaultReadRetention
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		purger:    purger,
		retention: retention,
		now:       time.Now,
		logger:    logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.purger == nil {
		return nil
	}

	cutoff := j.now().Add(-j.retention)
	purged, err := j.purger.DeleteReadOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("purge read notifications: %w", err)
	}
	if purged > 0 {
		j.logger.Info("notification cleanup completed", zap.Int64("purged", purged))
	}

	return nil
}

// RunEvery blocks, running the job on the given interval until ctx ends.
func (j *Job) RunEvery(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Warn("notification cleanup failed", zap.Error(err))
			}
		}
	}
}
