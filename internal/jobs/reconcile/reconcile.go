package reconcile

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type pendingExpirer interface {
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
}

// Job fails subscriptions that never received a provider confirmation.
type Job struct {
	expirer  pendingExpirer
	interval time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

func New(expirer pendingExpirer, interval time.Duration, logger *zap.Logger) *Job {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		expirer:  expirer,
		interval: interval,
		now:      time.Now,
		logger:   logger,
	}
}

func (j *Job) RunOnce(ctx context.Context) error {
	expired, err := j.expirer.ExpirePending(ctx, j.now())
	if err != nil {
		return fmt.Errorf("reconcile pending subscriptions: %w", err)
	}
	if expired > 0 {
		j.logger.Info("expired pending subscriptions", zap.Int64("expired", expired))
	}
	return nil
}

// Start runs the job every interval until ctx is done.
func (j *Job) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("reconcile job stopped")
			return
		case <-ticker.C:
			if err := j.RunOnce(ctx); err != nil {
				j.logger.Warn("reconcile run failed", zap.Error(err))
			}
		}
	}
}
