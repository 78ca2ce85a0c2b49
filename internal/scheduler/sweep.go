package scheduler

import (
	"context"
	"time"

	"github.com/mroshb/hanglight/pkg/logger"
	"github.com/robfig/cron/v3"
)

const sweepTimeout = time.Minute

// Sweeper clears expired status messages.
type Sweeper interface {
	SweepExpiredMessages(ctx context.Context) (int64, error)
}

// StartSweep runs the status message sweep on schedule until the returned
// cron is stopped. Reads also sweep, so this only keeps idle rows tidy.
func StartSweep(schedule string, sweeper Sweeper) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() { RunSweep(sweeper) })
	if err != nil {
		return nil, err
	}

	c.Start()
	logger.Info("Status message sweep scheduled", "schedule", schedule)
	return c, nil
}

// RunSweep performs one sweep and logs the outcome.
func RunSweep(sweeper Sweeper) {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	cleared, err := sweeper.SweepExpiredMessages(ctx)
	if err != nil {
		logger.Error("Status message sweep failed", "error", err)
		return
	}
	logger.Debug("Status message sweep finished", "cleared", cleared)
}
