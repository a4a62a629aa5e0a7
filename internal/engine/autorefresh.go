package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/riteshshukladev/FinSight/internal/common"
	"github.com/robfig/cron/v3"
)

// AutoRefresh periodically triggers Refresh on an orchestrator. It is a
// cancellable task owned by the process: Stop must be called on shutdown.
// Overlap with a manual refresh is resolved by the orchestrator's
// single-flight guarantee, so a tick during a running sync is a no-op.
type AutoRefresh struct {
	cron         *cron.Cron
	orchestrator *Orchestrator
	logger       *slog.Logger
}

// NewAutoRefresh schedules a refresh on the given interval.
func NewAutoRefresh(o *Orchestrator, interval time.Duration, logger *slog.Logger) (*AutoRefresh, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("refresh interval must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &AutoRefresh{
		cron:         cron.New(),
		orchestrator: o,
		logger:       logger,
	}

	_, err := a.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		summary, err := o.Refresh(ctx)
		switch {
		case errors.Is(err, common.ErrSyncInProgress):
			a.logger.Debug("auto-refresh skipped, sync already running")
		case err != nil:
			a.logger.Error("auto-refresh failed", "error", err)
		default:
			a.logger.Info("auto-refresh complete",
				"batches", summary.Batches,
				"failed_batches", summary.FailedBatches,
				"new_records", summary.NewRecords)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule auto-refresh: %w", err)
	}

	return a, nil
}

// Start begins the periodic schedule.
func (a *AutoRefresh) Start() {
	a.cron.Start()
}

// Stop halts the schedule and waits for an in-flight tick to finish.
func (a *AutoRefresh) Stop() {
	ctx := a.cron.Stop()
	<-ctx.Done()
}
