package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-core/internal/service"
)

// StartNotificationWorker runs dispatch batches on a fixed interval until
// the context is cancelled. The same ProcessBatch also serves synchronous
// HTTP triggers; overlap safety lives in the queue's claim step, not here.
func StartNotificationWorker(ctx context.Context, dispatcher *service.DispatcherService, interval time.Duration, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		logger.Info("notification worker started", zap.Duration("interval", interval))
		for {
			select {
			case <-ctx.Done():
				logger.Info("notification worker stopped")
				return
			case <-ticker.C:
				if _, err := dispatcher.ProcessBatch(ctx); err != nil {
					logger.Error("notification batch failed", zap.Error(err))
				}
			}
		}
	}()
}
