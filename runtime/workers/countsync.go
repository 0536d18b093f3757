package workers

import (
	"context"
	"livehub/contract"
	"livehub/services"
	"log/slog"
	"time"
)

// CountSyncWorker reconciles the persisted viewer count of every active
// channel with the registry on a fixed interval. Join and exit paths sync
// on each transition already; this worker heals the counts a crash or a
// missed sync left stale.
type CountSyncWorker struct {
	log       *slog.Logger
	interval  time.Duration
	registry  contract.IRegistry
	lifecycle services.ILifecycleService
}

func NewCountSyncWorker(
	log *slog.Logger,
	interval time.Duration,
	registry contract.IRegistry,
	lifecycle services.ILifecycleService,
) *CountSyncWorker {
	return &CountSyncWorker{
		log:       log,
		interval:  interval,
		registry:  registry,
		lifecycle: lifecycle,
	}
}

func (w *CountSyncWorker) Run(ctx context.Context) error {
	w.log.Info("Starting viewer count sync worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, channelID := range w.registry.Channels() {
				if err := w.lifecycle.SyncViewerCount(channelID); err != nil {
					// A channel can outlive its stream record briefly, not worth a restart
					w.log.Debug("Viewer count sync failed", "channel", channelID, "error", err)
				}
			}
		}
	}
}
