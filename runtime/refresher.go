package runtime

import (
	"context"
	"log/slog"
	"time"
)

// RefreshWorker re-reads the user store on a fixed interval so directory
// changes made by other processes eventually reach subscribers.
type RefreshWorker struct {
	hub      *Hub
	log      *slog.Logger
	interval time.Duration
}

func NewRefreshWorker(hub *Hub, log *slog.Logger, interval time.Duration) *RefreshWorker {
	return &RefreshWorker{hub: hub, log: log, interval: interval}
}

func (w *RefreshWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping directory refresh")
			return nil
		case <-ticker.C:
			w.hub.RefreshDirectory()
		}
	}
}
