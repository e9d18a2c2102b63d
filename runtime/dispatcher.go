package runtime

import (
	"context"
	"log/slog"
)

// DispatchWorker drains the hub's event channel and performs the fanout.
// A single instance runs under the supervisor, which keeps all subscriber
// callbacks on one goroutine.
type DispatchWorker struct {
	hub *Hub
	log *slog.Logger
}

func NewDispatchWorker(hub *Hub, log *slog.Logger) *DispatchWorker {
	return &DispatchWorker{hub: hub, log: log}
}

func (w *DispatchWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping dispatch")
			return nil
		case env, ok := <-w.hub.events:
			if !ok {
				w.log.Debug("Event channel closed")
				return nil
			}
			w.hub.deliver(env)
		}
	}
}
