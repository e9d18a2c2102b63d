// Package runtime propagates shared-store changes to the view components.
// It owns subscriptions and delivery order, not domain or presentation rules.
package runtime

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync/atomic"
	"time"

	"dmchat/contract"
	"dmchat/domain"
	"dmchat/domain/event"
	"dmchat/observability"
	"dmchat/repositories"

	"github.com/google/uuid"
)

// Hub is the in-process client of the shared event log and user directory.
// Appends are persisted first, then fanned out by a single dispatch worker,
// so every subscriber observes callbacks serialized in log order. There is
// no cross-subscription ordering guarantee beyond that loop.
type Hub struct {
	log      *slog.Logger
	messages repositories.IMessageRepository
	users    repositories.IUserRepository
	registry *registry
	events   chan envelope
	seq      atomic.Uint64
	monitor  *observability.Monitor
}

// envelope stamps each queued event with its append sequence, so a consumer
// subscribed after an append never observes that append as "new".
type envelope struct {
	evt event.DomainEvent
	seq uint64
}

func NewHub(log *slog.Logger, messages repositories.IMessageRepository,
	users repositories.IUserRepository, monitor *observability.Monitor,
	bufferSize int) *Hub {
	return &Hub{
		log:      log,
		messages: messages,
		users:    users,
		registry: newRegistry(),
		events:   make(chan envelope, bufferSize),
		monitor:  monitor,
	}
}

// Append persists a record and schedules its fanout. The record becomes
// visible to subscribers only through the dispatch loop; a failed persist
// produces no event at all.
func (h *Hub) Append(ctx context.Context, message domain.Message) (uuid.UUID, error) {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	if err := h.messages.AppendMessage(message); err != nil {
		return uuid.Nil, err
	}
	h.monitor.IncrMessagesAppended()

	env := envelope{evt: event.MessageAppended{Message: message}, seq: h.seq.Add(1)}
	select {
	case h.events <- env:
	case <-ctx.Done():
		return message.ID, ctx.Err()
	}
	return message.ID, nil
}

// SubscribeAll registers a full-snapshot consumer and hands it the current
// log immediately, before any appended record can be observed.
func (h *Hub) SubscribeAll(fn contract.SnapshotFunc) contract.Subscription {
	sub := h.registry.addSnapshot(fn)
	snapshot, err := h.messages.GetAllMessages()
	if err != nil {
		h.log.Warn("Initial snapshot read failed", "error", err)
		return sub
	}
	fn(snapshot)
	return sub
}

// SubscribeAppended registers a consumer of newly appended records only.
// Records already in the log at subscription time are never delivered.
func (h *Hub) SubscribeAppended(fn contract.AppendedFunc) contract.Subscription {
	return h.registry.addAppended(fn, h.seq.Load())
}

// Subscribe registers a directory consumer and hands it the current
// uid -> profile snapshot immediately.
func (h *Hub) Subscribe(fn contract.DirectoryFunc) contract.Subscription {
	sub := h.registry.addDirectory(fn)
	users, err := h.users.GetAllUsers()
	if err != nil {
		h.log.Warn("Initial directory read failed", "error", err)
		return sub
	}
	fn(users)
	return sub
}

// RefreshDirectory re-reads the directory and schedules a replacement
// snapshot for all directory subscribers. Called after any user write.
// The enqueue is non-blocking: a refresh may run inside a dispatch callback
// and must never deadlock the loop; a dropped refresh is superseded by the
// next one anyway.
func (h *Hub) RefreshDirectory() {
	users, err := h.users.GetAllUsers()
	if err != nil {
		h.log.Warn("Directory read failed", "error", err)
		return
	}
	select {
	case h.events <- envelope{evt: event.DirectoryUpdated{Users: users, At: time.Now().UTC()}}:
	default:
		h.log.Warn("Event channel full, dropping directory refresh")
		h.monitor.IncrDroppedCallbacks()
	}
}

// deliver fans one event out to the current subscribers. Runs only on the
// dispatch worker goroutine. Each snapshot consumer gets its own copy, since
// views reorder what they receive.
func (h *Hub) deliver(env envelope) {
	switch e := env.evt.(type) {
	case event.MessageAppended:
		snapshot, err := h.messages.GetAllMessages()
		if err != nil {
			h.log.Warn("Snapshot read failed, skipping delivery", "error", err)
			return
		}
		for _, sub := range h.registry.currentSnapshotSubs() {
			if sub.cancelled.Load() {
				h.monitor.IncrDroppedCallbacks()
				continue
			}
			sub.fn(slices.Clone(snapshot))
			h.monitor.IncrSnapshotsDelivered()
		}
		for _, sub := range h.registry.currentAppendedSubs() {
			if sub.cancelled.Load() {
				h.monitor.IncrDroppedCallbacks()
				continue
			}
			if sub.bornSeq >= env.seq {
				// Historical for this subscriber
				continue
			}
			sub.fn(e.Message)
			h.monitor.IncrAppendedDelivered()
		}
	case event.DirectoryUpdated:
		for _, sub := range h.registry.currentDirectorySubs() {
			if sub.cancelled.Load() {
				h.monitor.IncrDroppedCallbacks()
				continue
			}
			sub.fn(maps.Clone(e.Users))
			h.monitor.IncrDirectoryUpdates()
		}
	}
}
