package projection

import (
	"log/slog"
	"sync"

	"dmchat/contract"
	"dmchat/domain"
)

// RenderFunc receives the selected contact and its full ordered thread after
// every recompute. Rendering the last element first keeps the view pinned to
// the latest message.
type RenderFunc func(contact domain.User, messages []domain.Message)

// ConversationView owns the active conversation: which contact is selected
// and the ordered thread derived from the stream. Selection state lives
// here, not in package globals, so the cancellation discipline is checkable.
type ConversationView struct {
	mu         sync.Mutex
	log        *slog.Logger
	self       domain.Identity
	stream     contract.EventLog
	onRender   RenderFunc
	generation uint64
	sub        contract.Subscription
	selected   *domain.User
	messages   []domain.Message
}

func NewConversationView(log *slog.Logger, self domain.Identity,
	stream contract.EventLog, onRender RenderFunc) *ConversationView {
	return &ConversationView{log: log, self: self, stream: stream, onRender: onRender}
}

// Select switches the view to a contact. The old thread is cleared and the
// previous subscription superseded before the new subscription delivers its
// first snapshot, so no frame of stale content is possible. A callback of
// the discarded subscription that is still in flight sees a newer
// generation and does nothing.
func (v *ConversationView) Select(contact domain.User) {
	v.mu.Lock()
	v.generation++
	gen := v.generation
	prev := v.sub
	v.sub = nil
	v.selected = &contact
	v.messages = nil
	v.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}

	pair := domain.NewPair(v.self.UID, contact.UID)
	sub := v.stream.SubscribeAll(func(snapshot []domain.Message) {
		thread := BuildThread(pair, snapshot)

		v.mu.Lock()
		defer v.mu.Unlock()
		if v.generation != gen {
			return
		}
		v.messages = thread
		if v.onRender != nil {
			v.onRender(contact, thread)
		}
	})

	v.mu.Lock()
	if v.generation == gen {
		v.sub = sub
		v.mu.Unlock()
		return
	}
	v.mu.Unlock()
	sub.Cancel()
}

// Selected returns the current contact, if any.
func (v *ConversationView) Selected() (domain.User, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected == nil {
		return domain.User{}, false
	}
	return *v.selected, true
}

// Messages returns the current ordered thread.
func (v *ConversationView) Messages() []domain.Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.messages
}

// Close drops the live subscription and clears the selection.
func (v *ConversationView) Close() {
	v.mu.Lock()
	v.generation++
	sub := v.sub
	v.sub = nil
	v.selected = nil
	v.messages = nil
	v.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
}
